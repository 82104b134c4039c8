package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/francois-poidevin/adsbchecker/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T, file string) {
	t.Helper()
	conf = &config.Configuration{}
	cfgFile = file
	t.Cleanup(func() {
		conf = &config.Configuration{}
		cfgFile = ""
	})
}

func TestInitConfigDefaults(t *testing.T) {
	resetConfig(t, "")

	require.NoError(t, initConfig(nil, nil))

	assert.Equal(t, "python3", conf.Launcher.Interpreter)
	assert.Equal(t, "requests", conf.Launcher.Dependency)
	assert.Equal(t, "adsb_checker.py", conf.Launcher.Delegate)
	assert.Equal(t, 15, conf.Checker.Lookback)
	assert.Equal(t, 60, conf.Checker.Interval)
	assert.Equal(t, "STDOUT", conf.Checker.Sinkertype)
	assert.Equal(t, "https://opensky-network.org/api", conf.Checker.Opensky.URL)
	assert.Equal(t, ":8080", conf.Server.Listen)
}

func TestInitConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adsbchecker.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[checker]
lookback = 30
sinkertype = "STDOUT,FILE"

[checker.file]
outputdir = "/tmp/adsb"

[launcher]
interpreter = "python3.12"
`), 0644))
	resetConfig(t, path)
	t.Setenv("ADSB_CHECKER_INTERVAL", "5")
	t.Setenv("ADSB_LAUNCHER_DEPENDENCY", "httpx")

	require.NoError(t, initConfig(nil, nil))

	assert.Equal(t, 30, conf.Checker.Lookback)
	assert.Equal(t, 5, conf.Checker.Interval)
	assert.Equal(t, "STDOUT,FILE", conf.Checker.Sinkertype)
	assert.Equal(t, "/tmp/adsb", conf.Checker.File.Outputdir)
	assert.Equal(t, "python3.12", conf.Launcher.Interpreter)
	assert.Equal(t, "httpx", conf.Launcher.Dependency)
	assert.Equal(t, 10, conf.Checker.Opensky.Timeout)
}

func TestInitConfigFlagsOverride(t *testing.T) {
	resetConfig(t, "")
	t.Setenv("ADSB_CHECKER_LOOKBACK", "45")
	flags := checkCmd.Flags()
	require.NoError(t, flags.Set("lookback", "5"))
	t.Cleanup(func() {
		flags.Set("lookback", "15")
		flags.Lookup("lookback").Changed = false
	})

	require.NoError(t, initConfig(flags, checkBindings))

	assert.Equal(t, 5, conf.Checker.Lookback)
}

func TestInitConfigMissingFile(t *testing.T) {
	resetConfig(t, filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, initConfig(nil, nil))
}

func TestWriteDefaultConfigToml(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, writeDefaultConfig(buf, false))

	out := buf.String()
	assert.Contains(t, out, "[checker]")
	assert.Contains(t, out, "lookback = 15")
	assert.Contains(t, out, `interpreter = "python3"`)
	assert.Contains(t, out, `url = "https://opensky-network.org/api"`)
}

func TestWriteDefaultConfigEnv(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, writeDefaultConfig(buf, true))

	out := buf.String()
	assert.Contains(t, out, `export ADSB_CHECKER_LOOKBACK="15"`)
	assert.Contains(t, out, `export ADSB_LAUNCHER_INTERPRETER="python3"`)
	assert.Contains(t, out, `export ADSB_CHECKER_POSTGRES_PORT="5432"`)
	assert.Contains(t, out, `export ADSB_SERVER_LISTEN=":8080"`)
}

func TestAsEnvVariables(t *testing.T) {
	c := &config.Configuration{}
	c.Checker.Opensky.URL = "http://localhost"

	m := asEnvVariables(c, "", false)

	assert.Equal(t, "http://localhost", m["CHECKER_OPENSKY_URL"])
	_, ok := m["LOG_LEVEL"]
	assert.True(t, ok)
}

func TestWithSave(t *testing.T) {
	assert.Equal(t, "STDOUT", withSave("STDOUT", false))
	assert.Equal(t, "STDOUT,FILE", withSave("STDOUT", true))
	assert.Equal(t, "stdout,file", withSave("stdout,file", true))
	assert.Equal(t, "FILE", withSave("", true))
}

func TestHasDBSinker(t *testing.T) {
	assert.True(t, hasDBSinker("STDOUT, db"))
	assert.False(t, hasDBSinker("STDOUT,FILE"))
}

func TestLaunchDoesNotParseFlags(t *testing.T) {
	run := launchCmd.Run
	var got []string
	launchCmd.Run = func(cmd *cobra.Command, args []string) {
		got = args
	}
	t.Cleanup(func() {
		launchCmd.Run = run
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"launch", "--help", "--since", "10m"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, []string{"--help", "--since", "10m"}, got)
}
