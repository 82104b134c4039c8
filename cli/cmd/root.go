package cmd

/*
Copyright © 2019 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

import (
	"fmt"
	"os"
	"strings"

	"github.com/francois-poidevin/adsbchecker/config"
	defaults "github.com/mcuadros/go-defaults"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ADSB"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "adsbchecker",
	Short: "ADS-B checker displays the aircraft recently reported to the OpenSky Network",
	Long: `ADS-B checker fetches the most recent ADS-B state vectors from the OpenSky Network,
	displays them, saves them to JSON or Postgres, and can launch the Python checker.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	log     *logrus.Logger
	cfgFile string
	conf    = &config.Configuration{}
)

func init() {

	//log handling
	log = logrus.New()
	// log.Formatter = new(logrus.JSONFormatter)
	log.Formatter = new(logrus.TextFormatter)                     //default
	log.Formatter.(*logrus.TextFormatter).DisableColors = true    // remove colors
	log.Formatter.(*logrus.TextFormatter).DisableTimestamp = true // remove timestamp from test output
	log.Level = logrus.WarnLevel
	log.Out = os.Stdout

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig loads defaults, then the config file, then ADSB_* env variables,
// then the changed flags bound in bindings (viper key -> flag name).
func initConfig(flags *pflag.FlagSet, bindings map[string]string) error {
	v := viper.New()

	for k := range asEnvVariables(conf, "", false) {
		err := v.BindEnv(strings.ToLower(strings.Replace(k, "_", ".", -1)), envPrefix+"_"+k)
		if err != nil {
			log.WithFields(logrus.Fields{
				"var": envPrefix + "_" + k,
			}).Error("Unable to bind environment variable")
		}
	}

	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("unable to bind flag %q: %w", name, err)
		}
	}

	defaults.SetDefaults(conf)

	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return err
		}
		// If the config file doesn't exists, let's exit
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config file %s doesn't exist", path)
		}

		log.WithFields(logrus.Fields{
			"File": path,
		}).Info("Reading configuration file")

		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config: %w", err)
		}
	}

	if err := v.Unmarshal(conf); err != nil {
		return fmt.Errorf("unable to parse config: %w", err)
	}

	level, err := logrus.ParseLevel(conf.Log.Level)
	if err != nil {
		log.WithFields(logrus.Fields{
			"level": conf.Log.Level,
		}).Warn("Unknown log level, keeping warn")
		return nil
	}
	log.SetLevel(level)

	return nil
}
