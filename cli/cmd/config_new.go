package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/structs"
	"github.com/francois-poidevin/adsbchecker/config"
	defaults "github.com/mcuadros/go-defaults"
	toml "github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

var configNewAsEnvFlag bool

// -----------------------------------------------------------------------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the adsbchecker configuration",
}

var configNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Initialize a default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeDefaultConfig(cmd.OutOrStdout(), configNewAsEnvFlag)
	},
}

func writeDefaultConfig(w io.Writer, asEnv bool) error {
	c := &config.Configuration{}
	defaults.SetDefaults(c)

	if !asEnv {
		btes, err := toml.Marshal(*c)
		if err != nil {
			return fmt.Errorf("Error during configuration export: %w", err)
		}
		fmt.Fprintln(w, string(btes))
		return nil
	}

	m := asEnvVariables(c, envPrefix, true)
	keys := []string{}

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "export %s=\"%s\"\n", k, m[k])
	}
	return nil
}

// asEnvVariables maps struct fields to environment variable names
func asEnvVariables(o interface{}, prefix string, skipCommented bool) map[string]string {
	r := map[string]string{}
	prefix = strings.ToUpper(prefix)
	delim := "_"
	if prefix == "" {
		delim = ""
	}
	fields := structs.Fields(o)
	for _, f := range fields {
		if skipCommented {
			tag := f.Tag("commented")
			if tag != "" {
				commented, err := strconv.ParseBool(tag)
				if err == nil && commented {
					continue
				}
			}
		}
		if structs.IsStruct(f.Value()) {
			rf := asEnvVariables(f.Value(), prefix+delim+f.Name(), skipCommented)
			for k, v := range rf {
				r[k] = v
			}
		} else {
			r[prefix+delim+strings.ToUpper(f.Name())] = fmt.Sprintf("%v", f.Value())
		}
	}
	return r
}

func init() {
	configNewCmd.Flags().BoolVar(&configNewAsEnvFlag, "env", false, "export the default configuration as environment variables")
	configCmd.AddCommand(configNewCmd)
}
