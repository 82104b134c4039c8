package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/francois-poidevin/adsbchecker/internal/launcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// launchCmd forwards every argument, flags included, to the Python checker
var launchCmd = &cobra.Command{
	Use:                "launch [args...]",
	Short:              "Run the Python ADS-B checker installed next to this binary",
	Long:               `Check that Python 3 is available, install the HTTP client dependency and run adsb_checker.py with the given arguments. The exit status is the checker's.`,
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runLauncher(cmd.Context(), args))
	},
}

// ExecuteLauncher is the entry point of the standalone launcher binary: no
// flag is interpreted, configuration comes from ADSB_LAUNCHER_* variables.
func ExecuteLauncher(args []string) {
	os.Exit(runLauncher(context.Background(), args))
}

func runLauncher(ctx context.Context, args []string) int {
	if err := initConfig(nil, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	err := launcher.New(log, conf.Launcher).Run(ctx, args)

	var exitErr *launcher.ExitError
	if err != nil && !errors.Is(err, launcher.ErrMissingInterpreter) && !errors.As(err, &exitErr) {
		log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Unable to run delegate")
	}
	return launcher.ExitCode(err)
}
