package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/francois-poidevin/adsbchecker/internal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkBindings = map[string]string{
	"checker.lookback":   "lookback",
	"checker.continuous": "continuous",
	"checker.interval":   "interval",
	"checker.bbox":       "bbox",
	"checker.sinkertype": "sinkerType",
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Display the aircraft reported over the last minutes",
	Long: `Fetch the most recent ADS-B state vectors from the OpenSky Network and display them.
	With --continuous the check is repeated every --interval seconds until Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Initialize config
		if err := initConfig(cmd.Flags(), checkBindings); err != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": err,
			}).Error("Unable to load configuration")
			return err
		}

		save, _ := cmd.Flags().GetBool("save")
		conf.Checker.Sinkertype = withSave(conf.Checker.Sinkertype, save)

		errExec := internal.Execute(ctx, log, *conf)
		if errExec != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errExec,
			}).Error("Error in Execute processing")
			return errExec
		}
		return nil
	},
}

// withSave adds the FILE sinker when --save is given
func withSave(sinkertype string, save bool) string {
	if !save {
		return sinkertype
	}
	for _, kind := range strings.Split(sinkertype, ",") {
		if strings.EqualFold(strings.TrimSpace(kind), "FILE") {
			return sinkertype
		}
	}
	if strings.TrimSpace(sinkertype) == "" {
		return "FILE"
	}
	return sinkertype + ",FILE"
}

func init() {
	checkCmd.Flags().Int("lookback", 15, "look back N minutes")
	checkCmd.Flags().Bool("continuous", false, "run continuous monitoring")
	checkCmd.Flags().Int("interval", 60, "check interval in seconds")
	checkCmd.Flags().Bool("save", false, "save data to a JSON file")
	checkCmd.Flags().String("bbox", "", "restrict to a Bounding Box (SW^NE) 'lat,lon^lat,lon'")
	checkCmd.Flags().String("sinkerType", "STDOUT", "set the sinker types, comma separated (STDOUT|FILE|DB)")
}
