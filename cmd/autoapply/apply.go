package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/runclient"
)

var (
	applyURL       string
	applyThreshold float64
	applyInterval  = runclient.DefaultInterval
	applyTimeout   = runclient.DefaultTimeout
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Start a run on a server and follow it to the end",
	Long:  "Start an auto-apply run, poll its status and print every new snapshot until it completes or fails.",
	Args:  cobra.NoArgs,
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyURL, "url", runclient.DefaultBaseURL, "base URL of the auto-apply server")
	applyCmd.Flags().Float64Var(&applyThreshold, "threshold", 0, "minimum match score in [0,1] (default: the server's)")
	applyCmd.Flags().DurationVar(&applyInterval, "interval", runclient.DefaultInterval, "status poll interval")
	applyCmd.Flags().DurationVar(&applyTimeout, "timeout", runclient.DefaultTimeout, "give up after this long")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	if err := setupLogger("text", "warn"); err != nil {
		return err
	}

	cfg := &runclient.Config{
		BaseURL:  applyURL,
		Interval: applyInterval,
		Timeout:  applyTimeout,
		Out:      cmd.OutOrStdout(),
	}
	if cmd.Flags().Changed("threshold") {
		t := applyThreshold
		cfg.Threshold = &t
	}

	final, err := runclient.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if final.Status == model.RunFailed {
		fmt.Fprintln(cmd.ErrOrStderr(), "run failed:", final.Error)
		return fmt.Errorf("run %s failed", final.RunID)
	}
	return nil
}
