package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/autoapply/pkg/logger"
)

var (
	cfgPath   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "autoapply",
	Short: "Score job postings against a profile and auto-apply above a threshold",
	Long: "autoapply runs the auto-apply pipeline behind an HTTP API.\n" +
		"With no subcommand it starts the server.",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file (default: AUTOAPPLY_CONFIG env var)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override the configured log format (text or json)")
}

// exportConfigPath hands the --config flag to the config loader, which reads
// the file path from the environment.
func exportConfigPath() error {
	if cfgPath == "" {
		return nil
	}
	return os.Setenv("AUTOAPPLY_CONFIG", cfgPath)
}

// setupLogger initializes the global logger. Flags win over config values.
func setupLogger(format, level string) error {
	if logFormat != "" {
		format = logFormat
	}
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.InitWithOptions(os.Stderr, format); err != nil {
		return err
	}
	return logger.SetLevelString(level)
}
