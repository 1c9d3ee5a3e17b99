package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
)

const (
	app = "resume-ranker"
)

var rootCmd = &cobra.Command{
	Use:          app,
	Short:        "resume-ranker is a cli for ranking candidate embeddings and maintaining stored profiles",
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	jsonLogs, _ := cmd.Flags().GetBool("json")
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(logger.Options{JSON: jsonLogs, Debug: debug, Service: app})
}
