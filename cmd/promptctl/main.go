// Command promptctl builds prompts locally, seeds user history and submits
// prompt requests to the worker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imkonsowa/waiter-prompts/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "promptctl",
	Short:         "Build and publish waiter prompts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config/config.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(publishCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	config.SetupLogging(cfg.Logging)

	return cfg, nil
}
