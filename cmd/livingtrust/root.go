package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/livingtrust/livingtrust/internal/cli"
	"github.com/livingtrust/livingtrust/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "livingtrust",
	Short: "Build and submit Living Trust drafts",
	Long: `livingtrust runs the Living Trust API server and a terminal wizard that
walks you through the five steps of a trust draft and submits it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// setup loads the configuration and builds the CLI logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg.LogLevel, debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
