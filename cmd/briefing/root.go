package main

import (
	"fmt"
	"os"

	"github.com/phdev/briefing"
	"github.com/phdev/briefing/internal/config"
	"github.com/phdev/briefing/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Briefing is a conversational budgeting wizard",
	Long: `Briefing walks a prospective client through a scripted chat and hands the
collected project briefing off as a pre-filled WhatsApp message.

Configuration is read from an optional YAML file, a .env file and
BRIEFING_* environment variables, in increasing order of precedence.`,
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
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

// loadConfig reads the configuration named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if _, err := logging.ParseLevel(level); err != nil {
			return nil, err
		}
		cfg.Log.Level = level
	}
	return cfg, nil
}

// loadService builds the service for commands that run conversations.
func loadService(cmd *cobra.Command, opts ...briefing.Option) (*briefing.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	svc, err := briefing.New(cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing briefing: %w", err)
	}
	return svc, cfg, nil
}
