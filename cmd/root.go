// Package cmd defines and implements the CLI commands for the logo-discovery
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/logo-discovery/internal/config"
)

type rootOptions struct {
	configFile string
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "logo-discovery",
		Short: "Finds, validates and stores company logos.",
		Long: `logo-discovery crawls a company's website, scores every logo-like image
it can find and returns the best one whose bytes download and validate.
It runs as an HTTP service or as a one-shot command.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML); LOGOS_* env vars override it")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newDiscoverCmd(opts))

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
