package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/logo-discovery/internal/logging"
	"github.com/JakeFAU/logo-discovery/internal/logo"
	"github.com/JakeFAU/logo-discovery/internal/server"
)

type discoverOptions struct {
	company string
	out     string
}

func newDiscoverCmd(root *rootOptions) *cobra.Command {
	opts := &discoverOptions{}
	cmd := &cobra.Command{
		Use:   "discover <website>",
		Short: "Discovers the logo of one website and prints its metadata",
		Long: `Crawls the website once, prints the winning logo's metadata as JSON and,
with --out, writes the validated image bytes to a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("logger init failed: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			discoverer := server.NewDiscoverer(cfg, logger)
			result, err := discoverer.Discover(cmd.Context(), args[0], opts.company)
			if err != nil {
				return fmt.Errorf("discover %s: %w", args[0], err)
			}
			logger.Info("logo discovered",
				zap.String("source_url", result.SourceURL),
				zap.Float64("score", result.QualityScore),
			)
			return writeDiscovery(cmd, result, opts.out)
		},
	}
	cmd.Flags().StringVar(&opts.company, "company", "", "company name used as a keyword signal")
	cmd.Flags().StringVar(&opts.out, "out", "", "write the logo bytes to this file")
	return cmd
}

func writeDiscovery(cmd *cobra.Command, result *logo.DiscoveredLogo, out string) error {
	if out != "" {
		if err := os.WriteFile(out, result.Data(), 0o600); err != nil {
			return fmt.Errorf("write logo: %w", err)
		}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
