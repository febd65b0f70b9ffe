package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"staypulse/internal/app"
	"staypulse/internal/config"
	"staypulse/internal/infrastructure"
	"staypulse/internal/services"
	"staypulse/pkg/contracts"
)

// cli carries the state shared by every subcommand
type cli struct {
	cfgFile  string
	source   string
	sheet    string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "listings",
		Short: "Inspect and query a short-term rental listings file",
		Long: `listings loads an Airbnb-style listings export (CSV or Excel), cleans it
and answers the same questions as the dashboard from the command line.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.init,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: discovered staypulse.yaml)")
	root.PersistentFlags().StringVar(&c.source, "source", "", "listings file, overrides data.source")
	root.PersistentFlags().StringVar(&c.sheet, "sheet", "", "worksheet of an Excel source")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(c.summaryCmd())
	root.AddCommand(c.neighbourhoodsCmd())
	root.AddCommand(c.recommendCmd())
	root.AddCommand(c.exportCmd())
	root.AddCommand(c.serveCmd())
	root.AddCommand(versionCmd())

	return root
}

func (c *cli) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(c.cfgFile)
	if err != nil {
		return err
	}
	if c.source != "" {
		cfg.Data.Source = c.source
	}
	if c.sheet != "" {
		cfg.Data.Sheet = c.sheet
	}
	c.cfg = cfg
	c.logger = infrastructure.NewLogger(cmd.ErrOrStderr(), c.logLevel)
	return nil
}

// service loads the source and builds the listing service used by the
// one-shot commands
func (c *cli) service(cmd *cobra.Command) (*services.ListingService, error) {
	table, report, err := app.LoadListings(cmd.Context(), c.cfg, c.logger, nil)
	if err != nil {
		return nil, err
	}
	return services.NewListingService(services.ListingServiceConfig{
		Table:      table,
		Report:     report,
		Thresholds: c.cfg.Thresholds,
		Logger:     c.logger,
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			return err
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// cmdNow is replaced in tests
var cmdNow = time.Now
