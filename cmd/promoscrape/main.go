package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/PromoScrape/internal/config"
)

var (
	cfgFile     string
	verbose     bool
	outputPath  string
	fetcherType string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "promoscrape [url]",
		Short: "PromoScrape: promotional product catalog scraper",
		Long: `PromoScrape fetches one product catalog page and writes its products to CSV.

Listing pages yield one row per product card. Detail pages yield one row per
imprint method and location, with the quantity price tiers as extra columns.
Rows are appended to the output file; the header is written once.

Without a URL argument the URL is read from standard input.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runScrape,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	addScrapeFlags(rootCmd)

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "PromoScrape %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Fetcher:\n")
	fmt.Fprintf(w, "  Type:              %s\n", cfg.Fetcher.Type)
	fmt.Fprintf(w, "  Ready Timeout:     %s\n", cfg.Fetcher.Timeout)
	fmt.Fprintf(w, "  Ready Selectors:   %s\n", strings.Join(cfg.Fetcher.ReadySelectors, ", "))
	fmt.Fprintf(w, "  Headless:          %v\n", cfg.Fetcher.Headless)
	fmt.Fprintf(w, "  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
	fmt.Fprintf(w, "  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
	fmt.Fprintf(w, "\nCache:\n")
	fmt.Fprintf(w, "  Redis:             %s\n", orDisabled(cfg.Cache.RedisAddr))
	fmt.Fprintf(w, "  TTL:               %s\n", cfg.Cache.TTL)
	fmt.Fprintf(w, "\nExtract:\n")
	fmt.Fprintf(w, "  Class Match:       %s\n", cfg.Extract.ClassMatch)
	fmt.Fprintf(w, "  Price Label Cell:  %s\n", cfg.Extract.PriceLabelCell)
	fmt.Fprintf(w, "  Emit Empty Detail: %v\n", cfg.Extract.EmitEmptyDetail)
	fmt.Fprintf(w, "\nStorage:\n")
	fmt.Fprintf(w, "  Output Path:       %s\n", cfg.Storage.OutputPath)
	fmt.Fprintf(w, "  MongoDB:           %s\n", orDisabled(redactURI(cfg.Storage.MongoURI)))
	fmt.Fprintf(w, "  PostgreSQL:        %s\n", orDisabled(redactURI(cfg.Storage.PostgresDSN)))
	fmt.Fprintf(w, "\nLogging:\n")
	fmt.Fprintf(w, "  Level:             %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Format:            %s\n", cfg.Logging.Format)
}

func orDisabled(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}

// redactURI hides the credentials part of a connection string.
func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return uri
	}
	return scheme + "://***@" + rest[at+1:]
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
}
