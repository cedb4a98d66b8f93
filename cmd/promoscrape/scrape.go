package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/display"
	"github.com/IshaanNene/PromoScrape/internal/engine"
	"github.com/IshaanNene/PromoScrape/internal/fetcher"
	"github.com/IshaanNene/PromoScrape/internal/parser"
	"github.com/IshaanNene/PromoScrape/internal/storage"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

const urlPrompt = "Enter the product URL: "

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape one listing or detail page",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScrape,
	}
	addScrapeFlags(cmd)
	return cmd
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "CSV output path (default scraped_products.csv)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher: http, browser, chrome")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)
	out := cmd.OutOrStdout()

	rawURL := ""
	if len(args) > 0 {
		rawURL = strings.TrimSpace(args[0])
	} else {
		rawURL, err = promptURL(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
	}

	if err := config.ValidateURL(rawURL); err != nil {
		fmt.Fprintf(out, "Failed to fetch the page: %v\n", err)
		return nil
	}

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	store, err := storage.New(cfg, logger)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("create storage: %w", err)
	}

	eng := engine.New(cfg, out, logger)
	eng.SetFetcher(f)
	eng.SetParser(parser.New(cfg.Extract, logger))
	eng.SetDisplay(display.NewPrinter(out))
	eng.SetStorage(store)
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = eng.Run(ctx, rawURL)

	var fetchErr *types.FetchError
	if errors.As(err, &fetchErr) {
		fmt.Fprintf(out, "Failed to fetch the page: %v\n", fetchErr)
		return nil
	}
	return err
}

// promptURL asks for the target URL on in and reads a single line.
func promptURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, urlPrompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read URL: %w", err)
	}
	return strings.TrimSpace(line), nil
}
