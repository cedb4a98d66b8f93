// Package promoscrape provides a public SDK for embedding PromoScrape as a
// library.
//
// Example usage:
//
//	s := promoscrape.New(
//	    promoscrape.WithFetcher("browser"),
//	    promoscrape.WithOutput("./out/products.csv"),
//	)
//
//	result, err := s.Scrape(ctx, "https://catalog.example.com/product/123")
//	if err != nil {
//	    var fe *promoscrape.FetchError
//	    if errors.As(err, &fe) {
//	        // the page could not be fetched; nothing was written
//	    }
//	}
//	fmt.Println(result.PageType, result.Len())
package promoscrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/display"
	"github.com/IshaanNene/PromoScrape/internal/engine"
	"github.com/IshaanNene/PromoScrape/internal/fetcher"
	"github.com/IshaanNene/PromoScrape/internal/parser"
	"github.com/IshaanNene/PromoScrape/internal/storage"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// Re-exported record types.
type (
	Result          = types.Result
	ListingRecord   = types.ListingRecord
	DetailRecord    = types.DetailRecord
	ImprintMethod   = types.ImprintMethod
	ImprintLocation = types.ImprintLocation
	PricingTable    = types.PricingTable
	Text            = types.Text
	PageType        = types.PageType
	FetchError      = types.FetchError
	StorageError    = types.StorageError
)

// Page types.
const (
	PageListing = types.PageListing
	PageDetail  = types.PageDetail
)

// Scraper is the high-level API for using PromoScrape as a library.
type Scraper struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithFetcher selects the fetcher: "http", "browser" or "chrome".
func WithFetcher(fetcherType string) Option {
	return func(s *Scraper) { s.cfg.Fetcher.Type = fetcherType }
}

// WithTimeout sets the bound on the page readiness wait.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.cfg.Fetcher.Timeout = d }
}

// WithOutput sets the CSV output path.
func WithOutput(path string) Option {
	return func(s *Scraper) { s.cfg.Storage.OutputPath = path }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) { s.cfg.Fetcher.UserAgents = []string{ua} }
}

// WithExactClassMatch requires class markers to match whole class tokens.
func WithExactClassMatch() Option {
	return func(s *Scraper) { s.cfg.Extract.ClassMatch = config.ClassMatchExact }
}

// WithPriceLabelCell sets how the leading price cell is treated: "auto",
// "skip" or "keep".
func WithPriceLabelCell(mode string) Option {
	return func(s *Scraper) { s.cfg.Extract.PriceLabelCell = mode }
}

// WithEmptyDetailRows emits a row for detail pages without any location.
func WithEmptyDetailRows() Option {
	return func(s *Scraper) { s.cfg.Extract.EmitEmptyDetail = true }
}

// WithRedisCache caches fetched markup in redis for ttl.
func WithRedisCache(addr string, ttl time.Duration) Option {
	return func(s *Scraper) {
		s.cfg.Cache.RedisAddr = addr
		s.cfg.Cache.TTL = ttl
	}
}

// WithMongo also stores records in a MongoDB collection.
func WithMongo(uri, database, collection string) Option {
	return func(s *Scraper) {
		s.cfg.Storage.MongoURI = uri
		s.cfg.Storage.MongoDatabase = database
		s.cfg.Storage.MongoCollection = collection
	}
}

// WithPostgres also stores rows in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(s *Scraper) { s.cfg.Storage.PostgresDSN = dsn }
}

// WithConsole prints progress and the extracted records to w.
func WithConsole(w io.Writer) Option {
	return func(s *Scraper) { s.out = w }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(s *Scraper) { s.cfg.Logging.Level = "debug" }
}

// New creates a new Scraper with the given options.
func New(opts ...Option) *Scraper {
	s := &Scraper{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		level := slog.LevelWarn
		if s.cfg.Logging.Level == "debug" {
			level = slog.LevelDebug
		}
		s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return s
}

// Scrape fetches rawURL, extracts its records and appends them to the
// configured outputs. A *FetchError means nothing was written.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	if err := config.Validate(s.cfg); err != nil {
		return nil, err
	}

	f, err := fetcher.New(s.cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	store, err := storage.New(s.cfg, s.logger)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create storage: %w", err)
	}

	eng := engine.New(s.cfg, s.out, s.logger)
	eng.SetFetcher(f)
	eng.SetParser(parser.New(s.cfg.Extract, s.logger))
	eng.SetStorage(store)
	if s.out != nil {
		eng.SetDisplay(display.NewPrinter(s.out))
	}
	defer func() {
		if err := eng.Close(); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
	}()

	return eng.Run(ctx, rawURL)
}

// Parse extracts records from markup already in hand. Nothing is fetched or
// written.
func (s *Scraper) Parse(rawURL string, markup []byte) (*Result, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	resp := types.NewBrowserResponse(req, markup, rawURL, 0)
	return parser.New(s.cfg.Extract, s.logger).Parse(resp)
}

// Rows flattens a result into the CSV header and rows the scraper writes.
func (s *Scraper) Rows(result *Result) (columns []string, rows [][]string) {
	t := storage.Flatten(result, s.cfg.Extract.EmitEmptyDetail)
	return t.Columns, t.Rows
}
