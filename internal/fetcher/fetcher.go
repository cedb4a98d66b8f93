package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// Fetcher is the interface for all markup fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the markup at the given request's URL. Any failure is
	// returned as a *types.FetchError.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New builds the fetcher selected by cfg.Fetcher.Type. When a redis address
// is configured the fetcher is wrapped in a markup cache.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	var (
		f   Fetcher
		err error
	)

	switch cfg.Fetcher.Type {
	case config.FetcherHTTP, "":
		f, err = NewHTTPFetcher(cfg, logger)
	case config.FetcherBrowser:
		f, err = NewBrowserFetcher(cfg, logger)
	case config.FetcherChrome:
		f, err = NewChromeFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrNoFetcher, cfg.Fetcher.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Cache.RedisAddr != "" {
		return NewRedisCachedFetcher(f, cfg.Cache, logger), nil
	}
	return f, nil
}

// readyTimeout is the fixed bound on the readiness wait for req.
func readyTimeout(cfg *config.FetcherConfig, req *types.Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return cfg.Timeout
}

// readySelectors returns the selectors that mark req's page as rendered.
func readySelectors(cfg *config.FetcherConfig, req *types.Request) []string {
	if len(req.ReadySelectors) > 0 {
		return req.ReadySelectors
	}
	return cfg.ReadySelectors
}
