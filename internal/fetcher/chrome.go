package fetcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// ChromeFetcher implements Fetcher with chromedp. Each fetch runs in a fresh
// tab of a shared browser process.
type ChromeFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         *config.FetcherConfig
	logger      *slog.Logger
}

// NewChromeFetcher prepares the browser allocator. Chrome itself starts on
// the first fetch.
func NewChromeFetcher(cfg *config.Config, logger *slog.Logger) (*ChromeFetcher, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		chromeOptions(&cfg.Fetcher)...,
	)

	return &ChromeFetcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		cfg:         &cfg.Fetcher,
		logger:      logger.With("component", "chrome_fetcher"),
	}, nil
}

func chromeOptions(cfg *config.FetcherConfig) []chromedp.ExecAllocatorOption {
	vp := randomViewport()
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(vp.Width, vp.Height),
	}
	if len(cfg.UserAgents) > 0 {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgents[0]))
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	return opts
}

// Fetch loads the page, waits up to the readiness bound for a ready selector,
// and returns the document's outer HTML.
func (cf *ChromeFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()

	tabCtx, tabCancel := chromedp.NewContext(cf.allocCtx)
	defer tabCancel()

	// Tie the tab to the caller's context.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	if err := chromedp.Run(tabCtx, chromedp.Navigate(req.URLString())); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	cf.waitReady(tabCtx, req)

	var html, finalURL string
	err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	if html == "" {
		return nil, &types.FetchError{URL: req.URLString(), Err: types.ErrNoMarkup}
	}

	duration := time.Since(start)
	cf.logger.Debug("chrome fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewBrowserResponse(req, []byte(html), finalURL, duration), nil
}

// waitReady waits for the first ready selector within the bound. Errors,
// including the timeout, are logged and ignored.
func (cf *ChromeFetcher) waitReady(tabCtx context.Context, req *types.Request) {
	selectors := readySelectors(cf.cfg, req)
	if len(selectors) == 0 {
		return
	}
	timeout := readyTimeout(cf.cfg, req)

	waitCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	// A selector group matches as soon as any member is present.
	group := strings.Join(selectors, ", ")
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(group, chromedp.ByQuery)); err != nil {
		cf.logger.Debug("ready selector wait ended, continuing",
			"url", req.URLString(),
			"timeout", timeout,
			"error", err,
		)
	}
}

// Close stops the browser process.
func (cf *ChromeFetcher) Close() error {
	cf.allocCancel()
	return nil
}

// Type returns the fetcher type identifier.
func (cf *ChromeFetcher) Type() string {
	return config.FetcherChrome
}
