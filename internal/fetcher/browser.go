package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// BrowserFetcher implements Fetcher using a headless Chromium driven by Rod.
// Pages are opened with stealth patches so script-rendered catalogs behave
// as they would for a regular visitor.
type BrowserFetcher struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *config.FetcherConfig
	viewport viewport
	logger   *slog.Logger
}

// NewBrowserFetcher launches a browser and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:      &cfg.Fetcher,
		viewport: randomViewport(),
		logger:   logger.With("component", "browser_fetcher"),
	}

	bf.launcher = launcher.New().
		Headless(cfg.Fetcher.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", bf.viewport.WindowSize())

	controlURL, err := bf.launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		bf.launcher.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready",
		"headless", cfg.Fetcher.Headless,
		"window", bf.viewport.WindowSize(),
	)

	return bf, nil
}

// Fetch navigates to the request URL, waits up to the readiness bound for one
// of the ready selectors, and returns whatever markup the page holds then.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()

	page, err := stealth.Page(bf.browser)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("stealth page: %w", err)}
	}
	defer page.Close()
	page = page.Context(ctx)

	if ua := bf.userAgent(req); ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if err := page.Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	bf.waitReady(page, req)

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	if html == "" {
		return nil, &types.FetchError{URL: req.URLString(), Err: types.ErrNoMarkup}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	bf.logger.Debug("browser fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewBrowserResponse(req, []byte(html), finalURL, duration), nil
}

// waitReady blocks until any ready selector appears or the bound elapses.
// A failed or timed-out wait is logged and the fetch proceeds.
func (bf *BrowserFetcher) waitReady(page *rod.Page, req *types.Request) {
	selectors := readySelectors(bf.cfg, req)
	timeout := readyTimeout(bf.cfg, req)

	waitPage := page.Timeout(timeout)
	defer waitPage.CancelTimeout()

	if len(selectors) == 0 {
		if err := waitPage.WaitLoad(); err != nil {
			bf.logger.Debug("page load wait ended", "url", req.URLString(), "error", err)
		}
		return
	}

	race := waitPage.Race()
	for _, sel := range selectors {
		race = race.Element(sel)
	}
	if _, err := race.Do(); err != nil {
		bf.logger.Debug("ready selector wait ended, continuing",
			"url", req.URLString(),
			"timeout", timeout,
			"error", err,
		)
	}
}

func (bf *BrowserFetcher) userAgent(req *types.Request) string {
	if ua := req.Headers.Get("User-Agent"); ua != "" {
		return ua
	}
	if len(bf.cfg.UserAgents) > 0 {
		return bf.cfg.UserAgents[0]
	}
	return ""
}

// Close shuts down the browser.
func (bf *BrowserFetcher) Close() error {
	var err error
	if bf.browser != nil {
		err = bf.browser.Close()
	}
	if bf.launcher != nil {
		bf.launcher.Kill()
	}
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return config.FetcherBrowser
}
