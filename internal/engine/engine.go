package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle    State = 0
	StateRunning State = 1
	StateStopped State = 2
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats tracks the outcome of runs.
type Stats struct {
	Runs             atomic.Int64
	FetchFailures    atomic.Int64
	RecordsExtracted atomic.Int64
	BytesDownloaded  atomic.Int64
	StartTime        time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"runs":              s.Runs.Load(),
		"fetch_failures":    s.FetchFailures.Load(),
		"records_extracted": s.RecordsExtracted.Load(),
		"bytes_downloaded":  s.BytesDownloaded.Load(),
		"elapsed":           time.Since(s.StartTime).String(),
	}
}

// Fetcher obtains the markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
	Close() error
}

// Parser classifies a page and extracts its records.
type Parser interface {
	Parse(resp *types.Response) (*types.Result, error)
}

// Storage persists the records of a run.
type Storage interface {
	Store(result *types.Result) error
	Close() error
}

// Display renders records for the user before they are stored.
type Display interface {
	Print(result *types.Result)
}

// Engine runs one scrape end to end: fetch, classify and extract, display,
// persist.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     io.Writer
	fetcher Fetcher
	parser  Parser
	display Display
	storage Storage

	state atomic.Int32
	stats *Stats
	mu    sync.RWMutex
}

// New creates a new Engine. Progress messages are written to out.
func New(cfg *config.Config, out io.Writer, logger *slog.Logger) *Engine {
	if out == nil {
		out = io.Discard
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With("component", "engine"),
		out:    out,
		stats:  &Stats{StartTime: time.Now()},
	}
}

// SetFetcher sets the fetcher implementation.
func (e *Engine) SetFetcher(f Fetcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetcher = f
}

// SetParser sets the parser implementation.
func (e *Engine) SetParser(p Parser) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parser = p
}

// SetDisplay sets the record display. Without one nothing is printed.
func (e *Engine) SetDisplay(d Display) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.display = d
}

// SetStorage sets the storage implementation.
func (e *Engine) SetStorage(s Storage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.storage = s
}

// Run scrapes rawURL once.
//
// A failure to obtain markup is returned as a *types.FetchError and nothing
// is displayed or written. Extraction problems never fail a run. A storage
// failure is returned after the result has been displayed; the result is
// returned alongside it.
func (e *Engine) Run(ctx context.Context, rawURL string) (*types.Result, error) {
	e.mu.RLock()
	fetcher, parser, display, storage := e.fetcher, e.parser, e.display, e.storage
	e.mu.RUnlock()

	if fetcher == nil {
		return nil, types.ErrNoFetcher
	}
	if parser == nil {
		return nil, errors.New("engine: no parser set")
	}

	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("engine is in state %s, cannot run", State(e.state.Load()))
	}
	defer e.state.Store(int32(StateIdle))
	e.stats.Runs.Add(1)

	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	req.Timeout = e.cfg.Fetcher.Timeout
	req.ReadySelectors = e.cfg.Fetcher.ReadySelectors

	e.logger.Info("fetching page", "url", req.URLString())
	resp, err := fetcher.Fetch(ctx, req)
	if err != nil {
		e.stats.FetchFailures.Add(1)
		return nil, asFetchError(req.URLString(), err)
	}
	e.stats.BytesDownloaded.Add(int64(len(resp.Body)))

	result, err := parser.Parse(resp)
	if err != nil {
		e.stats.FetchFailures.Add(1)
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %v", types.ErrNoMarkup, err)}
	}
	result.RunID = uuid.NewString()
	e.stats.RecordsExtracted.Add(int64(result.Len()))

	fmt.Fprintf(e.out, "Scraping a product %s page...\n", pageNoun(result.PageType))

	if display != nil {
		display.Print(result)
	}

	e.logger.Info("page extracted",
		"run_id", result.RunID,
		"page_type", result.PageType.String(),
		"records", result.Len(),
		"from_cache", resp.FromCache,
	)

	if storage == nil {
		return result, nil
	}
	if err := storage.Store(result); err != nil {
		return result, err
	}

	if p, ok := storage.(interface{ Path() string }); ok && p.Path() != "" {
		fmt.Fprintf(e.out, "Data saved to %s\n", p.Path())
	}
	return result, nil
}

// Close releases the fetcher and flushes storage.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Store(int32(StateStopped))

	var errs []error
	if e.fetcher != nil {
		if err := e.fetcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fetcher: %w", err))
		}
	}
	if e.storage != nil {
		if err := e.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}

	e.logger.Debug("engine stopped", "stats", e.stats.Snapshot())
	return errors.Join(errs...)
}

// Stats returns the run statistics.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// GetState returns the current engine state.
func (e *Engine) GetState() State {
	return State(e.state.Load())
}

func asFetchError(url string, err error) error {
	var fe *types.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &types.FetchError{URL: url, Err: err}
}

func pageNoun(pt types.PageType) string {
	if pt == types.PageListing {
		return "listing"
	}
	return "detail"
}
