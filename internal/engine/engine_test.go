package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/display"
	"github.com/IshaanNene/PromoScrape/internal/parser"
	"github.com/IshaanNene/PromoScrape/internal/storage"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const listingPage = `<html><body>
<div id="productListHolder">
  <div class="col-12 col-md-4">
    <a class="link-item">Classic Mug</a>
    <p class="link-item">11oz ceramic</p>
    <p class="link-item">MUG-11</p>
    <strong class="currency">$4.99</strong>
  </div>
  <div class="col-12 col-md-4">
    <a class="link-item">Travel Tumbler</a>
    <p class="link-item">20oz steel</p>
    <strong class="currency">$12.50</strong>
  </div>
</div>
</body></html>`

const detailPage = `<html><body>
<div id="productDetail">
  <p class="mx-0 px-0 mt-1 mb-4">Item ID: TOTE-42</p>
  <div><h5>Size:</h5> 15" x 16"</div>
  <table class="pricetable">
    <thead><tr><th>Qty</th><th>100</th><th>250</th></tr></thead>
    <tbody><tr><th>Price</th><th>$3.10</th><th>$2.80</th></tr></tbody>
  </table>
</div>
<div id="printMethods">
  <div id="heading0"><button data-target="#collapse0">Screen Print</button></div>
  <div id="collapse0">
    <table></table>
    <table></table>
    <table>
      <tr><th>Location</th><th>Size</th></tr>
      <tr><td>Front</td><td>10" x 10"</td></tr>
      <tr><td>Back</td><td>8 X 6</td></tr>
      <tr><td>Handle</td><td>n/a</td></tr>
    </table>
  </div>
</div>
</body></html>`

type stubFetcher struct {
	body   string
	err    error
	closed bool
	last   *types.Request
}

func (s *stubFetcher) Fetch(_ context.Context, req *types.Request) (*types.Response, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return types.NewBrowserResponse(req, []byte(s.body), req.URLString(), time.Millisecond), nil
}

func (s *stubFetcher) Close() error {
	s.closed = true
	return nil
}

type harness struct {
	engine  *Engine
	fetcher *stubFetcher
	out     *bytes.Buffer
	path    string
}

func newHarness(t *testing.T, body string, fetchErr error) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.OutputPath = filepath.Join(t.TempDir(), "scraped_products.csv")

	out := &bytes.Buffer{}
	f := &stubFetcher{body: body, err: fetchErr}

	e := New(cfg, out, testLogger)
	e.SetFetcher(f)
	e.SetParser(parser.New(cfg.Extract, testLogger))
	e.SetDisplay(display.NewPrinter(out))
	e.SetStorage(storage.NewCSVStorage(cfg.Storage.OutputPath, cfg.Extract.EmitEmptyDetail, testLogger))

	return &harness{engine: e, fetcher: f, out: out, path: cfg.Storage.OutputPath}
}

func (h *harness) rows(t *testing.T) [][]string {
	t.Helper()
	f, err := os.Open(h.path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return records[1:]
}

func TestRunListingPage(t *testing.T) {
	h := newHarness(t, listingPage, nil)

	result, err := h.engine.Run(context.Background(), "https://shop.example.com/mugs")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.PageType != types.PageListing {
		t.Errorf("expected listing page, got %s", result.PageType)
	}
	if result.RunID == "" {
		t.Error("expected run id to be set")
	}

	rows := h.rows(t)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
	}
	if rows[1][2] != "N/A" {
		t.Errorf("expected second SKU to be N/A, got %q", rows[1][2])
	}

	out := h.out.String()
	if !strings.Contains(out, "Scraping a product listing page...") {
		t.Errorf("missing progress message:\n%s", out)
	}
	if !strings.Contains(out, "Data saved to "+h.path) {
		t.Errorf("missing save message:\n%s", out)
	}
}

func TestRunDetailPage(t *testing.T) {
	h := newHarness(t, detailPage, nil)

	result, err := h.engine.Run(context.Background(), "https://shop.example.com/p/tote")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.PageType != types.PageDetail || len(result.Details) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	rows := h.rows(t)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for 2 valid locations, got %d: %v", len(rows), rows)
	}
	want := []string{"TOTE-42", `15" x 16"`, "Screen Print", "Front", "10", "10", "$3.10", "$2.80"}
	if strings.Join(rows[0], "|") != strings.Join(want, "|") {
		t.Errorf("row 0 = %v, want %v", rows[0], want)
	}
	if !strings.Contains(h.out.String(), "Scraping a product detail page...") {
		t.Errorf("missing progress message:\n%s", h.out.String())
	}
}

func TestRunPassesReadinessSettings(t *testing.T) {
	h := newHarness(t, listingPage, nil)
	if _, err := h.engine.Run(context.Background(), "https://shop.example.com/mugs"); err != nil {
		t.Fatalf("run: %v", err)
	}

	if h.fetcher.last.Timeout != 10*time.Second {
		t.Errorf("expected 10s readiness bound, got %s", h.fetcher.last.Timeout)
	}
	if len(h.fetcher.last.ReadySelectors) != 2 {
		t.Errorf("expected default ready selectors, got %v", h.fetcher.last.ReadySelectors)
	}
}

func TestRunFetchFailureWritesNothing(t *testing.T) {
	h := newHarness(t, "", errors.New("net::ERR_NAME_NOT_RESOLVED"))

	result, err := h.engine.Run(context.Background(), "https://nowhere.invalid/p/1")
	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}

	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.URL != "https://nowhere.invalid/p/1" {
		t.Errorf("unexpected URL in error: %q", fe.URL)
	}

	if _, statErr := os.Stat(h.path); !os.IsNotExist(statErr) {
		t.Errorf("expected no output file, stat err = %v", statErr)
	}
	if h.out.Len() != 0 {
		t.Errorf("expected no output on fetch failure, got:\n%s", h.out.String())
	}
	if got := h.engine.Stats().FetchFailures.Load(); got != 1 {
		t.Errorf("expected 1 fetch failure, got %d", got)
	}
}

func TestRunAppendsAcrossRuns(t *testing.T) {
	h := newHarness(t, listingPage, nil)

	for i := 0; i < 3; i++ {
		if _, err := h.engine.Run(context.Background(), "https://shop.example.com/mugs"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if rows := h.rows(t); len(rows) != 6 {
		t.Errorf("expected 6 rows after 3 runs, got %d", len(rows))
	}
}

func TestRunWithoutFetcher(t *testing.T) {
	e := New(config.DefaultConfig(), nil, testLogger)
	if _, err := e.Run(context.Background(), "https://example.com"); !errors.Is(err, types.ErrNoFetcher) {
		t.Errorf("expected ErrNoFetcher, got %v", err)
	}
}

func TestCloseReleasesFetcher(t *testing.T) {
	h := newHarness(t, listingPage, nil)
	if err := h.engine.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !h.fetcher.closed {
		t.Error("expected fetcher to be closed")
	}
	if h.engine.GetState() != StateStopped {
		t.Errorf("expected stopped state, got %s", h.engine.GetState())
	}
}
