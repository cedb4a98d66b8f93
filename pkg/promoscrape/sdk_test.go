package promoscrape

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const listing = `<html><body><div id="productListHolder">
  <div class="col-3"><a class="link-item">Pen</a><p class="link-item">Click pen</p><p class="link-item">PEN-1</p><strong class="currency">$0.49</strong></div>
  <div class="col-3"><a class="link-item">Cap</a><p class="link-item">Twill cap</p><strong class="currency">$6.00</strong></div>
</div></body></html>`

func TestParseAndRows(t *testing.T) {
	s := New(WithLogger(testLogger))

	result, err := s.Parse("https://catalog.example.com/pens", []byte(listing))
	require.NoError(t, err)
	assert.Equal(t, PageListing, result.PageType)
	require.Len(t, result.Listings, 2)

	cols, rows := s.Rows(result)
	assert.Equal(t, []string{"Product Name", "Product Description", "SKU", "Price"}, cols)
	assert.Equal(t, []string{"Cap", "Twill cap", "N/A", "$6.00"}, rows[1])
}

func TestScrapeOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "products.csv")
	var console bytes.Buffer
	s := New(WithLogger(testLogger), WithOutput(out), WithConsole(&console))

	result, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Len())
	assert.NotEmpty(t, result.RunID)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, console.String(), "Data saved to "+out)
}

func TestScrapeFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "products.csv")
	_, err := New(WithLogger(testLogger), WithOutput(out)).Scrape(context.Background(), srv.URL)

	var fe *FetchError
	require.True(t, errors.As(err, &fe), "expected FetchError, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.NoFileExists(t, out)
}

func TestScrapeRejectsInvalidOptions(t *testing.T) {
	_, err := New(WithLogger(testLogger), WithPriceLabelCell("sometimes")).Scrape(context.Background(), "https://example.com")
	assert.Error(t, err)
}
