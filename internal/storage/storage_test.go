package storage

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func listingResult() *types.Result {
	return &types.Result{
		RunID:    "run-1",
		URL:      "https://shop.example.com/mugs",
		PageType: types.PageListing,
		Listings: []types.ListingRecord{
			{Name: types.Some("Mug"), Description: types.Some("11oz"), SKU: types.Some("MUG-11"), Price: types.Some("$4.99")},
			{Name: types.Some("Tumbler"), Description: types.Some("20oz"), Price: types.Some("$12.50")},
		},
	}
}

func detailResult() *types.Result {
	return &types.Result{
		RunID:    "run-2",
		URL:      "https://shop.example.com/p/tote",
		PageType: types.PageDetail,
		Details: []types.DetailRecord{{
			Found:    true,
			SKU:      types.Some("TOTE-42"),
			ItemSize: types.Some(`15" x 16"`),
			ImprintMethods: []types.ImprintMethod{
				{
					Method: types.Some("Screen Print"),
					Locations: []types.ImprintLocation{
						{Location: types.Some("Front"), Width: "10", Height: "10"},
						{Location: types.Some("Back"), Width: "8.5", Height: "6"},
					},
				},
				{Method: types.Some("Embroidery"), Locations: []types.ImprintLocation{}},
			},
			Pricing: types.PricingTable{
				Quantities: []string{"100", "250", "500"},
				Prices:     []string{"$3.10", "$2.80"},
			},
		}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

// --- Flatten ---

func TestFlattenListing(t *testing.T) {
	table := Flatten(listingResult(), false)

	assert.Equal(t, []string{"Product Name", "Product Description", "SKU", "Price"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Mug", "11oz", "MUG-11", "$4.99"}, table.Rows[0])
	assert.Equal(t, "N/A", table.Rows[1][2])
}

func TestFlattenDetail(t *testing.T) {
	table := Flatten(detailResult(), false)

	assert.Equal(t,
		[]string{"SKU", "Item Size", "Method", "Location", "Width", "Height", "100", "250", "500"},
		table.Columns,
	)
	require.Len(t, table.Rows, 2, "one row per method/location pair")
	assert.Equal(t,
		[]string{"TOTE-42", `15" x 16"`, "Screen Print", "Front", "10", "10", "$3.10", "$2.80", ""},
		table.Rows[0],
	)
	assert.Equal(t, "Back", table.Rows[1][3])
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Columns))
	}
}

func TestFlattenDetailWithoutLocations(t *testing.T) {
	result := detailResult()
	result.Details[0].ImprintMethods = nil

	assert.Empty(t, Flatten(result, false).Rows)

	table := Flatten(result, true)
	require.Len(t, table.Rows, 1)
	assert.Equal(t,
		[]string{"TOTE-42", `15" x 16"`, "N/A", "N/A", "", "", "$3.10", "$2.80", ""},
		table.Rows[0],
	)
}

func TestFlattenDetailWithoutRoot(t *testing.T) {
	result := &types.Result{
		PageType: types.PageDetail,
		Details:  []types.DetailRecord{{ImprintMethods: []types.ImprintMethod{}}},
	}

	table := Flatten(result, true)
	assert.Empty(t, table.Rows)
	assert.Equal(t, DetailColumns, table.Columns)
}

func TestPriceCellsTruncateToShorter(t *testing.T) {
	p := types.PricingTable{Quantities: []string{"50"}, Prices: []string{"$1", "$2", "$3"}}
	assert.Equal(t, []string{"$1"}, priceCells(p, []string{"50"}))
}

// --- CSV ---

func TestCSVCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scraped_products.csv")
	s := NewCSVStorage(path, false, testLogger)

	require.NoError(t, s.Store(listingResult()))
	require.NoError(t, s.Close())

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, ListingColumns, records[0])
	assert.Equal(t, "N/A", records[2][2])
}

func TestCSVAppendsWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped_products.csv")
	s := NewCSVStorage(path, false, testLogger)

	const writes = 3
	for i := 0; i < writes; i++ {
		require.NoError(t, s.Store(detailResult()))
	}

	records := readCSV(t, path)
	header := records[0]
	rows := records[1:]
	assert.Len(t, rows, writes*2, "N writes of k rows give N*k rows")
	for _, row := range rows {
		assert.NotEqual(t, header, row, "header must not repeat")
	}
}

func TestCSVHeaderWhenFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped_products.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, NewCSVStorage(path, false, testLogger).Store(listingResult()))

	records := readCSV(t, path)
	assert.Equal(t, ListingColumns, records[0])
	assert.Len(t, records, 3)
}

func TestCSVZeroRowsStillCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped_products.csv")
	result := detailResult()
	result.Details[0].ImprintMethods = nil

	require.NoError(t, NewCSVStorage(path, false, testLogger).Store(result))

	records := readCSV(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, "SKU", records[0][0])
}

func TestCSVUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewCSVStorage(filepath.Join(blocker, "out.csv"), false, testLogger).Store(listingResult())
	require.Error(t, err)

	var se *types.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "csv", se.Backend)
}

// --- secondary sinks ---

func TestMongoDocuments(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	docs := mongoDocuments(listingResult(), now)
	require.Len(t, docs, 2)
	first := docs[0].(bson.M)
	assert.Equal(t, "run-1", first["_run_id"])
	assert.Equal(t, "list", first["_page_type"])
	assert.Equal(t, "N/A", docs[1].(bson.M)["sku"])

	docs = mongoDocuments(detailResult(), now)
	require.Len(t, docs, 1)
	detail := docs[0].(bson.M)
	assert.Equal(t, "TOTE-42", detail["sku"])
	assert.Len(t, detail["imprint_methods"], 2)
	assert.Len(t, detail["pricing"], 2)
}

func TestRowBatch(t *testing.T) {
	result := detailResult()
	batch, err := rowBatch(result, Flatten(result, false))
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Len())

	obj := rowObject([]string{"SKU", "Width", "SKU"}, []string{"a", "1", "b"})
	assert.Equal(t, map[string]string{"SKU": "a", "Width": "1"}, obj)
}

type recordingStorage struct {
	name   string
	err    error
	stored int
	closed bool
}

func (r *recordingStorage) Store(*types.Result) error {
	r.stored++
	return r.err
}
func (r *recordingStorage) Close() error { r.closed = true; return nil }
func (r *recordingStorage) Name() string { return r.name }

func TestMultiStorageFanOut(t *testing.T) {
	failing := &recordingStorage{name: "a", err: errors.New("down")}
	ok := &recordingStorage{name: "b"}
	m := NewMultiStorage([]Storage{failing, ok}, testLogger)

	err := m.Store(listingResult())
	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, ok.stored, "later backends still receive the result")

	require.NoError(t, m.Close())
	assert.True(t, failing.closed)
	assert.True(t, ok.closed)
}

func TestMultiStoragePath(t *testing.T) {
	csvStore := NewCSVStorage("products.csv", false, testLogger)
	m := NewMultiStorage([]Storage{&recordingStorage{name: "x"}, csvStore}, testLogger)
	assert.Equal(t, "products.csv", m.Path())
}
