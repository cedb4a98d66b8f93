package storage

import (
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// Column titles of the tabular output.
var (
	ListingColumns = []string{"Product Name", "Product Description", "SKU", "Price"}
	DetailColumns  = []string{"SKU", "Item Size", "Method", "Location", "Width", "Height"}
)

// Table is a result flattened into a header and rows of equal width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Flatten lays a result out as rows.
//
// Listing results give one row per record. Detail results give one row per
// (imprint method, location) pair, each carrying the record's SKU, item size
// and the full pricing row; a quantity column with no zipped price is left
// empty. A detail record without any location contributes no rows unless
// emitEmptyDetail is set, in which case it yields a single row with sentinel
// method and location.
func Flatten(result *types.Result, emitEmptyDetail bool) *Table {
	if result.PageType == types.PageListing {
		return flattenListings(result.Listings)
	}
	return flattenDetails(result.Details, emitEmptyDetail)
}

func flattenListings(records []types.ListingRecord) *Table {
	t := &Table{
		Columns: append([]string(nil), ListingColumns...),
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Name.String(),
			r.Description.String(),
			r.SKU.String(),
			r.Price.String(),
		})
	}
	return t
}

func flattenDetails(records []types.DetailRecord, emitEmptyDetail bool) *Table {
	quantities := quantityColumns(records)

	t := &Table{
		Columns: append(append([]string(nil), DetailColumns...), quantities...),
		Rows:    [][]string{},
	}

	for _, r := range records {
		prices := priceCells(r.Pricing, quantities)
		emitted := 0

		for _, m := range r.ImprintMethods {
			for _, loc := range m.Locations {
				row := []string{
					r.SKU.String(),
					r.ItemSize.String(),
					m.Method.String(),
					loc.Location.String(),
					loc.Width,
					loc.Height,
				}
				t.Rows = append(t.Rows, append(row, prices...))
				emitted++
			}
		}

		if emitted == 0 && emitEmptyDetail && r.Found {
			row := []string{
				r.SKU.String(),
				r.ItemSize.String(),
				types.Sentinel,
				types.Sentinel,
				"",
				"",
			}
			t.Rows = append(t.Rows, append(row, prices...))
		}
	}

	return t
}

// quantityColumns lists every distinct quantity tier across records, in
// first-seen order.
func quantityColumns(records []types.DetailRecord) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range records {
		for _, q := range r.Pricing.Quantities {
			if seen[q] {
				continue
			}
			seen[q] = true
			cols = append(cols, q)
		}
	}
	return cols
}

// priceCells aligns the zipped tiers of p to the quantity columns.
func priceCells(p types.PricingTable, quantities []string) []string {
	byQuantity := make(map[string]string)
	for _, tier := range p.Tiers() {
		if _, ok := byQuantity[tier.Quantity]; !ok {
			byQuantity[tier.Quantity] = tier.Price
		}
	}

	cells := make([]string, len(quantities))
	for i, q := range quantities {
		cells[i] = byQuantity[q]
	}
	return cells
}
