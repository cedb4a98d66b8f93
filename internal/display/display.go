// Package display renders extracted records for the console.
package display

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

// Printer writes human-readable tables of a run's records.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Print renders result according to its page type.
func (p *Printer) Print(result *types.Result) {
	if result.PageType == types.PageListing {
		p.printListings(result.Listings)
		return
	}
	for _, d := range result.Details {
		p.printDetail(d)
	}
}

func (p *Printer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(p.out)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func (p *Printer) printListings(records []types.ListingRecord) {
	t := p.newTable(fmt.Sprintf("Products (%d)", len(records)))
	t.AppendHeader(table.Row{"#", "Product Name", "Product Description", "SKU", "Price"})
	for i, r := range records {
		t.AppendRow(table.Row{i + 1, r.Name, r.Description, r.SKU, r.Price})
	}
	t.Render()
}

func (p *Printer) printDetail(d types.DetailRecord) {
	summary := p.newTable("Product")
	summary.AppendRows([]table.Row{
		{"SKU", d.SKU},
		{"Item Size", d.ItemSize},
	})
	summary.Render()

	methods := p.newTable("Imprint Methods")
	methods.AppendHeader(table.Row{"Method", "Location", "Size"})
	for _, m := range d.ImprintMethods {
		if len(m.Locations) == 0 {
			methods.AppendRow(table.Row{m.Method, types.Sentinel, ""})
			continue
		}
		for _, loc := range m.Locations {
			methods.AppendRow(table.Row{m.Method, loc.Location, FormatSize(loc)})
		}
	}
	methods.Render()

	pricing := p.newTable("Pricing")
	pricing.AppendHeader(table.Row{"Quantity", "Price"})
	for _, tier := range d.Pricing.Tiers() {
		pricing.AppendRow(table.Row{tier.Quantity, tier.Price})
	}
	pricing.Render()
}

// FormatSize describes a location's dimensions in inches.
func FormatSize(loc types.ImprintLocation) string {
	return fmt.Sprintf("Width: %s inches, Height: %s inches", loc.Width, loc.Height)
}
