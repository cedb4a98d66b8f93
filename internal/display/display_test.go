package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

func TestPrintListings(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print(&types.Result{
		PageType: types.PageListing,
		Listings: []types.ListingRecord{
			{Name: types.Some("Classic Mug"), Description: types.Some("11oz"), SKU: types.Some("MUG-11"), Price: types.Some("$4.99")},
			{Name: types.Some("Tumbler"), Price: types.Some("$12.50")},
		},
	})

	out := buf.String()
	for _, want := range []string{"Products (2)", "Classic Mug", "MUG-11", "$12.50", "N/A"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print(&types.Result{
		PageType: types.PageDetail,
		Details: []types.DetailRecord{{
			SKU: types.Some("TOTE-42"),
			ImprintMethods: []types.ImprintMethod{
				{
					Method:    types.Some("Screen Print"),
					Locations: []types.ImprintLocation{{Location: types.Some("Front"), Width: "10", Height: "8.5"}},
				},
				{Method: types.Some("Deboss")},
			},
			Pricing: types.PricingTable{Quantities: []string{"100", "250"}, Prices: []string{"$3.10"}},
		}},
	})

	out := buf.String()
	for _, want := range []string{
		"TOTE-42",
		"Width: 10 inches, Height: 8.5 inches",
		"Deboss",
		"$3.10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "250") {
		t.Errorf("unpaired quantity tier should not be shown:\n%s", out)
	}
}
