package types

import "encoding/json"

// Sentinel is written in place of any text that could not be extracted.
const Sentinel = "N/A"

// Text is an optionally present extracted string. The zero value is absent.
type Text struct {
	Value string
	Valid bool
}

// Some returns a present Text.
func Some(v string) Text {
	return Text{Value: v, Valid: true}
}

// None returns an absent Text.
func None() Text {
	return Text{}
}

// String returns the value, or Sentinel when absent.
func (t Text) String() string {
	if !t.Valid {
		return Sentinel
	}
	return t.Value
}

// MarshalJSON encodes the value, or Sentinel when absent.
func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// PageType is decided once per run from DOM markers.
type PageType int

const (
	PageListing PageType = iota + 1
	PageDetail
)

func (p PageType) String() string {
	switch p {
	case PageListing:
		return "list"
	case PageDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ListingRecord is one product card on a listing page.
type ListingRecord struct {
	Name        Text `json:"name"`
	Description Text `json:"description"`
	SKU         Text `json:"sku"`
	Price       Text `json:"price"`
}

// ImprintLocation is a printable area. Width and Height hold the numeric
// substrings exactly as written on the page; a location is only built when
// both parsed.
type ImprintLocation struct {
	Location Text   `json:"location"`
	Width    string `json:"width"`
	Height   string `json:"height"`
}

// ImprintMethod is a print technique and the areas it can be applied to.
type ImprintMethod struct {
	Method    Text              `json:"method"`
	Locations []ImprintLocation `json:"locations"`
}

// PricingTable holds the quantity tiers and their prices in column order.
type PricingTable struct {
	Quantities []string `json:"quantities"`
	Prices     []string `json:"prices"`
}

// Tier is one (quantity, price) column pair.
type Tier struct {
	Quantity string
	Price    string
}

// Tiers pairs quantities with prices positionally. Mismatched lengths are
// truncated to the shorter sequence.
func (p PricingTable) Tiers() []Tier {
	n := len(p.Quantities)
	if len(p.Prices) < n {
		n = len(p.Prices)
	}
	tiers := make([]Tier, n)
	for i := 0; i < n; i++ {
		tiers[i] = Tier{Quantity: p.Quantities[i], Price: p.Prices[i]}
	}
	return tiers
}

// DetailRecord is everything extracted from a single detail page. Found is
// false when the page had no detail root; such a record carries no fields.
type DetailRecord struct {
	Found          bool            `json:"-"`
	SKU            Text            `json:"sku"`
	ItemSize       Text            `json:"item_size"`
	ImprintMethods []ImprintMethod `json:"imprint_methods"`
	Pricing        PricingTable    `json:"pricing"`
}

// Result is the immutable outcome of one run.
type Result struct {
	RunID    string
	URL      string
	PageType PageType
	Listings []ListingRecord
	Details  []DetailRecord
}

// Len returns the number of records held by the result.
func (r *Result) Len() int {
	if r.PageType == PageListing {
		return len(r.Listings)
	}
	return len(r.Details)
}
