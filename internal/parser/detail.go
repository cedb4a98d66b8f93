package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// sizeHeadingXPath finds the heading that labels the item size.
const sizeHeadingXPath = `.//h5[normalize-space(.)='` + sizeHeading + `']`

// ParseDetail assembles the detail record of a product page. ok is false when
// the page has no detail root, in which case the record is empty. Each field
// is extracted independently; a missing one never aborts the others.
func (p *Parser) ParseDetail(doc *goquery.Document) (record types.DetailRecord, ok bool) {
	root := findByID(doc.Selection, "div", detailRootID)
	if root.Length() == 0 {
		p.fault(types.FaultMissingRoot, "root", detailRootID)
		return types.DetailRecord{ImprintMethods: []types.ImprintMethod{}}, false
	}

	return types.DetailRecord{
		Found:          true,
		SKU:            p.detailSKU(root),
		ItemSize:       p.itemSize(root),
		ImprintMethods: p.imprintMethods(doc.Selection),
		Pricing:        p.pricing(root),
	}, true
}

// detailSKU returns whatever follows the "Item ID:" label in the SKU block.
func (p *Parser) detailSKU(root *goquery.Selection) types.Text {
	block := findFirst(root, "p", p.match.skuBlock)
	if block.Length() == 0 {
		p.fault(types.FaultMissingField, "field", "sku")
		return types.None()
	}

	text := normalize(block.Text())
	idx := strings.LastIndex(text, skuLabel)
	if idx < 0 {
		p.fault(types.FaultMissingField, "field", "sku", "reason", "no label")
		return types.None()
	}

	sku := strings.TrimSpace(text[idx+len(skuLabel):])
	if sku == "" {
		return types.None()
	}
	return types.Some(sku)
}

// itemSize returns the first non-blank text node following the "Size:" heading.
func (p *Parser) itemSize(root *goquery.Selection) types.Text {
	heading, err := htmlquery.Query(root.Get(0), sizeHeadingXPath)
	if err != nil || heading == nil {
		p.fault(types.FaultMissingField, "field", "item_size")
		return types.None()
	}

	for n := heading.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.TextNode {
			continue
		}
		if v := normalize(n.Data); v != "" {
			return types.Some(v)
		}
	}

	p.fault(types.FaultMissingField, "field", "item_size", "reason", "no sibling text")
	return types.None()
}

// imprintMethods reads every heading<N> panel of the print-methods container,
// in document order.
func (p *Parser) imprintMethods(scope *goquery.Selection) []types.ImprintMethod {
	methods := []types.ImprintMethod{}

	section := findByID(scope, "div", printMethodsID)
	if section.Length() == 0 {
		p.fault(types.FaultMissingRoot, "root", printMethodsID)
		return methods
	}

	headings := section.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return headingIDRe.MatchString(id)
	})

	headings.Each(func(_ int, heading *goquery.Selection) {
		button := heading.Find("button").First()
		method := types.ImprintMethod{
			Method:    Text(button),
			Locations: []types.ImprintLocation{},
		}

		target, _ := button.Attr(expandTargetAttr)
		target = strings.Trim(strings.TrimSpace(target), "#")
		if target != "" {
			method.Locations = p.locations(section, target)
		}

		methods = append(methods, method)
	})

	return methods
}

// locations reads the location table of the collapsible panel panelID. Only
// rows whose size parses into both width and height are kept.
func (p *Parser) locations(section *goquery.Selection, panelID string) []types.ImprintLocation {
	locations := []types.ImprintLocation{}

	panel := findByID(section, "div", panelID)
	if panel.Length() == 0 {
		p.fault(types.FaultMissingField, "field", "panel", "id", panelID)
		return locations
	}

	tables := panel.Find("table")
	if tables.Length() <= locationTableIndex {
		p.fault(types.FaultMissingField, "field", "location_table", "tables", tables.Length())
		return locations
	}
	table := tables.Eq(locationTableIndex)

	locIdx, sizeIdx := -1, -1
	table.Find("th").Each(func(i int, th *goquery.Selection) {
		switch strings.ToLower(normalize(th.Text())) {
		case "location":
			if locIdx < 0 {
				locIdx = i
			}
		case "size":
			if sizeIdx < 0 {
				sizeIdx = i
			}
		}
	})
	if locIdx < 0 || sizeIdx < 0 {
		p.fault(types.FaultMissingField, "field", "location_headers", "panel", panelID)
		return locations
	}
	need := max(locIdx, sizeIdx)

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() <= need {
			return
		}

		sizeText := TextOrSentinel(cols.Eq(sizeIdx))
		width, height, ok := ParseSize(sizeText)
		if !ok {
			p.fault(types.FaultMalformedSize, "size", sizeText)
			return
		}

		locations = append(locations, types.ImprintLocation{
			Location: Text(cols.Eq(locIdx)),
			Width:    width,
			Height:   height,
		})
	})

	return locations
}

// pricing reads the quantity header and the first price row of the pricing
// table.
func (p *Parser) pricing(root *goquery.Selection) types.PricingTable {
	pricing := types.PricingTable{Quantities: []string{}, Prices: []string{}}

	table := findFirst(root, "table", p.match.pricingTable)
	if table.Length() == 0 {
		p.fault(types.FaultMissingField, "field", "pricing")
		return pricing
	}

	var headCells, priceCells *goquery.Selection
	if thead := table.Find("thead").First(); thead.Length() > 0 {
		headCells = thead.Find("th")
		priceCells = table.Find("tbody").First().Find("tr").First().Find("th, td")
	} else {
		p.fault(types.FaultMalformedPricing, "reason", "no thead")
		rows := table.Find("tr")
		headCells = rows.Eq(0).Find("th, td")
		priceCells = rows.Eq(1).Find("th, td")
	}

	// The first header cell is the row label.
	headCells.Each(func(i int, cell *goquery.Selection) {
		if i == 0 {
			return
		}
		pricing.Quantities = append(pricing.Quantities, cellText(cell))
	})

	var prices []string
	priceCells.Each(func(_ int, cell *goquery.Selection) {
		prices = append(prices, cellText(cell))
	})
	if p.skipPriceLabel(len(prices), len(pricing.Quantities)) {
		prices = prices[1:]
	}
	pricing.Prices = append(pricing.Prices, prices...)

	if len(pricing.Quantities) != len(pricing.Prices) {
		p.fault(types.FaultMalformedPricing,
			"quantities", len(pricing.Quantities),
			"prices", len(pricing.Prices),
		)
	}
	return pricing
}

// skipPriceLabel decides whether the first cell of the price row is a label.
func (p *Parser) skipPriceLabel(prices, quantities int) bool {
	if prices == 0 {
		return false
	}
	switch p.cfg.PriceLabelCell {
	case config.PriceLabelSkip:
		return true
	case config.PriceLabelKeep:
		return false
	default:
		return prices == quantities+1
	}
}
