package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

// ParseListing extracts one record per product card under the listing root.
// A page without the root yields an empty slice.
func (p *Parser) ParseListing(doc *goquery.Document) []types.ListingRecord {
	root := findByID(doc.Selection, "div", listRootID)
	if root.Length() == 0 {
		p.fault(types.FaultMissingRoot, "root", listRootID)
		return []types.ListingRecord{}
	}

	cards := findAll(root, "div", p.match.card)
	records := make([]types.ListingRecord, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		records = append(records, p.parseCard(card))
	})

	p.logger.Debug("listing parsed", "cards", len(records))
	return records
}

func (p *Parser) parseCard(card *goquery.Selection) types.ListingRecord {
	return types.ListingRecord{
		Name:        Text(findFirst(card, "a", p.match.linkItem)),
		Description: Text(findFirst(card, "p", p.match.linkItem)),
		SKU:         p.cardSKU(card),
		Price:       Text(findFirst(card, "strong", p.match.currency)),
	}
}

// cardSKU reads the SKU paragraph of a card. Cards with fewer link-item
// paragraphs have no SKU.
func (p *Parser) cardSKU(card *goquery.Selection) types.Text {
	paragraphs := findAll(card, "p", p.match.linkItem)
	if paragraphs.Length() <= skuParagraphIndex {
		p.fault(types.FaultMissingField, "field", "sku", "paragraphs", paragraphs.Length())
		return types.None()
	}
	return Text(paragraphs.Eq(skuParagraphIndex))
}
