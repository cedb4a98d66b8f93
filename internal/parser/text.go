package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

// nbspArtifact is the escaped no-break space some templates leak into cell text.
const nbspArtifact = "&nbsp;"

// Text returns the normalized text of the first node in sel, or an absent
// Text when sel is nil or empty. It never fails.
func Text(sel *goquery.Selection) types.Text {
	if sel == nil || sel.Length() == 0 {
		return types.None()
	}
	return types.Some(normalize(sel.First().Text()))
}

// TextOrSentinel is Text followed by the sentinel fallback.
func TextOrSentinel(sel *goquery.Selection) string {
	return Text(sel).String()
}

// normalize collapses runs of whitespace (including no-break spaces) and trims.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cellText is the text of a pricing cell with literal &nbsp; artifacts removed.
func cellText(sel *goquery.Selection) string {
	return normalize(strings.ReplaceAll(sel.Text(), nbspArtifact, ""))
}
