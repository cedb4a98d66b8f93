package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/PromoScrape/internal/config"
)

// Structural markers of the catalog site.
const (
	listRootID     = "productListHolder"
	detailRootID   = "productDetail"
	printMethodsID = "printMethods"

	cardClass         = `col-\d+`
	linkItemClass     = `link-item`
	currencyClass     = `currency`
	skuBlockClass     = `mx-0 px-0 mt-1 mb-4`
	pricingTableClass = `pricetable`

	skuLabel         = "Item ID:"
	sizeHeading      = "Size:"
	expandTargetAttr = "data-target"
)

// Positional rules. They hold by site convention only.
const (
	// skuParagraphIndex is the link-item paragraph carrying a card's SKU;
	// the first one is the description.
	skuParagraphIndex = 1

	// locationTableIndex is the table inside a print-method panel that lists
	// locations and sizes; the ones before it are decorative.
	locationTableIndex = 2
)

// headingIDRe matches the ids of print-method panel headers.
var headingIDRe = regexp.MustCompile(`^heading\d+`)

// classMatcher reports whether a class attribute carries a structural marker.
type classMatcher func(class string) bool

// newClassMatcher compiles marker according to mode. In pattern mode the
// marker is searched for inside each class token and inside the whole
// attribute. In exact mode a token, or the whole attribute, must match the
// marker in full.
func newClassMatcher(marker, mode string) classMatcher {
	expr := marker
	if mode == config.ClassMatchExact {
		expr = `^(?:` + marker + `)$`
	}
	re := regexp.MustCompile(expr)

	return func(class string) bool {
		if class == "" {
			return false
		}
		for _, token := range strings.Fields(class) {
			if re.MatchString(token) {
				return true
			}
		}
		return re.MatchString(normalize(class))
	}
}

// matchers holds the compiled class markers for one extraction mode.
type matchers struct {
	card         classMatcher
	linkItem     classMatcher
	currency     classMatcher
	skuBlock     classMatcher
	pricingTable classMatcher
}

func newMatchers(mode string) matchers {
	return matchers{
		card:         newClassMatcher(cardClass, mode),
		linkItem:     newClassMatcher(linkItemClass, mode),
		currency:     newClassMatcher(currencyClass, mode),
		skuBlock:     newClassMatcher(skuBlockClass, mode),
		pricingTable: newClassMatcher(pricingTableClass, mode),
	}
}

// findAll returns every descendant of scope with the given tag whose class
// satisfies m, in document order.
func findAll(scope *goquery.Selection, tag string, m classMatcher) *goquery.Selection {
	return scope.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return m(class)
	})
}

// findFirst is findAll limited to the first match.
func findFirst(scope *goquery.Selection, tag string, m classMatcher) *goquery.Selection {
	return findAll(scope, tag, m).First()
}

// findByID returns the first descendant of scope with the given tag and id.
// Ids are compared literally so values that are not valid CSS identifiers
// still resolve.
func findByID(scope *goquery.Selection, tag, id string) *goquery.Selection {
	return scope.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr("id")
		return ok && v == id
	}).First()
}
