package parser

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// Parser classifies a fetched page and extracts its product records.
// Extraction never fails on missing markup: absent elements degrade to the
// sentinel or to empty collections.
type Parser struct {
	cfg    config.ExtractConfig
	match  matchers
	logger *slog.Logger
}

// New creates a Parser for the given extraction variant.
func New(cfg config.ExtractConfig, logger *slog.Logger) *Parser {
	if cfg.ClassMatch == "" {
		cfg.ClassMatch = config.ClassMatchPattern
	}
	if cfg.PriceLabelCell == "" {
		cfg.PriceLabelCell = config.PriceLabelAuto
	}
	return &Parser{
		cfg:    cfg,
		match:  newMatchers(cfg.ClassMatch),
		logger: logger.With("component", "parser"),
	}
}

// Classify decides the page type from the listing-root marker.
func (p *Parser) Classify(doc *goquery.Document) types.PageType {
	if findByID(doc.Selection, "div", listRootID).Length() > 0 {
		return types.PageListing
	}
	return types.PageDetail
}

// Parse classifies resp and runs the matching extractor. The only error is a
// document that cannot be built from the response body.
func (p *Parser) Parse(resp *types.Response) (*types.Result, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}

	result := &types.Result{
		URL:      resp.Request.URLString(),
		PageType: p.Classify(doc),
	}

	switch result.PageType {
	case types.PageListing:
		p.logger.Info("scraping a product listing page", "url", result.URL)
		result.Listings = p.ParseListing(doc)
	default:
		p.logger.Info("scraping a product detail page", "url", result.URL)
		record, _ := p.ParseDetail(doc)
		result.Details = []types.DetailRecord{record}
	}

	return result, nil
}

// fault logs a recovered extraction problem.
func (p *Parser) fault(kind types.Fault, args ...any) {
	p.logger.Debug("extraction fault", append([]any{"fault", kind.String()}, args...)...)
}
