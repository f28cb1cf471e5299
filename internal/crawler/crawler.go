// Package crawler implements the per-site listing and detail-page crawlers.
//
// The contract is deliberately tolerant: site markup changes independently,
// so a fetch or parse failure on one site or one item must never surface as
// an error to the caller. ListItems returns an empty slice and FetchDetail
// returns nil instead.
package crawler

import (
	"context"

	"hotdeal/internal/logger"
	"hotdeal/internal/model"
)

// Crawler is implemented once per source site.
type Crawler interface {
	// ListItems fetches the category's listing page and returns every entry
	// carrying a non-empty external id, in page order. Rows without an id are
	// board notices, not products, and are skipped. Returns an empty slice on
	// any failure.
	ListItems(ctx context.Context, category string) []model.ListingItem

	// FetchDetail fetches and parses the detail page for one item.
	// Returns nil on network error, bad status, or missing expected markup.
	FetchDetail(ctx context.Context, category, externalID string) *model.ProductDetail

	// Name is the stable identifier used for logging and channel mapping.
	Name() string

	// SupportedCategories advertises the categories this crawler accepts.
	SupportedCategories() []string
}

// NewRegistry returns every known crawler keyed by name.
func NewRegistry(log logger.Interface) map[string]Crawler {
	return map[string]Crawler{
		"ppomppu":    NewPpomppu(log),
		"quasarzone": NewQuasarzone(log),
	}
}

// Supports reports whether the crawler advertises the given category.
func Supports(c Crawler, category string) bool {
	for _, sc := range c.SupportedCategories() {
		if sc == category {
			return true
		}
	}
	return false
}
