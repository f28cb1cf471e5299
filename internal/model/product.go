package model

// CrawlTarget pairs a crawler identifier with one of its board categories.
// Targets are loaded once per run and processed in declared order.
type CrawlTarget struct {
	Crawler  string
	Category string
}

// ListingItem is a provisional sighting of a product on a listing page.
// Only the fields a listing row exposes are filled; everything else comes
// from the detail page.
type ListingItem struct {
	ExternalID       string
	Seller           string
	Category         string
	CategorySubtitle string
}

// ProductDetail is the enrichment parsed from a product's detail page.
// Seller and CategorySubtitle are optional overrides: some boards expose
// better values on the detail page than on the listing row.
type ProductDetail struct {
	Title            string
	Price            int64
	Currency         string
	FreeShipping     bool
	Seller           string
	CategorySubtitle string
	Thumbnail        string
	ProductLink      string
	SiteLink         string
}

// ProductRecord is the persisted entity. At most one record per
// (ChannelID, ExternalID) pair ever exists.
type ProductRecord struct {
	ChannelID     int
	ExternalID    string
	CategoryTitle string
	Seller        string
	Title         string
	Price         int64
	Currency      string
	FreeShipping  bool
	Thumbnail     string
	ProductLink   string
	SiteLink      string
}

// Merge combines a listing item and its detail into a draft record.
// Detail fields win on overlap; empty detail fields fall back to the listing.
func Merge(channelID int, item ListingItem, detail ProductDetail) ProductRecord {
	rec := ProductRecord{
		ChannelID:     channelID,
		ExternalID:    item.ExternalID,
		CategoryTitle: item.CategorySubtitle,
		Seller:        item.Seller,
		Title:         detail.Title,
		Price:         detail.Price,
		Currency:      detail.Currency,
		FreeShipping:  detail.FreeShipping,
		Thumbnail:     detail.Thumbnail,
		ProductLink:   detail.ProductLink,
		SiteLink:      detail.SiteLink,
	}
	if detail.Seller != "" {
		rec.Seller = detail.Seller
	}
	if detail.CategorySubtitle != "" {
		rec.CategoryTitle = detail.CategorySubtitle
	}
	if rec.Currency == "" {
		rec.Currency = "KRW"
	}
	return rec
}
