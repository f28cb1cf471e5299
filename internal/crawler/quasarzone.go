package crawler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hotdeal/internal/logger"
	"hotdeal/internal/model"
)

// Quasarzone crawls the quasarzone.com sale-info board. Pages are UTF-8 and
// the detail page exposes structured price/shipping cells, so less title
// parsing is needed than on ppomppu.
type Quasarzone struct {
	baseURL string
	fetch   *fetcher
	log     logger.Interface
}

func NewQuasarzone(log logger.Interface) *Quasarzone {
	return &Quasarzone{
		baseURL: "https://quasarzone.com",
		fetch:   newFetcher(),
		log:     log,
	}
}

func (c *Quasarzone) Name() string { return "quasarzone" }

func (c *Quasarzone) SupportedCategories() []string {
	return []string{"qb_saleinfo"}
}

var (
	qzViewPathRe   = regexp.MustCompile(`/views/(\d+)`)
	leadingSeller  = regexp.MustCompile(`^\[([^\]]+)\]\s*`)
	nonPriceDigits = regexp.MustCompile(`[^\d.,]`)
)

func (c *Quasarzone) ListItems(ctx context.Context, category string) []model.ListingItem {
	url := fmt.Sprintf("%s/bbs/%s", c.baseURL, category)
	doc, err := c.fetch.document(ctx, url, encodingUTF8)
	if err != nil {
		c.log.Warn("listing fetch failed", "crawler", c.Name(), "category", category, "error", err)
		return nil
	}

	var items []model.ListingItem
	doc.Find(".market-type-list tbody tr").Each(func(_ int, row *goquery.Selection) {
		href, _ := row.Find("a.subject-link").Attr("href")
		m := qzViewPathRe.FindStringSubmatch(href)
		if m == nil {
			// Pinned notices link elsewhere.
			return
		}
		title := strings.TrimSpace(row.Find(".tit-wd").Text())
		seller := ""
		if sm := leadingSeller.FindStringSubmatch(title); sm != nil {
			seller = sm[1]
		}
		items = append(items, model.ListingItem{
			ExternalID:       m[1],
			Seller:           seller,
			Category:         category,
			CategorySubtitle: strings.TrimSpace(row.Find(".category").Text()),
		})
	})
	return items
}

func (c *Quasarzone) FetchDetail(ctx context.Context, category, externalID string) *model.ProductDetail {
	url := fmt.Sprintf("%s/bbs/%s/views/%s", c.baseURL, category, externalID)
	doc, err := c.fetch.document(ctx, url, encodingUTF8)
	if err != nil {
		c.log.Warn("detail fetch failed", "crawler", c.Name(), "id", externalID, "error", err)
		return nil
	}

	label := strings.TrimSpace(doc.Find(".common-view-area .label").Text())
	title := strings.TrimSpace(doc.Find(".common-view-area .title").Text())
	if label != "" {
		title = strings.TrimSpace(strings.Replace(title, label, "", 1))
	}
	if title == "" {
		c.log.Warn("detail page missing title", "crawler", c.Name(), "id", externalID)
		return nil
	}

	seller := ""
	if m := leadingSeller.FindStringSubmatch(title); m != nil {
		seller = m[1]
		title = leadingSeller.ReplaceAllString(title, "")
	}

	thumbnail, _ := doc.Find(`meta[property="og:image"]`).Attr("content")

	infoCells := doc.Find(".market-info-view-table td")
	priceText := strings.TrimSpace(infoCells.Eq(2).Text())
	shippingText := strings.TrimSpace(infoCells.Eq(3).Text())
	productLink := strings.TrimSpace(infoCells.Eq(0).Text())

	currency := "KRW"
	if strings.Contains(priceText, "USD") || strings.Contains(priceText, "$") {
		currency = "USD"
	}

	return &model.ProductDetail{
		Title:            CleanTitle(title),
		Price:            parsePriceCell(priceText, currency),
		Currency:         currency,
		FreeShipping:     strings.Contains(shippingText, "무료"),
		Seller:           seller,
		CategorySubtitle: strings.TrimSpace(doc.Find(".ca_name").Text()),
		Thumbnail:        thumbnail,
		ProductLink:      productLink,
		SiteLink:         url,
	}
}

// parsePriceCell reads the amount out of a structured price cell and converts
// it to the currency's smallest normal unit (won, or cents for USD).
func parsePriceCell(text, currency string) int64 {
	digits := nonPriceDigits.ReplaceAllString(text, "")
	digits = strings.ReplaceAll(digits, ",", "")
	if digits == "" {
		return 0
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	if currency == "USD" {
		return int64(f*100 + 0.5)
	}
	return int64(f + 0.5)
}
