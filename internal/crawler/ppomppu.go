package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hotdeal/internal/logger"
	"hotdeal/internal/model"
)

// Ppomppu crawls the ppomppu.co.kr deal boards. Pages are served as EUC-KR.
type Ppomppu struct {
	baseURL string
	fetch   *fetcher
	log     logger.Interface
}

func NewPpomppu(log logger.Interface) *Ppomppu {
	return &Ppomppu{
		baseURL: "https://www.ppomppu.co.kr",
		fetch:   newFetcher(),
		log:     log,
	}
}

func (c *Ppomppu) Name() string { return "ppomppu" }

func (c *Ppomppu) SupportedCategories() []string {
	return []string{"ppomppu", "freeboard"}
}

func (c *Ppomppu) ListItems(ctx context.Context, category string) []model.ListingItem {
	url := fmt.Sprintf("%s/zboard/zboard.php?id=%s", c.baseURL, category)
	doc, err := c.fetch.document(ctx, url, encodingEUCKR)
	if err != nil {
		c.log.Warn("listing fetch failed", "crawler", c.Name(), "category", category, "error", err)
		return nil
	}

	var items []model.ListingItem
	doc.Find("#revolution_main_table .baseList").Each(func(_ int, row *goquery.Selection) {
		id := strings.TrimSpace(row.Find(".baseList-numb").Text())
		if id == "" {
			// Notice rows carry no board number.
			return
		}
		items = append(items, model.ListingItem{
			ExternalID:       id,
			Seller:           StripBrackets(row.Find(".subject_preface").Text()),
			Category:         category,
			CategorySubtitle: StripBrackets(row.Find(".baseList-small").Text()),
		})
	})
	return items
}

func (c *Ppomppu) FetchDetail(ctx context.Context, category, externalID string) *model.ProductDetail {
	url := fmt.Sprintf("%s/zboard/view.php?id=%s&no=%s", c.baseURL, category, externalID)
	doc, err := c.fetch.document(ctx, url, encodingEUCKR)
	if err != nil {
		c.log.Warn("detail fetch failed", "crawler", c.Name(), "id", externalID, "error", err)
		return nil
	}

	// The h1 repeats the category label; strip it before price extraction.
	label := strings.TrimSpace(doc.Find("#topTitle .subject_preface").Text())
	title := strings.TrimSpace(doc.Find("#topTitle h1").Text())
	if label != "" {
		title = strings.TrimSpace(strings.Replace(title, label, "", 1))
	}
	if title == "" {
		c.log.Warn("detail page missing title", "crawler", c.Name(), "id", externalID)
		return nil
	}

	productLink, ok := doc.Find(".topTitle-link a").Attr("href")
	if !ok || productLink == "" {
		productLink = strings.TrimSpace(doc.Find(".topTitle-link a").Text())
	}

	thumbnail, _ := doc.Find(".board-contents img").First().Attr("src")

	return &model.ProductDetail{
		Title:        CleanTitle(title),
		Price:        ExtractPrice(title),
		Currency:     "KRW",
		FreeShipping: FreeShipping(title),
		Thumbnail:    thumbnail,
		ProductLink:  productLink,
		SiteLink:     url,
	}
}
