// Package pipeline orchestrates one ingestion run: for each configured crawl
// target, enumerate listing items, dedupe against storage, enrich with
// detail-page data, re-host the thumbnail, and persist the merged record.
//
// Failures are item-scoped by design: a bad detail page, a failed image
// relocation, or a failed insert drops that one item and nothing else.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"hotdeal/internal/crawler"
	"hotdeal/internal/logger"
	"hotdeal/internal/model"
	"hotdeal/internal/observability"
	"hotdeal/internal/repository"
)

// ProductStore is the persistence surface the pipeline needs.
type ProductStore interface {
	Exists(ctx context.Context, channelID int, externalID string) (bool, error)
	Insert(ctx context.Context, rec model.ProductRecord) error
}

// ImageRelocator re-hosts a thumbnail and returns its new URL, or "" when the
// caller should keep the original.
type ImageRelocator interface {
	Relocate(ctx context.Context, sourceURL, folder string) string
}

// SeenCache is an optional fast path in front of the store's existence check.
type SeenCache interface {
	Seen(ctx context.Context, channelID int, externalID string) bool
	Mark(ctx context.Context, channelID int, externalID string)
}

// DefaultChannels maps crawler names to their storage channel ids.
var DefaultChannels = map[string]int{
	"ppomppu":    1,
	"quasarzone": 2,
}

type Pipeline struct {
	Crawlers    map[string]crawler.Crawler
	Store       ProductStore
	Images      ImageRelocator // nil disables relocation
	Seen        SeenCache      // nil disables the cache
	Channels    map[string]int
	Workers     int
	ImageFolder string
	Log         logger.Interface
}

// TargetResult counts one target's outcome.
type TargetResult struct {
	Target    model.CrawlTarget
	Processed int64
	Saved     int64
}

// Result aggregates a whole run.
type Result struct {
	Targets   []TargetResult
	Processed int64
	Saved     int64
}

// Run processes the targets in declared order. Target- and item-scoped
// failures are logged and absorbed; Run itself does not fail.
func (p *Pipeline) Run(ctx context.Context, targets []model.CrawlTarget) Result {
	var res Result
	for _, target := range targets {
		tr := p.runTarget(ctx, target)
		res.Targets = append(res.Targets, tr)
		res.Processed += tr.Processed
		res.Saved += tr.Saved
		p.Log.Info("target done",
			"crawler", target.Crawler,
			"category", target.Category,
			"processed", tr.Processed,
			"saved", tr.Saved)
	}
	return res
}

func (p *Pipeline) runTarget(ctx context.Context, target model.CrawlTarget) TargetResult {
	tr := TargetResult{Target: target}

	cr, ok := p.Crawlers[target.Crawler]
	if !ok {
		p.Log.Error("unknown crawler", "crawler", target.Crawler)
		return tr
	}
	if !crawler.Supports(cr, target.Category) {
		p.Log.Error("category not supported by crawler",
			"crawler", target.Crawler, "category", target.Category)
		return tr
	}
	channelID, ok := p.Channels[target.Crawler]
	if !ok {
		p.Log.Error("no channel id mapped for crawler", "crawler", target.Crawler)
		return tr
	}

	items := cr.ListItems(ctx, target.Category)
	if len(items) == 0 {
		p.Log.Info("no items listed", "crawler", target.Crawler, "category", target.Category)
		return tr
	}
	p.Log.Info("items listed", "crawler", target.Crawler, "category", target.Category, "count", len(items))

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	var processed, saved atomic.Int64
	jobs := make(chan model.ListingItem)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				processed.Add(1)
				if p.processItem(ctx, cr, channelID, item) {
					saved.Add(1)
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case jobs <- item:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	tr.Processed = processed.Load()
	tr.Saved = saved.Load()
	return tr
}

// processItem runs the per-item stages in fixed order:
// dedupe -> detail -> image -> persist. Returns true when a new record was saved.
func (p *Pipeline) processItem(ctx context.Context, cr crawler.Crawler, channelID int, item model.ListingItem) bool {
	name := cr.Name()
	observability.ItemsProcessed.WithLabelValues(name).Inc()

	if p.Seen != nil && p.Seen.Seen(ctx, channelID, item.ExternalID) {
		observability.ItemsSkipped.WithLabelValues(name).Inc()
		return false
	}

	exists, err := p.Store.Exists(ctx, channelID, item.ExternalID)
	if err != nil {
		p.Log.Error("existence check failed", "crawler", name, "id", item.ExternalID, "error", err)
		observability.ItemsFailed.WithLabelValues(name).Inc()
		return false
	}
	if exists {
		observability.ItemsSkipped.WithLabelValues(name).Inc()
		if p.Seen != nil {
			p.Seen.Mark(ctx, channelID, item.ExternalID)
		}
		return false
	}

	detail := cr.FetchDetail(ctx, item.Category, item.ExternalID)
	if detail == nil {
		p.Log.Warn("detail fetch failed, skipping item", "crawler", name, "id", item.ExternalID)
		observability.ItemsFailed.WithLabelValues(name).Inc()
		return false
	}

	rec := model.Merge(channelID, item, *detail)

	if rec.Thumbnail != "" && p.Images != nil {
		if hosted := p.Images.Relocate(ctx, rec.Thumbnail, p.ImageFolder); hosted != "" {
			rec.Thumbnail = hosted
		}
		// On relocation failure the original thumbnail URL is kept.
	}

	if err := p.Store.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Another worker won the race; same outcome as the existence check.
			observability.ItemsSkipped.WithLabelValues(name).Inc()
			if p.Seen != nil {
				p.Seen.Mark(ctx, channelID, item.ExternalID)
			}
			return false
		}
		p.Log.Error("insert failed", "crawler", name, "id", item.ExternalID, "error", err)
		observability.ItemsFailed.WithLabelValues(name).Inc()
		return false
	}

	if p.Seen != nil {
		p.Seen.Mark(ctx, channelID, item.ExternalID)
	}
	observability.ItemsSaved.WithLabelValues(name).Inc()
	p.Log.Success("product saved", "crawler", name, "id", item.ExternalID, "title", rec.Title)
	return true
}
