package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotdeal/internal/crawler"
	"hotdeal/internal/logger"
	"hotdeal/internal/model"
	"hotdeal/internal/repository"
)

type fakeCrawler struct {
	name        string
	items       []model.ListingItem
	details     map[string]*model.ProductDetail
	detailCalls atomic.Int64
}

func (f *fakeCrawler) ListItems(ctx context.Context, category string) []model.ListingItem {
	return f.items
}

func (f *fakeCrawler) FetchDetail(ctx context.Context, category, externalID string) *model.ProductDetail {
	f.detailCalls.Add(1)
	return f.details[externalID]
}

func (f *fakeCrawler) Name() string                  { return f.name }
func (f *fakeCrawler) SupportedCategories() []string { return []string{"deals"} }

type memStore struct {
	mu        sync.Mutex
	rows      map[string]model.ProductRecord
	insertErr map[string]error
	existsErr error
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]model.ProductRecord{}, insertErr: map[string]error{}}
}

func storeKey(channelID int, externalID string) string {
	return fmt.Sprintf("%d/%s", channelID, externalID)
}

func (s *memStore) Exists(ctx context.Context, channelID int, externalID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.rows[storeKey(channelID, externalID)]
	return ok, nil
}

func (s *memStore) Insert(ctx context.Context, rec model.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertErr[rec.ExternalID]; err != nil {
		return err
	}
	k := storeKey(rec.ChannelID, rec.ExternalID)
	if _, ok := s.rows[k]; ok {
		return repository.ErrDuplicate
	}
	s.rows[k] = rec
	return nil
}

type fakeRelocator struct {
	hosted string // "" simulates relocation failure
}

func (f *fakeRelocator) Relocate(ctx context.Context, sourceURL, folder string) string {
	return f.hosted
}

func listing(n int) []model.ListingItem {
	items := make([]model.ListingItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, model.ListingItem{
			ExternalID: fmt.Sprintf("%d", i),
			Category:   "deals",
			Seller:     "셀러",
		})
	}
	return items
}

func details(items []model.ListingItem) map[string]*model.ProductDetail {
	m := make(map[string]*model.ProductDetail, len(items))
	for _, item := range items {
		m[item.ExternalID] = &model.ProductDetail{
			Title:     "item " + item.ExternalID,
			Price:     1000,
			Thumbnail: "//img.example.com/" + item.ExternalID + ".jpg",
			SiteLink:  "https://board.example.com/" + item.ExternalID,
		}
	}
	return m
}

func newTestPipeline(cr crawler.Crawler, store ProductStore, workers int) *Pipeline {
	return &Pipeline{
		Crawlers:    map[string]crawler.Crawler{cr.(*fakeCrawler).name: cr},
		Store:       store,
		Channels:    map[string]int{cr.(*fakeCrawler).name: 1},
		Workers:     workers,
		ImageFolder: "hotdeal",
		Log:         logger.NewNop(),
	}
}

func targets(name string) []model.CrawlTarget {
	return []model.CrawlTarget{{Crawler: name, Category: "deals"}}
}

func TestRunSavesNewItems(t *testing.T) {
	items := listing(3)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()

	res := newTestPipeline(cr, store, 2).Run(context.Background(), targets("fake"))

	assert.Equal(t, int64(3), res.Processed)
	assert.Equal(t, int64(3), res.Saved)
	assert.Len(t, store.rows, 3)

	rec := store.rows[storeKey(1, "2")]
	assert.Equal(t, "item 2", rec.Title)
	assert.Equal(t, 1, rec.ChannelID)
	assert.Equal(t, "KRW", rec.Currency)
}

func TestPartialFailureIsolation(t *testing.T) {
	items := listing(5)
	d := details(items)
	delete(d, "2") // item 2's detail page is broken
	cr := &fakeCrawler{name: "fake", items: items, details: d}
	store := newMemStore()

	res := newTestPipeline(cr, store, 3).Run(context.Background(), targets("fake"))

	assert.Equal(t, int64(5), res.Processed)
	assert.Equal(t, int64(4), res.Saved)
	_, saved := store.rows[storeKey(1, "2")]
	assert.False(t, saved)
}

func TestDedupeGuardSkipsDetailFetch(t *testing.T) {
	items := listing(1)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()
	store.rows[storeKey(1, "1")] = model.ProductRecord{ChannelID: 1, ExternalID: "1"}

	res := newTestPipeline(cr, store, 1).Run(context.Background(), targets("fake"))

	assert.Equal(t, int64(1), res.Processed)
	assert.Equal(t, int64(0), res.Saved)
	assert.Equal(t, int64(0), cr.detailCalls.Load(), "existing item must not trigger a detail fetch")
}

func TestIdempotentRerun(t *testing.T) {
	items := listing(4)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()
	p := newTestPipeline(cr, store, 2)

	first := p.Run(context.Background(), targets("fake"))
	require.Equal(t, int64(4), first.Saved)

	second := p.Run(context.Background(), targets("fake"))
	assert.Equal(t, int64(4), second.Processed)
	assert.Equal(t, int64(0), second.Saved)
	assert.Len(t, store.rows, 4)
}

func TestInsertRaceTreatedAsSkip(t *testing.T) {
	items := listing(2)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()
	store.insertErr["1"] = repository.ErrDuplicate

	res := newTestPipeline(cr, store, 1).Run(context.Background(), targets("fake"))

	assert.Equal(t, int64(2), res.Processed)
	assert.Equal(t, int64(1), res.Saved)
}

func TestInsertErrorSkipsItemOnly(t *testing.T) {
	items := listing(3)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()
	store.insertErr["2"] = errors.New("connection reset")

	res := newTestPipeline(cr, store, 1).Run(context.Background(), targets("fake"))

	assert.Equal(t, int64(3), res.Processed)
	assert.Equal(t, int64(2), res.Saved)
}

func TestThumbnailRelocated(t *testing.T) {
	items := listing(1)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()
	p := newTestPipeline(cr, store, 1)
	p.Images = &fakeRelocator{hosted: "https://bucket.example.com/hotdeal/2025-09/x.jpg"}

	p.Run(context.Background(), targets("fake"))

	rec := store.rows[storeKey(1, "1")]
	assert.Equal(t, "https://bucket.example.com/hotdeal/2025-09/x.jpg", rec.Thumbnail)
}

func TestThumbnailFallbackOnRelocationFailure(t *testing.T) {
	items := listing(1)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()
	p := newTestPipeline(cr, store, 1)
	p.Images = &fakeRelocator{hosted: ""}

	p.Run(context.Background(), targets("fake"))

	rec := store.rows[storeKey(1, "1")]
	assert.Equal(t, "//img.example.com/1.jpg", rec.Thumbnail, "failed relocation keeps the source URL")
}

func TestNoThumbnailStaysEmpty(t *testing.T) {
	items := listing(1)
	d := details(items)
	d["1"].Thumbnail = ""
	cr := &fakeCrawler{name: "fake", items: items, details: d}
	store := newMemStore()
	p := newTestPipeline(cr, store, 1)
	p.Images = &fakeRelocator{hosted: "https://bucket.example.com/never.jpg"}

	p.Run(context.Background(), targets("fake"))

	assert.Empty(t, store.rows[storeKey(1, "1")].Thumbnail)
}

func TestEmptyListingIsNotAnError(t *testing.T) {
	cr := &fakeCrawler{name: "fake"}
	store := newMemStore()

	res := newTestPipeline(cr, store, 2).Run(context.Background(), targets("fake"))

	require.Len(t, res.Targets, 1)
	assert.Equal(t, int64(0), res.Processed)
	assert.Equal(t, int64(0), res.Saved)
}

func TestUnknownCrawlerSkipsTarget(t *testing.T) {
	cr := &fakeCrawler{name: "fake", items: listing(1), details: details(listing(1))}
	store := newMemStore()

	res := newTestPipeline(cr, store, 1).Run(context.Background(), targets("nosuch"))

	assert.Equal(t, int64(0), res.Processed)
	assert.Empty(t, store.rows)
}

func TestUnsupportedCategorySkipsTarget(t *testing.T) {
	cr := &fakeCrawler{name: "fake", items: listing(1), details: details(listing(1))}
	store := newMemStore()

	res := newTestPipeline(cr, store, 1).Run(context.Background(),
		[]model.CrawlTarget{{Crawler: "fake", Category: "other-board"}})

	assert.Equal(t, int64(0), res.Processed)
	assert.Equal(t, int64(0), cr.detailCalls.Load())
}

func TestExistsErrorSkipsItem(t *testing.T) {
	items := listing(1)
	cr := &fakeCrawler{name: "fake", items: items, details: details(items)}
	store := newMemStore()
	store.existsErr = errors.New("timeout")

	res := newTestPipeline(cr, store, 1).Run(context.Background(), targets("fake"))

	assert.Equal(t, int64(1), res.Processed)
	assert.Equal(t, int64(0), res.Saved)
	assert.Equal(t, int64(0), cr.detailCalls.Load())
}
