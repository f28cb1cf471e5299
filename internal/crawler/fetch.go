package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type pageEncoding int

const (
	encodingUTF8 pageEncoding = iota
	encodingEUCKR
)

// fetcher is the shared page fetcher. Each crawler owns one so rate limits
// apply per site, not globally.
type fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newFetcher() *fetcher {
	return &fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		// One request per second with a small burst keeps us polite on boards
		// that throttle aggressive clients.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

const fetchAttempts = 3

// document fetches url and parses it into a goquery document, decoding the
// body from EUC-KR first when the site requires it. Network errors and 5xx
// responses are retried with a short backoff; 4xx responses are not.
func (f *fetcher) document(ctx context.Context, url string, enc pageEncoding) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		doc, retryable, err := f.fetchOnce(ctx, url, enc)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (f *fetcher) fetchOnce(ctx context.Context, url string, enc pageEncoding) (*goquery.Document, bool, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError
		return nil, retryable, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if enc == encodingEUCKR {
		body = transform.NewReader(resp.Body, korean.EUCKR.NewDecoder())
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, false, nil
}
