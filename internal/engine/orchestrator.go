package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/metrics"
)

// batchOptions control one fetch batch. The budget bounds simultaneous
// in-flight fetches; excess URLs queue until a slot frees.
type batchOptions struct {
	budget      int
	bypassCache bool
	maxLinks    int
}

// fetchBatch executes "fetch one URL" across the batch with bounded
// concurrency. Results occupy the slot matching their input index, so output
// order equals input order regardless of completion order, and a failure on
// one URL never aborts the batch: it becomes a FetchResult whose content is
// the error text and whose links are empty.
func (e *Engine) fetchBatch(ctx context.Context, urls []string, opts batchOptions) []FetchResult {
	if len(urls) == 0 {
		return nil
	}
	budget := opts.budget
	if budget <= 0 {
		budget = 1
	}

	results := make([]FetchResult, len(urls))
	sem := make(chan struct{}, budget)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(slot int, pageURL string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("Page fetch panicked", zap.String("url", pageURL), zap.Any("panic", r))
					results[slot] = FetchResult{
						URL:     pageURL,
						Content: fmt.Sprintf("Error crawling %s: %v", pageURL, r),
						Err:     fmt.Errorf("fetch %s: %v", pageURL, r),
					}
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[slot] = e.fetchOne(ctx, pageURL, opts)
		}(i, u)
	}
	wg.Wait()

	return results
}

// fetchOne performs the full per-URL pipeline: fetch, content extraction,
// link extraction, and timing observation.
func (e *Engine) fetchOne(ctx context.Context, pageURL string, opts batchOptions) FetchResult {
	snap, err := e.fetcher.Fetch(ctx, pageURL, opts.bypassCache)
	metrics.ObserveFetch(snap.StatusCode, err, snap.Elapsed)
	if err != nil {
		e.logger.Warn("Page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return FetchResult{
			URL:     pageURL,
			Content: fmt.Sprintf("Error crawling %s: %v", pageURL, err),
			Elapsed: snap.Elapsed,
			Err:     err,
		}
	}

	links := ExtractLinks(snap.RawHTML, pageURL, e.allowed, opts.maxLinks)
	metrics.CountLinks(len(links))
	e.logger.Debug("Page fetched",
		zap.String("url", pageURL),
		zap.Int("status", snap.StatusCode),
		zap.Int("links", len(links)),
		zap.Duration("elapsed", snap.Elapsed),
	)
	return FetchResult{
		URL:     pageURL,
		Content: ExtractContent(snap),
		Links:   links,
		Elapsed: snap.Elapsed,
	}
}
