package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ckolb-dev/webscout/internal/page"
)

// stubFetcher is an in-memory Fetcher for engine tests.
type stubFetcher struct {
	mu          sync.Mutex
	pages       map[string]page.Snapshot
	pageErrs    map[string]error
	docs        map[string]stubDoc
	fetchCalls  []string
	getCalls    []string
	inFlight    int
	maxInFlight int
	delay       time.Duration
}

type stubDoc struct {
	status int
	body   string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages:    make(map[string]page.Snapshot),
		pageErrs: make(map[string]error),
		docs:     make(map[string]stubDoc),
	}
}

func (f *stubFetcher) Fetch(_ context.Context, url string, _ bool) (page.Snapshot, error) {
	f.mu.Lock()
	f.fetchCalls = append(f.fetchCalls, url)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err, ok := f.pageErrs[url]; ok {
		return page.Snapshot{}, err
	}
	if snap, ok := f.pages[url]; ok {
		return snap, nil
	}
	return page.Snapshot{}, fmt.Errorf("fetch %s: connection refused", url)
}

func (f *stubFetcher) Get(_ context.Context, url string) (int, []byte, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, url)
	f.mu.Unlock()

	if doc, ok := f.docs[url]; ok {
		return doc.status, []byte(doc.body), nil
	}
	return http.StatusNotFound, nil, nil
}

// stubResolver maps sitemap URLs to fixed page URL lists.
type stubResolver struct {
	trees map[string][]string
}

func (r *stubResolver) Resolve(_ context.Context, sitemapURL string) []string {
	if r == nil || r.trees == nil {
		return nil
	}
	return r.trees[sitemapURL]
}
