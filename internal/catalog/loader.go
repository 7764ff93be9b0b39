package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Loader loads catalog blobs from several sources concurrently.
// Sources may be plain JSON or gzip compressed JSON.
type Loader struct {
	client     *http.Client
	maxRetries uint64
	retryWait  time.Duration

	mu      sync.RWMutex
	sources []sourceStats
}

type sourceStats struct {
	source  string
	records int
}

// sourceResult holds the result of loading a single source
type sourceResult struct {
	index   int
	catalog Catalog
	err     error
}

type openFunc func(ctx context.Context, source string) (io.ReadCloser, error)

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		retryWait:  500 * time.Millisecond,
	}
}

// LoadFromFiles loads and merges catalog blobs from local files.
// Later files win when names collide.
func (l *Loader) LoadFromFiles(ctx context.Context, paths []string) (Catalog, error) {
	return l.load(ctx, paths, func(_ context.Context, path string) (io.ReadCloser, error) {
		return os.Open(path)
	})
}

// LoadFromURLs downloads and merges catalog blobs. Failed downloads are retried
// with exponential backoff; client errors (4xx) are not retried.
func (l *Loader) LoadFromURLs(ctx context.Context, urls []string) (Catalog, error) {
	return l.load(ctx, urls, l.fetch)
}

func (l *Loader) load(ctx context.Context, sources []string, open openFunc) (Catalog, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no catalog sources provided")
	}

	resultChan := make(chan sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()

			c, err := l.loadOne(ctx, source, open)
			resultChan <- sourceResult{index: index, catalog: c, err: err}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining source order
	results := make([]sourceResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load catalog %s: %w", sources[i], result.err)
		}
	}

	merged := make(Catalog)
	stats := make([]sourceStats, len(results))
	for i, result := range results {
		merged.Merge(result.catalog)
		stats[i] = sourceStats{source: sources[i], records: len(result.catalog)}
	}

	l.mu.Lock()
	l.sources = append(l.sources, stats...)
	l.mu.Unlock()

	return merged, nil
}

func (l *Loader) loadOne(ctx context.Context, source string, open openFunc) (Catalog, error) {
	rc, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, err := maybeGunzip(rc)
	if err != nil {
		return nil, err
	}
	return Decode(r)
}

// fetch downloads url, retrying transient failures
func (l *Loader) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.retryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, l.maxRetries), ctx)

	var body io.ReadCloser
	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := l.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to download catalog: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		body = resp.Body
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// maybeGunzip wraps r in a gzip reader when it starts with the gzip magic bytes
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, nil
	}
	return br, nil
}

// Stats returns statistics about loaded sources
func (l *Loader) Stats() map[string]interface{} {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sources := make([]string, len(l.sources))
	records := make([]int, len(l.sources))
	total := 0
	for i, s := range l.sources {
		sources[i] = s.source
		records[i] = s.records
		total += s.records
	}

	return map[string]interface{}{
		"total_sources":  len(l.sources),
		"sources":        sources,
		"source_records": records,
		"total_records":  total,
	}
}
