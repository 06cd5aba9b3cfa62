// Package fetchhttp downloads source archives over plain HTTP GET.
// Fallback ordering across candidate URLs is policy and lives in the
// acquire service; this adapter performs exactly one attempt.
package fetchhttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher implements ports.SourceFetcher.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with a per-request timeout.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads one URL and returns the raw payload.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body from %s", url)
	}
	return body, nil
}
