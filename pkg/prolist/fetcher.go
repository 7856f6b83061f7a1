package prolist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves the raw remote pro driver list payload.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type httpFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher fetches the list via HTTP GET. The timeout is mandatory so
// a forced refresh at startup cannot block indefinitely.
func NewHTTPFetcher(url string, timeout time.Duration) Fetcher {
	return &httpFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (f *httpFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", f.url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
