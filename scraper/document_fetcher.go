// backend/scraper/document_fetcher.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// DefaultUserAgent identifies requests as a regular desktop browser; the BCN
// site serves a different page to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DocumentFetcher retrieves remote documents for the scraper.
type DocumentFetcher interface {
	// FetchDocument downloads url and returns its body. Any non-200 status is an error.
	FetchDocument(ctx context.Context, url string) ([]byte, error)
	// Probe issues a lightweight GET bounded by timeout and returns the status code.
	Probe(ctx context.Context, url string, timeout time.Duration) (int, error)
}

// HTTPFetcher is the net/http implementation of DocumentFetcher.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher whose requests are abandoned after timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// FetchDocument implements DocumentFetcher.
func (f *HTTPFetcher) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	log.Printf("Scraper: Fetching document from %s\n", url)

	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: received status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}

	log.Printf("Scraper: Fetched %d bytes from %s\n", len(body), url)
	return body, nil
}

// Probe implements DocumentFetcher.
func (f *HTTPFetcher) Probe(ctx context.Context, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := f.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	return f.client.Do(req)
}
