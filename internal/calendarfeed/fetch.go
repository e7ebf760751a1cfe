package calendarfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxFeedBytes = 4 << 20

// Fetcher retrieves calendar feed payloads over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher constructs a fetcher. A nil client gets a default with a
// conservative timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads a feed body. Any transport failure or non-200 status is
// an error; callers never see a partial payload.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("calendarfeed: empty feed url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("calendarfeed: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendarfeed: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendarfeed: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("calendarfeed: read feed body: %w", err)
	}
	return body, nil
}
