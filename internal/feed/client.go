package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nexusai/newshub/internal/retry"
)

// Client downloads and parses feeds. A single Client is shared across
// source goroutines during a refresh cycle.
type Client struct {
	parser  *gofeed.Parser
	timeout time.Duration
	retry   retry.Config
}

// NewClient returns a Client whose fetches are bounded by timeout and
// retried per retryCfg.
func NewClient(timeout time.Duration, retryCfg retry.Config) *Client {
	parser := gofeed.NewParser()
	// Set the HTTP client up front: the parser lazily installs one on
	// first use, which races when source goroutines share the Client.
	// Timeouts come from the per-attempt fetch context.
	parser.Client = &http.Client{}
	return &Client{
		parser:  parser,
		timeout: timeout,
		retry:   retryCfg,
	}
}

// Fetch downloads one feed and converts its items to entries in feed
// order. The caller owns failure handling; a fetch error contributes no
// entries but must not abort other sources.
func (c *Client) Fetch(ctx context.Context, url string) ([]Entry, error) {
	var parsed *gofeed.Feed

	err := retry.Do(ctx, c.retry, func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		feed, err := c.parser.ParseURLWithContext(url, fetchCtx)
		if err != nil {
			return err
		}
		parsed = feed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, entryFromItem(item))
	}
	return entries, nil
}
