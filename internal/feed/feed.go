// Package feed downloads and parses a single RSS/Atom feed. Each fetch is
// isolated: an error here carries the feed URL so the caller can record it
// and move on to the next source.
package feed

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"azdigest/internal/retry"
)

// Source is one configured feed.
type Source struct {
	Name  string `json:"sourceName" yaml:"name"`
	URL   string `json:"url" yaml:"url"`
	Emoji string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
}

// Item is one feed entry within the age cutoff.
type Item struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
}

// FetchError wraps a feed download or parse failure with its URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads feeds with a shared HTTP client and a retry policy.
type Fetcher struct {
	client *http.Client
	retry  retry.Config
}

// Some feeds block default clients, so requests look like a browser.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// NewFetcher builds a Fetcher around client. A nil client gets a 12s
// timeout default.
func NewFetcher(client *http.Client, retryCfg retry.Config) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 12 * time.Second}
	}
	return &Fetcher{client: client, retry: retryCfg}
}

// Fetch downloads and parses one feed, returning entries published at or
// after cutoff. HTTP and parse failures come back as *FetchError after the
// retry budget is spent.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, cutoff time.Time) ([]Item, error) {
	var parsed *gofeed.Feed

	err := retry.Do(ctx, f.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9,ko;q=0.8")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		parsed, err = gofeed.NewParser().Parse(resp.Body)
		return err
	})
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}

	var items []Item
	for _, entry := range parsed.Items {
		published := entryTime(entry)
		if published.Before(cutoff) {
			continue
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "No title"
		}

		items = append(items, Item{
			Title:     title,
			Link:      strings.TrimSpace(entry.Link),
			Summary:   CleanText(entry.Description),
			Published: published,
		})
	}

	return items, nil
}

// entryTime resolves the publication timestamp. Published wins unless it
// is missing or implausible (pre-2000), then the updated timestamp, then
// the current time.
func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil && entry.PublishedParsed.Year() >= 2000 {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil && entry.UpdatedParsed.Year() >= 2000 {
		return entry.UpdatedParsed.UTC()
	}
	return time.Now().UTC()
}

// CleanText strips markup and decodes HTML entities.
func CleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
