// Package scraper pulls a representative text excerpt out of an article
// page. Everything here is best-effort: a failed fetch or an unrecognized
// page layout yields an empty excerpt, never an error.
package scraper

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"azdigest/internal/bullets"
)

const (
	// excerptMaxRunes caps the scraped excerpt length.
	excerptMaxRunes = 800
	// fallbackMaxRunes caps the RSS-summary fallback excerpt.
	fallbackMaxRunes = 600
	// fallbackMinRunes is how much sentence text we accumulate before
	// stopping.
	fallbackMinRunes = 100
)

// selectors are tried in order; the first one with usable text wins.
// Blog platforms the digest follows mostly render main content in one of
// these containers.
var selectors = []string{
	"p.wp-block-paragraph",
	"div.entry-content",
	"article",
	"div.post-content",
}

// Scraper fetches article pages with its own bounded-timeout client,
// separate from the feed client.
type Scraper struct {
	client *http.Client
}

func New(client *http.Client) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Scraper{client: client}
}

// Excerpt fetches the page at url and extracts main-content text, stripped
// of markup and capped at 800 runes. Returns "" on any failure.
func (s *Scraper) Excerpt(ctx context.Context, url string) string {
	if strings.TrimSpace(url) == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		text = strings.Join(strings.Fields(text), " ")
		return bullets.Truncate(text, excerptMaxRunes)
	}

	return ""
}

// FallbackExcerpt builds an excerpt from the RSS summary when scraping
// yielded nothing: leading sentences are accumulated until at least 100
// characters, otherwise the summary is hard-truncated.
func FallbackExcerpt(summary string) string {
	text := strings.TrimSpace(summary)
	if text == "" {
		return ""
	}

	var b strings.Builder
	for _, sentence := range bullets.SplitSentences(text) {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sentence)
		if len([]rune(b.String())) >= fallbackMinRunes {
			break
		}
	}

	if b.Len() == 0 {
		return bullets.Truncate(text, fallbackMaxRunes)
	}
	return bullets.Truncate(b.String(), fallbackMaxRunes)
}
