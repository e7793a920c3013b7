package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestScraper() *Scraper {
	return New(&http.Client{Timeout: 2 * time.Second})
}

func TestExcerptPrefersContentParagraph(t *testing.T) {
	srv := serve(t, `<html><body>
<article>article level text that should lose</article>
<p class="wp-block-paragraph">The real opening paragraph of the post.</p>
</body></html>`, http.StatusOK)

	got := newTestScraper().Excerpt(context.Background(), srv.URL)
	assert.Equal(t, "The real opening paragraph of the post.", got)
}

func TestExcerptFallsBackToArticleElement(t *testing.T) {
	srv := serve(t, `<html><body><article>
<h1>Title</h1><p>Body text inside the article element.</p>
</article></body></html>`, http.StatusOK)

	got := newTestScraper().Excerpt(context.Background(), srv.URL)
	assert.Equal(t, "Title Body text inside the article element.", got)
}

func TestExcerptCapsLength(t *testing.T) {
	long := strings.Repeat("x", 1200)
	srv := serve(t, `<html><body><article>`+long+`</article></body></html>`, http.StatusOK)

	got := newTestScraper().Excerpt(context.Background(), srv.URL)
	assert.Len(t, []rune(got), 803) // 800 + "..."
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExcerptSwallowsHTTPErrors(t *testing.T) {
	srv := serve(t, "nope", http.StatusNotFound)
	assert.Equal(t, "", newTestScraper().Excerpt(context.Background(), srv.URL))
}

func TestExcerptSwallowsDeadServer(t *testing.T) {
	srv := serve(t, "", http.StatusOK)
	url := srv.URL
	srv.Close()
	assert.Equal(t, "", newTestScraper().Excerpt(context.Background(), url))
}

func TestExcerptEmptyURL(t *testing.T) {
	assert.Equal(t, "", newTestScraper().Excerpt(context.Background(), "  "))
}

func TestExcerptNoMatchingRegion(t *testing.T) {
	srv := serve(t, `<html><body><div class="sidebar">nav only</div></body></html>`, http.StatusOK)
	assert.Equal(t, "", newTestScraper().Excerpt(context.Background(), srv.URL))
}

func TestFallbackExcerptAccumulatesSentences(t *testing.T) {
	in := "First sentence is about forty characters ok. Second sentence pushes the total " +
		"well past one hundred characters in length. Third sentence must not appear."
	got := FallbackExcerpt(in)
	assert.Contains(t, got, "First sentence")
	assert.Contains(t, got, "Second sentence")
	assert.NotContains(t, got, "Third sentence")
}

func TestFallbackExcerptShortInputKeptWhole(t *testing.T) {
	assert.Equal(t, "Just one short line.", FallbackExcerpt("Just one short line."))
}

func TestFallbackExcerptHardTruncation(t *testing.T) {
	long := strings.Repeat("y", 900)
	got := FallbackExcerpt(long)
	assert.Len(t, []rune(got), 603) // 600 + "..."
}

func TestFallbackExcerptEmpty(t *testing.T) {
	assert.Equal(t, "", FallbackExcerpt("   "))
}
