// Package digest assembles the HTML digest: fetch all feeds, classify
// novelty against the dedup store, enrich the displayed posts, render.
package digest

import (
	"errors"
	"time"

	"azdigest/internal/feed"
	"azdigest/internal/translate"
)

// ErrNoFeeds is returned when a request names no feed sources.
var ErrNoFeeds = errors.New("no feed sources in request")

// Request is the body of a digest build call.
type Request struct {
	FeedSources         []feed.Source `json:"feedSources"`
	RecencyWindowHours  int           `json:"recencyWindowHours"`
	MaxItems            int           `json:"maxItems"`
	LookbackDays        int           `json:"lookbackDays"`
	ScheduleDescription string        `json:"scheduleDescription"`
}

// FeedStatus records the outcome of one feed fetch for diagnostics.
type FeedStatus struct {
	SourceName    string `json:"sourceName"`
	URL           string `json:"url"`
	Ok            bool   `json:"ok"`
	Items         int    `json:"items"`
	ItemsInWindow int    `json:"itemsInWindow"`
	ElapsedMs     int64  `json:"elapsedMs"`
	Error         string `json:"error,omitempty"`
}

// Stats is the diagnostics block riding along with every digest.
type Stats struct {
	LookbackDays       int                   `json:"lookbackDays"`
	RecencyWindowHours int                   `json:"recencyWindowHours"`
	Cutoff             string                `json:"cutoff"`
	Translation        translate.Diagnostics `json:"translation"`
	Feeds              []FeedStatus          `json:"feeds"`
	TotalItems         int                   `json:"totalItems"`
	NewItems           int                   `json:"newItems"`
	DisplayedItems     int                   `json:"displayedItems"`
	ElapsedMs          int64                 `json:"elapsedMs"`
}

// Result is the full digest response.
type Result struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Stats   Stats  `json:"stats"`
}

// Post is one blog post flowing through the pipeline.
type Post struct {
	Title          string
	Link           string
	Summary        string
	Published      time.Time
	SourceName     string
	Emoji          string
	FirstParagraph string
	EnglishBullets []string
	KoreanBullets  []string
}
