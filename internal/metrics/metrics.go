package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	DigestRuns          int64
	FeedsFetched        int64
	FeedFailures        int64
	ItemsProcessed      int64
	DuplicatesSkipped   int64
	PostsPersisted      int64
	TranslationAttempts int64
	TranslationFailures int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementDigestRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DigestRuns++
}

func (m *Metrics) AddFeedsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched += int64(n)
}

func (m *Metrics) AddFeedFailures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedFailures += int64(n)
}

func (m *Metrics) AddItemsProcessed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsProcessed += int64(n)
}

func (m *Metrics) AddDuplicatesSkipped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped += int64(n)
}

func (m *Metrics) AddPostsPersisted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsPersisted += int64(n)
}

func (m *Metrics) IncrementTranslationAttempts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationAttempts++
}

func (m *Metrics) IncrementTranslationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationFailures++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"digest_runs":             m.DigestRuns,
		"feeds_fetched":           m.FeedsFetched,
		"feed_failures":           m.FeedFailures,
		"items_processed":         m.ItemsProcessed,
		"duplicates_skipped":      m.DuplicatesSkipped,
		"posts_persisted":         m.PostsPersisted,
		"translation_attempts":    m.TranslationAttempts,
		"translation_failures":    m.TranslationFailures,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
