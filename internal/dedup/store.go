package dedup

import (
	"context"
	"sync"
	"time"
)

// Record is what gets persisted for a processed post.
type Record struct {
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	SourceName     string    `json:"sourceName"`
	Summary        string    `json:"summary"`
	EnglishBullets []string  `json:"englishBullets"`
	KoreanBullets  []string  `json:"koreanBullets"`
	PublishedAt    string    `json:"publishedAt"`
	ProcessedAt    time.Time `json:"processedAt"`
}

// Store is the persistent key-value service consumed by the digest
// pipeline. Get reports prior existence; Upsert is insert-or-replace and
// must be idempotent per key.
type Store interface {
	Get(ctx context.Context, partition, row string) (bool, error)
	Upsert(ctx context.Context, partition, row string, rec Record) error
	Close() error
}

// MemoryStore keeps records in memory with an optional TTL. It backs runs
// without a configured persistent store and the tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
}

type memoryItem struct {
	rec       Record
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store. ttl == 0 means records never
// expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		ttl:   ttl,
	}
}

func (m *MemoryStore) Get(_ context.Context, partition, row string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[partition+"|"+row]
	if !ok {
		return false, nil
	}
	if m.ttl > 0 && time.Now().After(item.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Upsert(_ context.Context, partition, row string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[partition+"|"+row] = memoryItem{
		rec:       rec,
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Len reports how many records are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
