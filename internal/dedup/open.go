package dedup

import "time"

// Open picks a store backend: Postgres when a DSN is configured, a JSON
// file when a path is configured, otherwise in-memory (dedup then only
// holds within the process lifetime).
func Open(postgresDSN, filePath string) (Store, error) {
	if postgresDSN != "" {
		return NewPostgresStore(postgresDSN)
	}
	if filePath != "" {
		return NewFileStore(filePath)
	}
	return NewMemoryStore(0 * time.Second), nil
}
