package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore persists processed posts in a JSON file. It is the small-scale
// alternative to Postgres for single-node deployments.
type FileStore struct {
	filePath string
	mu       sync.RWMutex
	items    map[string]Record
}

// NewFileStore loads any existing state from filePath. A missing file
// starts empty.
func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		items:    make(map[string]Record),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dedup file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &fs.items); err != nil {
		return fmt.Errorf("failed to unmarshal dedup file: %w", err)
	}
	return nil
}

func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dedup state: %w", err)
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write dedup file: %w", err)
	}
	return nil
}

func (fs *FileStore) Get(_ context.Context, partition, row string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, ok := fs.items[partition+"|"+row]
	return ok, nil
}

func (fs *FileStore) Upsert(_ context.Context, partition, row string, rec Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.items[partition+"|"+row] = rec
	return fs.save()
}

func (fs *FileStore) Close() error { return nil }
