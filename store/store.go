package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Collection is the keyed record set for one resource category, persisted as
// a single JSON object in its own file. Every access goes through the
// collection's exclusive lock, so a reader sees either the state before a
// mutation or after it, never a partial write. The lock is per category:
// concurrent updates to different drivers still serialize here.
type Collection[V any] struct {
	mu   sync.Mutex
	path string
}

// Open creates the data directory if needed and returns the collection
// backed by <dir>/<name>.json.
func Open[V any](dir, name string) (*Collection[V], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Collection[V]{path: filepath.Join(dir, name+".json")}, nil
}

// Load returns a snapshot of the full collection.
func (c *Collection[V]) Load() map[string]V {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Mutate applies fn to the current collection and persists the result,
// holding the lock across the whole read-modify-write cycle. fn always sees
// the latest committed state; concurrent Mutate calls serialize, last
// commit wins.
func (c *Collection[V]) Mutate(fn func(map[string]V)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := c.read()
	fn(records)
	return c.write(records)
}

// read degrades an unreadable or corrupt file to an empty collection rather
// than failing the caller. The stored data is lost in that case; the warning
// log is the only trace.
func (c *Collection[V]) read() map[string]V {
	records := make(map[string]V)
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARNING: cannot read %s, treating as empty: %v", c.path, err)
		}
		return records
	}
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("WARNING: %s is corrupt, treating as empty: %v", c.path, err)
		return make(map[string]V)
	}
	return records
}

// write replaces the file through a temp file and rename so a crash
// mid-write cannot leave a truncated collection behind.
func (c *Collection[V]) write(records map[string]V) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", c.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", c.path, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", c.path, err)
	}
	return nil
}
