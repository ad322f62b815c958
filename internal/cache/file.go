package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is a cached upstream document plus the validators needed to
// revalidate it with a conditional GET.
type Entry struct {
	URL        string    `json:"url"`
	Body       []byte    `json:"body"`
	ETag       string    `json:"etag,omitempty"`
	LastMod    string    `json:"last_modified,omitempty"`
	StatusCode int       `json:"status_code"`
	StoredAt   time.Time `json:"stored_at"`
}

// FileCache stores one JSON file per URL under dir.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New creates dir if needed and returns a cache whose entries stay fresh for ttl.
func New(dir string, ttl time.Duration) (*FileCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Lookup returns the stored entry for url, if any, and whether it is still
// within the TTL. A stale entry is still returned so callers can revalidate it.
func (c *FileCache) Lookup(url string) (*Entry, bool) {
	path := c.path(url)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.URL != url {
		_ = os.Remove(path)
		return nil, false
	}

	return &entry, c.now().Sub(entry.StoredAt) <= c.ttl
}

// Store writes entry for url, stamping it with the current time.
func (c *FileCache) Store(url string, entry *Entry) error {
	entry.URL = url
	entry.StoredAt = c.now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(url), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Touch resets the freshness window of an entry that the server reported as
// not modified.
func (c *FileCache) Touch(url string, entry *Entry) error {
	return c.Store(url, entry)
}

func (c *FileCache) path(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(h[:])+".json")
}
