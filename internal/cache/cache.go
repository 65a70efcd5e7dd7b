package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheExpired = errors.New("cache expired")
)

type LyricEntry struct {
	TrackName    string
	ArtistName   string
	AlbumName    string
	Duration     float64
	Instrumental bool
	PlainLyrics  string
	SyncedLyrics string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// in-memory only, nothing is written to disk
type Memory struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]*LyricEntry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*LyricEntry),
	}
}

func generateKey(artist, title string) string {
	normalized := strings.ToLower(strings.TrimSpace(artist)) + "|" + strings.ToLower(strings.TrimSpace(title))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:12])
}

func (c *Memory) Get(artist, title string) (*LyricEntry, error) {
	if artist == "" || title == "" {
		return nil, ErrCacheMiss
	}

	key := generateKey(artist, title)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, ErrCacheMiss
	}

	if !entry.ExpiresAt.After(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, ErrCacheExpired
	}

	// callers get a copy so they cannot mutate the stored entry
	copied := *entry
	return &copied, nil
}

func (c *Memory) Set(artist, title string, entry *LyricEntry) error {
	if artist == "" || title == "" || entry == nil {
		return errors.New("invalid cache entry")
	}

	stored := *entry
	now := c.now()
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(c.ttl)

	c.mu.Lock()
	c.entries[generateKey(artist, title)] = &stored
	c.mu.Unlock()

	return nil
}

func (c *Memory) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*LyricEntry)
	c.mu.Unlock()
}

// Prune drops expired entries and reports how many were removed.
func (c *Memory) Prune() int {
	now := c.now()
	pruned := 0

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if !entry.ExpiresAt.After(now) {
			delete(c.entries, key)
			pruned++
		}
	}

	return pruned
}

func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
