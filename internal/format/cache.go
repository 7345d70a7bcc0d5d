package format

import (
	"sync"
	"time"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/media"
)

// Cache keeps recent normalization results per source URL so repeat info
// queries skip re-extraction. It is an accelerator only: entries expire
// after a TTL and a miss simply means the caller extracts fresh.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	info     media.VideoInfo
	set      CandidateSet
	storedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Put stores the extraction and normalization result for one source,
// replacing any previous entry for the same key.
func (c *Cache) Put(key string, info media.VideoInfo, set CandidateSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{info: info, set: set, storedAt: time.Now()}
}

// Get returns the cached result for key, evicting it first if expired.
func (c *Cache) Get(key string) (media.VideoInfo, CandidateSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return media.VideoInfo{}, CandidateSet{}, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return media.VideoInfo{}, CandidateSet{}, false
	}
	return entry.info, entry.set, true
}
