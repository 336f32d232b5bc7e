package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/util"
)

// DefaultTTL is how long a fetched chapter feed stays fresh.
const DefaultTTL = 24 * time.Hour

// FeedCache holds recently fetched chapter feeds keyed by (domain, path).
// Entries expire after the configured TTL; expired entries are never
// returned. It is safe for concurrent use.
type FeedCache struct {
	lru *expirable.LRU[string, []models.ChapterLink]
}

// New creates an unbounded cache whose entries live for ttl.
func New(ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FeedCache{lru: expirable.NewLRU[string, []models.ChapterLink](0, nil, ttl)}
}

// Key builds the cache key of a source. Paths differing only by a trailing
// slash share a key.
func Key(domain, path string) string {
	return domain + ":" + util.NormalizePath(path)
}

// Get returns the cached feed for (domain, path). The returned slice is
// shared; callers must not modify it.
func (c *FeedCache) Get(domain, path string) ([]models.ChapterLink, bool) {
	return c.lru.Get(Key(domain, path))
}

// Set stores a feed, replacing any previous entry and restarting its TTL.
func (c *FeedCache) Set(domain, path string, chapters []models.ChapterLink) {
	c.lru.Add(Key(domain, path), chapters)
}

// Len reports the number of live entries.
func (c *FeedCache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *FeedCache) Purge() {
	c.lru.Purge()
}
