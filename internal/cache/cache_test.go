package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/manga-sync/internal/cache"
	"github.com/vrsandeep/manga-sync/internal/models"
)

func feed(hrefs ...string) []models.ChapterLink {
	chapters := make([]models.ChapterLink, len(hrefs))
	for i, h := range hrefs {
		chapters[i] = models.ChapterLink{Href: h}
	}
	return chapters
}

func TestFeedCacheGetSet(t *testing.T) {
	c := cache.New(time.Hour)

	_, ok := c.Get("www.mangaread.org", "/manga/a")
	assert.False(t, ok, "empty cache should miss")

	c.Set("www.mangaread.org", "/manga/a/", feed("/manga/a/chapter-2", "/manga/a/chapter-1"))

	got, ok := c.Get("www.mangaread.org", "/manga/a")
	require.True(t, ok, "trailing slash should not change the key")
	assert.Len(t, got, 2)

	_, ok = c.Get("mangabuddy.com", "/manga/a")
	assert.False(t, ok, "domain is part of the key")

	c.Set("www.mangaread.org", "/manga/a", feed("/manga/a/chapter-3"))
	got, _ = c.Get("www.mangaread.org", "/manga/a")
	assert.Equal(t, feed("/manga/a/chapter-3"), got, "Set replaces the entry")
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestFeedCacheExpiry(t *testing.T) {
	c := cache.New(50 * time.Millisecond)
	c.Set("mangabuddy.com", "/b", feed("/b/chapter-1"))

	_, ok := c.Get("mangabuddy.com", "/b")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("mangabuddy.com", "/b")
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "entry should expire after the TTL")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "mangabuddy.com:/b", cache.Key("mangabuddy.com", "/b/"))
	assert.Equal(t, "mangabuddy.com:/", cache.Key("mangabuddy.com", "/"))
}
