// Package cache is a small JSON read-through cache on top of freecache.
package cache

import (
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

type Cache struct {
	store *freecache.Cache
	ttl   time.Duration
}

// New creates a cache of sizeMB megabytes whose entries live for ttl.
func New(sizeMB int, ttl time.Duration) *Cache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &Cache{
		store: freecache.NewCache(sizeMB * megabyte),
		ttl:   ttl,
	}
}

// Get decodes the entry under key into dst. It reports false on a miss or a
// corrupt entry.
func (c *Cache) Get(key string, dst any) bool {
	raw, err := c.store.Get([]byte(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Errorf("failed to unmarshal cache entry %s: %s", key, err)
		c.store.Del([]byte(key))
		return false
	}
	return true
}

func (c *Cache) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("failed to marshal cache entry %s: %s", key, err)
		return
	}
	if err := c.store.Set([]byte(key), raw, int(c.ttl.Seconds())); err != nil {
		log.Debugf("cache set %s: %s", key, err)
	}
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.store.Clear()
}

func (c *Cache) Len() int64 {
	return c.store.EntryCount()
}
