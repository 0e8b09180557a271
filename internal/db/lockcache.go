package db

import (
	"database/sql"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

const lockCacheSize = 4096

// lockCache is a small LRU of asset lock states keyed by serialized
// asset key. Only assets that exist are cached.
type lockCache struct {
	cache *lru.Cache
}

func newLockCache(size int) *lockCache {
	cache, err := lru.New(size)
	if err != nil {
		// Only a non-positive size fails.
		panic(err)
	}
	return &lockCache{cache: cache}
}

func (c *lockCache) Get(key string) (bool, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

func (c *lockCache) Set(key string, locked bool) {
	c.cache.Add(key, locked)
}

func (c *lockCache) Len() int {
	return c.cache.Len()
}

// Purge drops every entry. Writers call it since a change to one asset
// can change the answer for its thumbnail too.
func (c *lockCache) Purge() {
	c.cache.Purge()
}

var dbLockCaches sync.Map // map[*sql.DB]*lockCache

func getLockCache(db *sql.DB) *lockCache {
	if db == nil {
		return nil
	}
	if existing, ok := dbLockCaches.Load(db); ok {
		return existing.(*lockCache)
	}
	cache := newLockCache(lockCacheSize)
	actual, _ := dbLockCaches.LoadOrStore(db, cache)
	return actual.(*lockCache)
}

func purgeLockCache(db *sql.DB) {
	if cache := getLockCache(db); cache != nil {
		cache.Purge()
	}
}
