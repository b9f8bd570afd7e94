package internal

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	tt "github.com/fwb-online/qexpand/internal/types"
)

// cacheKey identifies an expansion. custom marks per request fields.
type cacheKey struct {
	custom          bool
	query           string
	queryFields     string
	highlightFields string
}

type result struct {
	bundle tt.Bundle
	err    error
}

// Cache remembers expansion results, rejections included. Entries older than
// maxAge are never returned; when the cache is full the least recently used
// entry is evicted.
type Cache struct {
	lru *expirable.LRU[cacheKey, result]
}

// NewCache creates a cache holding at most maxEntries results. A maxAge of
// zero keeps entries until they are evicted.
func NewCache(maxEntries int, maxAge time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[cacheKey, result](maxEntries, nil, maxAge)}
}

// Get returns the result stored for key. Its error is the rejection of the
// query, if any.
func (c *Cache) Get(key cacheKey) (result, bool) {
	r, ok := c.lru.Get(key)
	if !ok {
		return result{}, false
	}
	r.bundle = copyBundle(r.bundle)
	return r, true
}

func (c *Cache) Set(key cacheKey, bundle tt.Bundle, err error) {
	c.lru.Add(key, result{bundle: copyBundle(bundle), err: err})
}

// Len returns the number of cached results. Expired entries count until they
// are purged in the background.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func (c *Cache) InvalidateAll() {
	c.lru.Purge()
}

// copyBundle keeps callers from mutating the cached facet slice.
func copyBundle(b tt.Bundle) tt.Bundle {
	if b.FacetQueries != nil {
		b.FacetQueries = append([]string(nil), b.FacetQueries...)
	}
	return b
}
