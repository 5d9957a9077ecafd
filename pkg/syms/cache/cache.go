package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type LookupResult struct {
	Symbol string
	Hit    bool
}

type Stats struct {
	Hits    int
	Misses  int
	Evicted int
	Len     int
}

// Cache memoizes resolveFunc. It is not safe for concurrent use.
type Cache struct {
	cache       *lru.Cache[uint64, string]
	resolveFunc func(addr uint64) string
	hits        int
	misses      int
	evicted     int
}

func New(resolveFunc func(addr uint64) string, size int) *Cache {
	if size <= 0 {
		size = 1
	}
	this := &Cache{resolveFunc: resolveFunc}
	// NewWithEvict only fails on a non-positive size
	this.cache, _ = lru.NewWithEvict[uint64, string](size, func(uint64, string) {
		this.evicted++
	})
	return this
}

func (c *Cache) Lookup(addr uint64) LookupResult {
	if sym, ok := c.cache.Get(addr); ok {
		c.hits++
		return LookupResult{Symbol: sym, Hit: true}
	}
	c.misses++
	sym := c.resolveFunc(addr)
	c.cache.Add(addr, sym)
	return LookupResult{Symbol: sym, Hit: false}
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Evicted: c.evicted,
		Len:     c.cache.Len(),
	}
}

// Purge drops every cached entry without counting them as evictions.
func (c *Cache) Purge() {
	evicted := c.evicted
	c.cache.Purge()
	c.evicted = evicted
}
