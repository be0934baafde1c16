package perft

import (
	"sync"
	"sync/atomic"
)

// Number of shards for cache locking (power of 2 for fast modulo)
const cacheShardCount = 256
const cacheShardMask = cacheShardCount - 1

// cacheEntry is one slot of the node-count cache.
type cacheEntry struct {
	Key   uint64 // Full position hash, stands included
	Nodes uint64
	Depth int32
}

// Cache maps (position hash, depth) to a subtree node count. Slots are
// overwritten freely; a lookup only hits when both hash and depth match.
// Sharded locks let the parallel counters share one cache.
type Cache struct {
	entries []cacheEntry
	shards  [cacheShardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewCache creates a cache of about sizeMB megabytes. A size of zero returns
// nil, which every method treats as an always-missing cache.
func NewCache(sizeMB int) *Cache {
	if sizeMB <= 0 {
		return nil
	}

	entrySize := uint64(24)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize

	// Round down to power of 2 for fast modulo
	numEntries = roundDownToPowerOf2(numEntries)

	return &Cache{
		entries: make([]cacheEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (c *Cache) shardIndex(idx uint64) int {
	return int(idx & cacheShardMask)
}

// slot mixes the depth into the index so that the counts of one position at
// several depths do not evict each other.
func (c *Cache) slot(hash uint64, depth int) uint64 {
	return (hash ^ uint64(depth)*0x9E3779B97F4A7C15) & c.mask
}

// Probe returns the stored node count for hash at depth.
func (c *Cache) Probe(hash uint64, depth int) (uint64, bool) {
	if c == nil {
		return 0, false
	}
	c.probes.Add(1)

	idx := c.slot(hash, depth)
	shard := c.shardIndex(idx)

	c.shards[shard].RLock()
	entry := c.entries[idx]
	c.shards[shard].RUnlock()

	if entry.Key == hash && entry.Depth == int32(depth) && entry.Nodes > 0 {
		c.hits.Add(1)
		return entry.Nodes, true
	}
	return 0, false
}

// Store records the node count for hash at depth.
func (c *Cache) Store(hash uint64, depth int, nodes uint64) {
	if c == nil {
		return
	}

	idx := c.slot(hash, depth)
	shard := c.shardIndex(idx)

	c.shards[shard].Lock()
	c.entries[idx] = cacheEntry{Key: hash, Nodes: nodes, Depth: int32(depth)}
	c.shards[shard].Unlock()
}

// Clear empties the cache and resets the statistics.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	for i := range c.shards {
		c.shards[i].Lock()
	}
	for i := range c.entries {
		c.entries[i] = cacheEntry{}
	}
	for i := range c.shards {
		c.shards[i].Unlock()
	}
	c.hits.Store(0)
	c.probes.Store(0)
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	if c == nil {
		return 0
	}
	probes := c.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the cache.
func (c *Cache) Size() uint64 {
	if c == nil {
		return 0
	}
	return c.size
}
