package cache

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// LRUCache is a sharded, TTL-aware LRU cache.
type LRUCache struct {
	shards   []*CacheShard
	config   *CacheConfig
	stats    *CacheStats
	running  int32
	stopCh   chan struct{}
	wg       sync.WaitGroup
	
	// aggregate, cross-shard statistics
	globalStats struct {
		hits        int64
		misses      int64
		sets        int64
		gets        int64
		deletes     int64
		evictions   int64
		expirations int64
	}
}

// NewLRUCache creates a new sharded LRU cache.
func NewLRUCache(config *CacheConfig) *LRUCache {
	if config == nil {
		config = DefaultCacheConfig()
	}
	
	cache := &LRUCache{
		shards: make([]*CacheShard, config.ShardCount),
		config: config,
		stats: &CacheStats{
			MaxSize:       int64(config.MaxSize),
			MemoryLimitMB: int64(config.MemoryLimitMB),
			CreatedAt:     time.Now().Format(time.RFC3339), // formatted timestamp
		},
		stopCh: make(chan struct{}),
	}
	
	// initialize shards
	for i := 0; i < config.ShardCount; i++ {
		cache.shards[i] = NewCacheShard(config)
	}
	
	return cache
}

// getShard returns the shard that owns key.
func (c *LRUCache) getShard(key string) *CacheShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(c.config.ShardCount)]
}

// Get retrieves a cache item.
func (c *LRUCache) Get(key string) (interface{}, bool) {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&c.globalStats.gets, 1)
		if c.config.EnableMetrics {
			// update the rolling average get latency
			c.updateAvgGetTime(time.Since(start))
		}
	}()
	
	shard := c.getShard(key)
	value, exists := shard.Get(key)
	if !exists {
		atomic.AddInt64(&c.globalStats.misses, 1)
		return nil, false
	}
	
	atomic.AddInt64(&c.globalStats.hits, 1)
	return value, true
}

// Set stores a cache item with the given TTL.
func (c *LRUCache) Set(key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&c.globalStats.sets, 1)
		if c.config.EnableMetrics {
			c.updateAvgSetTime(time.Since(start))
		}
	}()
	
	shard := c.getShard(key)
	err := shard.Add(key, value, ttl)
	if err != nil {
		return err
	}

	// after inserting, enforce the global capacity limit
	for int64(c.Size()) > c.config.MaxSize {
		evictedCount := c.EvictLRU(c.config.EvictionBatch)
		if evictedCount == 0 {
			// stop if nothing more can be evicted, to avoid spinning forever
			break
		}
	}
	return nil
}

// Delete removes a cache item.
func (c *LRUCache) Delete(key string) bool {
	defer func() {
		atomic.AddInt64(&c.globalStats.deletes, 1)
	}()
	
	shard := c.getShard(key)
	return shard.Remove(key)
}

// Clear empties the cache.
func (c *LRUCache) Clear() error {
	for _, shard := range c.shards {
		shard.mutex.Lock()
		shard.items = make(map[string]*LRUNode)
		shard.lruList = NewLRUList()
		shard.mutex.Unlock()
	}
	
	// reset statistics
	atomic.StoreInt64(&c.globalStats.hits, 0)
	atomic.StoreInt64(&c.globalStats.misses, 0)
	atomic.StoreInt64(&c.globalStats.sets, 0)
	atomic.StoreInt64(&c.globalStats.gets, 0)
	atomic.StoreInt64(&c.globalStats.deletes, 0)
	atomic.StoreInt64(&c.globalStats.evictions, 0)
	atomic.StoreInt64(&c.globalStats.expirations, 0)
	
	return nil
}

// GetBatch retrieves multiple keys at once.
func (c *LRUCache) GetBatch(keys []string) map[string]interface{} {
	result := make(map[string]interface{})
	
	for _, key := range keys {
		if value, exists := c.Get(key); exists {
			result[key] = value
		}
	}
	
	return result
}

// SetBatch stores multiple items at once.
func (c *LRUCache) SetBatch(items map[string]CacheItem) error {
	for key, item := range items {
		ttl := time.Until(item.ExpiresAt)
		if ttl < 0 {
			ttl = c.config.DefaultTTL
		}
		
		if err := c.Set(key, item.Value, ttl); err != nil {
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}
	}
	
	return nil
}

// DeleteBatch removes multiple keys at once.
func (c *LRUCache) DeleteBatch(keys []string) int {
	deleted := 0
	for _, key := range keys {
		if c.Delete(key) {
			deleted++
		}
	}
	return deleted
}

// Exists reports whether key is present.
func (c *LRUCache) Exists(key string) bool {
	_, exists := c.Get(key)
	return exists
}

// Keys returns every key currently cached.
func (c *LRUCache) Keys() []string {
	var keys []string
	
	for _, shard := range c.shards {
		shard.mutex.RLock()
		for key := range shard.items {
			keys = append(keys, key)
		}
		shard.mutex.RUnlock()
	}
	
	return keys
}

// Size returns the total number of cached items.
func (c *LRUCache) Size() int {
	total := 0
	for _, shard := range c.shards {
		shard.mutex.RLock()
		total += len(shard.items)
		shard.mutex.RUnlock()
	}
	return total
}

// GetStats returns a snapshot of cache statistics.
func (c *LRUCache) GetStats() *CacheStats {
	stats := &CacheStats{
		TotalItems:    int64(c.Size()),
		TotalSize:     c.GetMemoryUsage(),
		MaxSize:       c.stats.MaxSize,
		MemoryLimitMB: c.stats.MemoryLimitMB,
		Hits:          atomic.LoadInt64(&c.globalStats.hits),
		Misses:        atomic.LoadInt64(&c.globalStats.misses),
		Sets:          atomic.LoadInt64(&c.globalStats.sets),
		Gets:          atomic.LoadInt64(&c.globalStats.gets),
		Deletes:       atomic.LoadInt64(&c.globalStats.deletes),
		Evictions:     atomic.LoadInt64(&c.globalStats.evictions),
		Expirations:   atomic.LoadInt64(&c.globalStats.expirations),
		CreatedAt:     c.stats.CreatedAt,
		LastCleanup:   c.stats.LastCleanup,
		AvgGetTime:    c.stats.AvgGetTime,
		AvgSetTime:    c.stats.AvgSetTime,
	}
	
	// compute hit rate
	totalRequests := stats.Hits + stats.Misses
	if totalRequests > 0 {
		stats.HitRate = float64(stats.Hits) / float64(totalRequests)
	}
	
	return stats
}

// GetMemoryUsage returns estimated memory usage in bytes.
func (c *LRUCache) GetMemoryUsage() int64 {
	var totalSize int64

	for _, shard := range c.shards {
		shard.mutex.RLock()
		for _, node := range shard.items {
			totalSize += node.Item.Size
		}
		shard.mutex.RUnlock()
	}

	return totalSize
}

// EvictLRU evicts up to count least-recently-used items.
func (c *LRUCache) EvictLRU(count int) int {
	evicted := 0

	// spread the eviction count evenly across shards
	shardEvictCount := count / len(c.shards)
	if shardEvictCount == 0 {
		shardEvictCount = 1 // evict at least one per shard
	}

	for _, shard := range c.shards {
		shard.mutex.Lock()
		for i := 0; i < shardEvictCount && shard.lruList.Size() > 0; i++ {
			node := shard.lruList.RemoveTail()
			if node != nil {
				delete(shard.items, node.Key)
				evicted++
				atomic.AddInt64(&c.globalStats.evictions, 1)
			}
		}
		shard.mutex.Unlock()
	}

	return evicted
}

// EvictExpired removes all items whose TTL has elapsed.
func (c *LRUCache) EvictExpired() int {
	expired := 0
	now := time.Now()

	for _, shard := range c.shards {
		shard.mutex.Lock()

		var expiredKeys []string
		for key, node := range shard.items {
			if node.Item.IsExpired() {
				expiredKeys = append(expiredKeys, key)
			}
		}

		for _, key := range expiredKeys {
			if node, exists := shard.items[key]; exists {
				delete(shard.items, key)
				shard.lruList.RemoveNode(node)
				expired++
				atomic.AddInt64(&c.globalStats.expirations, 1)
			}
		}

		shard.mutex.Unlock()
	}

	c.stats.LastCleanup = now
	return expired
}

// Start launches the background cleanup worker.
func (c *LRUCache) Start() error {
	if !atomic.CompareAndSwapInt32(&c.running, 0, 1) {
		return fmt.Errorf("cache is already running")
	}

	// launch the cleanup goroutine
	c.wg.Add(1)
	go c.cleanupWorker()

	return nil
}

// Stop halts the background cleanup worker.
func (c *LRUCache) Stop() error {
	if !atomic.CompareAndSwapInt32(&c.running, 1, 0) {
		return fmt.Errorf("cache is not running")
	}

	close(c.stopCh)
	c.wg.Wait()

	return nil
}

// IsRunning reports whether the cleanup worker is active.
func (c *LRUCache) IsRunning() bool {
	return atomic.LoadInt32(&c.running) == 1
}

// checkCapacityLimits enforces item-count and memory limits.
func (c *LRUCache) checkCapacityLimits(shard *CacheShard) error {
	// enforce the item-count limit
	if int64(c.Size()) >= c.config.MaxSize {
		// evict some items
		evicted := c.EvictLRU(c.config.EvictionBatch)
		if evicted == 0 {
			return fmt.Errorf("cache is full and cannot evict items")
		}
	}

	// enforce the memory limit
	memoryUsageMB := c.GetMemoryUsage() / (1024 * 1024)
	if memoryUsageMB >= int64(c.config.MemoryLimitMB) {
		// evict some items to free memory
		evicted := c.EvictLRU(c.config.EvictionBatch)
		if evicted == 0 {
			return fmt.Errorf("cache memory limit exceeded and cannot evict items")
		}
	}

	return nil
}

// estimateSize gives a rough size estimate for value.
func (c *LRUCache) estimateSize(value interface{}) int64 {
	// a crude estimate; a real deployment could measure more precisely
	switch v := value.(type) {
	case string:
		return int64(len(v))
	case []byte:
		return int64(len(v))
	case int, int32, int64, float32, float64:
		return 8
	case bool:
		return 1
	default:
		// fall back to a fixed estimate for complex types
		return 256
	}
}

// updateAvgGetTime folds duration into the rolling average get latency.
func (c *LRUCache) updateAvgGetTime(duration time.Duration) {
	// simple moving average
	if c.stats.AvgGetTime == 0 {
		c.stats.AvgGetTime = duration
	} else {
		c.stats.AvgGetTime = (c.stats.AvgGetTime + duration) / 2
	}
}

// updateAvgSetTime folds duration into the rolling average set latency.
func (c *LRUCache) updateAvgSetTime(duration time.Duration) {
	// simple moving average
	if c.stats.AvgSetTime == 0 {
		c.stats.AvgSetTime = duration
	} else {
		c.stats.AvgSetTime = (c.stats.AvgSetTime + duration) / 2
	}
}

// cleanupWorker periodically evicts expired items and checks memory pressure.
func (c *LRUCache) cleanupWorker() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// clean up expired items
			expired := c.EvictExpired()
			if expired > 0 {
				// could be logged here
			}

			// check memory pressure
			c.checkMemoryPressure()

		case <-c.stopCh:
			return
		}
	}
}

// checkMemoryPressure proactively evicts items when memory usage is high.
func (c *LRUCache) checkMemoryPressure() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// proactively evict when memory usage crosses the threshold
	memoryUsageMB := c.GetMemoryUsage() / (1024 * 1024)
	if memoryUsageMB > int64(c.config.MemoryLimitMB)*8/10 { // 80% threshold
		// evict 20% of cached items
		evictCount := c.Size() / 5
		if evictCount > 0 {
			c.EvictLRU(evictCount)
		}
	}
}
