package cache

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLRUCache(t *testing.T) {
	config := DefaultCacheConfig()
	cache := NewLRUCache(config)

	assert.NotNil(t, cache)
	assert.Equal(t, config.ShardCount, len(cache.shards))
	assert.Equal(t, config, cache.config)
	assert.False(t, cache.IsRunning())
}

func TestLRUCache_BasicOperations(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	// Set and Get
	err := cache.Set("key1", "value1", time.Hour)
	assert.NoError(t, err)

	value, exists := cache.Get("key1")
	assert.True(t, exists)
	assert.Equal(t, "value1", value)

	// nonexistent key
	value, exists = cache.Get("nonexistent")
	assert.False(t, exists)
	assert.Nil(t, value)

	// Delete
	deleted := cache.Delete("key1")
	assert.True(t, deleted)

	value, exists = cache.Get("key1")
	assert.False(t, exists)
	assert.Nil(t, value)

	// delete a nonexistent key
	deleted = cache.Delete("nonexistent")
	assert.False(t, deleted)
}

func TestLRUCache_TTL(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	// set a short TTL
	err := cache.Set("key1", "value1", 100*time.Millisecond)
	assert.NoError(t, err)

	// an immediate get should succeed
	value, exists := cache.Get("key1")
	assert.True(t, exists)
	assert.Equal(t, "value1", value)

	// wait for expiry
	time.Sleep(150 * time.Millisecond)

	// get after expiry should fail
	value, exists = cache.Get("key1")
	assert.False(t, exists)
	assert.Nil(t, value)
}

func TestLRUCache_LRUEviction(t *testing.T) {
	config := DefaultCacheConfig()
	config.MaxSize = 3
	config.EvictionBatch = 1
	cache := NewLRUCache(config)

	// add 3 items
	cache.Set("key1", "value1", time.Hour)
	cache.Set("key2", "value2", time.Hour)
	cache.Set("key3", "value3", time.Hour)

	assert.Equal(t, 3, cache.Size())

	// touch key1 so it becomes most recently used
	cache.Get("key1")

	// adding a 4th item should evict key2 (least recently used)
	cache.Set("key4", "value4", time.Hour)

	// key2 should have been evicted
	_, exists := cache.Get("key2")
	assert.False(t, exists)

	// the other keys should remain
	_, exists = cache.Get("key1")
	assert.True(t, exists)
	_, exists = cache.Get("key3")
	assert.True(t, exists)
	_, exists = cache.Get("key4")
	assert.True(t, exists)
}

func TestLRUCache_BatchOperations(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	// batch set
	items := map[string]CacheItem{
		"key1": {Value: "value1", ExpiresAt: time.Now().Add(time.Hour)},
		"key2": {Value: "value2", ExpiresAt: time.Now().Add(time.Hour)},
		"key3": {Value: "value3", ExpiresAt: time.Now().Add(time.Hour)},
	}

	err := cache.SetBatch(items)
	assert.NoError(t, err)

	// batch get
	keys := []string{"key1", "key2", "key3", "nonexistent"}
	result := cache.GetBatch(keys)

	assert.Len(t, result, 3)
	assert.Equal(t, "value1", result["key1"])
	assert.Equal(t, "value2", result["key2"])
	assert.Equal(t, "value3", result["key3"])
	assert.NotContains(t, result, "nonexistent")

	// batch delete
	deleteKeys := []string{"key1", "key3", "nonexistent"}
	deleted := cache.DeleteBatch(deleteKeys)
	assert.Equal(t, 2, deleted)

	// verify deletion results
	_, exists := cache.Get("key1")
	assert.False(t, exists)
	_, exists = cache.Get("key2")
	assert.True(t, exists)
	_, exists = cache.Get("key3")
	assert.False(t, exists)
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	// perform some operations
	cache.Set("key1", "value1", time.Hour)
	cache.Set("key2", "value2", time.Hour)

	cache.Get("key1")  // hit
	cache.Get("key3")  // miss

	cache.Delete("key2")

	stats := cache.GetStats()

	assert.Equal(t, int64(1), stats.TotalItems)
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, int64(2), stats.Gets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Deletes)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestLRUCache_ConcurrentAccess(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	const numGoroutines = 10
	const numOperations = 100

	var wg sync.WaitGroup

	// concurrent writes
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				key := fmt.Sprintf("key_%d_%d", id, j)
				value := fmt.Sprintf("value_%d_%d", id, j)
				cache.Set(key, value, time.Hour)
			}
		}(i)
	}

	// concurrent reads
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				key := fmt.Sprintf("key_%d_%d", id, j)
				cache.Get(key)
			}
		}(i)
	}

	wg.Wait()

	// verify no data races
	assert.True(t, cache.Size() > 0)
}

func TestLRUCache_MemoryLimit(t *testing.T) {
	config := DefaultCacheConfig()
	config.MemoryLimitMB = 1 // 1MB limit
	config.EvictionBatch = 10
	cache := NewLRUCache(config)

	// add about 2MB of data; Set does not check MemoryLimitMB (only the
	// cleanup worker does, and it is not started here), so nothing is evicted
	largeValue := make([]byte, 1024) // 1KB
	for i := 0; i < 2000; i++ {
		key := "key_" + strconv.Itoa(i)
		cache.Set(key, largeValue, time.Hour)
	}

	// verify memory usage doesn't overshoot the limit by much
	memoryUsageMB := cache.GetMemoryUsage() / (1024 * 1024)
	assert.True(t, memoryUsageMB <= 2) // allow some slack
}

func TestLRUCache_Lifecycle(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	// initial state
	assert.False(t, cache.IsRunning())

	// start
	err := cache.Start()
	assert.NoError(t, err)
	assert.True(t, cache.IsRunning())

	// starting again should fail
	err = cache.Start()
	assert.Error(t, err)

	// stop
	err = cache.Stop()
	assert.NoError(t, err)
	assert.False(t, cache.IsRunning())

	// stopping again should fail
	err = cache.Stop()
	assert.Error(t, err)
}

func TestLRUCache_ExpiredCleanup(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	// add items that will expire
	cache.Set("key1", "value1", 50*time.Millisecond)
	cache.Set("key2", "value2", 100*time.Millisecond)
	cache.Set("key3", "value3", time.Hour)

	assert.Equal(t, 3, cache.Size())

	// wait for some to expire
	time.Sleep(75 * time.Millisecond)

	// manually sweep expired items
	expired := cache.EvictExpired()
	assert.Equal(t, 1, expired) // key1 should have expired
	assert.Equal(t, 2, cache.Size())

	// wait for more to expire
	time.Sleep(50 * time.Millisecond)

	expired = cache.EvictExpired()
	assert.Equal(t, 1, expired) // key2 should have expired
	assert.Equal(t, 1, cache.Size())

	// key3 should remain
	_, exists := cache.Get("key3")
	assert.True(t, exists)
}

func TestLRUCache_Clear(t *testing.T) {
	cache := NewLRUCache(DefaultCacheConfig())

	// add some data
	cache.Set("key1", "value1", time.Hour)
	cache.Set("key2", "value2", time.Hour)
	cache.Set("key3", "value3", time.Hour)

	assert.Equal(t, 3, cache.Size())

	// clear the cache
	err := cache.Clear()
	assert.NoError(t, err)
	assert.Equal(t, 0, cache.Size())

	// verify everything was cleared
	_, exists := cache.Get("key1")
	assert.False(t, exists)
	_, exists = cache.Get("key2")
	assert.False(t, exists)
	_, exists = cache.Get("key3")
	assert.False(t, exists)
}
