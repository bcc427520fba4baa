package cache

import (
	"sync"
	"time"
)

// Cache is a generic cache interface that can store values of any type.
type Cache interface {
	// Get returns the value for key. Returns nil, false if key is absent.
	Get(key string) (interface{}, bool)
	// Set stores a key/value pair.
	Set(key string, value interface{})
}

// CacheConfig configures a cache instance, e.g. capacity.
type CacheConfig struct {
	Capacity        int
	ShardCount      int
	MaxSize         int64
	MemoryLimitMB   int64
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	EvictionBatch   int
	EnableMetrics   bool
}

// DefaultCacheConfig returns a sensible default configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Capacity:        10000,
		ShardCount:      32,
		MaxSize:         100 * 1024 * 1024, // maximum number of items
		MemoryLimitMB:   100,               // 100MB
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 1 * time.Minute,
		EvictionBatch:   100,
		EnableMetrics:   true,
	}
}

// CacheStats holds runtime cache statistics.
type CacheStats struct {
	TotalItems    int64
	TotalSize     int64
	MaxSize       int64
	MemoryLimitMB int64
	Hits          int64
	Misses        int64
	Sets          int64
	Gets          int64
	Deletes       int64
	Evictions     int64
	Expirations   int64
	CreatedAt     string
	LastCleanup   time.Time
	AvgGetTime    time.Duration
	AvgSetTime    time.Duration
	HitRate       float64
}

// CacheItem is one entry stored in the cache.
type CacheItem struct {
	Key         string
	Value       interface{}
	Size        int64
	CreatedAt   time.Time
	AccessAt    time.Time
	ExpiresAt   time.Time
	AccessCount int64
}

// IsExpired reports whether the item's TTL has elapsed.
func (item *CacheItem) IsExpired() bool {
	return !item.ExpiresAt.IsZero() && time.Now().After(item.ExpiresAt)
}

// UpdateAccess records an access against this item.
func (item *CacheItem) UpdateAccess() {
	item.AccessAt = time.Now()
	item.AccessCount++
}

// LRUNode is a node in the LRU doubly-linked list.
type LRUNode struct {
	Key  string
	Item *CacheItem
	Prev *LRUNode
	Next *LRUNode
}

// LRUList is a doubly-linked list that maintains LRU order.
type LRUList struct {
	head *LRUNode
	tail *LRUNode
	size int
}

// NewLRUList returns a new, empty LRUList.
func NewLRUList() *LRUList {
	return &LRUList{}
}

// AddToHead inserts node at the head (most recently used).
func (l *LRUList) AddToHead(node *LRUNode) {
	node.Next = l.head
	node.Prev = nil
	if l.head != nil {
		l.head.Prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.size++
}

// MoveToHead moves node to the head.
func (l *LRUList) MoveToHead(node *LRUNode) {
	if node == l.head {
		return
	}
	l.RemoveNode(node)
	l.AddToHead(node)
}

// RemoveNode unlinks node from the list.
func (l *LRUList) RemoveNode(node *LRUNode) {
	if node.Prev != nil {
		node.Prev.Next = node.Next
	} else {
		l.head = node.Next
	}
	if node.Next != nil {
		node.Next.Prev = node.Prev
	} else {
		l.tail = node.Prev
	}
	node.Next = nil
	node.Prev = nil
	l.size--
}

// RemoveTail removes and returns the least-recently-used node.
func (l *LRUList) RemoveTail() *LRUNode {
	if l.tail == nil {
		return nil
	}
	node := l.tail
	l.RemoveNode(node)
	return node
}

// Size returns the number of nodes in the list.
func (l *LRUList) Size() int {
	return l.size
}

// CacheShard is one shard of a sharded LRU cache.
type CacheShard struct {
	items   map[string]*LRUNode
	lruList *LRUList
	mutex   sync.RWMutex
	config  *CacheConfig
}

// NewCacheShard creates a new cache shard.
func NewCacheShard(config *CacheConfig) *CacheShard {
	return &CacheShard{
		items:   make(map[string]*LRUNode),
		lruList: NewLRUList(),
		config:  config,
	}
}

// Add inserts or replaces a cache item.
func (s *CacheShard) Add(key string, value interface{}, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	item := &CacheItem{
		Key:         key,
		Value:       value,
		CreatedAt:   now,
		AccessAt:    now,
		AccessCount: 1,
		Size:        s.estimateSize(value),
	}

	if ttl > 0 {
		item.ExpiresAt = now.Add(ttl)
	}

	if existingNode, exists := s.items[key]; exists {
		existingNode.Item = item
		s.lruList.MoveToHead(existingNode)
		return nil
	}

	node := &LRUNode{
		Key:  key,
		Item: item,
	}

	s.items[key] = node
	s.lruList.AddToHead(node)

	return nil
}

// Get retrieves a cache item.
func (s *CacheShard) Get(key string) (interface{}, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	node, exists := s.items[key]
	if !exists {
		return nil, false
	}

	if node.Item.IsExpired() {
		s.mutex.RUnlock() // release the read lock so we can take the write lock
		s.mutex.Lock()
		delete(s.items, key)
		s.lruList.RemoveNode(node)
		s.mutex.Unlock()
		s.mutex.RLock() // re-acquire the read lock
		return nil, false
	}

	s.lruList.MoveToHead(node)
	node.Item.UpdateAccess()
	return node.Item.Value, true
}

// Remove deletes a cache item.
func (s *CacheShard) Remove(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if node, exists := s.items[key]; exists {
		delete(s.items, key)
		s.lruList.RemoveNode(node)
		return true
	}
	return false
}

// Len returns the number of items in the shard.
func (s *CacheShard) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.items)
}

// estimateSize gives a rough size estimate for value.
func (s *CacheShard) estimateSize(value interface{}) int64 {
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
