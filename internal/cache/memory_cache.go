package cache

import (
	"sync"
	"time"
)

// cacheItem represents a cached item with expiration
type cacheItem struct {
	data      any
	expiresAt time.Time
}

// isExpired checks if the cache item has expired
func (ci *cacheItem) isExpired() bool {
	return time.Now().After(ci.expiresAt)
}

// memoryCache implements in-memory caching with TTL
type memoryCache struct {
	items     map[string]*cacheItem
	mu        sync.RWMutex
	maxSize   int
	stopChan  chan struct{}
	closeOnce sync.Once
}

// newMemoryCache creates a new in-memory cache
func newMemoryCache(maxSize int) *memoryCache {
	mc := &memoryCache{
		items:    make(map[string]*cacheItem),
		maxSize:  maxSize,
		stopChan: make(chan struct{}),
	}

	go mc.cleanup(time.Minute)

	return mc
}

func (mc *memoryCache) get(key string) (any, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	item, exists := mc.items[key]
	if !exists || item.isExpired() {
		return nil, false
	}
	return item.data, true
}

func (mc *memoryCache) set(key string, data any, ttl time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.items[key] = &cacheItem{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}

	mc.evictIfNeeded(key)
}

// clear removes all items from memory cache
func (mc *memoryCache) clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.items = make(map[string]*cacheItem)
}

// evictIfNeeded removes expired items and enforces max size, never evicting keep
func (mc *memoryCache) evictIfNeeded(keep string) {
	for key, item := range mc.items {
		if item.isExpired() {
			delete(mc.items, key)
		}
	}

	if mc.maxSize <= 0 || len(mc.items) <= mc.maxSize {
		return
	}
	count := len(mc.items) - mc.maxSize
	for key := range mc.items {
		if count <= 0 {
			break
		}
		if key == keep {
			continue
		}
		delete(mc.items, key)
		count--
	}
}

// cleanup periodically removes expired items
func (mc *memoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			for key, item := range mc.items {
				if item.isExpired() {
					delete(mc.items, key)
				}
			}
			mc.mu.Unlock()
		case <-mc.stopChan:
			return
		}
	}
}

// close stops the cleanup goroutine
func (mc *memoryCache) close() {
	mc.closeOnce.Do(func() { close(mc.stopChan) })
}

// size returns the current number of items in cache
func (mc *memoryCache) size() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.items)
}
