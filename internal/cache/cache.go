package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

const (
	keyCountries = "catalog:countries"
	keyAudiences = "catalog:audiences"
)

// Cache defines the interface for reference catalog caching
type Cache interface {
	GetCountries(ctx context.Context) ([]models.Country, error)
	SetCountries(ctx context.Context, countries []models.Country, ttl time.Duration) error

	GetAudiences(ctx context.Context) ([]models.Audience, error)
	SetAudiences(ctx context.Context, audiences []models.Audience, ttl time.Duration) error

	InvalidateAll(ctx context.Context) error
	GetStats() CacheStats
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Errors      int64     `json:"errors"`
	HitRatio    float64   `json:"hit_ratio"`
	TotalOps    int64     `json:"total_ops"`
	LastUpdated time.Time `json:"last_updated"`
}

// HybridCache implements both in-memory and Redis caching.
// Memory is consulted first; a Redis hit warms memory.
type HybridCache struct {
	memoryCache *memoryCache
	redisCache  *redisCache
	config      CacheConfig
	stats       CacheStats
	mu          sync.RWMutex
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	DefaultTTL      time.Duration
	MemoryCacheSize int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	EnableMemory    bool
	EnableRedis     bool
}

// NewHybridCache creates a new hybrid cache
func NewHybridCache(config CacheConfig) (*HybridCache, error) {
	hc := &HybridCache{
		config: config,
		stats: CacheStats{
			LastUpdated: time.Now(),
		},
	}

	if config.EnableMemory {
		hc.memoryCache = newMemoryCache(config.MemoryCacheSize)
	}

	if config.EnableRedis {
		var err error
		hc.redisCache, err = newRedisCache(config)
		if err != nil {
			hc.Close()
			return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
		}
	}

	return hc, nil
}

// GetCountries retrieves the country catalog (memory first, then Redis, then miss)
func (hc *HybridCache) GetCountries(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	if err := hc.get(ctx, keyCountries, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// SetCountries stores the country catalog in both caches
func (hc *HybridCache) SetCountries(ctx context.Context, countries []models.Country, ttl time.Duration) error {
	return hc.set(ctx, keyCountries, countries, ttl)
}

// GetAudiences retrieves the audience catalog
func (hc *HybridCache) GetAudiences(ctx context.Context) ([]models.Audience, error) {
	var audiences []models.Audience
	if err := hc.get(ctx, keyAudiences, &audiences); err != nil {
		return nil, err
	}
	return audiences, nil
}

// SetAudiences stores the audience catalog in both caches
func (hc *HybridCache) SetAudiences(ctx context.Context, audiences []models.Audience, ttl time.Duration) error {
	return hc.set(ctx, keyAudiences, audiences, ttl)
}

// get fills dst, which must be a pointer to the slice type stored under key
func (hc *HybridCache) get(ctx context.Context, key string, dst any) error {
	if hc.memoryCache != nil {
		if data, found := hc.memoryCache.get(key); found && assign(dst, data) {
			hc.recordHit()
			return nil
		}
	}

	if hc.redisCache != nil {
		err := hc.redisCache.get(ctx, key, dst)
		if err == nil {
			hc.recordHit()
			if hc.memoryCache != nil {
				hc.memoryCache.set(key, deref(dst), hc.config.DefaultTTL)
			}
			return nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			hc.recordError()
		}
	}

	hc.recordMiss()
	return ErrCacheMiss
}

func (hc *HybridCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = hc.config.DefaultTTL
	}

	if hc.memoryCache != nil {
		hc.memoryCache.set(key, value, ttl)
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.set(ctx, key, value, ttl); err != nil {
			hc.recordError()
			return fmt.Errorf("cache store error: %w", err)
		}
	}

	return nil
}

// InvalidateAll clears all caches
func (hc *HybridCache) InvalidateAll(ctx context.Context) error {
	if hc.memoryCache != nil {
		hc.memoryCache.clear()
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.clear(ctx); err != nil {
			return fmt.Errorf("cache invalidation error: %w", err)
		}
	}

	return nil
}

// GetStats returns cache statistics
func (hc *HybridCache) GetStats() CacheStats {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	stats := hc.stats
	if stats.TotalOps > 0 {
		stats.HitRatio = float64(stats.Hits) / float64(stats.TotalOps)
	}
	return stats
}

// Close stops the memory sweeper and closes the Redis connection
func (hc *HybridCache) Close() error {
	if hc.memoryCache != nil {
		hc.memoryCache.close()
	}
	if hc.redisCache != nil {
		return hc.redisCache.close()
	}
	return nil
}

func (hc *HybridCache) recordHit() {
	hc.mu.Lock()
	hc.stats.Hits++
	hc.stats.TotalOps++
	hc.stats.LastUpdated = time.Now()
	hc.mu.Unlock()
}

func (hc *HybridCache) recordMiss() {
	hc.mu.Lock()
	hc.stats.Misses++
	hc.stats.TotalOps++
	hc.stats.LastUpdated = time.Now()
	hc.mu.Unlock()
}

func (hc *HybridCache) recordError() {
	hc.mu.Lock()
	hc.stats.Errors++
	hc.mu.Unlock()
}

// assign copies a memory-cached slice into dst when the types line up
func assign(dst, data any) bool {
	switch d := dst.(type) {
	case *[]models.Country:
		v, ok := data.([]models.Country)
		if ok {
			*d = v
		}
		return ok
	case *[]models.Audience:
		v, ok := data.([]models.Audience)
		if ok {
			*d = v
		}
		return ok
	}
	return false
}

func deref(dst any) any {
	switch d := dst.(type) {
	case *[]models.Country:
		return *d
	case *[]models.Audience:
		return *d
	}
	return nil
}

// Custom errors
var (
	ErrCacheMiss = errors.New("cache miss")
)
