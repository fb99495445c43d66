package config

import (
	"time"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/cache"
)

// GetCacheConfig creates catalog cache configuration from environment variables.
// Redis is off by default; a single instance keeps the catalogs in memory.
func GetCacheConfig() cache.CacheConfig {
	return cache.CacheConfig{
		DefaultTTL:      getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		MemoryCacheSize: getEnvInt("CACHE_MEMORY_SIZE", 16),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		EnableMemory:    getEnvBool("CACHE_ENABLE_MEMORY", true),
		EnableRedis:     getEnvBool("CACHE_ENABLE_REDIS", false),
	}
}

// CacheHealthCheck represents cache health status
type CacheHealthCheck struct {
	Memory struct {
		Enabled bool `json:"enabled"`
		Size    int  `json:"size"`
	} `json:"memory"`
	Redis struct {
		Enabled bool   `json:"enabled"`
		Address string `json:"address,omitempty"`
	} `json:"redis"`
	Stats cache.CacheStats `json:"stats"`
}

// GetCacheHealth returns current cache health status
func GetCacheHealth(cfg cache.CacheConfig, stats cache.CacheStats) CacheHealthCheck {
	health := CacheHealthCheck{}

	health.Memory.Enabled = cfg.EnableMemory
	health.Memory.Size = cfg.MemoryCacheSize

	health.Redis.Enabled = cfg.EnableRedis
	if cfg.EnableRedis {
		health.Redis.Address = cfg.RedisAddr
	}

	health.Stats = stats

	return health
}
