package cache

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// CachedSource wraps a catalog source with caching. Only successful,
// non-empty answers are stored, so an outage is retried on the next load.
type CachedSource struct {
	source catalog.Source
	cache  Cache
	ttl    time.Duration
	logger log.Logger
}

// NewCachedSource creates a new cached catalog source
func NewCachedSource(source catalog.Source, cache Cache, ttl time.Duration, logger log.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Countries returns the country catalog from cache first, then the backend
func (cs *CachedSource) Countries(ctx context.Context) ([]models.Country, error) {
	if countries, err := cs.cache.GetCountries(ctx); err == nil {
		return countries, nil
	}

	countries, err := cs.source.Countries(ctx)
	if err != nil {
		return nil, err
	}
	if len(countries) > 0 {
		if err := cs.cache.SetCountries(ctx, countries, cs.ttl); err != nil {
			level.Warn(cs.logger).Log("msg", "failed to cache countries", "err", err)
		}
	}
	return countries, nil
}

// Audiences returns the audience catalog from cache first, then the backend
func (cs *CachedSource) Audiences(ctx context.Context) ([]models.Audience, error) {
	if audiences, err := cs.cache.GetAudiences(ctx); err == nil {
		return audiences, nil
	}

	audiences, err := cs.source.Audiences(ctx)
	if err != nil {
		return nil, err
	}
	if len(audiences) > 0 {
		if err := cs.cache.SetAudiences(ctx, audiences, cs.ttl); err != nil {
			level.Warn(cs.logger).Log("msg", "failed to cache audiences", "err", err)
		}
	}
	return audiences, nil
}

// InvalidateCache clears all cached data
func (cs *CachedSource) InvalidateCache(ctx context.Context) error {
	return cs.cache.InvalidateAll(ctx)
}

// GetCacheStats returns cache performance statistics
func (cs *CachedSource) GetCacheStats() CacheStats {
	return cs.cache.GetStats()
}
