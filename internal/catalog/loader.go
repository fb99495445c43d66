package catalog

import (
	"context"
	"errors"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// ErrEmptyCatalog is returned by the loader when the backend answered
// with no entries, which the UI treats like an outage
var ErrEmptyCatalog = errors.New("backend returned an empty catalog")

// Source fetches reference data from the backend
type Source interface {
	Countries(ctx context.Context) ([]models.Country, error)
	Audiences(ctx context.Context) ([]models.Audience, error)
}

// Loader builds the per-page catalog, falling back to the built-in
// defaults for whichever half the backend failed to deliver
type Loader struct {
	source Source
	logger log.Logger
}

// NewLoader creates a catalog loader
func NewLoader(source Source, logger log.Logger) *Loader {
	return &Loader{source: source, logger: logger}
}

// Load fetches countries and audiences concurrently. It never fails:
// a failed half is replaced by defaults and flagged as degraded.
func (l *Loader) Load(ctx context.Context) *models.Catalog {
	catalog := &models.Catalog{}

	var g errgroup.Group
	g.Go(func() error {
		countries, err := l.source.Countries(ctx)
		if err == nil && len(countries) == 0 {
			err = ErrEmptyCatalog
		}
		if err != nil {
			level.Warn(l.logger).Log("msg", "loading fallback countries", "err", err)
			catalog.Countries = DefaultCountries()
			catalog.CountriesDegraded = true
			return nil
		}
		catalog.Countries = countries
		return nil
	})
	g.Go(func() error {
		audiences, err := l.source.Audiences(ctx)
		if err == nil && len(audiences) == 0 {
			err = ErrEmptyCatalog
		}
		if err != nil {
			level.Warn(l.logger).Log("msg", "loading fallback audiences", "err", err)
			catalog.Audiences = DefaultAudiences()
			catalog.AudiencesDegraded = true
			return nil
		}
		catalog.Audiences = audiences
		return nil
	})
	_ = g.Wait()

	level.Debug(l.logger).Log(
		"msg", "catalog loaded",
		"countries", len(catalog.Countries),
		"audiences", len(catalog.Audiences),
		"degraded", catalog.CountriesDegraded || catalog.AudiencesDegraded,
	)
	return catalog
}
