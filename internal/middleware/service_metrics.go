package middleware

import (
	"context"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/backend"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/metrics"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/service"
)

// serviceMetricsMiddleware implements business metrics for StudioService
type serviceMetricsMiddleware struct {
	metrics *metrics.Metrics
	next    service.StudioService
}

// NewServiceMetricsMiddleware creates a new service metrics middleware
func NewServiceMetricsMiddleware(metrics *metrics.Metrics) func(service.StudioService) service.StudioService {
	return func(next service.StudioService) service.StudioService {
		return &serviceMetricsMiddleware{
			metrics: metrics,
			next:    next,
		}
	}
}

func (mw *serviceMetricsMiddleware) Home(ctx context.Context) (service.HomePage, error) {
	page, err := mw.next.Home(ctx)
	if err == nil && page.Catalog != nil {
		if page.Catalog.CountriesDegraded {
			mw.metrics.RecordCatalogFallback("countries")
		}
		if page.Catalog.AudiencesDegraded {
			mw.metrics.RecordCatalogFallback("audiences")
		}
	}
	return page, err
}

func (mw *serviceMetricsMiddleware) SuggestCountries(ctx context.Context, query string) (catalog.Suggestions[models.Country], error) {
	return mw.next.SuggestCountries(ctx, query)
}

func (mw *serviceMetricsMiddleware) SuggestAudiences(ctx context.Context, query string) (catalog.Suggestions[models.Audience], error) {
	return mw.next.SuggestAudiences(ctx, query)
}

func (mw *serviceMetricsMiddleware) SelectCountry(ctx context.Context, codeOrName string) (service.CountryChoice, error) {
	return mw.next.SelectCountry(ctx, codeOrName)
}

func (mw *serviceMetricsMiddleware) EditProducts(ctx context.Context, edit service.ProductEdit) (service.ProductEdit, error) {
	return mw.next.EditProducts(ctx, edit)
}

// Submit counts rejected drafts here; backend outcomes are counted by the
// instrumented client once the job finishes
func (mw *serviceMetricsMiddleware) Submit(ctx context.Context, draft models.CampaignDraft) (string, error) {
	id, err := mw.next.Submit(ctx, draft)
	switch {
	case err == nil:
		mw.metrics.RecordSubmission("accepted")
	case models.IsValidationError(err):
		mw.metrics.RecordSubmission("invalid")
	default:
		mw.metrics.RecordSubmission(backend.Outcome(err))
	}
	return id, err
}

func (mw *serviceMetricsMiddleware) Job(ctx context.Context, id string) (progress.Snapshot, error) {
	return mw.next.Job(ctx, id)
}

func (mw *serviceMetricsMiddleware) History(ctx context.Context) ([]models.CampaignRecord, error) {
	return mw.next.History(ctx)
}

func (mw *serviceMetricsMiddleware) CampaignDetail(ctx context.Context, id string) (models.CampaignRecord, error) {
	return mw.next.CampaignDetail(ctx, id)
}

func (mw *serviceMetricsMiddleware) Search(ctx context.Context, query string) (models.SearchResponse, error) {
	resp, err := mw.next.Search(ctx, query)
	if err == nil {
		mw.metrics.RecordSearch()
	}
	return resp, err
}

func (mw *serviceMetricsMiddleware) Template(ctx context.Context, id string) (service.TemplateDraft, error) {
	return mw.next.Template(ctx, id)
}
