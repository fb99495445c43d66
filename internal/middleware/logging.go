package middleware

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	reqcontext "github.com/prajwalbharadwajbm/campaignstudio/internal/context"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/service"
)

// loggingMiddleware implements logging middleware for StudioService
type loggingMiddleware struct {
	logger log.Logger
	next   service.StudioService
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger log.Logger) func(service.StudioService) service.StudioService {
	return func(next service.StudioService) service.StudioService {
		return &loggingMiddleware{
			logger: logger,
			next:   next,
		}
	}
}

// log writes one line per call. Autocomplete and polling are chatty, so
// successful calls of those go to debug.
func (mw *loggingMiddleware) log(ctx context.Context, method string, begin time.Time, err error, quiet bool, fields ...interface{}) {
	logFields := []interface{}{
		"method", method,
		"request_id", reqcontext.GetRequestID(ctx),
		"took", time.Since(begin),
	}
	logFields = append(logFields, fields...)

	logger := level.Info(mw.logger)
	switch {
	case err != nil:
		logFields = append(logFields, "error", err.Error(), "success", false)
		if !models.IsValidationError(err) {
			logger = level.Warn(mw.logger)
		}
	case quiet:
		logFields = append(logFields, "success", true)
		logger = level.Debug(mw.logger)
	default:
		logFields = append(logFields, "success", true)
	}
	logger.Log(logFields...)
}

func (mw *loggingMiddleware) Home(ctx context.Context) (page service.HomePage, err error) {
	defer func(begin time.Time) {
		var degraded bool
		if page.Catalog != nil {
			degraded = page.Catalog.CountriesDegraded || page.Catalog.AudiencesDegraded
		}
		mw.log(ctx, "Home", begin, err, false, "degraded", degraded)
	}(time.Now())
	return mw.next.Home(ctx)
}

func (mw *loggingMiddleware) SuggestCountries(ctx context.Context, query string) (s catalog.Suggestions[models.Country], err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "SuggestCountries", begin, err, true, "query", query, "matches", len(s.Items))
	}(time.Now())
	return mw.next.SuggestCountries(ctx, query)
}

func (mw *loggingMiddleware) SuggestAudiences(ctx context.Context, query string) (s catalog.Suggestions[models.Audience], err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "SuggestAudiences", begin, err, true, "query", query, "matches", len(s.Items))
	}(time.Now())
	return mw.next.SuggestAudiences(ctx, query)
}

func (mw *loggingMiddleware) SelectCountry(ctx context.Context, codeOrName string) (choice service.CountryChoice, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "SelectCountry", begin, err, true, "country", codeOrName, "degraded", choice.Degraded)
	}(time.Now())
	return mw.next.SelectCountry(ctx, codeOrName)
}

func (mw *loggingMiddleware) EditProducts(ctx context.Context, edit service.ProductEdit) (out service.ProductEdit, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "EditProducts", begin, err, true, "key", edit.Key, "products", len(out.Products))
	}(time.Now())
	return mw.next.EditProducts(ctx, edit)
}

func (mw *loggingMiddleware) Submit(ctx context.Context, draft models.CampaignDraft) (id string, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "Submit", begin, err, false,
			"job_id", id,
			"country", draft.Country.Code,
			"audience", draft.Audience(),
			"products", len(draft.Products),
		)
	}(time.Now())
	return mw.next.Submit(ctx, draft)
}

func (mw *loggingMiddleware) Job(ctx context.Context, id string) (snap progress.Snapshot, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "Job", begin, err, true, "job_id", id, "status", snap.Status, "percent", snap.Percent)
	}(time.Now())
	return mw.next.Job(ctx, id)
}

func (mw *loggingMiddleware) History(ctx context.Context) (records []models.CampaignRecord, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "History", begin, err, false, "campaigns", len(records))
	}(time.Now())
	return mw.next.History(ctx)
}

func (mw *loggingMiddleware) CampaignDetail(ctx context.Context, id string) (record models.CampaignRecord, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "CampaignDetail", begin, err, false, "campaign_id", id)
	}(time.Now())
	return mw.next.CampaignDetail(ctx, id)
}

func (mw *loggingMiddleware) Search(ctx context.Context, query string) (resp models.SearchResponse, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "Search", begin, err, false, "query", query, "results", len(resp.Results))
	}(time.Now())
	return mw.next.Search(ctx, query)
}

func (mw *loggingMiddleware) Template(ctx context.Context, id string) (tpl service.TemplateDraft, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "Template", begin, err, false, "campaign_id", id)
	}(time.Now())
	return mw.next.Template(ctx, id)
}
