package backend

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	reqcontext "github.com/prajwalbharadwajbm/campaignstudio/internal/context"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/metrics"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// InstrumentedAPI wraps an API with metrics collection. Transport
// failures are logged with their cause, which users never see.
type InstrumentedAPI struct {
	next    API
	metrics *metrics.Metrics
	logger  log.Logger
}

// NewInstrumentedAPI creates a new instrumented backend
func NewInstrumentedAPI(next API, metrics *metrics.Metrics, logger log.Logger) API {
	return &InstrumentedAPI{
		next:    next,
		metrics: metrics,
		logger:  logger,
	}
}

func (a *InstrumentedAPI) record(ctx context.Context, operation string, begin time.Time, err error) {
	took := time.Since(begin)
	a.metrics.RecordBackendCall(operation, Outcome(err), took.Seconds())

	var ue *UnavailableError
	if errors.As(err, &ue) {
		level.Warn(a.logger).Log(
			"msg", "backend unreachable",
			"operation", operation,
			"request_id", reqcontext.GetRequestID(ctx),
			"took", took,
			"cause", ue.Cause,
		)
	}
}

func (a *InstrumentedAPI) Countries(ctx context.Context) (countries []models.Country, err error) {
	defer func(begin time.Time) { a.record(ctx, "countries", begin, err) }(time.Now())
	return a.next.Countries(ctx)
}

func (a *InstrumentedAPI) Audiences(ctx context.Context) (audiences []models.Audience, err error) {
	defer func(begin time.Time) { a.record(ctx, "audiences", begin, err) }(time.Now())
	return a.next.Audiences(ctx)
}

func (a *InstrumentedAPI) Manifest(ctx context.Context) (manifest models.Manifest, err error) {
	defer func(begin time.Time) { a.record(ctx, "master_manifest", begin, err) }(time.Now())
	return a.next.Manifest(ctx)
}

func (a *InstrumentedAPI) Generate(ctx context.Context, req models.GenerateRequest) (result models.GenerateResult, err error) {
	defer func(begin time.Time) { a.record(ctx, "generate", begin, err) }(time.Now())
	return a.next.Generate(ctx, req)
}

func (a *InstrumentedAPI) Search(ctx context.Context, req models.SearchRequest) (resp models.SearchResponse, err error) {
	defer func(begin time.Time) { a.record(ctx, "search", begin, err) }(time.Now())
	return a.next.Search(ctx, req)
}

// Outcome names the class of a backend error for metrics and logs
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if IsCompliance(err) {
		return "compliance_failed"
	}
	var se *StatusError
	if errors.As(err, &se) {
		return "http_error"
	}
	if errors.Is(err, ErrBackendUnavailable) {
		return "unavailable"
	}
	return "error"
}
