package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/config"
	reqcontext "github.com/prajwalbharadwajbm/campaignstudio/internal/context"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/endpoint"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/service"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/view"
)

const (
	pageTitle = "Creative Automation Studio"

	// TemplateNotice is shown above the form after a past campaign was loaded into it
	TemplateNotice = "Campaign template loaded! You can now modify the fields and generate a new campaign."

	formAlertTarget = "#form-alert"
	htmlContentType = "text/html; charset=utf-8"
)

// Options configures the non-endpoint routes of the handler
type Options struct {
	Version string
	// Gatherer backs /metrics. The route is not registered when nil.
	Gatherer prometheus.Gatherer
	// Assets serves generated images under /assets/. The route is not
	// registered when nil.
	Assets http.Handler
	// CacheHealth is reported by /health when set
	CacheHealth func() config.CacheHealthCheck
	// InvalidateCache backs POST /cache/invalidate when set
	InvalidateCache func(context.Context) error
}

// NewHTTPHandler creates the HTTP handlers for the studio UI
func NewHTTPHandler(endpoints endpoint.StudioEndpoints, renderer *view.Renderer, opts Options, logger log.Logger) http.Handler {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	h := &htmlEncoder{renderer: renderer, logger: logger}

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(h.encodeError),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(level.Error(logger))),
	}

	server := func(e func(context.Context, interface{}) (interface{}, error), dec httptransport.DecodeRequestFunc, enc httptransport.EncodeResponseFunc) http.Handler {
		return httptransport.NewServer(e, dec, enc, options...)
	}

	r := mux.NewRouter()

	r.Handle("/", server(endpoints.HomeEndpoint, decodeHomeRequest, h.encodeHomeResponse)).Methods("GET")

	ui := r.PathPrefix("/ui").Subrouter()
	ui.Handle("/countries", server(endpoints.SuggestCountriesEndpoint, decodeSuggestRequest, h.encodeSuggestCountriesResponse)).Methods("GET")
	ui.Handle("/audiences", server(endpoints.SuggestAudiencesEndpoint, decodeSuggestRequest, h.encodeSuggestAudiencesResponse)).Methods("GET")
	ui.Handle("/country", server(endpoints.SelectCountryEndpoint, decodeSelectCountryRequest, h.encodeSelectCountryResponse)).Methods("POST")
	ui.Handle("/country/clear", server(endpoints.SelectCountryEndpoint, decodeClearCountryRequest, h.encodeSelectCountryResponse)).Methods("POST")
	ui.Handle("/products", server(endpoints.EditProductsEndpoint, decodeEditProductsRequest, h.encodeEditProductsResponse)).Methods("POST")
	ui.Handle("/campaigns", server(endpoints.SubmitEndpoint, decodeSubmitRequest, h.encodeSubmitResponse)).Methods("POST")
	ui.Handle("/jobs/{id}", server(endpoints.JobEndpoint, decodeIDRequest, h.encodeJobResponse)).Methods("GET")
	ui.Handle("/history", server(endpoints.HistoryEndpoint, decodeHistoryRequest, h.encodeHistoryResponse)).Methods("GET")
	ui.Handle("/campaigns/{id}/template", server(endpoints.TemplateEndpoint, decodeIDRequest, h.encodeTemplateResponse)).Methods("GET")
	ui.Handle("/campaigns/{id}", server(endpoints.CampaignDetailEndpoint, decodeIDRequest, h.encodeCampaignDetailResponse)).Methods("GET")
	ui.Handle("/search", server(endpoints.SearchEndpoint, decodeSearchRequest, h.encodeSearchResponse)).Methods("POST")

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", view.StaticHandler())).Methods("GET")
	if opts.Assets != nil {
		r.PathPrefix("/assets/").Handler(opts.Assets).Methods("GET", "HEAD")
	}
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	if opts.InvalidateCache != nil {
		r.HandleFunc("/cache/invalidate", invalidateCacheHandler(opts.InvalidateCache, logger)).Methods("POST")
	}

	// Health check endpoint
	r.HandleFunc("/health", healthHandler(opts)).Methods("GET")

	return r
}

func decodeHomeRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return endpoint.HomeRequest{}, nil
}

func decodeHistoryRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return struct{}{}, nil
}

func decodeSuggestRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return endpoint.SuggestRequest{Query: r.URL.Query().Get("q")}, nil
}

func decodeSelectCountryRequest(_ context.Context, r *http.Request) (interface{}, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return endpoint.SelectCountryRequest{Code: r.PostForm.Get("code")}, nil
}

func decodeClearCountryRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return endpoint.SelectCountryRequest{}, nil
}

func decodeEditProductsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return endpoint.EditProductsRequest{Edit: service.ProductEdit{
		Products: models.ParseProductList(r.PostForm.Get("products")),
		Key:      models.Key(r.PostForm.Get("key")),
		Input:    r.PostForm.Get("product_input"),
		Remove:   r.PostForm.Get("remove"),
	}}, nil
}

// decodeSubmitRequest reads the draft back from the form fields
func decodeSubmitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	f := r.PostForm
	return endpoint.SubmitRequest{Draft: models.CampaignDraft{
		Country:     models.Selection{Code: f.Get("country_code"), Name: f.Get("country_name")},
		Profession:  f.Get("profession"),
		Demographic: f.Get("demographic"),
		Products:    models.ParseProductList(f.Get("products")),
		Message:     f.Get("message"),
	}}, nil
}

func decodeIDRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return endpoint.IDRequest{ID: mux.Vars(r)["id"]}, nil
}

func decodeSearchRequest(_ context.Context, r *http.Request) (interface{}, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return endpoint.SearchRequest{Query: r.PostForm.Get("query")}, nil
}

// htmlEncoder renders endpoint responses as page fragments
type htmlEncoder struct {
	renderer *view.Renderer
	logger   log.Logger
}

func (h *htmlEncoder) render(w http.ResponseWriter, status int, name string, data interface{}) error {
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(status)
	return h.renderer.Render(w, name, data)
}

func (h *htmlEncoder) encodeHomeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.HomeResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	return h.render(w, http.StatusOK, view.PageTemplate, view.Page{
		Title: pageTitle,
		Form:  view.NewForm(resp.Page.Catalog, resp.Page.Draft),
	})
}

func (h *htmlEncoder) encodeSuggestCountriesResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.SuggestCountriesResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	return h.render(w, http.StatusOK, view.CountrySuggestionsTemplate, view.NewCountrySuggestions(resp.Suggestions))
}

func (h *htmlEncoder) encodeSuggestAudiencesResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.SuggestAudiencesResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	return h.render(w, http.StatusOK, view.AudienceSuggestionsTemplate, view.NewAudienceSuggestions(resp.Suggestions))
}

func (h *htmlEncoder) encodeSelectCountryResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.SelectCountryResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	c := resp.Choice
	return h.render(w, http.StatusOK, view.CountryFieldTemplate, view.NewCountryField(c.Selection, c.Countries, c.Degraded))
}

func (h *htmlEncoder) encodeEditProductsResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.EditProductsResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	return h.render(w, http.StatusOK, view.ProductsFieldTemplate, view.NewProductsField(resp.Edit.Products, resp.Edit.Input))
}

// encodeSubmitResponse renders the first progress frame. Validation
// failures are redirected to the alert slot of the form so the previous
// result stays on screen.
func (h *htmlEncoder) encodeSubmitResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.SubmitResponse)
	if resp.Err != nil {
		if models.IsValidationError(resp.Err) {
			w.Header().Set("HX-Retarget", formAlertTarget)
			w.Header().Set("HX-Reswap", "innerHTML")
		}
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	return h.render(w, http.StatusOK, view.ProgressTemplate, view.NewProgress(resp.Snapshot))
}

// encodeJobResponse renders whichever panel matches the job state. A
// failed job is a normal answer to the poll, not a transport error.
func (h *htmlEncoder) encodeJobResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.JobResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	snap := resp.Snapshot
	switch {
	case snap.Status == progress.StatusSucceeded && snap.Result != nil:
		return h.render(w, http.StatusOK, view.ResultTemplate, view.NewResult(snap))
	case snap.Status == progress.StatusFailed:
		msg := progress.FailureMessage
		if snap.Err != nil {
			msg = snap.Err.Error()
		}
		return h.render(w, http.StatusOK, view.ErrorPanelTemplate, view.ErrorPanel{Message: msg})
	default:
		return h.render(w, http.StatusOK, view.ProgressTemplate, view.NewProgress(snap))
	}
}

// encodeHistoryResponse shows an unavailable notice instead of an error
// since the history panel loads on its own next to the form
func (h *htmlEncoder) encodeHistoryResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.HistoryResponse)
	if resp.Err != nil {
		level.Warn(h.logger).Log("msg", "campaign history unavailable", "request_id", reqcontext.GetRequestID(ctx), "err", resp.Err)
		return h.render(w, http.StatusOK, view.HistoryTemplate, view.HistoryView{Unavailable: true})
	}
	return h.render(w, http.StatusOK, view.HistoryTemplate, view.NewHistory(resp.Campaigns))
}

func (h *htmlEncoder) encodeCampaignDetailResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.CampaignDetailResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	return h.render(w, http.StatusOK, view.CampaignDetailTemplate, view.NewCampaignDetail(resp.Campaign))
}

func (h *htmlEncoder) encodeSearchResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.SearchResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	return h.render(w, http.StatusOK, view.SearchResultsTemplate, view.NewSearch(resp.Result))
}

// encodeTemplateResponse swaps the form in place for htmx requests and
// serves the whole page otherwise
func (h *htmlEncoder) encodeTemplateResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.TemplateResponse)
	if resp.Err != nil {
		h.encodeError(ctx, resp.Err, w)
		return nil
	}
	form := view.NewForm(resp.Template.Catalog, resp.Template.Draft)
	form.Notice = TemplateNotice
	if reqcontext.IsPartial(ctx) {
		return h.render(w, http.StatusOK, view.FormTemplate, form)
	}
	return h.render(w, http.StatusOK, view.PageTemplate, view.Page{Title: pageTitle, Form: form})
}

// encodeError renders err as a fragment. Status codes are 4xx/5xx so the
// page script can tell them apart, but every one carries markup to swap in.
func (h *htmlEncoder) encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	status := errorStatus(err)
	name, data := view.ErrorPanelTemplate, interface{}(view.ErrorPanel{Message: err.Error()})
	if models.IsValidationError(err) {
		name, data = view.AlertTemplate, view.Alert{Message: err.Error()}
	}

	if status >= http.StatusInternalServerError {
		info := reqcontext.GetRequestInfo(ctx)
		level.Warn(h.logger).Log(
			"msg", "request failed",
			"request_id", info.ID,
			"partial", info.Partial,
			"took", time.Since(info.StartTime),
			"status", status,
			"err", err,
		)
	}
	if rerr := h.render(w, status, name, data); rerr != nil {
		level.Error(h.logger).Log("msg", "rendering error fragment", "err", rerr)
	}
}

func errorStatus(err error) int {
	switch {
	case models.IsValidationError(err), errors.Is(err, service.ErrUnknownCountry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrCampaignNotFound), errors.Is(err, progress.ErrJobNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// healthHandler handles health check requests
func healthHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"status":  "healthy",
			"service": "campaignstudio",
			"version": opts.Version,
		}
		if opts.CacheHealth != nil {
			response["cache"] = opts.CacheHealth()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// invalidateCacheHandler drops the cached catalogs so the next page load
// reads them from the backend again
func invalidateCacheHandler(invalidate func(context.Context) error, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := invalidate(r.Context()); err != nil {
			level.Error(logger).Log("msg", "cache invalidation failed", "request_id", reqcontext.GetRequestID(r.Context()), "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "invalidated"})
	}
}
