package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/backend"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/endpoint"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/middleware"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/service"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/view"
)

// countingAPI wraps the in-memory backend to count generation calls.
// Generation waits for release so the first progress frame is always a
// running one.
type countingAPI struct {
	backend.API
	generates   atomic.Int32
	release      chan struct{}
	manifestErr  error
	countriesErr error
}

func newCountingAPI() *countingAPI {
	return &countingAPI{API: backend.NewFakeAPI(), release: make(chan struct{})}
}

func (c *countingAPI) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResult, error) {
	c.generates.Add(1)
	select {
	case <-c.release:
	case <-ctx.Done():
		return models.GenerateResult{}, ctx.Err()
	}
	return c.API.Generate(ctx, req)
}

func (c *countingAPI) Countries(ctx context.Context) ([]models.Country, error) {
	if c.countriesErr != nil {
		return nil, c.countriesErr
	}
	return c.API.Countries(ctx)
}

func (c *countingAPI) Manifest(ctx context.Context) (models.Manifest, error) {
	if c.manifestErr != nil {
		return models.Manifest{}, c.manifestErr
	}
	return c.API.Manifest(ctx)
}

func newTestHandler(t *testing.T, api backend.API) http.Handler {
	t.Helper()
	logger := log.NewNopLogger()

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	tracker := progress.NewTracker(progress.Options{Interval: 5 * time.Millisecond}, logger)
	t.Cleanup(tracker.Close)

	svc := service.NewStudio(api, catalog.NewLoader(api, logger), tracker, service.Options{}, logger)
	handler := NewHTTPHandler(endpoint.MakeStudioEndpoints(svc), renderer, Options{}, logger)
	return middleware.NewRequestIDMiddleware().Middleware(handler)
}

func doForm(t *testing.T, h http.Handler, method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func validDraft() url.Values {
	return url.Values{
		"country_code": {"US"},
		"country_name": {"United States"},
		"profession":   {"construction_workers"},
		"demographic":  {"young_adults"},
		"products":     {"Winter Boots,Gloves"},
		"message":      {"Stay warm this winter"},
	}
}

func TestNewHTTPHandler(t *testing.T) {
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	handler := NewHTTPHandler(endpoint.StudioEndpoints{}, renderer, Options{}, log.NewNopLogger())

	assert.NotNil(t, handler)
	assert.IsType(t, &mux.Router{}, handler)
}

func TestHealthEndpoint(t *testing.T) {
	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	handler := NewHTTPHandler(endpoint.StudioEndpoints{}, renderer, Options{Version: "2.1.0"}, log.NewNopLogger())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	assert.Equal(t, "campaignstudio", response["service"])
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "2.1.0", response["version"])
}

func TestInvalidateCacheEndpoint(t *testing.T) {
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	unrouted := NewHTTPHandler(endpoint.StudioEndpoints{}, renderer, Options{}, log.NewNopLogger())
	w := httptest.NewRecorder()
	unrouted.ServeHTTP(w, httptest.NewRequest("POST", "/cache/invalidate", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var calls int
	failWith := error(nil)
	handler := NewHTTPHandler(endpoint.StudioEndpoints{}, renderer, Options{
		InvalidateCache: func(context.Context) error {
			calls++
			return failWith
		},
	}, log.NewNopLogger())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/cache/invalidate", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"invalidated"}`, w.Body.String())

	failWith = errors.New("redis: connection refused")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/cache/invalidate", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/cache/invalidate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 2, calls)
}

func TestHomePage(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "GET", "/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, htmlContentType, w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	doc := parse(t, w)
	assert.Equal(t, pageTitle, doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find("#campaign-form").Length())
	placeholder, _ := doc.Find("#regionSearch").Attr("placeholder")
	assert.Equal(t, "Search 4 countries...", placeholder)
	assert.Equal(t, 2, doc.Find("#profession option:not([value=''])").Length())
	assert.Equal(t, 2, doc.Find("#demographic option:not([value=''])").Length())
}

func TestStaticAssets(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "GET", "/static/app.js", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "htmx:beforeSwap")
}

func TestSuggestCountries(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	short := doForm(t, h, "GET", "/ui/countries?q=g", nil, true)
	require.Equal(t, http.StatusOK, short.Code)
	assert.Equal(t, 0, parse(t, short).Find(".dropdown-list").Length())

	w := doForm(t, h, "GET", "/ui/countries?q=ger", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	items := parse(t, w).Find(".dropdown-item")
	require.Equal(t, 1, items.Length())
	code, _ := items.Attr("value")
	assert.Equal(t, "DE", code)

	none := doForm(t, h, "GET", "/ui/countries?q=zz", nil, true)
	assert.Contains(t, none.Body.String(), "No countries found")
}

func TestSuggestAudiences(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "GET", "/ui/audiences?q=millen", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	option := parse(t, w).Find(".audience-option")
	require.Equal(t, 1, option.Length())
	target, _ := option.Attr("data-target")
	value, _ := option.Attr("data-value")
	assert.Equal(t, "demographic", target)
	assert.Equal(t, "millennials", value)
}

func TestSelectAndClearCountry(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "POST", "/ui/country", url.Values{"code": {"JP"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Contains(t, doc.Find(".country-chip").Text(), "Japan")
	code, _ := doc.Find("input[name=country_code]").Attr("value")
	assert.Equal(t, "JP", code)

	cleared := doForm(t, h, "POST", "/ui/country/clear", url.Values{}, true)
	require.Equal(t, http.StatusOK, cleared.Code)
	doc = parse(t, cleared)
	assert.Equal(t, 0, doc.Find(".country-chip").Length())
	code, _ = doc.Find("input[name=country_code]").Attr("value")
	assert.Empty(t, code)
	placeholder, _ := doc.Find("#regionSearch").Attr("placeholder")
	assert.Equal(t, "Search 4 countries...", placeholder)
	assert.Equal(t, 0, doc.Find(".field-warning").Length())

	unknown := doForm(t, h, "POST", "/ui/country", url.Values{"code": {"Atlantis"}}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, unknown.Code)
}

func TestCountryFieldKeepsFallbackWarning(t *testing.T) {
	api := newCountingAPI()
	api.countriesErr = backend.ErrBackendUnavailable
	h := newTestHandler(t, api)

	for _, tc := range []struct {
		target string
		form   url.Values
	}{
		{"/ui/country", url.Values{"code": {"DE"}}},
		{"/ui/country/clear", url.Values{}},
	} {
		w := doForm(t, h, "POST", tc.target, tc.form, true)
		require.Equal(t, http.StatusOK, w.Code, tc.target)

		doc := parse(t, w)
		assert.Contains(t, doc.Find(".field-warning").Text(), "Failed to load countries", tc.target)
		placeholder, _ := doc.Find("#regionSearch").Attr("placeholder")
		assert.Equal(t, "Search 8 countries...", placeholder, tc.target)
	}
}

func TestEditProducts(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	tests := []struct {
		name     string
		form     url.Values
		expected string
		input    string
	}{
		{
			name:     "enter adds a tag",
			form:     url.Values{"products": {"Boots"}, "product_input": {" Hat "}, "key": {"Enter"}},
			expected: "Boots,Hat",
		},
		{
			name:     "duplicate is ignored",
			form:     url.Values{"products": {"Boots"}, "product_input": {"Boots"}, "key": {"Enter"}},
			expected: "Boots",
		},
		{
			name:     "backspace on empty input removes the last tag",
			form:     url.Values{"products": {"Boots,Hat"}, "product_input": {""}, "key": {"Backspace"}},
			expected: "Boots",
		},
		{
			name:     "backspace with text keeps tags",
			form:     url.Values{"products": {"Boots,Hat"}, "product_input": {"Sc"}, "key": {"Backspace"}},
			expected: "Boots,Hat",
			input:    "Sc",
		},
		{
			name:     "remove button drops that tag",
			form:     url.Values{"products": {"Boots,Hat,Gloves"}, "remove": {"Hat"}},
			expected: "Boots,Gloves",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doForm(t, h, "POST", "/ui/products", tt.form, true)
			require.Equal(t, http.StatusOK, w.Code)

			doc := parse(t, w)
			joined, _ := doc.Find("input[name=products]").Attr("value")
			input, _ := doc.Find("#productInput").Attr("value")
			assert.Equal(t, tt.expected, joined)
			assert.Equal(t, tt.input, input)
		})
	}
}

func TestSubmit_InvalidDraftNeverCallsBackend(t *testing.T) {
	tests := []struct {
		name    string
		drop    string
		message string
	}{
		{name: "no country", drop: "country_code", message: "Please select a country/region"},
		{name: "no profession", drop: "profession", message: "Please select a profession"},
		{name: "no demographic", drop: "demographic", message: "Please select a demographic"},
		{name: "no products", drop: "products", message: "Please enter at least one product"},
		{name: "no message", drop: "message", message: "Please enter a campaign message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newCountingAPI()
			h := newTestHandler(t, api)

			form := validDraft()
			form.Del(tt.drop)
			w := doForm(t, h, "POST", "/ui/campaigns", form, true)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, formAlertTarget, w.Header().Get("HX-Retarget"))
			assert.Equal(t, tt.message, strings.TrimSpace(parse(t, w).Find(".alert").Text()))
			assert.Zero(t, api.generates.Load())
		})
	}
}

func pollJob(t *testing.T, h http.Handler, jobID string, done func(*goquery.Document) bool) *goquery.Document {
	t.Helper()
	var doc *goquery.Document
	require.Eventually(t, func() bool {
		w := doForm(t, h, "GET", "/ui/jobs/"+jobID, nil, true)
		if w.Code != http.StatusOK {
			return false
		}
		doc = parse(t, w)
		return done(doc)
	}, 2*time.Second, 10*time.Millisecond)
	return doc
}

func submit(t *testing.T, h http.Handler, form url.Values) string {
	t.Helper()
	w := doForm(t, h, "POST", "/ui/campaigns", form, true)
	require.Equal(t, http.StatusOK, w.Code)

	bar := parse(t, w).Find("#progress")
	require.Equal(t, 1, bar.Length())
	poll, ok := bar.Attr("hx-get")
	require.True(t, ok)
	return strings.TrimPrefix(poll, "/ui/jobs/")
}

func TestSubmit_ShowsResult(t *testing.T) {
	api := newCountingAPI()
	h := newTestHandler(t, api)

	jobID := submit(t, h, validDraft())
	close(api.release)
	doc := pollJob(t, h, jobID, func(d *goquery.Document) bool { return d.Find("#results").Length() == 1 })

	assert.Equal(t, int32(1), api.generates.Load())
	assert.Equal(t, "100%", doc.Find("#progressPercentage").Text())
	assert.Equal(t, progress.SuccessMessage, doc.Find("#progressMessage").Text())
	assert.Equal(t, "2", doc.Find("#productCount").Text())
	assert.Equal(t, "US", doc.Find("#campaignRegion").Text())

	doc.Find(".product-section img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		assert.True(t, strings.HasPrefix(src, "/assets/"), src)
	})
	assert.Equal(t, 6, doc.Find(".product-section img").Length())
}

func TestSubmit_ShowsComplianceFailure(t *testing.T) {
	api := newCountingAPI()
	h := newTestHandler(t, api)

	form := validDraft()
	form.Set("message", "Guaranteed warmth")
	jobID := submit(t, h, form)
	close(api.release)

	doc := pollJob(t, h, jobID, func(d *goquery.Document) bool { return d.Find("#error").Length() == 1 })
	assert.True(t, strings.HasPrefix(doc.Find("#errorMessage").Text(), "Compliance Check Failed: "))
}

func TestJob_Unknown(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "GET", "/ui/jobs/nope", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistory(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "GET", "/ui/history", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	ids := parse(t, w).Find(".history-campaign-id").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"8b7d4c2f...", "3f9c2a1e..."}, ids)
}

func TestHistory_Unavailable(t *testing.T) {
	api := newCountingAPI()
	api.manifestErr = backend.ErrBackendUnavailable
	h := newTestHandler(t, api)

	w := doForm(t, h, "GET", "/ui/history", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No campaign history available")
}

func TestCampaignDetail(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "GET", "/ui/campaigns/8b7d4c2f-scrubs", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Comfort for long shifts")

	missing := doForm(t, h, "GET", "/ui/campaigns/deleted", nil, true)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), service.ErrCampaignNotFound.Error())
}

func TestSearch(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "POST", "/ui/search", url.Values{"query": {"warm boots"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Found 1 Similar Campaign")
	assert.Contains(t, body, "100.0% Match")

	empty := doForm(t, h, "POST", "/ui/search", url.Values{"query": {"   "}}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, empty.Code)
	assert.Contains(t, empty.Body.String(), models.ErrEmptySearchQuery.Error())
	assert.Empty(t, empty.Header().Get("HX-Retarget"))
}

func TestTemplate(t *testing.T) {
	h := newTestHandler(t, backend.NewFakeAPI())

	w := doForm(t, h, "GET", "/ui/campaigns/3f9c2a1e-winter-boots/template", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)

	assert.Equal(t, 0, doc.Find("html title").Length(), "htmx requests get the form only")
	assert.Equal(t, TemplateNotice, doc.Find(".notice").Text())
	assert.Contains(t, doc.Find(".country-chip").Text(), "United States")
	profession, _ := doc.Find("#profession option[selected]").Attr("value")
	demographic, _ := doc.Find("#demographic option[selected]").Attr("value")
	assert.Equal(t, "construction_workers", profession)
	assert.Equal(t, "young_adults", demographic)
	products, _ := doc.Find("input[name=products]").Attr("value")
	assert.Equal(t, "Winter Boots", products)
	assert.Equal(t, "Stay warm on every site", doc.Find("#message").Text())

	full := doForm(t, h, "GET", "/ui/campaigns/3f9c2a1e-winter-boots/template", nil, false)
	require.Equal(t, http.StatusOK, full.Code)
	assert.True(t, strings.HasPrefix(full.Body.String(), "<!DOCTYPE html>"))
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: models.ErrMissingMessage, expected: http.StatusUnprocessableEntity},
		{name: "unknown country", err: service.ErrUnknownCountry, expected: http.StatusUnprocessableEntity},
		{name: "campaign not found", err: service.ErrCampaignNotFound, expected: http.StatusNotFound},
		{name: "job not found", err: progress.ErrJobNotFound, expected: http.StatusNotFound},
		{name: "compliance", err: &backend.ComplianceError{Message: "x"}, expected: http.StatusBadGateway},
		{name: "other", err: errors.New("boom"), expected: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errorStatus(tt.err))
		})
	}
}

func TestDecodeSubmitRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/ui/campaigns", strings.NewReader(validDraft().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	result, err := decodeSubmitRequest(context.Background(), req)

	assert.NoError(t, err)
	draft := result.(endpoint.SubmitRequest).Draft
	assert.Equal(t, models.Selection{Code: "US", Name: "United States"}, draft.Country)
	assert.Equal(t, models.ProductList{"Winter Boots", "Gloves"}, draft.Products)
	assert.Equal(t, "construction_workers_young_adults", draft.Audience())
}
