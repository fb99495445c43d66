package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"

	reqcontext "github.com/prajwalbharadwajbm/campaignstudio/internal/context"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// ErrMalformedResponse is returned when a 2xx body cannot be decoded
var ErrMalformedResponse = errors.New("malformed backend response")

// API is the campaign generation backend as seen by the UI
type API interface {
	Countries(ctx context.Context) ([]models.Country, error)
	Audiences(ctx context.Context) ([]models.Audience, error)
	Manifest(ctx context.Context) (models.Manifest, error)
	Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResult, error)
	Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error)
}

// Options configures the HTTP client
type Options struct {
	BaseURL string
	// Timeout applies to every call except generation
	Timeout time.Duration
	// GenerateTimeout applies to generation, which renders images and runs long
	GenerateTimeout time.Duration
}

// Client talks to the backend through go-kit client endpoints
type Client struct {
	countries endpoint.Endpoint
	audiences endpoint.Endpoint
	manifest  endpoint.Endpoint
	generate  endpoint.Endpoint
	search    endpoint.Endpoint
}

// NewClient builds one endpoint per backend route
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", opts.BaseURL)
	}

	short := &http.Client{Timeout: opts.Timeout}
	long := &http.Client{Timeout: opts.GenerateTimeout}

	target := func(path string) *url.URL {
		u := *base
		u.Path = base.Path + path
		return &u
	}
	options := func(c *http.Client) []httptransport.ClientOption {
		return []httptransport.ClientOption{
			httptransport.SetClient(c),
			httptransport.ClientBefore(propagateRequestID),
		}
	}

	return &Client{
		countries: httptransport.NewClient(http.MethodGet, target("/api/countries"),
			encodeEmpty, decodeJSON[models.CountriesResponse]("countries"), options(short)...).Endpoint(),
		audiences: httptransport.NewClient(http.MethodGet, target("/api/audiences"),
			encodeEmpty, decodeJSON[models.AudiencesResponse]("audiences"), options(short)...).Endpoint(),
		manifest: httptransport.NewClient(http.MethodGet, target("/api/master-manifest"),
			encodeEmpty, decodeJSON[models.Manifest]("master-manifest"), options(short)...).Endpoint(),
		generate: httptransport.NewClient(http.MethodPost, target("/campaigns/generate"),
			httptransport.EncodeJSONRequest, decodeGenerateResponse, options(long)...).Endpoint(),
		search: httptransport.NewClient(http.MethodPost, target("/campaigns/search"),
			httptransport.EncodeJSONRequest, decodeJSON[models.SearchResponse]("search"), options(short)...).Endpoint(),
	}, nil
}

// Countries fetches GET /api/countries
func (c *Client) Countries(ctx context.Context) ([]models.Country, error) {
	resp, err := call[models.CountriesResponse](ctx, c.countries, nil)
	return resp.Countries, err
}

// Audiences fetches GET /api/audiences
func (c *Client) Audiences(ctx context.Context) ([]models.Audience, error) {
	resp, err := call[models.AudiencesResponse](ctx, c.audiences, nil)
	return resp.Audiences, err
}

// Manifest fetches GET /api/master-manifest
func (c *Client) Manifest(ctx context.Context) (models.Manifest, error) {
	return call[models.Manifest](ctx, c.manifest, nil)
}

// Generate posts a brief to /campaigns/generate
func (c *Client) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResult, error) {
	return call[models.GenerateResult](ctx, c.generate, req)
}

// Search posts a similarity query to /campaigns/search
func (c *Client) Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	return call[models.SearchResponse](ctx, c.search, req)
}

func call[T any](ctx context.Context, e endpoint.Endpoint, request any) (T, error) {
	var zero T
	response, err := e(ctx, request)
	if err != nil {
		return zero, classify(err)
	}
	out, ok := response.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected type %T", ErrMalformedResponse, response)
	}
	return out, nil
}

// classify leaves backend answers alone and marks everything else as
// a transport failure
func classify(err error) error {
	var se *StatusError
	var ce *ComplianceError
	switch {
	case errors.As(err, &se), errors.As(err, &ce), errors.Is(err, ErrMalformedResponse):
		return err
	default:
		return &UnavailableError{Cause: err}
	}
}

func propagateRequestID(ctx context.Context, r *http.Request) context.Context {
	if id := reqcontext.GetRequestID(ctx); id != "" {
		r.Header.Set("X-Request-ID", id)
	}
	r.Header.Set("Accept", "application/json")
	return ctx
}

func encodeEmpty(context.Context, *http.Request, interface{}) error {
	return nil
}

func decodeJSON[T any](operation string) httptransport.DecodeResponseFunc {
	return func(_ context.Context, resp *http.Response) (interface{}, error) {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, newStatusError(operation, resp)
		}
		var out T
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, operation, err)
		}
		return out, nil
	}
}

// decodeGenerateResponse distinguishes compliance rejections, which come
// back as 400 {"detail":{"compliance":{...}}}, from other failures
func decodeGenerateResponse(ctx context.Context, resp *http.Response) (interface{}, error) {
	if resp.StatusCode == http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var detail models.ComplianceDetail
		if err := json.Unmarshal(body, &detail); err == nil && detail.Detail.Compliance != nil {
			return nil, &ComplianceError{Message: detail.Detail.Compliance.Message}
		}
		return nil, &StatusError{Operation: "generate", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return decodeJSON[models.GenerateResult]("generate")(ctx, resp)
}

func newStatusError(operation string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body)}
}
