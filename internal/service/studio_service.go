package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/backend"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	reqcontext "github.com/prajwalbharadwajbm/campaignstudio/internal/context"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
)

var (
	// ErrCampaignNotFound is returned when the manifest has no such campaign
	ErrCampaignNotFound = errors.New("Campaign not found. It may have been deleted.")
	// ErrUnknownCountry is returned when a selection matches no catalog entry
	ErrUnknownCountry = errors.New("unknown country")
)

// StudioService defines the operations behind the campaign studio UI
type StudioService interface {
	Home(ctx context.Context) (HomePage, error)
	SuggestCountries(ctx context.Context, query string) (catalog.Suggestions[models.Country], error)
	SuggestAudiences(ctx context.Context, query string) (catalog.Suggestions[models.Audience], error)
	SelectCountry(ctx context.Context, codeOrName string) (CountryChoice, error)
	EditProducts(ctx context.Context, edit ProductEdit) (ProductEdit, error)
	Submit(ctx context.Context, draft models.CampaignDraft) (string, error)
	Job(ctx context.Context, id string) (progress.Snapshot, error)
	History(ctx context.Context) ([]models.CampaignRecord, error)
	CampaignDetail(ctx context.Context, id string) (models.CampaignRecord, error)
	Search(ctx context.Context, query string) (models.SearchResponse, error)
	Template(ctx context.Context, id string) (TemplateDraft, error)
}

// HomePage is everything the initial page render needs
type HomePage struct {
	Catalog *models.Catalog
	Draft   models.CampaignDraft
}

// CountryChoice is the country field after a pick or a clear. Countries
// and Degraded describe the catalog the search box searches.
type CountryChoice struct {
	Selection models.Selection
	Countries int
	Degraded  bool
}

// ProductEdit is one key press on the product tag input. Remove, when
// set, drops that tag instead of interpreting Key.
type ProductEdit struct {
	Products models.ProductList
	Key      models.Key
	Input    string
	Remove   string
}

// TemplateDraft is a draft rebuilt from a past campaign, with the catalog
// needed to render the form around it
type TemplateDraft struct {
	Catalog    *models.Catalog
	Draft      models.CampaignDraft
	CampaignID string
}

// Options tunes the studio service
type Options struct {
	HistoryLimit    int
	SearchTopK      int
	GenerateTimeout time.Duration
}

// Studio implements StudioService on top of the backend API
type Studio struct {
	api     backend.API
	loader  *catalog.Loader
	tracker *progress.Tracker
	opts    Options
	logger  log.Logger
}

// NewStudio creates the studio service
func NewStudio(api backend.API, loader *catalog.Loader, tracker *progress.Tracker, opts Options, logger log.Logger) *Studio {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.SearchTopK <= 0 {
		opts.SearchTopK = 5
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 10 * time.Minute
	}
	return &Studio{
		api:     api,
		loader:  loader,
		tracker: tracker,
		opts:    opts,
		logger:  logger,
	}
}

// Home loads the reference catalog for the form. It never fails: the
// loader substitutes defaults for whatever the backend could not serve.
func (s *Studio) Home(ctx context.Context) (HomePage, error) {
	return HomePage{Catalog: s.loader.Load(ctx)}, nil
}

// SuggestCountries filters the country catalog for the autocomplete
func (s *Studio) SuggestCountries(ctx context.Context, query string) (catalog.Suggestions[models.Country], error) {
	// short queries never need the catalog
	if !catalog.Searchable(query) {
		return catalog.FilterCountries(query, nil), nil
	}
	return catalog.FilterCountries(query, s.loader.Load(ctx).Countries), nil
}

// SuggestAudiences filters the audience catalog for the autocomplete
func (s *Studio) SuggestAudiences(ctx context.Context, query string) (catalog.Suggestions[models.Audience], error) {
	if !catalog.Searchable(query) {
		return catalog.FilterAudiences(query, nil), nil
	}
	return catalog.FilterAudiences(query, s.loader.Load(ctx).Audiences), nil
}

// SelectCountry resolves a dropdown pick into the chip shown in the form.
// A blank pick clears the selection.
func (s *Studio) SelectCountry(ctx context.Context, codeOrName string) (CountryChoice, error) {
	cat := s.loader.Load(ctx)
	choice := CountryChoice{Countries: len(cat.Countries), Degraded: cat.CountriesDegraded}

	codeOrName = strings.TrimSpace(codeOrName)
	if codeOrName == "" {
		return choice, nil
	}
	country, ok := cat.FindCountry(codeOrName)
	if !ok {
		return CountryChoice{}, fmt.Errorf("%w: %q", ErrUnknownCountry, codeOrName)
	}
	choice.Selection = models.Selection{Code: country.Code, Name: country.Name}
	return choice, nil
}

// EditProducts applies one product tag interaction
func (s *Studio) EditProducts(_ context.Context, edit ProductEdit) (ProductEdit, error) {
	if edit.Remove != "" {
		return ProductEdit{Products: edit.Products.Remove(edit.Remove), Input: edit.Input}, nil
	}
	products, input := edit.Products.HandleKey(edit.Key, edit.Input)
	return ProductEdit{Products: products, Input: input}, nil
}

// Submit validates the draft and starts generation in the background.
// Nothing is sent to the backend unless validation passes.
func (s *Studio) Submit(ctx context.Context, draft models.CampaignDraft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	req := draft.ToGenerateRequest()
	requestID := reqcontext.GetRequestID(ctx)
	timeout := s.opts.GenerateTimeout

	// generation outlives the submitting request, so it runs on the
	// tracker's context and only keeps the request id
	id := s.tracker.Start(draft, func(ctx context.Context) (models.GenerateResult, error) {
		ctx, cancel := context.WithTimeout(reqcontext.WithRequestID(ctx, requestID), timeout)
		defer cancel()
		return s.api.Generate(ctx, req)
	})

	level.Info(s.logger).Log(
		"msg", "campaign submitted",
		"job_id", id,
		"request_id", requestID,
		"country", req.CountryName,
		"audience", req.Audience,
		"products", len(req.Products),
	)
	return id, nil
}

// Job returns the progress of a submitted campaign
func (s *Studio) Job(_ context.Context, id string) (progress.Snapshot, error) {
	return s.tracker.Snapshot(id)
}

// History returns the most recent campaigns, newest first
func (s *Studio) History(ctx context.Context) ([]models.CampaignRecord, error) {
	manifest, err := s.api.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading campaign history: %w", err)
	}
	return manifest.Recent(s.opts.HistoryLimit), nil
}

// CampaignDetail returns one campaign of the manifest
func (s *Studio) CampaignDetail(ctx context.Context, id string) (models.CampaignRecord, error) {
	manifest, err := s.api.Manifest(ctx)
	if err != nil {
		return models.CampaignRecord{}, fmt.Errorf("loading campaign history: %w", err)
	}
	record, ok := manifest.Find(id)
	if !ok {
		return models.CampaignRecord{}, ErrCampaignNotFound
	}
	return record, nil
}

// Search looks up past campaigns similar to query
func (s *Studio) Search(ctx context.Context, query string) (models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.SearchResponse{}, models.ErrEmptySearchQuery
	}
	resp, err := s.api.Search(ctx, models.SearchRequest{Query: query, TopK: s.opts.SearchTopK})
	if err != nil {
		return models.SearchResponse{}, fmt.Errorf("Search failed: %w", err)
	}
	if resp.Query == "" {
		resp.Query = query
	}
	return resp, nil
}

// Template rebuilds a draft from a past campaign so it can be edited and
// submitted again
func (s *Studio) Template(ctx context.Context, id string) (TemplateDraft, error) {
	record, err := s.CampaignDetail(ctx, id)
	if err != nil {
		return TemplateDraft{}, err
	}
	cat := s.loader.Load(ctx)
	req := record.Request

	var draft models.CampaignDraft
	for _, p := range req.Products {
		draft.Products = draft.Products.Add(p)
	}
	if raw := req.Country(); raw != "" {
		if country, ok := cat.FindCountry(raw); ok {
			draft.Country = models.Selection{Code: country.Code, Name: country.Name}
		} else {
			draft.Country = models.Selection{Code: raw, Name: raw}
		}
	}
	draft.Profession, draft.Demographic = cat.SplitAudience(req.Audience)
	draft.Message = req.Message

	return TemplateDraft{Catalog: cat, Draft: draft, CampaignID: record.CampaignID}, nil
}
