package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/service"
)

// StudioEndpoints holds all endpoints for the studio service
type StudioEndpoints struct {
	HomeEndpoint             endpoint.Endpoint
	SuggestCountriesEndpoint endpoint.Endpoint
	SuggestAudiencesEndpoint endpoint.Endpoint
	SelectCountryEndpoint    endpoint.Endpoint
	EditProductsEndpoint     endpoint.Endpoint
	SubmitEndpoint           endpoint.Endpoint
	JobEndpoint              endpoint.Endpoint
	HistoryEndpoint          endpoint.Endpoint
	CampaignDetailEndpoint   endpoint.Endpoint
	SearchEndpoint           endpoint.Endpoint
	TemplateEndpoint         endpoint.Endpoint
}

// MakeStudioEndpoints creates endpoints for the studio service
func MakeStudioEndpoints(s service.StudioService) StudioEndpoints {
	return StudioEndpoints{
		HomeEndpoint:             makeHomeEndpoint(s),
		SuggestCountriesEndpoint: makeSuggestCountriesEndpoint(s),
		SuggestAudiencesEndpoint: makeSuggestAudiencesEndpoint(s),
		SelectCountryEndpoint:    makeSelectCountryEndpoint(s),
		EditProductsEndpoint:     makeEditProductsEndpoint(s),
		SubmitEndpoint:           makeSubmitEndpoint(s),
		JobEndpoint:              makeJobEndpoint(s),
		HistoryEndpoint:          makeHistoryEndpoint(s),
		CampaignDetailEndpoint:   makeCampaignDetailEndpoint(s),
		SearchEndpoint:           makeSearchEndpoint(s),
		TemplateEndpoint:         makeTemplateEndpoint(s),
	}
}

// HomeRequest asks for the initial page
type HomeRequest struct{}

// HomeResponse carries the catalog for the form
type HomeResponse struct {
	Page service.HomePage
	Err  error
}

// Failed implements the endpoint.Failer interface
func (r HomeResponse) Failed() error { return r.Err }

func makeHomeEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		page, err := s.Home(ctx)
		return HomeResponse{Page: page, Err: err}, nil
	}
}

// SuggestRequest is an autocomplete query
type SuggestRequest struct {
	Query string
}

// SuggestCountriesResponse is the country dropdown state
type SuggestCountriesResponse struct {
	Suggestions catalog.Suggestions[models.Country]
	Err         error
}

// Failed implements the endpoint.Failer interface
func (r SuggestCountriesResponse) Failed() error { return r.Err }

func makeSuggestCountriesEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(SuggestRequest)
		suggestions, err := s.SuggestCountries(ctx, req.Query)
		return SuggestCountriesResponse{Suggestions: suggestions, Err: err}, nil
	}
}

// SuggestAudiencesResponse is the audience dropdown state
type SuggestAudiencesResponse struct {
	Suggestions catalog.Suggestions[models.Audience]
	Err         error
}

// Failed implements the endpoint.Failer interface
func (r SuggestAudiencesResponse) Failed() error { return r.Err }

func makeSuggestAudiencesEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(SuggestRequest)
		suggestions, err := s.SuggestAudiences(ctx, req.Query)
		return SuggestAudiencesResponse{Suggestions: suggestions, Err: err}, nil
	}
}

// SelectCountryRequest picks a country from the dropdown. An empty code
// clears the selection.
type SelectCountryRequest struct {
	Code string
}

// SelectCountryResponse is the country field to show
type SelectCountryResponse struct {
	Choice service.CountryChoice
	Err    error
}

// Failed implements the endpoint.Failer interface
func (r SelectCountryResponse) Failed() error { return r.Err }

func makeSelectCountryEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(SelectCountryRequest)
		choice, err := s.SelectCountry(ctx, req.Code)
		return SelectCountryResponse{Choice: choice, Err: err}, nil
	}
}

// EditProductsRequest is a key press or tag removal
type EditProductsRequest struct {
	Edit service.ProductEdit
}

// EditProductsResponse is the new tag widget state
type EditProductsResponse struct {
	Edit service.ProductEdit
	Err  error
}

// Failed implements the endpoint.Failer interface
func (r EditProductsResponse) Failed() error { return r.Err }

func makeEditProductsEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(EditProductsRequest)
		edit, err := s.EditProducts(ctx, req.Edit)
		return EditProductsResponse{Edit: edit, Err: err}, nil
	}
}

// SubmitRequest is the submitted campaign form
type SubmitRequest struct {
	Draft models.CampaignDraft
}

// SubmitResponse carries the started job
type SubmitResponse struct {
	JobID    string
	Snapshot progress.Snapshot
	Err      error
}

// Failed implements the endpoint.Failer interface
func (r SubmitResponse) Failed() error { return r.Err }

// makeSubmitEndpoint starts the job and returns its first snapshot so the
// progress bar renders without waiting for a poll
func makeSubmitEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(SubmitRequest)
		id, err := s.Submit(ctx, req.Draft)
		if err != nil {
			return SubmitResponse{Err: err}, nil
		}
		snap, err := s.Job(ctx, id)
		return SubmitResponse{JobID: id, Snapshot: snap, Err: err}, nil
	}
}

// IDRequest names a job or campaign
type IDRequest struct {
	ID string
}

// JobResponse is the progress of a job
type JobResponse struct {
	Snapshot progress.Snapshot
	Err      error
}

// Failed implements the endpoint.Failer interface
func (r JobResponse) Failed() error { return r.Err }

func makeJobEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(IDRequest)
		snap, err := s.Job(ctx, req.ID)
		return JobResponse{Snapshot: snap, Err: err}, nil
	}
}

// HistoryResponse is the recent campaign list
type HistoryResponse struct {
	Campaigns []models.CampaignRecord
	Err       error
}

// Failed implements the endpoint.Failer interface
func (r HistoryResponse) Failed() error { return r.Err }

func makeHistoryEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		campaigns, err := s.History(ctx)
		return HistoryResponse{Campaigns: campaigns, Err: err}, nil
	}
}

// CampaignDetailResponse is one campaign for the modal
type CampaignDetailResponse struct {
	Campaign models.CampaignRecord
	Err      error
}

// Failed implements the endpoint.Failer interface
func (r CampaignDetailResponse) Failed() error { return r.Err }

func makeCampaignDetailEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(IDRequest)
		campaign, err := s.CampaignDetail(ctx, req.ID)
		return CampaignDetailResponse{Campaign: campaign, Err: err}, nil
	}
}

// SearchRequest is a similarity query
type SearchRequest struct {
	Query string
}

// SearchResponse is the ranked result list
type SearchResponse struct {
	Result models.SearchResponse
	Err    error
}

// Failed implements the endpoint.Failer interface
func (r SearchResponse) Failed() error { return r.Err }

func makeSearchEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(SearchRequest)
		result, err := s.Search(ctx, req.Query)
		return SearchResponse{Result: result, Err: err}, nil
	}
}

// TemplateResponse is a draft rebuilt from a past campaign
type TemplateResponse struct {
	Template service.TemplateDraft
	Err      error
}

// Failed implements the endpoint.Failer interface
func (r TemplateResponse) Failed() error { return r.Err }

func makeTemplateEndpoint(s service.StudioService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(IDRequest)
		tpl, err := s.Template(ctx, req.ID)
		return TemplateResponse{Template: tpl, Err: err}, nil
	}
}
