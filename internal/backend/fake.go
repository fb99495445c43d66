package backend

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// prohibitedWords trip the fake compliance check
var prohibitedWords = []string{"guaranteed", "miracle", "risk-free"}

// fakeAPI implements API in memory for demos and tests
type fakeAPI struct {
	mu        sync.RWMutex
	countries []models.Country
	audiences []models.Audience
	campaigns []models.CampaignRecord
	now       func() time.Time
}

// NewFakeAPI creates an in-memory backend seeded with sample data
func NewFakeAPI() API {
	now := time.Now()

	return &fakeAPI{
		countries: []models.Country{
			{Code: "US", Name: "United States", PrimaryLanguage: "English", Region: "North America"},
			{Code: "MX", Name: "Mexico", PrimaryLanguage: "Spanish", Region: "North America"},
			{Code: "DE", Name: "Germany", PrimaryLanguage: "German", Region: "Europe"},
			{Code: "JP", Name: "Japan", PrimaryLanguage: "Japanese", Region: "Asia"},
		},
		audiences: []models.Audience{
			{ID: "construction_workers", Label: "Construction Workers", Description: "Workers in building and trades", Category: models.CategoryProfessions},
			{ID: "healthcare_workers", Label: "Healthcare Workers", Description: "Nurses, doctors and medical staff", Category: models.CategoryProfessions},
			{ID: "young_adults", Label: "Young Adults", Description: "Ages 18 to 25", Category: models.CategoryDemographics},
			{ID: "millennials", Label: "Millennials", Description: "Born 1981 to 1996", Category: models.CategoryDemographics},
		},
		campaigns: []models.CampaignRecord{
			sampleRecord("3f9c2a1e-winter-boots", now.Add(-48*time.Hour), models.RecordRequest{
				Products:    []string{"Winter Boots"},
				CountryName: "US",
				Audience:    "construction_workers_young_adults",
				Message:     "Stay warm on every site",
			}),
			sampleRecord("8b7d4c2f-scrubs", now.Add(-24*time.Hour), models.RecordRequest{
				Products: []string{"Scrubs", "Clogs"},
				Region:   "DE",
				Audience: "healthcare_workers_millennials",
				Message:  "Comfort for long shifts",
			}),
		},
		now: time.Now,
	}
}

func sampleRecord(id string, at time.Time, req models.RecordRequest) models.CampaignRecord {
	outputs := renderOutputs(id, req.Products)
	return models.CampaignRecord{
		CampaignID: id,
		Timestamp:  at.Format(timestampLayout),
		Request:    req,
		Response: models.RecordResponse{
			CampaignID: id,
			Outputs:    outputs,
			Compliance: models.Compliance{Status: "Approved"},
		},
		Metadata: models.RecordMetadata{
			GeneratedAt:   at.Format(time.RFC3339),
			TotalProducts: len(req.Products),
			TotalImages:   outputs.Len() * len(models.AspectRatios),
		},
	}
}

const timestampLayout = "20060102_150405"

func renderOutputs(campaignID string, products []string) models.Outputs {
	var outputs models.Outputs
	for _, p := range products {
		slug := strings.ReplaceAll(strings.ToLower(p), " ", "_")
		images := models.ProductOutputs{}
		for _, ratio := range models.AspectRatios {
			images[ratio] = fmt.Sprintf("assets/%s/%s/%s.png", campaignID, slug, strings.ReplaceAll(string(ratio), ":", "x"))
		}
		outputs.Set(p, images)
	}
	return outputs
}

func (f *fakeAPI) Countries(ctx context.Context) ([]models.Country, error) {
	return slices.Clone(f.countries), nil
}

func (f *fakeAPI) Audiences(ctx context.Context) ([]models.Audience, error) {
	return slices.Clone(f.audiences), nil
}

func (f *fakeAPI) Manifest(ctx context.Context) (models.Manifest, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return models.Manifest{
		Campaigns:  slices.Clone(f.campaigns),
		TotalCount: len(f.campaigns),
	}, nil
}

// Generate rejects prohibited wording the way the real compliance check
// does and otherwise records a new campaign
func (f *fakeAPI) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResult, error) {
	lower := strings.ToLower(req.Message)
	for _, w := range prohibitedWords {
		if strings.Contains(lower, w) {
			return models.GenerateResult{}, &ComplianceError{Message: fmt.Sprintf("Message contains prohibited term %q", w)}
		}
	}

	at := f.now()
	id := uuid.New().String()
	record := sampleRecord(id, at, models.RecordRequest{
		Products:    req.Products,
		CountryName: req.CountryName,
		Audience:    req.Audience,
		Message:     req.Message,
	})

	f.mu.Lock()
	f.campaigns = append(f.campaigns, record)
	f.mu.Unlock()

	return models.GenerateResult{
		CampaignID: id,
		Compliance: record.Response.Compliance,
		Outputs:    record.Response.Outputs,
		Metadata: &models.Metadata{
			GeneratedAt:   record.Metadata.GeneratedAt,
			TotalProducts: record.Metadata.TotalProducts,
			TotalImages:   record.Metadata.TotalImages,
			LLMUsage:      &models.LLMUsage{Model: "fake"},
		},
	}, nil
}

// Search scores campaigns by the share of query words found in their
// message and products
func (f *fakeAPI) Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	words := strings.Fields(strings.ToLower(req.Query))

	f.mu.RLock()
	defer f.mu.RUnlock()

	var results []models.SearchResult
	for _, c := range f.campaigns {
		haystack := strings.ToLower(c.Request.Message + " " + strings.Join(c.Request.Products, " "))
		hits := 0
		for _, w := range words {
			if strings.Contains(haystack, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(words))
		results = append(results, models.SearchResult{
			CampaignID:      c.CampaignID,
			Message:         c.Request.Message,
			SimilarityScore: &score,
			FullCampaign:    c,
		})
	}
	slices.SortStableFunc(results, func(a, b models.SearchResult) int {
		switch {
		case *a.SimilarityScore > *b.SimilarityScore:
			return -1
		case *a.SimilarityScore < *b.SimilarityScore:
			return 1
		}
		return 0
	})
	if req.TopK > 0 && len(results) > req.TopK {
		results = results[:req.TopK]
	}
	return models.SearchResponse{Results: results, Query: req.Query, TotalResults: len(results)}, nil
}
