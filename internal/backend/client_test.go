package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqcontext "github.com/prajwalbharadwajbm/campaignstudio/internal/context"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second, GenerateTimeout: time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://nope"} {
		_, err := NewClient(Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestClient_Countries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/countries", r.URL.Path)
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"countries":[{"code":"BR","name":"Brazil","primary_language":"Portuguese","region":"South America"}]}`))
	})

	ctx := reqcontext.WithRequestID(context.Background(), "req-42")
	countries, err := client.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Country{{Code: "BR", Name: "Brazil", PrimaryLanguage: "Portuguese", Region: "South America"}}, countries)
}

func TestClient_Audiences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/audiences", r.URL.Path)
		w.Write([]byte(`{"audiences":[{"id":"nurses","label":"Nurses","description":"","category":"Professions"}],"total_count":1}`))
	})

	audiences, err := client.Audiences(context.Background())
	require.NoError(t, err)
	require.Len(t, audiences, 1)
	assert.Equal(t, models.CategoryProfessions, audiences[0].Category)
}

func TestClient_Manifest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/master-manifest", r.URL.Path)
		w.Write([]byte(`{"campaigns":[{"campaign_id":"abc12345-6789","timestamp":"20240101_120000","request":{"products":["A"],"region":"US","audience":"x","message":"m"}}]}`))
	})

	manifest, err := client.Manifest(context.Background())
	require.NoError(t, err)
	require.Len(t, manifest.Campaigns, 1)
	assert.Equal(t, "US", manifest.Campaigns[0].Request.Country())
}

func TestClient_Generate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/campaigns/generate", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "US", body["country_name"])
		assert.Equal(t, "construction_workers_young_adults", body["audience"])
		assert.Equal(t, []any{"Boots"}, body["products"])

		w.Write([]byte(`{
			"campaign_id": "c-1",
			"compliance": {"status": "Approved"},
			"outputs": {"Boots": {"1:1": "a.png", "16:9": "b.png", "9:16": "c.png"}},
			"metadata": {"generated_at": "2024-01-01T12:00:00", "total_images": 3, "cost_usd": 0.004,
				"llm_usage": {"model": "gpt", "prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}}
		}`))
	})

	result, err := client.Generate(context.Background(), models.GenerateRequest{
		Products:    []string{"Boots"},
		CountryName: "US",
		Audience:    "construction_workers_young_adults",
		Message:     "Hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", result.CampaignID)
	assert.Equal(t, models.ProductOutputs{"1:1": "a.png", "16:9": "b.png", "9:16": "c.png"}, result.Outputs.Images("Boots"))
	require.NotNil(t, result.Metadata)
	require.NotNil(t, result.Metadata.LLMUsage)
	assert.Equal(t, 15, result.Metadata.LLMUsage.TotalTokens)
}

func TestClient_Generate_ComplianceRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":{"compliance":{"status":"Rejected","message":"Prohibited claim"}}}`))
	})

	_, err := client.Generate(context.Background(), models.GenerateRequest{})
	require.Error(t, err)
	assert.EqualError(t, err, "Compliance Check Failed: Prohibited claim")
	assert.True(t, IsCompliance(err))
	assert.Equal(t, "compliance_failed", Outcome(err))
}

func TestClient_Generate_PlainBadRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"bad audience"}`))
	})

	_, err := client.Generate(context.Background(), models.GenerateRequest{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.EqualError(t, err, "HTTP error! status: 400")
	assert.False(t, IsCompliance(err))
}

func TestClient_StatusErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := client.Search(context.Background(), models.SearchRequest{Query: "q", TopK: 5})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "search", se.Operation)
	assert.Equal(t, 500, se.StatusCode)
	assert.Equal(t, "http_error", Outcome(err))
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.Countries(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(Options{BaseURL: url, Timeout: time.Second, GenerateTimeout: time.Second})
	require.NoError(t, err)

	_, err = client.Manifest(context.Background())
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, "unavailable", Outcome(err))

	assert.Equal(t, ErrBackendUnavailable.Error(), err.Error())
	assert.NotContains(t, err.Error(), url)

	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Cause.Error(), url)
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.SearchRequest{Query: "boots", TopK: 5}, req)
		w.Write([]byte(`{"results":[{"campaign_id":"c-1","message":"m","similarity_score":0.873,"metadata":{"products":"Boots"}}],"total_results":1}`))
	})

	resp, err := client.Search(context.Background(), models.SearchRequest{Query: "boots", TopK: 5})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, models.StringList{"Boots"}, resp.Results[0].Metadata.Products)
	assert.InDelta(t, 0.873, *resp.Results[0].SimilarityScore, 1e-9)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("other")))
}
