package models

import (
	"encoding/json"
	"strings"
)

// SearchRequest is the body of POST /campaigns/search
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// StringList decodes either a JSON array of strings or a single string.
// The vector store flattens lists into strings in its metadata.
type StringList []string

// UnmarshalJSON accepts ["a","b"] as well as "a, b"
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = nil
	if s != "" {
		*l = StringList{s}
	}
	return nil
}

// String joins the entries for display
func (l StringList) String() string {
	return strings.Join(l, ", ")
}

// SearchMetadata is the brief stored alongside a campaign embedding
type SearchMetadata struct {
	CountryName string     `json:"country_name,omitempty"`
	Region      string     `json:"region,omitempty"`
	Audience    string     `json:"audience,omitempty"`
	Products    StringList `json:"products,omitempty"`
}

// IsZero reports whether the block carried nothing
func (m SearchMetadata) IsZero() bool {
	return m.CountryName == "" && m.Region == "" && m.Audience == "" && len(m.Products) == 0
}

// SearchResult is one ranked hit of a similarity search
type SearchResult struct {
	CampaignID      string         `json:"campaign_id"`
	Message         string         `json:"message"`
	SimilarityScore *float64       `json:"similarity_score"`
	Metadata        SearchMetadata `json:"metadata"`
	FullCampaign    CampaignRecord `json:"full_campaign"`
}

// Brief returns the metadata of the hit, falling back to the request of
// the full campaign when the vector store returned none
func (r *SearchResult) Brief() SearchMetadata {
	if !r.Metadata.IsZero() {
		return r.Metadata
	}
	req := r.FullCampaign.Request
	return SearchMetadata{
		CountryName: req.CountryName,
		Region:      req.Region,
		Audience:    req.Audience,
		Products:    StringList(req.Products),
	}
}

// SearchResponse is the body returned by POST /campaigns/search
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	Query        string         `json:"query,omitempty"`
	TotalResults int            `json:"total_results"`
}
