package models

import (
	"slices"
	"time"
)

// timestampLayout is the campaign directory timestamp, e.g. 20240101_120000
const timestampLayout = "20060102_150405"

var generatedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// RecordRequest is the brief a historical campaign was generated from.
// Older records carry region instead of country_name.
type RecordRequest struct {
	Products    []string `json:"products"`
	CountryName string   `json:"country_name,omitempty"`
	Region      string   `json:"region,omitempty"`
	Audience    string   `json:"audience"`
	Message     string   `json:"message"`
}

// Country returns country_name, falling back to region
func (r RecordRequest) Country() string {
	if r.CountryName != "" {
		return r.CountryName
	}
	return r.Region
}

// RecordResponse is what the backend answered for a historical campaign
type RecordResponse struct {
	CampaignID string     `json:"campaign_id,omitempty"`
	Outputs    Outputs    `json:"outputs"`
	Compliance Compliance `json:"compliance"`
}

// RecordMetadata is the bookkeeping block of a manifest entry
type RecordMetadata struct {
	GeneratedAt   string  `json:"generated_at,omitempty"`
	TotalProducts int     `json:"total_products,omitempty"`
	TotalImages   int     `json:"total_images,omitempty"`
	CostUSD       float64 `json:"cost_usd,omitempty"`
}

// CampaignRecord is one entry of the master manifest
type CampaignRecord struct {
	CampaignID string         `json:"campaign_id"`
	Timestamp  string         `json:"timestamp"`
	Request    RecordRequest  `json:"request"`
	Response   RecordResponse `json:"response"`
	Metadata   RecordMetadata `json:"metadata"`
}

// ShortID returns the first eight characters of the id followed by "..."
func (c *CampaignRecord) ShortID() string {
	id := []rune(c.CampaignID)
	if len(id) > 8 {
		id = id[:8]
	}
	return string(id) + "..."
}

// GeneratedAt returns when the campaign was generated, preferring
// metadata.generated_at over the directory timestamp. The zero time means
// neither could be parsed.
func (c *CampaignRecord) GeneratedAt() time.Time {
	if t := ParseGeneratedAt(c.Metadata.GeneratedAt); !t.IsZero() {
		return t
	}
	if c.Timestamp != "" {
		if t, err := time.ParseInLocation(timestampLayout, c.Timestamp, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseGeneratedAt parses an ISO generated_at value. Values without an
// offset are taken as local time. The zero time means it could not be parsed.
func ParseGeneratedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range generatedAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Manifest is the body of GET /api/master-manifest
type Manifest struct {
	Campaigns   []CampaignRecord `json:"campaigns"`
	TotalCount  int              `json:"total_count,omitempty"`
	LastUpdated string           `json:"last_updated,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Recent returns up to limit campaigns, most recent first
func (m *Manifest) Recent(limit int) []CampaignRecord {
	sorted := slices.Clone(m.Campaigns)
	slices.SortStableFunc(sorted, func(a, b CampaignRecord) int {
		return b.GeneratedAt().Compare(a.GeneratedAt())
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Find returns the campaign with the given id
func (m *Manifest) Find(campaignID string) (CampaignRecord, bool) {
	for _, c := range m.Campaigns {
		if c.CampaignID == campaignID {
			return c, true
		}
	}
	return CampaignRecord{}, false
}
