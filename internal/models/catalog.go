package models

import "strings"

// Country is one entry of the backend's country selector data
type Country struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	PrimaryLanguage string `json:"primary_language"`
	Region          string `json:"region"`
}

// AudienceCategory groups audiences for the profession/demographic pickers
type AudienceCategory string

// enum values for AudienceCategory
const (
	CategoryProfessions  AudienceCategory = "Professions"
	CategoryDemographics AudienceCategory = "Demographics"
)

// Audience is one entry of the backend's audience selector data
type Audience struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Category    AudienceCategory `json:"category"`
}

// CountriesResponse is the body of GET /api/countries
type CountriesResponse struct {
	Countries []Country `json:"countries"`
}

// AudiencesResponse is the body of GET /api/audiences
type AudiencesResponse struct {
	Audiences  []Audience `json:"audiences"`
	TotalCount int        `json:"total_count"`
}

// Catalog holds the reference data used by the selectors for one page load.
// The degraded flags are set when the backend could not be reached and the
// built-in defaults were used instead.
type Catalog struct {
	Countries         []Country
	Audiences         []Audience
	CountriesDegraded bool
	AudiencesDegraded bool
}

// Professions returns audiences of the Professions category in catalog order
func (c *Catalog) Professions() []Audience {
	return c.audiencesIn(CategoryProfessions)
}

// Demographics returns audiences of the Demographics category in catalog order
func (c *Catalog) Demographics() []Audience {
	return c.audiencesIn(CategoryDemographics)
}

func (c *Catalog) audiencesIn(category AudienceCategory) []Audience {
	var out []Audience
	for _, a := range c.Audiences {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// FindCountry looks a country up by exact code or name
func (c *Catalog) FindCountry(codeOrName string) (Country, bool) {
	for _, country := range c.Countries {
		if country.Code == codeOrName || country.Name == codeOrName {
			return country, true
		}
	}
	return Country{}, false
}

// FindAudience looks an audience up by id
func (c *Catalog) FindAudience(id string) (Audience, bool) {
	for _, a := range c.Audiences {
		if a.ID == id {
			return a, true
		}
	}
	return Audience{}, false
}

// SplitAudience reverses CampaignDraft.Audience. Audience ids contain
// underscores themselves, so the split point is found by matching known
// profession and demographic ids rather than by cutting at the first "_".
func (c *Catalog) SplitAudience(audience string) (profession, demographic string) {
	for _, p := range c.Professions() {
		if audience == p.ID {
			return p.ID, ""
		}
		rest, ok := strings.CutPrefix(audience, p.ID+"_")
		if !ok {
			continue
		}
		for _, d := range c.Demographics() {
			if rest == d.ID {
				return p.ID, d.ID
			}
		}
	}
	for _, d := range c.Demographics() {
		if audience == d.ID {
			return "", d.ID
		}
	}
	return "", ""
}
