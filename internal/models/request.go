package models

import (
	"errors"
	"strings"
)

// Validation errors returned by CampaignDraft.Validate, in check order
var (
	ErrMissingCountry     = errors.New("Please select a country/region")
	ErrMissingProfession  = errors.New("Please select a profession")
	ErrMissingDemographic = errors.New("Please select a demographic")
	ErrMissingProducts    = errors.New("Please enter at least one product")
	ErrMissingMessage     = errors.New("Please enter a campaign message")
	ErrEmptySearchQuery   = errors.New("Please enter a search query")
)

// Selection is the country chosen in the selector, shown as a chip
type Selection struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// IsZero reports whether nothing is selected
func (s Selection) IsZero() bool {
	return s.Code == ""
}

// CampaignDraft is the transient form state of one page visit
type CampaignDraft struct {
	Country     Selection
	Profession  string
	Demographic string
	Products    ProductList
	Message     string
}

// Audience joins profession and demographic the way the backend expects
func (d *CampaignDraft) Audience() string {
	if d.Profession != "" && d.Demographic != "" {
		return d.Profession + "_" + d.Demographic
	}
	if d.Profession != "" {
		return d.Profession
	}
	return d.Demographic
}

// Validate checks the required fields before anything is sent
func (d *CampaignDraft) Validate() error {
	if strings.TrimSpace(d.Country.Code) == "" {
		return ErrMissingCountry
	}
	if strings.TrimSpace(d.Profession) == "" {
		return ErrMissingProfession
	}
	if strings.TrimSpace(d.Demographic) == "" {
		return ErrMissingDemographic
	}
	if len(d.Products) == 0 {
		return ErrMissingProducts
	}
	if strings.TrimSpace(d.Message) == "" {
		return ErrMissingMessage
	}
	return nil
}

// IsValidationError reports whether err is one of the draft validation errors
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrMissingCountry, ErrMissingProfession, ErrMissingDemographic,
		ErrMissingProducts, ErrMissingMessage, ErrEmptySearchQuery,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ToGenerateRequest builds the payload for POST /campaigns/generate
func (d *CampaignDraft) ToGenerateRequest() GenerateRequest {
	return GenerateRequest{
		Products:    append([]string(nil), d.Products...),
		CountryName: d.Country.Code,
		Audience:    d.Audience(),
		Message:     d.Message,
	}
}
