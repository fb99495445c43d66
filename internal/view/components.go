package view

import (
	"fmt"
	"strings"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
)

// Page is the full document served at /
type Page struct {
	Title string
	Form  Form
}

// Form is the campaign form. It is re-rendered whole when a template is
// loaded into it.
type Form struct {
	Country      CountryField
	Audience     AudienceField
	Professions  []Option
	Demographics []Option
	Products     ProductsField
	Message      string
	Notice       string
}

// CountryField is the country search box and the chip of the selection
type CountryField struct {
	Selected    models.Selection
	Placeholder string
	Degraded    bool
}

// NewCountryField builds the country field over a catalog of n countries
func NewCountryField(selected models.Selection, n int, degraded bool) CountryField {
	return CountryField{
		Selected:    selected,
		Placeholder: fmt.Sprintf("Search %d countries...", n),
		Degraded:    degraded,
	}
}

// AudienceField is the audience search box above the two selects
type AudienceField struct {
	Degraded bool
}

// Option is one entry of a select
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ProductsField is the tag list plus the text left in the input
type ProductsField struct {
	Tags   []string
	Joined string
	Input  string
}

// CountrySuggestions is the country autocomplete dropdown
type CountrySuggestions struct {
	Visible bool
	Empty   bool
	Items   []models.Country
}

// AudienceSuggestion is one audience in the dropdown, tagged with the
// select it fills
type AudienceSuggestion struct {
	models.Audience
	Target string
}

// AudienceSuggestions is the audience autocomplete dropdown
type AudienceSuggestions struct {
	Visible bool
	Empty   bool
	Items   []AudienceSuggestion
}

// ProgressView is the progress bar and step list
type ProgressView struct {
	JobID   string
	Percent int
	Message string
	Steps   []progress.StepView
	Polling bool
}

// ImageCard is one rendered aspect ratio of a product
type ImageCard struct {
	Title string
	Src   string
	Alt   string
	Size  string
}

// ProductSection groups the image cards of one product
type ProductSection struct {
	Name   string
	Images []ImageCard
}

// ComplianceBadge is a compliance status with its css class
type ComplianceBadge struct {
	Status string
	Class  string
}

// MetadataView is the usage and cost block of a result
type MetadataView struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	TotalImages      int
	GeneratedAt      string
	Cost             string
}

// ResultView is a finished generation
type ResultView struct {
	Progress     ProgressView
	CampaignID   string
	Compliance   ComplianceBadge
	ProductCount int
	Region       string
	Message      string
	Metadata     *MetadataView
	Products     []ProductSection
}

// ErrorPanel is the generic error box
type ErrorPanel struct {
	Message string
}

// Alert is a validation message shown next to the form
type Alert struct {
	Message string
}

// HistoryCard summarises one past campaign
type HistoryCard struct {
	CampaignID   string
	ShortID      string
	Timestamp    string
	Country      string
	Audience     string
	ProductLabel string
	Compliance   ComplianceBadge
	Products     []string
}

// HistoryView is the history list or its empty state
type HistoryView struct {
	Cards       []HistoryCard
	Empty       bool
	Unavailable bool
}

// CampaignDetail is the body of the campaign modal
type CampaignDetail struct {
	CampaignID string
	Timestamp  string
	Country    string
	Audience   string
	Compliance ComplianceBadge
	Message    string
	Products   []ProductSection
}

// SearchResultCard is one ranked search hit
type SearchResultCard struct {
	CampaignID string
	Message    string
	Score      string
	Country    string
	Audience   string
	Products   string
}

// SearchView is the search result list
type SearchView struct {
	Query   string
	Heading string
	Results []SearchResultCard
}

// NewForm builds the form for draft against the loaded catalog
func NewForm(cat *models.Catalog, draft models.CampaignDraft) Form {
	f := Form{
		Country:  NewCountryField(draft.Country, len(cat.Countries), cat.CountriesDegraded),
		Audience: AudienceField{Degraded: cat.AudiencesDegraded},
		Products: NewProductsField(draft.Products, ""),
		Message:  draft.Message,
	}
	for _, a := range cat.Professions() {
		f.Professions = append(f.Professions, Option{Value: a.ID, Label: a.Label, Selected: a.ID == draft.Profession})
	}
	for _, a := range cat.Demographics() {
		f.Demographics = append(f.Demographics, Option{Value: a.ID, Label: a.Label, Selected: a.ID == draft.Demographic})
	}
	return f
}

// NewProductsField builds the product tag widget
func NewProductsField(products models.ProductList, input string) ProductsField {
	return ProductsField{
		Tags:   append([]string(nil), products...),
		Joined: products.String(),
		Input:  input,
	}
}

// NewCountrySuggestions builds the country dropdown
func NewCountrySuggestions(s catalog.Suggestions[models.Country]) CountrySuggestions {
	return CountrySuggestions{Visible: s.Visible, Empty: s.Empty(), Items: s.Items}
}

// NewAudienceSuggestions builds the audience dropdown
func NewAudienceSuggestions(s catalog.Suggestions[models.Audience]) AudienceSuggestions {
	out := AudienceSuggestions{Visible: s.Visible, Empty: s.Empty()}
	for _, a := range s.Items {
		target := "profession"
		if a.Category == models.CategoryDemographics {
			target = "demographic"
		}
		out.Items = append(out.Items, AudienceSuggestion{Audience: a, Target: target})
	}
	return out
}

// NewProgress builds the progress bar of a running or finished job
func NewProgress(snap progress.Snapshot) ProgressView {
	return ProgressView{
		JobID:   snap.ID,
		Percent: snap.Percent,
		Message: snap.Message,
		Steps:   snap.Steps,
		Polling: !snap.Done(),
	}
}

// NewResult builds the result panel of a successful job
func NewResult(snap progress.Snapshot) ResultView {
	r := snap.Result
	v := ResultView{
		Progress:     NewProgress(snap),
		CampaignID:   r.CampaignID,
		Compliance:   newBadge(r.Compliance),
		ProductCount: len(snap.Draft.Products),
		Region:       snap.Draft.Country.Code,
		Message:      snap.Draft.Message,
		Products:     NewProductSections(r.Outputs),
	}
	if m := r.Metadata; m != nil {
		mv := &MetadataView{
			Model:       NotAvailable,
			TotalImages: m.TotalImages,
			GeneratedAt: FormatDate(models.ParseGeneratedAt(m.GeneratedAt)),
			Cost:        FormatCost(m.CostUSD),
		}
		if u := m.LLMUsage; u != nil {
			mv.Model = orDefault(u.Model, NotAvailable)
			mv.PromptTokens = u.PromptTokens
			mv.CompletionTokens = u.CompletionTokens
			mv.TotalTokens = u.TotalTokens
		}
		v.Metadata = mv
	}
	return v
}

// NewProductSections renders each product's images in the fixed ratio
// order. Ratios the backend did not produce are left out.
func NewProductSections(outputs models.Outputs) []ProductSection {
	var sections []ProductSection
	for _, name := range outputs.Products() {
		images := outputs.Images(name)
		section := ProductSection{Name: name}
		for _, ratio := range models.AspectRatios {
			path, ok := images[ratio]
			if !ok || path == "" {
				continue
			}
			info := ratios[ratio]
			section.Images = append(section.Images, ImageCard{
				Title: info.Title,
				Src:   ImageSrc(path),
				Alt:   info.Alt,
				Size:  info.Size,
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// NewHistory builds the history list
func NewHistory(records []models.CampaignRecord) HistoryView {
	v := HistoryView{Empty: len(records) == 0}
	for i := range records {
		c := &records[i]
		products := c.Response.Outputs.Products()
		v.Cards = append(v.Cards, HistoryCard{
			CampaignID:   c.CampaignID,
			ShortID:      c.ShortID(),
			Timestamp:    FormatDate(c.GeneratedAt()),
			Country:      orDefault(c.Request.Country(), NotAvailable),
			Audience:     orDefault(c.Request.Audience, NotAvailable),
			ProductLabel: Plural(len(products), "product"),
			Compliance:   newBadge(c.Response.Compliance),
			Products:     products,
		})
	}
	return v
}

// NewCampaignDetail builds the campaign modal
func NewCampaignDetail(c models.CampaignRecord) CampaignDetail {
	return CampaignDetail{
		CampaignID: c.CampaignID,
		Timestamp:  FormatDate(c.GeneratedAt()),
		Country:    orDefault(c.Request.Country(), NotAvailable),
		Audience:   orDefault(c.Request.Audience, NotAvailable),
		Compliance: newBadge(c.Response.Compliance),
		Message:    orDefault(c.Request.Message, NotAvailable),
		Products:   NewProductSections(c.Response.Outputs),
	}
}

// NewSearch builds the search result list
func NewSearch(resp models.SearchResponse) SearchView {
	v := SearchView{Query: resp.Query}
	if len(resp.Results) == 0 {
		return v
	}
	total := resp.TotalResults
	if total == 0 {
		total = len(resp.Results)
	}
	v.Heading = fmt.Sprintf("Found %d Similar Campaign", total)
	if total != 1 {
		v.Heading += "s"
	}
	for i := range resp.Results {
		r := &resp.Results[i]
		brief := r.Brief()
		country := brief.CountryName
		if country == "" {
			country = brief.Region
		}
		v.Results = append(v.Results, SearchResultCard{
			CampaignID: r.CampaignID,
			Message:    r.Message,
			Score:      FormatScore(r.SimilarityScore),
			Country:    orDefault(country, "Unknown"),
			Audience:   orDefault(brief.Audience, "Unknown"),
			Products:   orDefault(brief.Products.String(), NotAvailable),
		})
	}
	return v
}

func newBadge(c models.Compliance) ComplianceBadge {
	return ComplianceBadge{Status: c.StatusOrDefault(), Class: c.CSSClass()}
}

// joinNonEmpty is used by templates for compact metadata lines
func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
