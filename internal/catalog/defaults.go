package catalog

import "github.com/prajwalbharadwajbm/campaignstudio/internal/models"

// DefaultCountries is the minimal set offered when the backend is down
func DefaultCountries() []models.Country {
	return []models.Country{
		{Code: "US", Name: "United States", PrimaryLanguage: "English", Region: "North America"},
		{Code: "CA", Name: "Canada", PrimaryLanguage: "English", Region: "North America"},
		{Code: "MX", Name: "Mexico", PrimaryLanguage: "Spanish", Region: "North America"},
		{Code: "GB", Name: "United Kingdom", PrimaryLanguage: "English", Region: "Europe"},
		{Code: "DE", Name: "Germany", PrimaryLanguage: "German", Region: "Europe"},
		{Code: "FR", Name: "France", PrimaryLanguage: "French", Region: "Europe"},
		{Code: "JP", Name: "Japan", PrimaryLanguage: "Japanese", Region: "Asia Pacific"},
		{Code: "AU", Name: "Australia", PrimaryLanguage: "English", Region: "Asia Pacific"},
	}
}

// DefaultAudiences is the minimal set offered when the backend is down
func DefaultAudiences() []models.Audience {
	return []models.Audience{
		{ID: "construction_workers", Label: "Construction Workers", Description: "Skilled tradespeople in construction industry", Category: models.CategoryProfessions},
		{ID: "healthcare_workers", Label: "Healthcare Workers", Description: "Medical professionals and healthcare staff", Category: models.CategoryProfessions},
		{ID: "office_workers", Label: "Office Workers", Description: "Corporate and administrative professionals", Category: models.CategoryProfessions},
		{ID: "young_adults", Label: "Young Adults (18-24)", Description: "College students and young professionals", Category: models.CategoryDemographics},
		{ID: "millennials", Label: "Millennials (25-34)", Description: "Early career professionals", Category: models.CategoryDemographics},
	}
}
