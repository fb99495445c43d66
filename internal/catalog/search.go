package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// MinQueryLength is the shortest query that opens the dropdown
const MinQueryLength = 2

// Suggestions is the state of an autocomplete dropdown
type Suggestions[T any] struct {
	Query   string
	Visible bool
	Items   []T
}

// Empty reports whether an open dropdown has nothing to show
func (s Suggestions[T]) Empty() bool {
	return s.Visible && len(s.Items) == 0
}

// field extracts one searchable value from a catalog entry
type field[T any] func(T) string

var countryFields = []field[models.Country]{
	func(c models.Country) string { return c.Name },
	func(c models.Country) string { return c.Code },
	func(c models.Country) string { return c.PrimaryLanguage },
}

var audienceFields = []field[models.Audience]{
	func(a models.Audience) string { return a.Label },
	func(a models.Audience) string { return a.Description },
	func(a models.Audience) string { return string(a.Category) },
}

// FilterCountries matches name, code and primary language
func FilterCountries(query string, countries []models.Country) Suggestions[models.Country] {
	return filter(query, countries, countryFields)
}

// FilterAudiences matches label, description and category
func FilterAudiences(query string, audiences []models.Audience) Suggestions[models.Audience] {
	return filter(query, audiences, audienceFields)
}

// Searchable reports whether query is long enough to open the dropdown
func Searchable(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}

// filter keeps catalog order; there is no relevance ranking
func filter[T any](query string, items []T, fields []field[T]) Suggestions[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	s := Suggestions[T]{Query: q}
	if !Searchable(q) {
		return s
	}

	s.Visible = true
	for _, item := range items {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(item)), q) {
				s.Items = append(s.Items, item)
				break
			}
		}
	}
	return s
}
