package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names
const (
	PageTemplate                = "page"
	FormTemplate                = "form"
	CountryFieldTemplate        = "country_field"
	CountrySuggestionsTemplate  = "country_suggestions"
	AudienceSuggestionsTemplate = "audience_suggestions"
	ProductsFieldTemplate       = "products_field"
	ProgressTemplate            = "progress"
	ResultTemplate              = "result"
	ErrorPanelTemplate          = "error_panel"
	AlertTemplate               = "alert"
	HistoryTemplate             = "history"
	CampaignDetailTemplate      = "campaign_detail"
	SearchResultsTemplate       = "search_results"
)

var funcs = template.FuncMap{
	"pathEscape":   url.PathEscape,
	"joinNonEmpty": joinNonEmpty,
}

// Renderer executes the embedded templates
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every embedded template
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template into w. Output is buffered so a
// failing template never leaves half a fragment on the wire.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the stylesheet and page script
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
