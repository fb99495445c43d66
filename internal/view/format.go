package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// DateLayout renders timestamps the way browsers print a local date-time
const DateLayout = "1/2/2006, 3:04:05 PM"

// NotAvailable stands in for missing values
const NotAvailable = "N/A"

// FormatCost prints small costs with enough precision to be non-zero
func FormatCost(usd float64) string {
	switch {
	case usd < 0.01:
		return fmt.Sprintf("$%.6f", usd)
	case usd < 1:
		return fmt.Sprintf("$%.4f", usd)
	default:
		return fmt.Sprintf("$%.2f", usd)
	}
}

// FormatDate prints t in local time, or N/A for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Local().Format(DateLayout)
}

// FormatScore prints a similarity score as a percentage match. A missing
// or zero score has no match to show.
func FormatScore(score *float64) string {
	if score == nil || *score == 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%% Match", *score*100)
}

// ImageSrc turns a backend-relative image path into a page URL
func ImageSrc(path string) string {
	return "/" + strings.TrimPrefix(path, "/")
}

// Plural returns "1 product" or "n products"
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// ratioInfo is the label and pixel size of each output format
type ratioInfo struct {
	Title string
	Alt   string
	Size  string
}

var ratios = map[models.AspectRatio]ratioInfo{
	models.RatioSquare:    {Title: "Square (1:1)", Alt: "Square format", Size: "1024 x 1024"},
	models.RatioLandscape: {Title: "Landscape (16:9)", Alt: "Landscape format", Size: "1024 x 576"},
	models.RatioPortrait:  {Title: "Portrait (9:16)", Alt: "Portrait format", Size: "576 x 1024"},
}
