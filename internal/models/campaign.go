package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AspectRatio is one of the fixed output formats generated per product
type AspectRatio string

// enum values for AspectRatio
const (
	RatioSquare    AspectRatio = "1:1"
	RatioLandscape AspectRatio = "16:9"
	RatioPortrait  AspectRatio = "9:16"
)

// AspectRatios lists the formats in display order
var AspectRatios = []AspectRatio{RatioSquare, RatioLandscape, RatioPortrait}

// GenerateRequest is the body of POST /campaigns/generate
type GenerateRequest struct {
	Products    []string `json:"products"`
	CountryName string   `json:"country_name"`
	Audience    string   `json:"audience"`
	Message     string   `json:"message"`
}

// Compliance is the backend's verdict on a campaign request
type Compliance struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusOrDefault returns the status, treating a missing one as approved
func (c Compliance) StatusOrDefault() string {
	if c.Status == "" {
		return "Approved"
	}
	return c.Status
}

// CSSClass returns the lower-cased status used for styling
func (c Compliance) CSSClass() string {
	return strings.ToLower(c.StatusOrDefault())
}

// ProductOutputs maps aspect ratio to a relative image path
type ProductOutputs map[AspectRatio]string

// Outputs maps product name to its images. JSON objects carry no usable
// order for display, so the order of first appearance is kept on decode.
type Outputs struct {
	order  []string
	images map[string]ProductOutputs
}

// NewOutputs builds outputs from ordered product names
func NewOutputs(products []string, images map[string]ProductOutputs) Outputs {
	o := Outputs{images: make(map[string]ProductOutputs, len(images))}
	for _, p := range products {
		if img, ok := images[p]; ok {
			o.Set(p, img)
		}
	}
	return o
}

// Set adds or replaces the images of a product
func (o *Outputs) Set(product string, images ProductOutputs) {
	if o.images == nil {
		o.images = make(map[string]ProductOutputs)
	}
	if _, ok := o.images[product]; !ok {
		o.order = append(o.order, product)
	}
	o.images[product] = images
}

// Products returns product names in order
func (o Outputs) Products() []string {
	return append([]string(nil), o.order...)
}

// Images returns the images of a product
func (o Outputs) Images(product string) ProductOutputs {
	return o.images[product]
}

// Len returns the number of products
func (o Outputs) Len() int {
	return len(o.order)
}

// UnmarshalJSON decodes a product→images object keeping key order
func (o *Outputs) UnmarshalJSON(data []byte) error {
	*o = Outputs{}
	if string(data) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var images ProductOutputs
		if err := dec.Decode(&images); err != nil {
			return err
		}
		o.Set(key, images)
	}
	return nil
}

// MarshalJSON encodes outputs as a plain object
func (o Outputs) MarshalJSON() ([]byte, error) {
	if o.images == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.images)
}

// LLMUsage is the token usage reported for translations
type LLMUsage struct {
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Metadata is the optional usage/cost block of a generation result
type Metadata struct {
	GeneratedAt   string    `json:"generated_at"`
	TotalProducts int       `json:"total_products"`
	TotalImages   int       `json:"total_images"`
	LLMUsage      *LLMUsage `json:"llm_usage,omitempty"`
	CostUSD       float64   `json:"cost_usd"`
}

// GenerateResult is the success body of POST /campaigns/generate
type GenerateResult struct {
	CampaignID string     `json:"campaign_id"`
	Compliance Compliance `json:"compliance"`
	Outputs    Outputs    `json:"outputs"`
	Metadata   *Metadata  `json:"metadata,omitempty"`
}
