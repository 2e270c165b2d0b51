// Package slide defines the closed content schema a generated slide must satisfy.
//
// The LLM produces free-form JSON; everything downstream of the delta parser
// works with these validated types instead of trusting raw maps.
package slide

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type tags the slide layout variant.
type Type string

const (
	TypeTitle     Type = "title"
	TypeBullets   Type = "bullets"
	TypeTwoColumn Type = "two_column"
	TypeQuote     Type = "quote"
	TypeChart     Type = "chart"
	TypeClosing   Type = "closing"
)

// KnownTypes lists every accepted slide variant.
var KnownTypes = []Type{TypeTitle, TypeBullets, TypeTwoColumn, TypeQuote, TypeChart, TypeClosing}

// IsKnown reports whether t is one of the closed set of variants.
func (t Type) IsKnown() bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Content is one generated slide. Exactly the fields matching Type carry data;
// Extra captures dynamic fields the schema does not model so they survive a
// round trip without being trusted.
type Content struct {
	Type     Type                   `json:"type"`
	Title    string                 `json:"title"`
	Subtitle string                 `json:"subtitle,omitempty"`
	Body     string                 `json:"body,omitempty"`
	Bullets  []Bullet               `json:"bullets,omitempty"`
	Columns  []Column               `json:"columns,omitempty"`
	Quote    *Quote                 `json:"quote,omitempty"`
	Chart    *Chart                 `json:"chart,omitempty"`
	Notes    string                 `json:"notes,omitempty"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

// Bullet is a single list item with optional sub-points.
type Bullet struct {
	Text      string   `json:"text"`
	SubPoints []string `json:"sub_points,omitempty"`
}

// Column is one side of a two-column layout.
type Column struct {
	Heading string   `json:"heading"`
	Items   []string `json:"items"`
}

// Quote is an attributed quotation.
type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution,omitempty"`
}

// Chart is a native chart specification embedded in a slide.
type Chart struct {
	Kind   string   `json:"kind"` // bar, line, pie
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Series is one named data series of a chart.
type Series struct {
	Name   string    `json:"name,omitempty"`
	Values []float64 `json:"values"`
}

// Validate checks the variant invariants. It is called at the delta-parser
// boundary so a structurally complete but schema-invalid document is rejected
// as a malformed generation, not silently passed downstream.
func (c *Content) Validate() error {
	if !c.Type.IsKnown() {
		return fmt.Errorf("unknown slide type %q", c.Type)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("slide of type %q has no title", c.Type)
	}

	switch c.Type {
	case TypeBullets:
		if len(c.Bullets) == 0 {
			return fmt.Errorf("bullets slide has no bullets")
		}
		for i, b := range c.Bullets {
			if strings.TrimSpace(b.Text) == "" {
				return fmt.Errorf("bullet %d has empty text", i)
			}
		}
	case TypeTwoColumn:
		if len(c.Columns) != 2 {
			return fmt.Errorf("two_column slide has %d columns, want 2", len(c.Columns))
		}
	case TypeQuote:
		if c.Quote == nil || strings.TrimSpace(c.Quote.Text) == "" {
			return fmt.Errorf("quote slide has no quote text")
		}
	case TypeChart:
		if c.Chart == nil {
			return fmt.Errorf("chart slide has no chart payload")
		}
		if len(c.Chart.Labels) == 0 || len(c.Chart.Series) == 0 {
			return fmt.Errorf("chart slide has empty labels or series")
		}
		for i, s := range c.Chart.Series {
			if len(s.Values) != len(c.Chart.Labels) {
				return fmt.Errorf("chart series %d has %d values for %d labels", i, len(s.Values), len(c.Chart.Labels))
			}
		}
	}

	return nil
}

// Decode unmarshals and validates one slide document.
func Decode(raw []byte) (*Content, error) {
	var content Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("decode slide content: %w", err)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

// ValidateRaw is the parser-boundary hook: it fails when the finished document
// does not satisfy the slide schema.
func ValidateRaw(raw []byte) error {
	_, err := Decode(raw)
	return err
}
