// Package export converts extracted visual-element attributes from rendered
// slides into a structured presentation document model suitable for binary
// serialization.
package export

// Geometry is an element's bounding box in CSS pixel space.
type Geometry struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Background describes an element or slide fill.
type Background struct {
	Color    string   `json:"color,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Gradient string   `json:"gradient,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// Border describes an element outline.
type Border struct {
	Width  float64 `json:"width,omitempty"`
	Color  string  `json:"color,omitempty"`
	Style  string  `json:"style,omitempty"` // solid, dashed, dotted, none
	Radius float64 `json:"radius,omitempty"`
}

// Shadow describes a drop shadow.
type Shadow struct {
	OffsetX float64 `json:"offset_x,omitempty"`
	OffsetY float64 `json:"offset_y,omitempty"`
	Blur    float64 `json:"blur,omitempty"`
	Color   string  `json:"color,omitempty"`
}

// Font captures the resolved text styling of an element.
type Font struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"` // px
	Weight string  `json:"weight,omitempty"`
	Color  string  `json:"color,omitempty"`
	Align  string  `json:"align,omitempty"`
}

// ChartSeries is one named value series of a chart payload.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartPayload is the structured chart data extracted from a rendered chart
// component.
type ChartPayload struct {
	Type   string        `json:"type"` // bar, line, pie, area
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// WellFormed reports whether the payload can become an editable native chart:
// a known shape of data, at least one series, and every series aligned with
// the label axis.
func (c *ChartPayload) WellFormed() bool {
	if c == nil || c.Type == "" || len(c.Labels) == 0 || len(c.Series) == 0 {
		return false
	}
	for _, s := range c.Series {
		if len(s.Values) != len(c.Labels) {
			return false
		}
	}
	return true
}

// TablePayload is the structured cell grid extracted from a rendered table.
type TablePayload struct {
	Rows      [][]string `json:"rows"`
	HeaderRow bool       `json:"header_row,omitempty"`
}

// ElementRecord is one DOM-derived description of a visual element, immutable
// once handed to the classifier. Geometry is in pixels; conversion to points
// happens exactly once, at classification.
type ElementRecord struct {
	Position         Geometry      `json:"position"`
	Background       *Background   `json:"background,omitempty"`
	Border           *Border       `json:"border,omitempty"`
	Shadow           *Shadow       `json:"shadow,omitempty"`
	Font             *Font         `json:"font,omitempty"`
	Filter           string        `json:"filter,omitempty"`
	InnerText        string        `json:"inner_text,omitempty"`
	ImageSrc         string        `json:"image_src,omitempty"`
	ShouldScreenshot bool          `json:"should_screenshot,omitempty"`
	ScreenshotSrc    string        `json:"screenshot_src,omitempty"`
	ConnectorType    string        `json:"connector_type,omitempty"` // straight, elbow, curved
	ShapeType        string        `json:"shape_type,omitempty"`     // rect, ellipse, triangle, ...
	Rotation         float64       `json:"rotation,omitempty"`
	Chart            *ChartPayload `json:"chart_data,omitempty"`
	Table            *TablePayload `json:"table_data,omitempty"`
}

// SlideExtract is everything the rendering collaborator hands over for one
// slide: the ordered element records plus slide-level background and notes.
type SlideExtract struct {
	Elements        []ElementRecord `json:"elements"`
	BackgroundColor string          `json:"background_color,omitempty"`
	BackgroundImage string          `json:"background_image,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	WidthPx         float64         `json:"width_px,omitempty"`
	HeightPx        float64         `json:"height_px,omitempty"`
}
