package export

// ShapeKind tags the DocumentShape union.
type ShapeKind string

const (
	ShapeTextBox   ShapeKind = "text_box"
	ShapeAutoShape ShapeKind = "auto_shape"
	ShapePicture   ShapeKind = "picture"
	ShapeChart     ShapeKind = "chart"
	ShapeTable     ShapeKind = "table"
	ShapeConnector ShapeKind = "connector"
)

// Box is a bounding box in points.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextStyle is normalized text styling: point-sized font, hex color.
type TextStyle struct {
	Family string  `json:"family,omitempty"`
	SizePt float64 `json:"size_pt,omitempty"`
	Bold   bool    `json:"bold,omitempty"`
	Color  string  `json:"color,omitempty"`
	Align  string  `json:"align,omitempty"`
}

// Paragraph is one run of text inside a text box or auto shape.
type Paragraph struct {
	Text  string     `json:"text"`
	Style *TextStyle `json:"style,omitempty"`
}

// Fill is a normalized solid fill.
type Fill struct {
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity"`
}

// Line is a normalized outline.
type Line struct {
	WidthPt float64 `json:"width_pt,omitempty"`
	Color   string  `json:"color,omitempty"`
	Dash    string  `json:"dash,omitempty"`
}

// ShadowProps is a normalized drop shadow, offsets and blur in points.
type ShadowProps struct {
	OffsetXPt float64 `json:"offset_x_pt"`
	OffsetYPt float64 `json:"offset_y_pt"`
	BlurPt    float64 `json:"blur_pt"`
	Color     string  `json:"color,omitempty"`
}

// TextBoxProps holds the text-box variant payload.
type TextBoxProps struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

// AutoShapeProps holds the auto-shape variant payload.
type AutoShapeProps struct {
	ShapeType  string       `json:"shape_type"` // rect when unspecified
	Fill       *Fill        `json:"fill,omitempty"`
	Line       *Line        `json:"line,omitempty"`
	Shadow     *ShadowProps `json:"shadow,omitempty"`
	RadiusPt   float64      `json:"radius_pt,omitempty"`
	Paragraphs []Paragraph  `json:"paragraphs,omitempty"`
}

// PictureProps holds the picture variant payload. Screenshot marks the source
// as a rasterized fallback rather than an authored image.
type PictureProps struct {
	Source     string  `json:"source"`
	Screenshot bool    `json:"screenshot,omitempty"`
	RadiusPt   float64 `json:"radius_pt,omitempty"`
}

// ChartProps holds the native-chart variant payload.
type ChartProps struct {
	Type   string        `json:"type"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// TableProps holds the native-table variant payload.
type TableProps struct {
	Rows      [][]string `json:"rows"`
	HeaderRow bool       `json:"header_row,omitempty"`
}

// ConnectorProps holds the connector variant payload.
type ConnectorProps struct {
	Type string `json:"type"` // straight, elbow, curved
	Line *Line  `json:"line,omitempty"`
}

// Shape is one classified document element. Kind selects which variant
// pointer is set; exactly one is non-nil. ZOrder equals the element's position
// in the source array, later shapes paint on top.
type Shape struct {
	Kind      ShapeKind       `json:"kind"`
	Box       Box             `json:"box"`
	ZOrder    int             `json:"z_order"`
	Rotation  float64         `json:"rotation,omitempty"`
	TextBox   *TextBoxProps   `json:"text_box,omitempty"`
	AutoShape *AutoShapeProps `json:"auto_shape,omitempty"`
	Picture   *PictureProps   `json:"picture,omitempty"`
	Chart     *ChartProps     `json:"chart,omitempty"`
	Table     *TableProps     `json:"table,omitempty"`
	Connector *ConnectorProps `json:"connector,omitempty"`
}

// SlideBackground is the single representable slide background. Image wins
// over color when the extract carries both.
type SlideBackground struct {
	Color string `json:"color,omitempty"`
	Image string `json:"image,omitempty"`
}

// SlideDocument is one assembled slide: background, speaker notes, and the
// ordered shape list.
type SlideDocument struct {
	Background SlideBackground `json:"background"`
	Notes      string          `json:"notes,omitempty"`
	Shapes     []Shape         `json:"shapes"`
}

// PresentationDocument is the complete built model, immutable after
// construction, handed to the external binary serializer.
type PresentationDocument struct {
	Slides []SlideDocument `json:"slides"`
}
