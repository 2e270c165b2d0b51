package export

import "strings"

// Default slide canvas in CSS pixels, 16:9.
const (
	DefaultCanvasWidthPx  = 1280.0
	DefaultCanvasHeightPx = 720.0
)

// Thresholds are the empirically tuned classification knobs. They are named
// and overridable rather than inlined so each predicate stays independently
// testable.
type Thresholds struct {
	// FrameCoverageEpsilon is the viewport-coverage tolerance for the
	// decorative-frame drop: an unfilled, textless rectangle covering at
	// least (1 - epsilon) of the canvas is scaffolding, not content.
	FrameCoverageEpsilon float64
	// MinTextBoxChars is the minimum trimmed text length for an element to
	// classify as a text box instead of an auto shape.
	MinTextBoxChars int
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FrameCoverageEpsilon: 0.02,
		MinTextBoxChars:      1,
	}
}

// Classifier maps element records to document shapes. It is pure and safe for
// concurrent use.
type Classifier struct {
	th      Thresholds
	canvasW float64
	canvasH float64
}

// NewClassifier builds a classifier for the given canvas size in pixels.
// Non-positive dimensions fall back to the default 1280x720 canvas.
func NewClassifier(th Thresholds, canvasWidthPx, canvasHeightPx float64) *Classifier {
	if canvasWidthPx <= 0 {
		canvasWidthPx = DefaultCanvasWidthPx
	}
	if canvasHeightPx <= 0 {
		canvasHeightPx = DefaultCanvasHeightPx
	}
	return &Classifier{th: th, canvasW: canvasWidthPx, canvasH: canvasHeightPx}
}

// Classify maps one record to exactly one shape variant, or drops it when the
// record is a decorative frame. It never fails: anything unrepresentable falls
// back to a screenshot-backed picture.
//
// First match wins: connector marker, well-formed chart, table, screenshot
// fallback, picture, text box, auto shape. A well-formed chart beats the
// screenshot hint; editable output is always preferred over a raster.
func (c *Classifier) Classify(rec ElementRecord, zOrder int) (Shape, bool) {
	if c.isDecorativeFrame(rec) {
		return Shape{}, false
	}

	shape := Shape{
		Box:      c.toBox(rec.Position),
		ZOrder:   zOrder,
		Rotation: rec.Rotation,
	}

	switch {
	case rec.ConnectorType != "":
		shape.Kind = ShapeConnector
		shape.Connector = &ConnectorProps{
			Type: rec.ConnectorType,
			Line: normalizeLine(rec.Border),
		}

	case rec.Chart.WellFormed():
		shape.Kind = ShapeChart
		shape.Chart = &ChartProps{
			Type:   rec.Chart.Type,
			Labels: rec.Chart.Labels,
			Series: rec.Chart.Series,
		}

	case rec.Table != nil && len(rec.Table.Rows) > 0:
		shape.Kind = ShapeTable
		shape.Table = &TableProps{
			Rows:      rec.Table.Rows,
			HeaderRow: rec.Table.HeaderRow,
		}

	case rec.ShouldScreenshot || c.hasIrreducibleStyle(rec):
		shape.Kind = ShapePicture
		shape.Picture = &PictureProps{
			Source:     screenshotSource(rec),
			Screenshot: true,
			RadiusPt:   borderRadiusPt(rec.Border),
		}

	case rec.ImageSrc != "":
		shape.Kind = ShapePicture
		shape.Picture = &PictureProps{
			Source:   rec.ImageSrc,
			RadiusPt: borderRadiusPt(rec.Border),
		}

	case c.hasText(rec) && c.isPlainRectangle(rec):
		shape.Kind = ShapeTextBox
		shape.TextBox = &TextBoxProps{
			Paragraphs: paragraphsOf(rec),
		}

	default:
		shape.Kind = ShapeAutoShape
		auto := &AutoShapeProps{
			ShapeType: shapeTypeOf(rec),
			Fill:      normalizeFill(rec.Background),
			Line:      normalizeLine(rec.Border),
			Shadow:    normalizeShadow(rec.Shadow),
			RadiusPt:  borderRadiusPt(rec.Border),
		}
		if c.hasText(rec) {
			auto.Paragraphs = paragraphsOf(rec)
		}
		shape.AutoShape = auto
	}

	return shape, true
}

// isDecorativeFrame detects layout scaffolding: a full-viewport rectangle
// carrying no fill, no outline, no image, and no text.
func (c *Classifier) isDecorativeFrame(rec ElementRecord) bool {
	if c.hasText(rec) || rec.ImageSrc != "" || rec.ShouldScreenshot ||
		rec.Chart != nil || rec.Table != nil || rec.ConnectorType != "" {
		return false
	}
	if rec.Background != nil && (rec.Background.Color != "" || rec.Background.Gradient != "" || rec.Background.Image != "") {
		return false
	}
	if rec.Border != nil && rec.Border.Width > 0 {
		return false
	}
	coverW := rec.Position.Width / c.canvasW
	coverH := rec.Position.Height / c.canvasH
	eps := c.th.FrameCoverageEpsilon
	return coverW >= 1-eps && coverH >= 1-eps
}

// hasIrreducibleStyle marks gradient/filter combinations the shape vocabulary
// cannot carry; those elements survive only as screenshots.
func (c *Classifier) hasIrreducibleStyle(rec ElementRecord) bool {
	gradient := rec.Background != nil && rec.Background.Gradient != ""
	filter := rec.Filter != "" && rec.Filter != "none"
	return gradient && filter
}

func (c *Classifier) hasText(rec ElementRecord) bool {
	return len(strings.TrimSpace(rec.InnerText)) >= c.th.MinTextBoxChars
}

// isPlainRectangle accepts elements with no styling a text box cannot carry.
func (c *Classifier) isPlainRectangle(rec ElementRecord) bool {
	if rec.ShapeType != "" && rec.ShapeType != "rect" {
		return false
	}
	if rec.Border != nil && (rec.Border.Width > 0 || rec.Border.Radius > 0) {
		return false
	}
	if rec.Shadow != nil {
		return false
	}
	if rec.Background != nil && rec.Background.Gradient != "" {
		return false
	}
	return true
}

func (c *Classifier) toBox(g Geometry) Box {
	return Box{
		Left:   PxToPt(g.Left),
		Top:    PxToPt(g.Top),
		Width:  PxToPt(ClampNonNegative(g.Width)),
		Height: PxToPt(ClampNonNegative(g.Height)),
	}
}

func screenshotSource(rec ElementRecord) string {
	if rec.ScreenshotSrc != "" {
		return rec.ScreenshotSrc
	}
	return rec.ImageSrc
}

func shapeTypeOf(rec ElementRecord) string {
	if rec.ShapeType != "" {
		return rec.ShapeType
	}
	return "rect"
}

func paragraphsOf(rec ElementRecord) []Paragraph {
	var style *TextStyle
	if f := rec.Font; f != nil {
		style = &TextStyle{
			Family: f.Family,
			SizePt: PxToPt(ClampNonNegative(f.Size)),
			Bold:   f.Weight == "bold" || f.Weight == "600" || f.Weight == "700" || f.Weight == "800",
			Color:  NormalizeHex(f.Color),
			Align:  f.Align,
		}
	}

	lines := strings.Split(rec.InnerText, "\n")
	paragraphs := make([]Paragraph, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, Paragraph{Text: line, Style: style})
	}
	return paragraphs
}

func normalizeFill(bg *Background) *Fill {
	if bg == nil || bg.Color == "" {
		return nil
	}
	color := NormalizeHex(bg.Color)
	if color == "" {
		return nil
	}
	opacity := 1.0
	if bg.Opacity != nil {
		opacity = ClampOpacity(*bg.Opacity)
	}
	return &Fill{Color: color, Opacity: opacity}
}

func normalizeLine(b *Border) *Line {
	if b == nil || b.Width <= 0 || b.Style == "none" {
		return nil
	}
	dash := b.Style
	if dash == "" {
		dash = "solid"
	}
	return &Line{
		WidthPt: PxToPt(b.Width),
		Color:   NormalizeHex(b.Color),
		Dash:    dash,
	}
}

func normalizeShadow(s *Shadow) *ShadowProps {
	if s == nil {
		return nil
	}
	return &ShadowProps{
		OffsetXPt: PxToPt(s.OffsetX),
		OffsetYPt: PxToPt(s.OffsetY),
		BlurPt:    PxToPt(ClampNonNegative(s.Blur)),
		Color:     NormalizeHex(s.Color),
	}
}

func borderRadiusPt(b *Border) float64 {
	if b == nil {
		return 0
	}
	return PxToPt(ClampNonNegative(b.Radius))
}
