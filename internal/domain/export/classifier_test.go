package export

import "testing"

func defaultClassifier() *Classifier {
	return NewClassifier(DefaultThresholds(), DefaultCanvasWidthPx, DefaultCanvasHeightPx)
}

func floatPtr(v float64) *float64 { return &v }

func TestClassifyChartBeatsScreenshotHint(t *testing.T) {
	rec := ElementRecord{
		Position:         Geometry{Left: 100, Top: 100, Width: 400, Height: 300},
		ShouldScreenshot: true,
		Chart: &ChartPayload{
			Type:   "bar",
			Labels: []string{"Q1", "Q2"},
			Series: []ChartSeries{{Name: "Revenue", Values: []float64{10, 20}}},
		},
	}

	shape, keep := defaultClassifier().Classify(rec, 0)
	if !keep {
		t.Fatal("chart element was dropped")
	}
	if shape.Kind != ShapeChart {
		t.Fatalf("kind = %s, want chart despite screenshot hint", shape.Kind)
	}
	if shape.Chart == nil || shape.Chart.Type != "bar" {
		t.Fatalf("chart payload not carried: %+v", shape.Chart)
	}
}

func TestClassifyMalformedChartFallsThrough(t *testing.T) {
	tests := []struct {
		name  string
		chart *ChartPayload
	}{
		{"missing type", &ChartPayload{Labels: []string{"a"}, Series: []ChartSeries{{Values: []float64{1}}}}},
		{"no labels", &ChartPayload{Type: "bar", Series: []ChartSeries{{Values: []float64{1}}}}},
		{"no series", &ChartPayload{Type: "bar", Labels: []string{"a"}}},
		{"series misaligned", &ChartPayload{Type: "bar", Labels: []string{"a", "b"}, Series: []ChartSeries{{Values: []float64{1}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ElementRecord{
				Position:         Geometry{Width: 100, Height: 100},
				Chart:            tt.chart,
				ShouldScreenshot: true,
				ScreenshotSrc:    "shot.png",
			}
			shape, keep := defaultClassifier().Classify(rec, 0)
			if !keep {
				t.Fatal("element was dropped")
			}
			if shape.Kind != ShapePicture {
				t.Fatalf("kind = %s, want picture fallback", shape.Kind)
			}
			if shape.Picture == nil || !shape.Picture.Screenshot {
				t.Fatal("fallback must be marked as screenshot-sourced")
			}
		})
	}
}

func TestClassifyTable(t *testing.T) {
	rec := ElementRecord{
		Position: Geometry{Width: 500, Height: 200},
		Table:    &TablePayload{Rows: [][]string{{"a", "b"}}, HeaderRow: true},
	}
	shape, keep := defaultClassifier().Classify(rec, 0)
	if !keep || shape.Kind != ShapeTable {
		t.Fatalf("kind = %s, want table", shape.Kind)
	}

	rec.Table = &TablePayload{}
	shape, _ = defaultClassifier().Classify(rec, 0)
	if shape.Kind == ShapeTable {
		t.Fatal("empty table payload must not classify as table")
	}
}

func TestClassifyConnectorByExplicitMarker(t *testing.T) {
	rec := ElementRecord{
		Position:      Geometry{Width: 300, Height: 2},
		ConnectorType: "elbow",
		Border:        &Border{Width: 2, Color: "#333333", Style: "solid"},
	}
	shape, keep := defaultClassifier().Classify(rec, 3)
	if !keep || shape.Kind != ShapeConnector {
		t.Fatalf("kind = %s, want connector", shape.Kind)
	}
	if shape.Connector.Type != "elbow" {
		t.Fatalf("connector type = %s", shape.Connector.Type)
	}
	if shape.ZOrder != 3 {
		t.Fatalf("z-order = %d, want 3", shape.ZOrder)
	}
}

func TestClassifyEmptyTextFullViewportIsAutoShape(t *testing.T) {
	rec := ElementRecord{
		Position:   Geometry{Left: 0, Top: 0, Width: 1280, Height: 720},
		Background: &Background{Color: "#fff", Opacity: floatPtr(0)},
		InnerText:  "",
	}
	shape, keep := defaultClassifier().Classify(rec, 0)
	if !keep {
		t.Fatal("filled full-viewport element must not be dropped as a frame")
	}
	if shape.Kind != ShapeAutoShape {
		t.Fatalf("kind = %s, want auto shape", shape.Kind)
	}
	if shape.AutoShape.Fill == nil || shape.AutoShape.Fill.Color != "#FFFFFF" {
		t.Fatalf("fill = %+v, want normalized white", shape.AutoShape.Fill)
	}
	if shape.AutoShape.Fill.Opacity != 0 {
		t.Fatalf("opacity = %v, want 0", shape.AutoShape.Fill.Opacity)
	}
}

func TestClassifyDecorativeFrameDropped(t *testing.T) {
	rec := ElementRecord{
		Position: Geometry{Left: 0, Top: 0, Width: 1270, Height: 715},
	}
	if _, keep := defaultClassifier().Classify(rec, 0); keep {
		t.Fatal("unfilled near-full-viewport rectangle must be dropped")
	}

	// The same geometry with any fill survives.
	rec.Background = &Background{Color: "#e0e0e0"}
	if _, keep := defaultClassifier().Classify(rec, 0); !keep {
		t.Fatal("filled element must survive")
	}
}

func TestClassifyFrameCoverageEpsilonConfigurable(t *testing.T) {
	rec := ElementRecord{
		Position: Geometry{Left: 0, Top: 0, Width: 1200, Height: 680},
	}

	strict := NewClassifier(Thresholds{FrameCoverageEpsilon: 0.01, MinTextBoxChars: 1}, 1280, 720)
	if _, keep := strict.Classify(rec, 0); !keep {
		t.Fatal("94% coverage must survive a 1% epsilon")
	}

	loose := NewClassifier(Thresholds{FrameCoverageEpsilon: 0.10, MinTextBoxChars: 1}, 1280, 720)
	if _, keep := loose.Classify(rec, 0); keep {
		t.Fatal("94% coverage must be dropped under a 10% epsilon")
	}
}

func TestClassifyTextBox(t *testing.T) {
	rec := ElementRecord{
		Position:  Geometry{Left: 96, Top: 48, Width: 480, Height: 96},
		InnerText: "Quarterly Review\nH2 Targets",
		Font:      &Font{Family: "Inter", Size: 24, Weight: "700", Color: "rgb(30, 30, 30)", Align: "left"},
	}
	shape, keep := defaultClassifier().Classify(rec, 1)
	if !keep || shape.Kind != ShapeTextBox {
		t.Fatalf("kind = %s, want text box", shape.Kind)
	}
	if len(shape.TextBox.Paragraphs) != 2 {
		t.Fatalf("paragraphs = %d, want 2 (one per line)", len(shape.TextBox.Paragraphs))
	}
	style := shape.TextBox.Paragraphs[0].Style
	if style == nil || !style.Bold || style.Color != "#1E1E1E" {
		t.Fatalf("style = %+v", style)
	}
	if style.SizePt != PxToPt(24) {
		t.Fatalf("font size = %v pt, want %v", style.SizePt, PxToPt(24))
	}
}

func TestClassifyStyledTextBecomesAutoShape(t *testing.T) {
	rec := ElementRecord{
		Position:  Geometry{Width: 300, Height: 100},
		InnerText: "Callout",
		Border:    &Border{Width: 2, Color: "#0088ff", Radius: 8},
	}
	shape, keep := defaultClassifier().Classify(rec, 0)
	if !keep || shape.Kind != ShapeAutoShape {
		t.Fatalf("kind = %s, bordered text must be an auto shape", shape.Kind)
	}
	if len(shape.AutoShape.Paragraphs) == 0 {
		t.Fatal("auto shape must carry the embedded text")
	}
	if shape.AutoShape.Line == nil || shape.AutoShape.Line.Color != "#0088FF" {
		t.Fatalf("line = %+v", shape.AutoShape.Line)
	}
	if shape.AutoShape.RadiusPt != PxToPt(8) {
		t.Fatalf("radius = %v", shape.AutoShape.RadiusPt)
	}
}

func TestClassifyGradientWithFilterFallsBackToScreenshot(t *testing.T) {
	rec := ElementRecord{
		Position:      Geometry{Width: 200, Height: 200},
		Background:    &Background{Gradient: "linear-gradient(45deg, #f00, #00f)"},
		Filter:        "blur(4px) saturate(1.4)",
		ScreenshotSrc: "element-7.png",
	}
	shape, keep := defaultClassifier().Classify(rec, 0)
	if !keep || shape.Kind != ShapePicture {
		t.Fatalf("kind = %s, want screenshot picture", shape.Kind)
	}
	if !shape.Picture.Screenshot || shape.Picture.Source != "element-7.png" {
		t.Fatalf("picture = %+v", shape.Picture)
	}
}

func TestClassifyImageSrc(t *testing.T) {
	rec := ElementRecord{
		Position: Geometry{Width: 320, Height: 240},
		ImageSrc: "https://cdn.example.com/photo.jpg",
	}
	shape, keep := defaultClassifier().Classify(rec, 0)
	if !keep || shape.Kind != ShapePicture {
		t.Fatalf("kind = %s, want picture", shape.Kind)
	}
	if shape.Picture.Screenshot {
		t.Fatal("authored image must not be marked as a screenshot")
	}
}

func TestClassifyNegativeValuesClamped(t *testing.T) {
	rec := ElementRecord{
		Position: Geometry{Left: 10, Top: 10, Width: -50, Height: 100},
		Border:   &Border{Width: 1, Radius: -4},
		Shadow:   &Shadow{OffsetX: 2, OffsetY: 2, Blur: -3, Color: "#000000"},
	}
	shape, keep := defaultClassifier().Classify(rec, 0)
	if !keep {
		t.Fatal("element was dropped")
	}
	if shape.Box.Width != 0 {
		t.Fatalf("width = %v, negative sizes floor at 0", shape.Box.Width)
	}
	if shape.AutoShape.RadiusPt != 0 {
		t.Fatalf("radius = %v, negative radii floor at 0", shape.AutoShape.RadiusPt)
	}
	if shape.AutoShape.Shadow.BlurPt != 0 {
		t.Fatalf("blur = %v, negative blur floors at 0", shape.AutoShape.Shadow.BlurPt)
	}
}
