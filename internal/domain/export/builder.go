package export

// Builder assembles slide extracts into a PresentationDocument. It performs no
// I/O; the whole transform is synchronous and deterministic.
type Builder struct {
	thresholds Thresholds
}

func NewBuilder(thresholds Thresholds) *Builder {
	return &Builder{thresholds: thresholds}
}

// BuildDocument converts the ordered slide extracts into the document model.
// Shape order follows the source element order, so DOM paint order becomes
// z-order with later shapes on top.
func (b *Builder) BuildDocument(extracts []SlideExtract) *PresentationDocument {
	doc := &PresentationDocument{
		Slides: make([]SlideDocument, 0, len(extracts)),
	}
	for _, extract := range extracts {
		doc.Slides = append(doc.Slides, b.buildSlide(extract))
	}
	return doc
}

func (b *Builder) buildSlide(extract SlideExtract) SlideDocument {
	cls := NewClassifier(b.thresholds, extract.WidthPx, extract.HeightPx)

	slide := SlideDocument{
		Background: slideBackground(extract),
		Notes:      extract.Notes,
		Shapes:     make([]Shape, 0, len(extract.Elements)),
	}

	z := 0
	for _, rec := range extract.Elements {
		shape, keep := cls.Classify(rec, z)
		if !keep {
			continue
		}
		slide.Shapes = append(slide.Shapes, shape)
		z++
	}
	return slide
}

// slideBackground picks the one representable background; an image always
// wins over a color.
func slideBackground(extract SlideExtract) SlideBackground {
	if extract.BackgroundImage != "" {
		return SlideBackground{Image: extract.BackgroundImage}
	}
	return SlideBackground{Color: NormalizeHex(extract.BackgroundColor)}
}
