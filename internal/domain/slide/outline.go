package slide

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutlineEntry is one planned slide before content generation.
type OutlineEntry struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// Outline is the deck-level plan the slide units are fanned out from.
type Outline struct {
	Slides []OutlineEntry `json:"slides"`
}

// Validate checks the outline invariants.
func (o *Outline) Validate() error {
	if len(o.Slides) == 0 {
		return fmt.Errorf("outline has no slides")
	}
	for i, entry := range o.Slides {
		if strings.TrimSpace(entry.Title) == "" {
			return fmt.Errorf("outline entry %d has empty title", i)
		}
	}
	return nil
}

// DecodeOutline unmarshals and validates an outline document.
func DecodeOutline(raw []byte) (*Outline, error) {
	var outline Outline
	if err := json.Unmarshal(raw, &outline); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	if err := outline.Validate(); err != nil {
		return nil, err
	}
	return &outline, nil
}

// ValidateOutlineRaw is the parser-boundary hook for outline units.
func ValidateOutlineRaw(raw []byte) error {
	_, err := DecodeOutline(raw)
	return err
}
