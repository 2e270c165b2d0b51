package deck

import (
	"fmt"
	"strings"

	"deck-server/internal/domain/llm"
	"deck-server/internal/domain/slide"
)

const outlineSystemPrompt = `You are a presentation planner. Given a topic, produce a slide outline as a single JSON object:
{"slides": [{"title": "...", "summary": "..."}]}
Rules: exactly the requested number of slides, the first slide introduces the topic, the last slide closes it. Respond with JSON only.`

const slideSystemPrompt = `You are a presentation writer. Produce the content of one slide as a single JSON object. Allowed "type" values and their fields:
- "title": title, subtitle
- "bullets": title, bullets (array of {"text": "...", "sub_points": ["..."]})
- "two_column": title, columns (array of two {"heading": "...", "items": ["..."]})
- "quote": quote ({"text": "...", "attribution": "..."})
- "chart": title, chart ({"kind": "bar|line|pie", "labels": [...], "series": [{"name": "...", "values": [...]}]})
- "closing": title, body
Keep text concise and concrete. Respond with JSON only.`

// OutlineMessages builds the planning conversation for a deck.
func OutlineMessages(prompt string, slideCount int) []llm.ChatMessage {
	return []llm.ChatMessage{
		{Role: "system", Content: outlineSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Topic: %s\nNumber of slides: %d", prompt, slideCount)},
	}
}

// SlideMessages builds the generation conversation for one slide. The outline
// context keeps parallel units coherent with each other.
func SlideMessages(deckTitle string, outline *slide.Outline, index int) []llm.ChatMessage {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Deck: %s\n\nFull outline:\n", deckTitle)
	for i, entry := range outline.Slides {
		marker := " "
		if i == index {
			marker = ">"
		}
		fmt.Fprintf(&sb, "%s %d. %s", marker, i+1, entry.Title)
		if entry.Summary != "" {
			fmt.Fprintf(&sb, " (%s)", entry.Summary)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nWrite slide %d of %d: %q.", index+1, len(outline.Slides), outline.Slides[index].Title)

	return []llm.ChatMessage{
		{Role: "system", Content: slideSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}
