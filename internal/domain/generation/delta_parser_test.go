package generation

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

const sampleDoc = `{"type":"bullets","title":"Launch Plan","bullets":[{"text":"Scope"},{"text":"Dates"}],"notes":"keep it short"}`

// feedAll feeds the document split at the given chunk size and returns every
// event in arrival order plus the finalize outcome.
func feedAll(t *testing.T, doc string, chunkSize int) ([]DeltaEvent, json.RawMessage, *ParseError) {
	t.Helper()
	p := NewParser(0, 0, nil)
	var events []DeltaEvent
	for start := 0; start < len(doc); start += chunkSize {
		end := start + chunkSize
		if end > len(doc) {
			end = len(doc)
		}
		events = append(events, p.Feed(doc[start:end])...)
	}
	raw, perr := p.Finalize()
	return events, raw, perr
}

func lastValueByPath(events []DeltaEvent) map[string]interface{} {
	out := map[string]interface{}{}
	for _, ev := range events {
		out[ev.Path.String()] = ev.Value
	}
	return out
}

func TestParserChunkSplitTransparency(t *testing.T) {
	oneShot, raw, perr := feedAll(t, sampleDoc, len(sampleDoc))
	if perr != nil {
		t.Fatalf("one-shot finalize failed: %v", perr)
	}
	if string(raw) != sampleDoc {
		t.Fatalf("finalize returned %q, want original document", raw)
	}
	want := lastValueByPath(oneShot)

	for _, chunkSize := range []int{1, 2, 3, 7, 16, 41} {
		events, raw, perr := feedAll(t, sampleDoc, chunkSize)
		if perr != nil {
			t.Fatalf("chunk size %d: finalize failed: %v", chunkSize, perr)
		}
		if string(raw) != sampleDoc {
			t.Fatalf("chunk size %d: finalize returned %q", chunkSize, raw)
		}
		got := lastValueByPath(events)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk size %d: final values diverge\ngot:  %v\nwant: %v", chunkSize, got, want)
		}
	}
}

func TestParserRevisionsStrictlyIncrease(t *testing.T) {
	events, _, perr := feedAll(t, sampleDoc, 3)
	if perr != nil {
		t.Fatalf("finalize failed: %v", perr)
	}
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	prev := uint64(0)
	for _, ev := range events {
		if ev.Revision <= prev {
			t.Fatalf("revision %d after %d is not strictly increasing", ev.Revision, prev)
		}
		prev = ev.Revision
	}
}

func TestParserBaseRevisionCarriesAcrossRestarts(t *testing.T) {
	first := NewParser(2, 0, nil)
	first.Feed(`{"title":"partial`)
	base := first.Revision()

	second := NewParser(2, base, nil)
	events := second.Feed(`{"title":"done"}`)
	for _, ev := range events {
		if ev.Revision <= base {
			t.Fatalf("restarted unit produced revision %d, must be above %d", ev.Revision, base)
		}
	}
}

func TestParserArrayElementsEmitInOrder(t *testing.T) {
	doc := `{"bullets":["one","two","three"]}`
	events, _, perr := feedAll(t, doc, 2)
	if perr != nil {
		t.Fatalf("finalize failed: %v", perr)
	}

	nextIndex := 0
	for _, ev := range events {
		if len(ev.Path) == 2 && ev.Path[0].Key == "bullets" && ev.Path[1].Array {
			if ev.Path[1].Index != nextIndex {
				t.Fatalf("element %d arrived before element %d", ev.Path[1].Index, nextIndex)
			}
			nextIndex++
		}
	}
	if nextIndex != 3 {
		t.Fatalf("saw %d elements, want 3", nextIndex)
	}
}

func TestParserNeverSurfacesOpenValues(t *testing.T) {
	p := NewParser(0, 0, nil)
	events := p.Feed(`{"title":"half wri`)
	for _, ev := range events {
		if ev.Path.String() == "title" {
			t.Fatalf("open string surfaced as %v", ev.Value)
		}
	}

	events = p.Feed(`tten"`)
	found := false
	for _, ev := range events {
		if ev.Path.String() == "title" {
			found = true
			if ev.Value != "half written" {
				t.Fatalf("title = %v, want %q", ev.Value, "half written")
			}
		}
	}
	if !found {
		t.Fatal("closed string was not emitted")
	}
}

func TestParserEmptyAndWhitespaceChunks(t *testing.T) {
	p := NewParser(0, 0, nil)
	if events := p.Feed(""); len(events) != 0 {
		t.Fatalf("empty chunk produced %d events", len(events))
	}
	if events := p.Feed("  \n\t"); len(events) != 0 {
		t.Fatalf("whitespace chunk produced %d events", len(events))
	}
	if _, perr := p.Finalize(); perr == nil || perr.Kind != ErrKindTruncated {
		t.Fatalf("whitespace-only stream finalized as %v, want truncated", perr)
	}
}

func TestParserFinalizeClassification(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind ErrorKind
	}{
		{"mid array", `{"bullets":["a","b"`, ErrKindTruncated},
		{"mid string", `{"title":"unfinish`, ErrKindTruncated},
		{"mid key", `{"title":"ok","bul`, ErrKindTruncated},
		{"dangling colon", `{"title":`, ErrKindTruncated},
		{"empty stream", ``, ErrKindTruncated},
		{"bare brace", `{`, ErrKindTruncated},
		{"trailing garbage", `{"a":1} extra`, ErrKindMalformed},
		{"bad literal", `{"a":truu}`, ErrKindMalformed},
		{"unbalanced close", `{"a":1]}`, ErrKindMalformed},
		{"missing colon", `{"a" 1}`, ErrKindMalformed},
		{"trailing comma", `{"bullets":["a",]}`, ErrKindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(0, 0, nil)
			p.Feed(tt.input)
			_, perr := p.Finalize()
			if perr == nil {
				t.Fatal("expected a parse error")
			}
			if perr.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", perr.Kind, tt.wantKind)
			}
		})
	}
}

func TestParserMalformedIsSticky(t *testing.T) {
	p := NewParser(0, 0, nil)
	p.Feed(`{"a":1} oops`)
	if events := p.Feed(`{"valid":true}`); len(events) != 0 {
		t.Fatalf("failed parser produced %d events", len(events))
	}
	_, perr := p.Finalize()
	if perr == nil || perr.Kind != ErrKindMalformed {
		t.Fatalf("finalize = %v, want sticky malformed", perr)
	}
}

func TestParserNestedObjectEmittedAfterChildren(t *testing.T) {
	doc := `{"quote":{"text":"Less is more","attribution":"Rohe"}}`
	events, _, perr := feedAll(t, doc, 4)
	if perr != nil {
		t.Fatalf("finalize failed: %v", perr)
	}

	seen := map[string]int{}
	for i, ev := range events {
		seen[ev.Path.String()] = i
	}
	parent, ok := seen["quote"]
	if !ok {
		t.Fatal("nested object itself never emitted")
	}
	for _, child := range []string{"quote.text", "quote.attribution"} {
		pos, ok := seen[child]
		if !ok {
			t.Fatalf("child %s never emitted", child)
		}
		if pos > parent {
			t.Fatalf("%s emitted after its parent", child)
		}
	}
}

func TestParserSchemaValidationOnFinalize(t *testing.T) {
	validate := func(raw []byte) error {
		var doc struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		if doc.Type == "" {
			return errors.New("missing type")
		}
		return nil
	}

	p := NewParser(0, 0, validate)
	p.Feed(`{"title":"no type field"}`)
	_, perr := p.Finalize()
	if perr == nil || perr.Kind != ErrKindMalformed {
		t.Fatalf("schema violation finalized as %v, want malformed", perr)
	}

	p = NewParser(0, 0, validate)
	p.Feed(`{"type":"bullets"}`)
	if _, perr := p.Finalize(); perr != nil {
		t.Fatalf("valid document rejected: %v", perr)
	}
}

func TestParserRootScalarDocument(t *testing.T) {
	p := NewParser(0, 0, nil)
	p.Feed(`42`)
	raw, perr := p.Finalize()
	if perr != nil {
		t.Fatalf("finalize failed: %v", perr)
	}
	if string(raw) != "42" {
		t.Fatalf("raw = %q, want 42", raw)
	}
}
