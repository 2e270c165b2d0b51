package generation

import (
	"bytes"
	"encoding/json"
)

// Parser converts a growing, possibly invalid-until-complete stream of JSON
// text into delta events without waiting for the full document.
//
// A field is emitted exactly when its value becomes syntactically complete: a
// closed string, a closed array element, a closed nested object. Values the
// model is still writing are never surfaced. The parser only moves forward;
// consumers discard stale duplicates by revision.
type Parser struct {
	unitIndex int
	buf       []byte
	emitted   map[string]bool
	revision  uint64
	validate  func(raw []byte) error
	fail      *ParseError
}

// NewParser creates a parser for one generation unit. baseRevision carries the
// revision counter across unit restarts so downstream state never rewinds.
func NewParser(unitIndex int, baseRevision uint64, validate func(raw []byte) error) *Parser {
	return &Parser{
		unitIndex: unitIndex,
		emitted:   map[string]bool{},
		revision:  baseRevision,
		validate:  validate,
	}
}

// Revision returns the last assigned revision.
func (p *Parser) Revision() uint64 {
	return p.revision
}

// Feed appends a chunk and returns the fields that became complete with it.
// Empty and whitespace-only chunks produce no events.
func (p *Parser) Feed(chunk string) []DeltaEvent {
	if chunk == "" {
		return nil
	}
	p.buf = append(p.buf, chunk...)
	if p.fail != nil {
		return nil
	}

	st := scan(p.buf)
	if st.err != nil {
		p.fail = st.err
		return nil
	}

	snap := st.snapshot(p.buf)
	if len(snap) == 0 {
		return nil
	}

	root, err := parseTree(snap)
	if err != nil {
		// The snapshot is built to parse; failure means token-level garbage
		// the structural scan is lenient about (e.g. a bad number).
		p.fail = &ParseError{Kind: ErrKindMalformed, Message: err.Error(), Offset: -1, Cause: err}
		return nil
	}

	var events []DeltaEvent
	p.collect(root, 0, len(st.closers), true, &events)
	return events
}

// collect walks the snapshot depth-first in document order, children before
// parents, emitting nodes that closed since the previous feed. The still-open
// containers are exactly the first openDepth nodes of the rightmost spine.
func (p *Parser) collect(n *docNode, spineDepth, openDepth int, onSpine bool, out *[]DeltaEvent) {
	for i, child := range n.children {
		childOnSpine := onSpine && i == len(n.children)-1
		p.collect(child, spineDepth+1, openDepth, childOnSpine, out)
	}

	if len(n.path) == 0 {
		// The root is the finalize result, not a delta.
		return
	}
	if onSpine && n.container && spineDepth < openDepth {
		return
	}

	key := n.path.String()
	if p.emitted[key] {
		return
	}
	p.emitted[key] = true
	p.revision++
	*out = append(*out, DeltaEvent{
		UnitIndex: p.unitIndex,
		Path:      n.path,
		Value:     n.value,
		Revision:  p.revision,
	})
}

// Finalize reports the completed document, or classifies why there is none:
// Truncated (the stream ended mid-structure, worth a retry) versus Malformed
// (invalid JSON or schema mismatch, a generation failure).
func (p *Parser) Finalize() (json.RawMessage, *ParseError) {
	if p.fail != nil {
		return nil, p.fail
	}

	st := scan(p.buf)
	if st.err != nil {
		p.fail = st.err
		return nil, p.fail
	}

	trimmed := bytes.TrimSpace(p.buf)
	complete := st.complete || (st.rootScalar && json.Valid(trimmed))
	if !complete {
		return nil, &ParseError{
			Kind:    ErrKindTruncated,
			Message: "stream ended before the document closed",
			Offset:  -1,
		}
	}

	if !json.Valid(trimmed) {
		return nil, &ParseError{
			Kind:    ErrKindMalformed,
			Message: "document is not valid JSON",
			Offset:  -1,
		}
	}

	if p.validate != nil {
		if err := p.validate(trimmed); err != nil {
			return nil, &ParseError{
				Kind:    ErrKindMalformed,
				Message: "document violates the target schema",
				Offset:  -1,
				Cause:   err,
			}
		}
	}

	raw := make(json.RawMessage, len(trimmed))
	copy(raw, trimmed)
	return raw, nil
}
