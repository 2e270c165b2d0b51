// Package generation turns per-unit LLM token streams into typed, ordered,
// incrementally observable events under bounded concurrency.
package generation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"deck-server/internal/domain/llm"
	"deck-server/internal/domain/status"
)

// Seg is one step of a field path: an object key or an array index.
type Seg struct {
	Key   string
	Index int
	Array bool
}

// Field builds an object-key segment.
func Field(key string) Seg {
	return Seg{Key: key}
}

// Elem builds an array-index segment.
func Elem(index int) Seg {
	return Seg{Index: index, Array: true}
}

// MarshalJSON encodes keys as strings and indices as numbers, matching the
// wire shape {"path": ["bullets", 2, "text"]}.
func (s Seg) MarshalJSON() ([]byte, error) {
	if s.Array {
		return json.Marshal(s.Index)
	}
	return json.Marshal(s.Key)
}

// UnmarshalJSON accepts either form.
func (s *Seg) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err == nil {
		*s = Seg{Key: key}
		return nil
	}
	var index int
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("path segment must be a string or an integer: %s", data)
	}
	*s = Seg{Index: index, Array: true}
	return nil
}

func (s Seg) String() string {
	if s.Array {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates a field within the generated document.
type Path []Seg

// Child returns a new path extended by one segment.
func (p Path) Child(seg Seg) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// String renders the path dotted, for logs and de-duplication keys.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// DeltaEvent is one incremental observation: a field whose value just became
// syntactically complete.
type DeltaEvent struct {
	UnitIndex int         `json:"index"`
	Path      Path        `json:"path"`
	Value     interface{} `json:"value"`
	Revision  uint64      `json:"revision"`
}

// UnitKind distinguishes slide units from the deck outline unit.
type UnitKind string

const (
	UnitKindSlide   UnitKind = "slide"
	UnitKindOutline UnitKind = "outline"
)

// Unit is one generation job: one slide or one outline. Index is stable for
// the unit's lifetime regardless of completion order.
type Unit struct {
	Index    int
	Kind     UnitKind
	Messages []llm.ChatMessage
	Validate func(raw []byte) error
	Status   status.Status
}

// Progress is the derived completion ratio, emitted after every terminal unit.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// UnitEvent is one multiplexed scheduler observation. Exactly one of Delta,
// Result, Err, or Progress is set; consumers attribute by Index, never by
// arrival order.
type UnitEvent struct {
	Index    int
	Delta    *DeltaEvent
	Result   json.RawMessage
	Err      *UnitError
	Progress *Progress
}
