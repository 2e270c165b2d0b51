package generation

import "fmt"

// The scanner walks the accumulated buffer on every feed and answers three
// questions: is the document structurally complete, where does the longest
// safe prefix of fully-closed values end, and which containers are still open.
// A snapshot built from the safe prefix plus the missing closers always parses,
// which is what lets the parser diff "what just became complete" without ever
// surfacing a half-received value.

type scanPhase int

const (
	phaseWantKeyOrClose   scanPhase = iota // object: expect key string or '}'
	phaseWantColon                         // object: key read, expect ':'
	phaseWantValue                         // object: colon read, expect member value
	phaseWantCommaOrClose                  // container: value read
	phaseWantElemOrClose                   // array: expect first element or ']'
	phaseWantElem                          // array: comma read, expect element
)

type scanFrame struct {
	array    bool
	phase    scanPhase
	keyStart int // byte offset of the current member's key token (objects)
}

type scanState struct {
	complete   bool   // one root value closed, nothing but whitespace after
	started    bool   // any non-whitespace byte seen
	rootScalar bool   // buffer ends inside a bare scalar at the root
	safeEnd    int    // end of the longest prefix holding only closed values
	closers    []byte // closing brackets for open containers, innermost last
	err        *ParseError
}

func malformedAt(offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind:    ErrKindMalformed,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}

// scanString consumes a string token starting at the opening quote.
// Returns the offset just past the closing quote and whether it terminated.
func scanString(buf []byte, start int) (int, bool) {
	i := start + 1
	for i < len(buf) {
		switch buf[i] {
		case '\\':
			if i+1 >= len(buf) {
				return len(buf), false
			}
			i += 2
		case '"':
			return i + 1, true
		default:
			i++
		}
	}
	return len(buf), false
}

var literals = []string{"true", "false", "null"}

// scanLiteral consumes true/false/null starting at buf[start]. Returns the end
// offset, whether the literal closed, and whether the bytes match any literal
// prefix at all.
func scanLiteral(buf []byte, start int) (end int, closed bool, valid bool) {
	for _, lit := range literals {
		if lit[0] != buf[start] {
			continue
		}
		i := 0
		for i < len(lit) && start+i < len(buf) && buf[start+i] == lit[i] {
			i++
		}
		if i == len(lit) {
			return start + i, true, true
		}
		if start+i == len(buf) {
			return len(buf), false, true
		}
	}
	return start, false, false
}

// scan performs one full structural pass over the buffer.
func scan(buf []byte) scanState {
	st := scanState{safeEnd: len(buf)}
	var stack []*scanFrame
	rootDone := false
	i := 0
	n := len(buf)

	// truncate marks the safe end and finishes the scan.
	truncate := func(offset int) {
		st.safeEnd = offset
		if len(stack) == 0 {
			st.rootScalar = true
		}
	}

	top := func() *scanFrame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	// valueDone advances the enclosing frame after a value closed.
	valueDone := func() {
		if f := top(); f != nil {
			f.phase = phaseWantCommaOrClose
		} else {
			rootDone = true
		}
	}

	// memberTruncate drops an in-progress object member (its key included) or
	// an in-progress array element from the safe prefix.
	memberTruncate := func(tokenStart int) {
		if f := top(); f != nil && !f.array {
			truncate(f.keyStart)
			return
		}
		truncate(tokenStart)
	}

	for i < n {
		c := buf[i]
		if isSpace(c) {
			i++
			continue
		}
		st.started = true

		if rootDone {
			st.err = malformedAt(i, "unexpected %q after top-level value", c)
			return st
		}

		f := top()

		// Object member bookkeeping phases.
		if f != nil && !f.array {
			switch f.phase {
			case phaseWantKeyOrClose:
				if c == '}' {
					stack = stack[:len(stack)-1]
					i++
					valueDone()
					continue
				}
				if c != '"' {
					st.err = malformedAt(i, "expected object key, got %q", c)
					return st
				}
				f.keyStart = i
				end, ok := scanString(buf, i)
				if !ok {
					truncate(f.keyStart)
					goto done
				}
				i = end
				f.phase = phaseWantColon
				continue
			case phaseWantColon:
				if c != ':' {
					st.err = malformedAt(i, "expected ':' after object key, got %q", c)
					return st
				}
				i++
				f.phase = phaseWantValue
				continue
			case phaseWantCommaOrClose:
				if c == ',' {
					i++
					f.phase = phaseWantKeyOrClose
					continue
				}
				if c == '}' {
					stack = stack[:len(stack)-1]
					i++
					valueDone()
					continue
				}
				st.err = malformedAt(i, "expected ',' or '}' in object, got %q", c)
				return st
			}
			// phaseWantValue falls through to value dispatch below.
		}

		if f != nil && f.array {
			switch f.phase {
			case phaseWantElemOrClose:
				if c == ']' {
					stack = stack[:len(stack)-1]
					i++
					valueDone()
					continue
				}
			case phaseWantCommaOrClose:
				if c == ',' {
					i++
					f.phase = phaseWantElem
					continue
				}
				if c == ']' {
					stack = stack[:len(stack)-1]
					i++
					valueDone()
					continue
				}
				st.err = malformedAt(i, "expected ',' or ']' in array, got %q", c)
				return st
			case phaseWantElem:
				if c == ']' {
					st.err = malformedAt(i, "trailing comma in array")
					return st
				}
			}
			// Element value falls through to value dispatch below.
		}

		// Value dispatch: root value, object member value, or array element.
		switch {
		case c == '{':
			stack = append(stack, &scanFrame{phase: phaseWantKeyOrClose})
			i++
		case c == '[':
			stack = append(stack, &scanFrame{array: true, phase: phaseWantElemOrClose})
			i++
		case c == '"':
			end, ok := scanString(buf, i)
			if !ok {
				memberTruncate(i)
				goto done
			}
			i = end
			valueDone()
		case isNumberByte(c) && c != '+' && c != '.' && c != 'e' && c != 'E':
			start := i
			for i < n && isNumberByte(buf[i]) {
				i++
			}
			if i == n {
				// The number may still grow; keep it out of the safe prefix.
				memberTruncate(start)
				goto done
			}
			valueDone()
		case c == 't' || c == 'f' || c == 'n':
			end, closed, valid := scanLiteral(buf, i)
			if !valid {
				st.err = malformedAt(i, "invalid literal")
				return st
			}
			if !closed {
				memberTruncate(i)
				goto done
			}
			i = end
			valueDone()
		default:
			st.err = malformedAt(i, "unexpected character %q", c)
			return st
		}
	}

	// Buffer exhausted between tokens: a dangling `"key":` never enters the
	// safe prefix.
	if f := top(); f != nil && !f.array && (f.phase == phaseWantColon || f.phase == phaseWantValue) {
		truncate(f.keyStart)
	}

done:
	st.complete = rootDone
	for j := len(stack) - 1; j >= 0; j-- {
		if stack[j].array {
			st.closers = append(st.closers, ']')
		} else {
			st.closers = append(st.closers, '}')
		}
	}
	return st
}

// snapshot composes a parseable document from the safe prefix: trailing
// separators stripped, open containers closed.
func (st scanState) snapshot(buf []byte) []byte {
	if !st.started || st.err != nil {
		return nil
	}
	end := st.safeEnd
	for end > 0 && isSpace(buf[end-1]) {
		end--
	}
	if end > 0 && buf[end-1] == ',' {
		end--
		for end > 0 && isSpace(buf[end-1]) {
			end--
		}
	}
	if end == 0 {
		return nil
	}
	out := make([]byte, end, end+len(st.closers))
	copy(out, buf[:end])
	return append(out, st.closers...)
}
