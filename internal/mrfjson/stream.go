package mrfjson

import "bytes"

// scanState tracks where the scanner is relative to a target array.
type scanState int

const (
	stateSeekKey scanState = iota
	stateSeekArrayStart
	stateBetweenObjects
	stateInObject
)

// streamTarget names one top-level array and receives its elements.
type streamTarget struct {
	key    []byte // quoted key, e.g. `"standard_charge_information"`
	onElem func(raw []byte, index int)
}

// arrayScanner slices complete {...} elements of named top-level arrays
// out of a chunked byte stream. Targets are processed in order: the
// second key is only searched for after the first array closes.
//
// The depth counter is string-literal aware: braces and brackets inside
// string values, including escaped quotes, never change nesting state.
// The buffer is trimmed after every pass; the retained tail never
// exceeds the current unconsumed element plus the longest key.
type arrayScanner struct {
	targets []streamTarget
	target  int

	state    scanState
	buf      []byte
	pos      int // next byte to examine
	objStart int // offset of the current element's '{'
	depth    int
	inString bool
	escaped  bool
	index    int // element index within the current array

	maxBuffered int // high-water mark, for the memory-bound tests
}

func newArrayScanner(targets []streamTarget) *arrayScanner {
	return &arrayScanner{targets: targets, state: stateSeekKey}
}

// finished reports that every target array has been fully consumed.
func (s *arrayScanner) finished() bool {
	return s.target >= len(s.targets)
}

// feed appends one chunk and scans as far as it can. Element slices
// passed to onElem alias the internal buffer and must not be retained.
func (s *arrayScanner) feed(chunk []byte) {
	if s.finished() {
		return
	}
	s.buf = append(s.buf, chunk...)
	if len(s.buf) > s.maxBuffered {
		s.maxBuffered = len(s.buf)
	}
	s.scan()
	s.trim()
}

func (s *arrayScanner) scan() {
	for s.pos < len(s.buf) && !s.finished() {
		switch s.state {
		case stateSeekKey:
			key := s.targets[s.target].key
			idx := bytes.Index(s.buf[s.pos:], key)
			if idx < 0 {
				// Leave a key-length tail unconsumed so a key split
				// across a chunk boundary can still match.
				if rescan := len(s.buf) - (len(key) - 1); rescan > s.pos {
					s.pos = rescan
				}
				return
			}
			s.pos += idx + len(key)
			s.state = stateSeekArrayStart

		case stateSeekArrayStart:
			switch c := s.buf[s.pos]; {
			case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ':':
				s.pos++
			case c == '[':
				s.pos++
				s.index = 0
				s.state = stateBetweenObjects
			default:
				// Key matched something that is not our array; resume.
				s.state = stateSeekKey
			}

		case stateBetweenObjects:
			switch s.buf[s.pos] {
			case ' ', '\t', '\r', '\n', ',':
				s.pos++
			case '{':
				s.objStart = s.pos
				s.depth = 1
				s.inString = false
				s.escaped = false
				s.pos++
				s.state = stateInObject
			case ']':
				s.pos++
				s.target++
				s.state = stateSeekKey
			default:
				// Non-object element; not ours to parse.
				s.pos++
			}

		case stateInObject:
			c := s.buf[s.pos]
			if s.inString {
				switch {
				case s.escaped:
					s.escaped = false
				case c == '\\':
					s.escaped = true
				case c == '"':
					s.inString = false
				}
			} else {
				switch c {
				case '"':
					s.inString = true
				case '{':
					s.depth++
				case '}':
					s.depth--
					if s.depth == 0 {
						s.targets[s.target].onElem(s.buf[s.objStart:s.pos+1], s.index)
						s.index++
						s.state = stateBetweenObjects
					}
				}
			}
			s.pos++
		}
	}
}

// trim drops consumed bytes. Mid-element, everything from the element's
// opening brace stays; everything before the scan position goes.
func (s *arrayScanner) trim() {
	keep := s.pos
	if s.state == stateInObject {
		keep = s.objStart
	}
	if keep <= 0 {
		return
	}
	s.buf = append(s.buf[:0], s.buf[keep:]...)
	s.pos -= keep
	if s.state == stateInObject {
		s.objStart -= keep
	} else {
		s.objStart = 0
	}
}
