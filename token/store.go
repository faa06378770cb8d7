package token

import (
	"fmt"

	"github.com/ncruces/gojsontoken/internal/hostio"
)

// wideKind is the 2-bit tag stored in the top bits of offsetSize's
// sizeAndKind field. Narrow tokens carry their own 5-bit kind inside
// tokens[i] (see record.go); the other three values mean tokens[i] holds
// a plain IEEE-754 double, or a 64-bit unsigned/signed integer bit
// pattern, respectively, with no further tagging.
type wideKind uint8

const (
	wideNarrow wideKind = iota
	wideF64
	wideU64
	wideI64
)

const (
	sizeBits = 62
	sizeMask = (uint64(1) << sizeBits) - 1
)

// offsetSize is the second half of a token record: the byte offset into
// the source, the byte length, and (packed into the top 2 bits of the
// same 64-bit word as the length) the wide-kind tag.
type offsetSize struct {
	offset      uint64
	sizeAndKind uint64
}

func (o offsetSize) wideKind() wideKind {
	return wideKind(o.sizeAndKind >> sizeBits)
}

func (o offsetSize) byteLength() uint64 {
	return o.sizeAndKind & sizeMask
}

func makeOffsetSize(offset, length uint64, wk wideKind) offsetSize {
	if length > sizeMask {
		panic("token: token byte length overflow")
	}
	return offsetSize{offset: offset, sizeAndKind: (uint64(wk) << sizeBits) | length}
}

// Store owns a fully-scanned token array together with the source text
// it references. Tokens (see Token) are cheap handles into a Store; the
// Store itself holds the only heap allocations (the parallel tokens/
// offsetSize arrays, the source text if owned, and the escaped-string
// cache).
//
// Store is not safe to copy by value: copying it would alias its
// backing slices between two logical stores, one of which might then
// grow and reallocate out from under the other. Always pass *Store.
type Store struct {
	source string // full document text; may be borrowed or owned, see NewFromString/NewFromBytes
	owned  bool

	filename     string
	lineOffset   int
	columnOffset int

	tokens         []uint64
	offsetSize     []offsetSize
	escapedStrings []string
}

// SourcePos is the starting file:row:col of the document being scanned,
// used to offset every position this Store reports (useful when source
// is itself a slice embedded in a larger file, e.g. a fenced code block).
type SourcePos struct {
	Line   int // 1-based
	Column int // 1-based
}

// Options controls which token kinds are parsed during scanning versus
// left as raw, unparsed slices for later on-demand parsing.
type Options uint8

const (
	// OptParseLiterals eagerly parses null/true/false while scanning.
	OptParseLiterals Options = 1 << iota
	OptParseDoubles
	OptParseFloats
	OptParseStringKeys
	// OptParseStrings implies OptParseStringKeys.
	OptParseStrings
)

func (o Options) has(f Options) bool { return o&f != 0 }

// NewFromString scans source in place, without copying it. The caller
// must guarantee source outlives the returned Store.
func NewFromString(source string, opts Options, pos SourcePos) (*Store, error) {
	return newStore(source, false, opts, pos, "<string>")
}

// NewFromBytes copies data and scans the copy, so the Store owns its
// source independently of the caller's slice.
func NewFromBytes(data []byte, opts Options, pos SourcePos) (*Store, error) {
	return newStore(string(data), true, opts, pos, "<bytes>")
}

// NewFromFile reads filename in full and scans it, owning the resulting
// text.
func NewFromFile(filename string, opts Options) (*Store, error) {
	text, err := hostio.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("token: cannot read input file: %w", err)
	}
	s, err := newStore(text, true, opts, SourcePos{Line: 1, Column: 1}, filename)
	return s, err
}

func newStore(source string, owned bool, opts Options, pos SourcePos, filename string) (*Store, error) {
	st := &Store{
		source:       source,
		owned:        owned,
		filename:     filename,
		lineOffset:   pos.Line - 1,
		columnOffset: pos.Column - 1,
	}
	// Capacity heuristic borrowed from the teacher's zero_parser.go:
	// one token per ~4 bytes of input is a reasonable dense-JSON guess.
	cap := len(source)/4 + 16
	st.tokens = make([]uint64, 0, cap)
	st.offsetSize = make([]offsetSize, 0, cap)

	sc := scanner{store: st, opts: opts}
	if err := sc.run(); err != nil {
		return nil, err
	}
	return st, nil
}

// Len reports the total number of tokens in the store.
func (s *Store) Len() int { return len(s.tokens) }

// Root returns the first (and only top-level) token.
func (s *Store) Root() Token {
	if len(s.tokens) == 0 {
		panic("token: empty store has no root")
	}
	return Token{store: s, index: 0}
}

// At returns the token at the given array index.
func (s *Store) At(index int) Token {
	return Token{store: s, index: uint32(index)}
}

// Filename returns the name associated with this store's source, for
// diagnostic messages.
func (s *Store) Filename() string { return s.filename }

func (s *Store) allocToken(bits uint64, os offsetSize) int {
	s.tokens = append(s.tokens, bits)
	s.offsetSize = append(s.offsetSize, os)
	return len(s.tokens) - 1
}

func (s *Store) internEscapedString(str string) uint64 {
	idx := uint64(len(s.escapedStrings))
	s.escapedStrings = append(s.escapedStrings, str)
	return idx
}

// TopologyError reports a structural invariant violated by data passed
// to FromPrebuilt. Unlike scanning errors, this never happens on data
// this package produced itself -- only on externally supplied arrays.
type TopologyError struct {
	Rule    string
	Index   int
	Message string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("token: topology rule %q violated at index %d: %s", e.Rule, e.Index, e.Message)
}

// FromPrebuilt reconstructs a Store from externally supplied token and
// offsetSize arrays (for example, ones deserialized from a cache) plus
// the matching source text. It validates the eight structural
// invariants a well-formed store must satisfy and returns a
// *TopologyError naming the first one violated, rather than panicking,
// since the input is untrusted by construction.
func FromPrebuilt(source string, tokens []uint64, offsetSizes []offsetSize, escapedStrings []string, filename string) (*Store, error) {
	st := &Store{
		source:         source,
		owned:          true,
		filename:       filename,
		tokens:         tokens,
		offsetSize:     offsetSizes,
		escapedStrings: escapedStrings,
	}
	if err := st.validateTopology(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) validateTopology() error {
	n := len(s.tokens)
	if n != len(s.offsetSize) {
		return &TopologyError{Rule: "parallel-arrays", Index: 0, Message: "tokens and offsetSize length mismatch"}
	}
	if n == 0 {
		return &TopologyError{Rule: "non-empty", Index: 0, Message: "store has no root token"}
	}
	// Rule: every escaped-string index referenced by a token must be in
	// range, and every string token spans at least the two quote bytes.
	for i := 0; i < n; i++ {
		tok := Token{store: s, index: uint32(i)}
		if tok.wideKind() != wideNarrow {
			continue
		}
		switch narrowKind(tok.bits()) {
		case kindStringValueEscaped, kindStringValueEscapedParsed, kindStringKeyEscaped, kindStringKeyEscapedParsed:
			idx := narrowPayload(tok.bits())
			if idx >= uint64(len(s.escapedStrings)) {
				return &TopologyError{Rule: "escaped-string-index-range", Index: i, Message: "escaped string index out of range"}
			}
		}
		if tok.Type() == TypeString && tok.byteLength() < 2 {
			return &TopologyError{Rule: "string-min-size", Index: i, Message: "string token shorter than its surrounding quotes"}
		}
	}
	// Rule: every token marked is-key is an immediate child of some Object.
	// The depth-first walk below only ever descends into a key token when
	// its parent is an Object (see the TypeObject case), so a key token
	// reachable any other way -- as a bare array element, or as the root --
	// never gets visited there; catch those up front.
	for i := 0; i < n; i++ {
		tok := Token{store: s, index: uint32(i)}
		if !tok.IsKey() {
			continue
		}
		parent := tok.Parent()
		if !parent.valid() || parent.Type() != TypeObject {
			return &TopologyError{Rule: "key-parent-is-object", Index: i, Message: "key string is not an immediate child of an object"}
		}
	}
	// Rule: offsets are monotonically non-decreasing across the array.
	for i := 1; i < n; i++ {
		if s.offsetSize[i].offset < s.offsetSize[i-1].offset {
			return &TopologyError{Rule: "monotonic-offsets", Index: i, Message: "offset decreased from previous token"}
		}
	}
	// Rule: offset+length never exceeds source length.
	for i := 0; i < n; i++ {
		end := s.offsetSize[i].offset + s.offsetSize[i].byteLength()
		if end > uint64(len(s.source)) {
			return &TopologyError{Rule: "bounds", Index: i, Message: "token extends past end of source"}
		}
	}
	// Rule: Object/Array child counts keep every subtree within range.
	var walk func(i int) (int, error)
	walk = func(i int) (int, error) {
		if i >= n {
			return i, &TopologyError{Rule: "subtree-bounds", Index: i, Message: "subtree extends past end of token array"}
		}
		tok := Token{store: s, index: uint32(i)}
		switch tok.Type() {
		case TypeObject, TypeArray:
			// ChildCount is the total descendant count (§3.2.3), so the
			// subtree's end boundary -- not a count of immediate
			// children -- drives the loop; each iteration walks exactly
			// one immediate child's own subtree.
			end := i + 1 + int(tok.ChildCount())
			j := i + 1
			for j < end {
				if tok.Type() == TypeObject {
					// immediate child must be a String with its is-key bit set
					if j >= n || !(Token{store: s, index: uint32(j)}).IsKey() {
						return j, &TopologyError{Rule: "object-keys-are-strings", Index: j, Message: "object child is not a key string"}
					}
				}
				next, err := walk(j)
				if err != nil {
					return next, err
				}
				j = next
			}
			if j != end {
				return j, &TopologyError{Rule: "subtree-bounds", Index: i, Message: "declared child count does not match the recursively walked subtree size"}
			}
			return j, nil
		case TypeString:
			// A key string's ChildCount already folds in its value; walk past both.
			cc := tok.ChildCount()
			if cc == 0 {
				return i + 1, nil
			}
			j := i + 1
			next, err := walk(j)
			if err != nil {
				return next, err
			}
			return next, nil
		default:
			return i + 1, nil
		}
	}
	end, err := walk(0)
	if err != nil {
		return err.(*TopologyError)
	}
	if end != n {
		return &TopologyError{Rule: "root-spans-array", Index: end, Message: "root subtree does not span the entire token array"}
	}
	return nil
}
