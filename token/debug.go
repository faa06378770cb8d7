package token

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// recordDump is the shape debug.go hands to go-spew: the physical
// tokens/offsetSize/escapedStrings arrays, not the logical document
// tree a caller normally works with. This is deliberately low-level --
// it's for inspecting the NaN-boxed layout itself, the kind of thing
// encoding/json has no vocabulary for since there's no JSON struct tree
// here, just packed arrays.
type recordDump struct {
	Index       int
	Offset      uint64
	Length      uint64
	WideKind    string
	NarrowKind  string
	RawBits     uint64
	Type        string
	IsParsed    bool
	ChildCount  uint64
}

func (w wideKind) String() string {
	switch w {
	case wideNarrow:
		return "narrow"
	case wideF64:
		return "f64"
	case wideU64:
		return "u64"
	case wideI64:
		return "i64"
	default:
		return "invalid"
	}
}

func (k kind) String() string {
	names := [...]string{
		"Null", "NullParsed", "Bool", "BoolParsed",
		"NumberUnparsed", "NumberF32", "NumberU32", "NumberI32",
		"Object", "Array",
		"StringValueUnescaped", "StringValueUnescapedParsed",
		"StringValueEscaped", "StringValueEscapedParsed",
		"StringKeyUnescaped", "StringKeyUnescapedParsed",
		"StringKeyEscaped", "StringKeyEscapedParsed",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "invalid"
}

// Dump renders the store's physical token arrays via go-spew, one
// recordDump entry per token, for low-level debugging.
func (s *Store) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "source: %d bytes, %d tokens, %d escaped strings\n", len(s.source), len(s.tokens), len(s.escapedStrings))
	dumps := make([]recordDump, len(s.tokens))
	for i := range s.tokens {
		tok := Token{store: s, index: uint32(i)}
		os := s.offsetSize[i]
		nk := "-"
		if os.wideKind() == wideNarrow {
			nk = narrowKind(s.tokens[i]).String()
		}
		dumps[i] = recordDump{
			Index:      i,
			Offset:     os.offset,
			Length:     os.byteLength(),
			WideKind:   os.wideKind().String(),
			NarrowKind: nk,
			RawBits:    s.tokens[i],
			Type:       tok.Type().String(),
			IsParsed:   tok.IsParsed(),
			ChildCount: tok.ChildCount(),
		}
	}
	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true}
	b.WriteString(cfg.Sdump(dumps))
	return b.String()
}
