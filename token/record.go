// Package token implements a high-throughput, low-allocation JSON
// tokenizer, on-demand value parser and streaming writer.
//
// A parsed document lives as a single, depth-first, contiguous array of
// fixed-width token records (see Store). Values are not parsed eagerly:
// a token starts out pointing at a raw slice of the source text, and
// Parse* calls turn that slice into a typed, cached value only when
// asked. This keeps scanning a document that's mostly skipped over (for
// example, to pull one field out of a large array of records) close to
// free.
package token

import "math"

// Type is the JSON structural type of a token, independent of whether
// its value has been parsed yet.
type Type uint8

const (
	TypeObject Type = iota
	TypeArray
	TypeNull
	TypeBool
	TypeNumber
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeObject:
		return "Object"
	case TypeArray:
		return "Array"
	case TypeNull:
		return "Null"
	case TypeBool:
		return "Bool"
	case TypeNumber:
		return "Number"
	case TypeString:
		return "String"
	default:
		return "Invalid"
	}
}

// ParsedType is the concrete Go type a Number or String token's value
// has been parsed into. ParsedNone means "not parsed yet". A parsed
// Null, Bool, Object, or Array token reports ParsedOther: there's a
// value (use IsParsed), but no concrete numeric/string Go type to name.
type ParsedType uint8

const (
	ParsedNone ParsedType = iota
	ParsedDouble
	ParsedFloat
	ParsedUnsignedInt
	ParsedInt
	ParsedUnsignedLong
	ParsedLong
	ParsedOther // parsed String, or Null/Bool/Object/Array
)

// kind is the internal narrow-token tag, stored in bits 50..46 of a
// narrow record, just above its 46-bit payload (see kindShift). It is not
// exported: callers observe Type/ParsedType/IsParsed, not kind directly.
type kind uint8

const (
	kindNull kind = iota
	kindNullParsed
	kindBool
	kindBoolParsed
	kindNumberUnparsed
	kindNumberF32
	kindNumberU32
	kindNumberI32
	kindObject
	kindArray
	kindStringValueUnescaped
	kindStringValueUnescapedParsed
	kindStringValueEscaped
	kindStringValueEscapedParsed
	kindStringKeyUnescaped
	kindStringKeyUnescapedParsed
	kindStringKeyEscaped
	kindStringKeyEscapedParsed
)

// NaN-boxed payload layout (see SPEC_FULL.md §3.2 for the rationale):
//
//	bit 63      : sign, always 0
//	bits 62..52 : exponent, all 1s (0x7FF) -- the fixed NaN shape
//	bit  51     : quiet-NaN bit, always 1 (keeps the encoding a quiet NaN
//	              under every FPU, never a signalling one)
//	bits 50..46 : kind (5 bits, 32 possible, 18 used)
//	bits 45..0  : payload (46 bits)
//
// A record that holds a plain parsed double is NOT put through this
// encoding at all: it is stored as the IEEE-754 bit pattern of the float
// itself, distinguished from a narrow token by offsetSize's wide-kind
// tag (see store.go). Only values that don't fit naturally in a double
// (object/array child counts, cached-string indices, small integers,
// bools, null, unparsed-number markers) go through the kind+payload
// encoding above.
const (
	nanShapeMask  uint64 = 0x7FF8_0000_0000_0000
	kindShift            = 46
	kindMask      uint64 = 0x1F
	payloadMask   uint64 = (1 << kindShift) - 1
	noParentValue uint64 = payloadMask // all payload bits set: "no enclosing container"
)

func packNarrow(k kind, payload uint64) uint64 {
	if payload > payloadMask {
		panic("token: narrow payload overflow")
	}
	return nanShapeMask | (uint64(k) << kindShift) | payload
}

func narrowKind(bits uint64) kind {
	return kind((bits >> kindShift) & kindMask)
}

func narrowPayload(bits uint64) uint64 {
	return bits & payloadMask
}

// Token is a lightweight (16-byte) handle: a pointer to the owning Store
// plus an index into its token array. Tokens are cheap to copy and
// compare; they alias the Store's backing arrays rather than copying
// out of them.
type Token struct {
	store *Store
	index uint32
}

func (t Token) valid() bool {
	return t.store != nil && int(t.index) < len(t.store.tokens)
}

func (t Token) bits() uint64 {
	return t.store.tokens[t.index]
}

func (t Token) wideKind() wideKind {
	return t.store.offsetSize[t.index].wideKind()
}

// Type reports the token's structural JSON type.
func (t Token) Type() Type {
	if t.wideKind() != wideNarrow {
		return TypeNumber
	}
	switch narrowKind(t.bits()) {
	case kindNull, kindNullParsed:
		return TypeNull
	case kindBool, kindBoolParsed:
		return TypeBool
	case kindNumberUnparsed, kindNumberF32, kindNumberU32, kindNumberI32:
		return TypeNumber
	case kindObject:
		return TypeObject
	case kindArray:
		return TypeArray
	default:
		return TypeString
	}
}

// IsParsed reports whether the token's value has already been
// materialized (as opposed to sitting as a raw, unparsed source slice).
func (t Token) IsParsed() bool {
	switch t.wideKind() {
	case wideF64, wideU64, wideI64:
		return true
	}
	switch narrowKind(t.bits()) {
	case kindNullParsed, kindBoolParsed,
		kindNumberF32, kindNumberU32, kindNumberI32,
		kindStringValueUnescapedParsed, kindStringValueEscapedParsed,
		kindStringKeyUnescapedParsed, kindStringKeyEscapedParsed:
		return true
	case kindObject, kindArray:
		return true // structural tokens have no separate "unparsed" state
	default:
		return false
	}
}

// ParsedType reports which concrete type a Number or String token has
// been parsed into. It is ParsedNone for an unparsed token, and
// ParsedOther for a parsed Null, Bool, Object, or Array (use IsParsed
// to check whether one of those has been parsed at all).
func (t Token) ParsedType() ParsedType {
	switch t.wideKind() {
	case wideF64:
		return ParsedDouble
	case wideU64:
		return ParsedUnsignedLong
	case wideI64:
		return ParsedLong
	}
	switch narrowKind(t.bits()) {
	case kindNumberF32:
		return ParsedFloat
	case kindNumberU32:
		return ParsedUnsignedInt
	case kindNumberI32:
		return ParsedInt
	case kindStringValueUnescapedParsed, kindStringValueEscapedParsed,
		kindStringKeyUnescapedParsed, kindStringKeyEscapedParsed:
		return ParsedOther
	case kindNullParsed, kindBoolParsed, kindObject, kindArray:
		// Parsed, but the representation is intrinsic to the kind itself
		// (null/bool) or the token is structural (Object/Array, which have
		// no separate unparsed state): either way there's no concrete
		// numeric/string Go type to name, so report Other rather than None.
		return ParsedOther
	default:
		return ParsedNone
	}
}

// IsNumber reports whether the token is a Number, parsed or not.
func (t Token) IsNumber() bool {
	return t.Type() == TypeNumber
}

// IsKey reports whether the token is an object key string, as opposed
// to a value string.
func (t Token) IsKey() bool {
	if t.wideKind() != wideNarrow {
		return false
	}
	switch narrowKind(t.bits()) {
	case kindStringKeyUnescaped, kindStringKeyUnescapedParsed, kindStringKeyEscaped, kindStringKeyEscapedParsed:
		return true
	default:
		return false
	}
}

// ChildCount returns the total number of descendants in the token's
// subtree (not just immediate children), per the depth-first layout
// invariant: a token's subtree occupies the contiguous range
// [index, index+1+ChildCount()). For Object/Array this is every token
// nested anywhere underneath it, however deep; for an object key token,
// it is 1 (the key itself contributes no other tokens) plus its value's
// own ChildCount, so the whole key+value pair's subtree can be skipped
// in one step; 0 otherwise.
//
// A store under active construction by the scanner may have this field
// temporarily holding a back-pointer to the enclosing container instead
// of a real count -- see scanner.go's scanContainer and closeContainer. ChildCount is only
// meaningful once scanning has completed.
func (t Token) ChildCount() uint64 {
	if t.wideKind() != wideNarrow {
		return 0
	}
	switch narrowKind(t.bits()) {
	case kindObject, kindArray:
		return narrowPayload(t.bits())
	case kindStringKeyUnescaped, kindStringKeyUnescapedParsed, kindStringKeyEscaped, kindStringKeyEscapedParsed:
		if !t.valid() || int(t.index)+1 >= len(t.store.tokens) {
			return 0
		}
		valueTok := Token{store: t.store, index: t.index + 1}
		return 1 + valueTok.ChildCount()
	default:
		return 0
	}
}

// Data returns the raw source slice this token was scanned from
// (unescaped and unparsed, exactly as it appeared in the input).
func (t Token) Data() string {
	os := t.store.offsetSize[t.index]
	return t.store.source[os.offset : os.offset+os.byteLength()]
}

// byteLength is re-exported for callers needing raw extents without an
// intermediate Data allocation (e.g. position computation).
func (t Token) byteLength() uint64 {
	return t.store.offsetSize[t.index].byteLength()
}

func (t Token) offset() uint64 {
	return t.store.offsetSize[t.index].offset
}

// narrowAsUint32 extracts the low-32-bit payload convention used by the
// small numeric kinds and the parsed-bool kind.
func narrowAsUint32(bits uint64) uint32 {
	return uint32(narrowPayload(bits))
}

func float32FromBits(b uint32) float32 {
	return math.Float32frombits(b)
}
