package token

import (
	"math"
	"strconv"

	"github.com/ncruces/gojsontoken/internal/hostio"
)

// setWide rewrites this token's record to hold a 64-bit wide-kind value,
// discarding whatever narrow encoding (or previous wide value) was there.
// Reparsing a token to a *different* numeric type always goes through
// this path starting from the raw source slice again -- never from a
// previously cached value -- so precision lost by an earlier cast is
// never silently carried forward.
func (t Token) setWide(wk wideKind, bits uint64) {
	os := t.store.offsetSize[t.index]
	t.store.offsetSize[t.index] = makeOffsetSize(os.offset, os.byteLength(), wk)
	t.store.tokens[t.index] = bits
}

func (t Token) setNarrow(k kind, payload uint64) {
	os := t.store.offsetSize[t.index]
	t.store.offsetSize[t.index] = makeOffsetSize(os.offset, os.byteLength(), wideNarrow)
	t.store.tokens[t.index] = packNarrow(k, payload)
}

func (t Token) requireType(want Type) {
	if got := t.Type(); got != want {
		panic("token: type mismatch, expected " + want.String() + " but got " + got.String())
	}
}

// --- Number parsing -------------------------------------------------

// ParseDouble materializes this Number token as a float64, caching the
// result. Rejects literals that would parse as NaN or +/-Inf: JSON has
// no representation for either, so a value that somehow produces one
// indicates an out-of-range literal, not a legitimate double.
func (t Token) ParseDouble() (float64, error) {
	t.requireType(TypeNumber)
	if t.wideKind() == wideF64 {
		return math.Float64frombits(t.bits()), nil
	}
	text := t.Data()
	if err := t.checkLiteralLength(text); err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &Error{Code: ErrNumberOutOfRange, Message: "number literal does not fit in a double: " + text}
	}
	t.setWide(wideF64, math.Float64bits(v))
	return v, nil
}

// ParseFloat materializes this Number token as a float32.
func (t Token) ParseFloat() (float32, error) {
	t.requireType(TypeNumber)
	if t.wideKind() == wideNarrow && narrowKind(t.bits()) == kindNumberF32 {
		return float32FromBits(narrowAsUint32(t.bits())), nil
	}
	text := t.Data()
	if err := t.checkLiteralLength(text); err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(text, 32)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &Error{Code: ErrNumberOutOfRange, Message: "number literal does not fit in a float: " + text}
	}
	f := float32(v)
	t.setNarrow(kindNumberF32, uint64(math.Float32bits(f)))
	return f, nil
}

// maxNumberLiteralLength mirrors the original's 128-byte NUL-terminated
// stack buffer (see SPEC_FULL.md §4.D): Go's strconv family needs no
// such buffer, but the limit itself still guards against a pathological
// number literal, so it's preserved as an explicit length check.
const maxNumberLiteralLength = 128

func (t Token) checkLiteralLength(text string) error {
	if len(text) >= maxNumberLiteralLength {
		return &Error{Code: ErrLiteralTooLong, Message: "number literal is too long", Filename: t.store.filename, Pos: t.Position()}
	}
	return nil
}

func rejectUnsignedNegative(text string) error {
	if len(text) > 0 && text[0] == '-' {
		return &Error{Code: ErrUnsignedRejectsNegative, Message: "unsigned parse rejects leading '-': " + text}
	}
	return nil
}

// ParseUnsignedInt materializes this Number token as a uint32.
func (t Token) ParseUnsignedInt() (uint32, error) {
	t.requireType(TypeNumber)
	if t.wideKind() == wideNarrow && narrowKind(t.bits()) == kindNumberU32 {
		return narrowAsUint32(t.bits()), nil
	}
	text := t.Data()
	if err := t.checkLiteralLength(text); err != nil {
		return 0, err
	}
	if err := rejectUnsignedNegative(text); err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, &Error{Code: ErrNumberOutOfRange, Message: "number literal does not fit in a uint32: " + text}
	}
	t.setNarrow(kindNumberU32, v)
	return uint32(v), nil
}

// ParseInt materializes this Number token as an int32.
func (t Token) ParseInt() (int32, error) {
	t.requireType(TypeNumber)
	if t.wideKind() == wideNarrow && narrowKind(t.bits()) == kindNumberI32 {
		return int32(narrowAsUint32(t.bits())), nil
	}
	text := t.Data()
	if err := t.checkLiteralLength(text); err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, &Error{Code: ErrNumberOutOfRange, Message: "number literal does not fit in an int32: " + text}
	}
	t.setNarrow(kindNumberI32, uint64(uint32(v)))
	return int32(v), nil
}

// ParseUnsignedLong materializes this Number token as a uint64, capped
// to the store's 52-bit-scale convention (values must not exceed 2^52,
// matching the original library's "safe integer" ceiling for values
// that must also be representable as a double without loss).
func (t Token) ParseUnsignedLong() (uint64, error) {
	t.requireType(TypeNumber)
	if t.wideKind() == wideU64 {
		return t.bits(), nil
	}
	text := t.Data()
	if err := t.checkLiteralLength(text); err != nil {
		return 0, err
	}
	if err := rejectUnsignedNegative(text); err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil || v > 1<<52 {
		return 0, &Error{Code: ErrNumberOutOfRange, Message: "number literal does not fit in an unsigned long: " + text}
	}
	t.setWide(wideU64, v)
	return v, nil
}

// ParseLong materializes this Number token as an int64, capped to +/-2^52.
func (t Token) ParseLong() (int64, error) {
	t.requireType(TypeNumber)
	if t.wideKind() == wideI64 {
		return int64(t.bits()), nil
	}
	text := t.Data()
	if err := t.checkLiteralLength(text); err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(text, 10, 64)
	const limit = int64(1) << 52
	if err != nil || v >= limit || v <= -limit {
		return 0, &Error{Code: ErrNumberOutOfRange, Message: "number literal does not fit in a long: " + text}
	}
	t.setWide(wideI64, uint64(v))
	return v, nil
}

// ParseSize is an alias for ParseUnsignedLong: this port targets 64-bit
// hosts only (see SPEC_FULL.md §3.2), so "size" and "unsigned long" are
// the same width.
func (t Token) ParseSize() (uint64, error) { return t.ParseUnsignedLong() }

// --- Literal parsing -------------------------------------------------

// ParseNull marks a Null token as parsed. Null carries no value, so
// there is nothing to compute; this exists purely so IsParsed() tracks
// the same "has this token been visited" state for every kind.
func (t Token) ParseNull() error {
	t.requireType(TypeNull)
	if !t.IsParsed() {
		t.setNarrow(kindNullParsed, 0)
	}
	return nil
}

// ParseBool materializes this Bool token.
func (t Token) ParseBool() (bool, error) {
	t.requireType(TypeBool)
	if t.IsParsed() {
		return narrowAsUint32(t.bits()) != 0, nil
	}
	text := t.Data()
	v := text == "true"
	p := uint64(0)
	if v {
		p = 1
	}
	t.setNarrow(kindBoolParsed, p)
	return v, nil
}

// --- String parsing ----------------------------------------------------

// ParseString materializes this String token, decoding escape sequences
// if present. Unescaped strings are returned as a zero-copy slice of the
// source; escaped strings are decoded once into a freshly allocated
// string cached in the store's escaped-string table.
func (t Token) ParseString() (string, error) {
	t.requireType(TypeString)
	bits := t.bits()
	k := narrowKind(bits)
	switch k {
	case kindStringValueUnescapedParsed, kindStringKeyUnescapedParsed:
		return t.Data(), nil
	case kindStringValueEscapedParsed, kindStringKeyEscapedParsed:
		return t.store.escapedStrings[narrowPayload(bits)], nil
	case kindStringValueUnescaped:
		t.setNarrow(kindStringValueUnescapedParsed, 0)
		return t.Data(), nil
	case kindStringKeyUnescaped:
		t.setNarrow(kindStringKeyUnescapedParsed, 0)
		return t.Data(), nil
	case kindStringValueEscaped, kindStringKeyEscaped:
		decoded, err := unescapeString(t.Data())
		if err != nil {
			return "", err
		}
		idx := t.store.internEscapedString(decoded)
		parsedKind := kindStringValueEscapedParsed
		if k == kindStringKeyEscaped {
			parsedKind = kindStringKeyEscapedParsed
		}
		t.setNarrow(parsedKind, idx)
		return decoded, nil
	default:
		panic("token: not a string token")
	}
}

// unescapeString decodes a JSON string body (content between the quotes,
// as produced by the scanner) into its final text. BMP-only: a \uXXXX
// surrogate half is never combined with its pair, matching the
// non-goal that surrogate pairs are not decoded -- see a lone surrogate
// is instead rejected outright, since re-emitting it as UTF-8 would
// itself be ill-formed.
func unescapeString(body string) (string, error) {
	hasEscape := false
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' {
			hasEscape = true
			break
		}
	}
	if !hasEscape {
		return body, nil
	}
	out := make([]byte, 0, len(body))
	var buf [4]byte
	for i := 0; i < len(body); i++ {
		b := body[i]
		if b != '\\' {
			out = append(out, b)
			continue
		}
		i++
		switch body[i] {
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		case '/':
			out = append(out, '/')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			cp, err := decodeHex4(body[i+1 : i+5])
			if err != nil {
				return "", err
			}
			i += 4
			n := hostio.EncodeRune(buf[:], rune(cp))
			if n == 0 {
				return "", &Error{Code: ErrInvalidUnicodeEscape, Message: "unpaired or invalid \\u escape"}
			}
			out = append(out, buf[:n]...)
		}
	}
	return string(out), nil
}

func decodeHex4(s string) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		c := s[i]
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, &Error{Code: ErrInvalidUnicodeEscape, Message: "invalid hex digit in \\u escape"}
		}
	}
	return v, nil
}

// --- Bulk parsing over a subtree --------------------------------------

// forEachDescendant walks every descendant token of parent (not
// including parent itself when parent is an Object/Array, but including
// it when parent is itself a leaf -- i.e. it always visits exactly the
// set of value tokens contained in parent's span, skipping key strings).
func forEachDescendant(parent Token, visit func(Token) error) error {
	n := len(parent.store.tokens)
	end := int(parent.index) + 1 + int(parent.ChildCount())
	if end > n {
		end = n
	}
	switch parent.Type() {
	case TypeObject:
		// ChildCount is a total-descendant count, not a pair count, so
		// iteration stops at the boundary rather than a loop counter.
		i := int(parent.index) + 1
		for i < end {
			val := Token{store: parent.store, index: uint32(i + 1)}
			if err := visit(val); err != nil {
				return err
			}
			if vt := val.Type(); vt == TypeObject || vt == TypeArray {
				if err := forEachDescendant(val, visit); err != nil {
					return err
				}
			}
			i += 2 + int(val.ChildCount())
		}
	case TypeArray:
		i := int(parent.index) + 1
		for i < end {
			val := Token{store: parent.store, index: uint32(i)}
			if err := visit(val); err != nil {
				return err
			}
			if vt := val.Type(); vt == TypeObject || vt == TypeArray {
				if err := forEachDescendant(val, visit); err != nil {
					return err
				}
			}
			i += 1 + int(val.ChildCount())
		}
	default:
		return visit(parent)
	}
	return nil
}

// ParseDoubles bulk-parses every Number descendant of root as a double.
func ParseDoubles(root Token) error {
	return forEachDescendant(root, func(t Token) error {
		if t.Type() != TypeNumber {
			return nil
		}
		_, err := t.ParseDouble()
		return err
	})
}

// ParseFloats bulk-parses every Number descendant of root as a float32.
func ParseFloats(root Token) error {
	return forEachDescendant(root, func(t Token) error {
		if t.Type() != TypeNumber {
			return nil
		}
		_, err := t.ParseFloat()
		return err
	})
}

// ParseUnsignedInts bulk-parses every Number descendant as a uint32.
func ParseUnsignedInts(root Token) error {
	return forEachDescendant(root, func(t Token) error {
		if t.Type() != TypeNumber {
			return nil
		}
		_, err := t.ParseUnsignedInt()
		return err
	})
}

// ParseInts bulk-parses every Number descendant as an int32.
func ParseInts(root Token) error {
	return forEachDescendant(root, func(t Token) error {
		if t.Type() != TypeNumber {
			return nil
		}
		_, err := t.ParseInt()
		return err
	})
}

// ParseUnsignedLongs bulk-parses every Number descendant as a uint64.
func ParseUnsignedLongs(root Token) error {
	return forEachDescendant(root, func(t Token) error {
		if t.Type() != TypeNumber {
			return nil
		}
		_, err := t.ParseUnsignedLong()
		return err
	})
}

// ParseLongs bulk-parses every Number descendant as an int64.
func ParseLongs(root Token) error {
	return forEachDescendant(root, func(t Token) error {
		if t.Type() != TypeNumber {
			return nil
		}
		_, err := t.ParseLong()
		return err
	})
}

// ParseSizes is an alias for ParseUnsignedLongs.
func ParseSizes(root Token) error { return ParseUnsignedLongs(root) }

// ParseLiterals bulk-parses every Null/Bool descendant.
func ParseLiterals(root Token) error {
	return forEachDescendant(root, func(t Token) error {
		switch t.Type() {
		case TypeNull:
			return t.ParseNull()
		case TypeBool:
			_, err := t.ParseBool()
			return err
		}
		return nil
	})
}

// ParseStrings bulk-parses every String descendant's value (and,
// because a value string always implies ParseStringKeys semantics for
// any object it's nested under, its enclosing keys too -- see
// ParseStringKeys).
func ParseStrings(root Token) error {
	if err := ParseStringKeys(root); err != nil {
		return err
	}
	return forEachDescendant(root, func(t Token) error {
		if t.Type() != TypeString {
			return nil
		}
		_, err := t.ParseString()
		return err
	})
}

// ParseStringKeys bulk-parses every object-key String reachable from
// root, without touching value strings.
func ParseStringKeys(root Token) error {
	var walk func(Token) error
	walk = func(t Token) error {
		switch t.Type() {
		case TypeObject:
			// ChildCount is a total-descendant count, not a pair count, so
			// iteration stops at the boundary rather than a loop counter.
			i := int(t.index) + 1
			end := int(t.index) + 1 + int(t.ChildCount())
			for i < end {
				key := Token{store: t.store, index: uint32(i)}
				if _, err := key.ParseString(); err != nil {
					return err
				}
				val := Token{store: t.store, index: uint32(i + 1)}
				if err := walk(val); err != nil {
					return err
				}
				i += 2 + int(val.ChildCount())
			}
		case TypeArray:
			i := int(t.index) + 1
			end := int(t.index) + 1 + int(t.ChildCount())
			for i < end {
				val := Token{store: t.store, index: uint32(i)}
				if err := walk(val); err != nil {
					return err
				}
				i += 1 + int(val.ChildCount())
			}
		}
		return nil
	}
	return walk(root)
}
