package token

import (
	"fmt"
	"unsafe"
)

// DoubleArrayView returns a zero-copy []float64 view over array's
// elements, bulk-parsing them as doubles first if needed. This is the
// one typed view that's genuinely zero-copy: a parsed-double leaf token
// occupies exactly one 8-byte slot in the store's tokens array holding
// the IEEE-754 bit pattern itself, so a contiguous run of them IS a
// []float64 already, just under a different Go type. Reinterpreting it
// costs nothing beyond the unsafe cast.
//
// The returned slice aliases the store: mutating tokens via further
// Parse* calls on the same indices invalidates it.
func (t Token) DoubleArrayView() ([]float64, error) {
	t.requireType(TypeArray)
	if err := ParseDoubles(t); err != nil {
		return nil, err
	}
	n := t.ElementCount()
	if n == 0 {
		return nil, nil
	}
	start := int(t.index) + 1
	for i := 0; i < n; i++ {
		if t.store.offsetSize[start+i].wideKind() != wideF64 {
			// A non-leaf or non-double element broke contiguity -- fall
			// back to a copy rather than reinterpret mismatched memory.
			return t.copyDoubles(start, n), nil
		}
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&t.store.tokens[start])), n), nil
}

func (t Token) copyDoubles(start, n int) []float64 {
	out := make([]float64, n)
	i := start
	for k := 0; k < n; k++ {
		v, _ := Token{store: t.store, index: uint32(i)}.ParseDouble()
		out[k] = v
		i += 1 + int(Token{store: t.store, index: uint32(i)}.ChildCount())
	}
	return out
}

// UnsignedLongArrayView returns a zero-copy []uint64 view, analogous to
// DoubleArrayView, over an array bulk-parsed as unsigned longs.
func (t Token) UnsignedLongArrayView() ([]uint64, error) {
	t.requireType(TypeArray)
	if err := ParseUnsignedLongs(t); err != nil {
		return nil, err
	}
	n := t.ElementCount()
	if n == 0 {
		return nil, nil
	}
	start := int(t.index) + 1
	return t.store.tokens[start : start+n : start+n], nil
}

// LongArrayView returns a zero-copy []int64 view over an array bulk-
// parsed as signed longs.
func (t Token) LongArrayView() ([]int64, error) {
	t.requireType(TypeArray)
	if err := ParseLongs(t); err != nil {
		return nil, err
	}
	n := t.ElementCount()
	if n == 0 {
		return nil, nil
	}
	start := int(t.index) + 1
	return unsafe.Slice((*int64)(unsafe.Pointer(&t.store.tokens[start])), n), nil
}

// UnsignedIntArrayView materializes a []uint32 over a bulk-parsed array.
// Unlike the 64-bit views, narrow 32-bit payloads are packed alongside a
// NaN-boxing tag (see record.go), so this allocates rather than aliasing
// the store.
func (t Token) UnsignedIntArrayView() ([]uint32, error) {
	t.requireType(TypeArray)
	if err := ParseUnsignedInts(t); err != nil {
		return nil, err
	}
	out := make([]uint32, 0, t.ElementCount())
	t.ArrayView(func(_ int, v Token) bool {
		out = append(out, narrowAsUint32(v.bits()))
		return true
	})
	return out, nil
}

// IntArrayView materializes a []int32 over a bulk-parsed array.
func (t Token) IntArrayView() ([]int32, error) {
	t.requireType(TypeArray)
	if err := ParseInts(t); err != nil {
		return nil, err
	}
	out := make([]int32, 0, t.ElementCount())
	t.ArrayView(func(_ int, v Token) bool {
		out = append(out, int32(narrowAsUint32(v.bits())))
		return true
	})
	return out, nil
}

// BitArrayView materializes a []bool over a bulk-parsed array of Bool
// tokens. The record format packs each bool into the same tagged
// 46-bit payload region as every other narrow kind, so this is not a
// true bit-packed view (8 bools to a byte); it trades that extra density
// for reusing one uniform record layout across every narrow kind.
func (t Token) BitArrayView() ([]bool, error) {
	t.requireType(TypeArray)
	if err := ParseLiterals(t); err != nil {
		return nil, err
	}
	out := make([]bool, 0, t.ElementCount())
	t.ArrayView(func(_ int, v Token) bool {
		b, _ := v.ParseBool()
		out = append(out, b)
		return true
	})
	return out, nil
}

// --- Per-array entry points ------------------------------------------
//
// These validate "this is an Array, every immediate child is of the
// expected kind, and (if expectedSize is nonzero) the child count
// matches" before delegating to the corresponding bulk parse and typed
// view. Unlike a plain type assertion elsewhere in this package, a shape
// violation here is a returned error rather than a panic: the caller may
// be validating a document of unknown shape, not just misusing the API
// (see SPEC_FULL.md §7's ParseTokenArray error kinds).
func (t Token) checkArrayShape(want Type, expectedSize int) error {
	if t.Type() != TypeArray {
		return &Error{Code: ErrExpectedArray, Message: "expected an Array token", Filename: t.store.filename, Pos: t.Position()}
	}
	n := t.ElementCount()
	if expectedSize != 0 && n != expectedSize {
		return &Error{Code: ErrArraySizeMismatch, Message: fmt.Sprintf("array has %d elements, expected %d", n, expectedSize), Filename: t.store.filename, Pos: t.Position()}
	}
	mismatch := false
	t.ArrayView(func(_ int, v Token) bool {
		if v.Type() != want {
			mismatch = true
			return false
		}
		return true
	})
	if mismatch {
		return &Error{Code: ErrHeterogeneousArray, Message: "array elements are not all " + want.String(), Filename: t.store.filename, Pos: t.Position()}
	}
	return nil
}

// ParseDoubleArray validates and parses an Array of Number tokens as
// []float64. expectedSize, if nonzero, must match the array's length.
func (t Token) ParseDoubleArray(expectedSize int) ([]float64, error) {
	if err := t.checkArrayShape(TypeNumber, expectedSize); err != nil {
		return nil, err
	}
	return t.DoubleArrayView()
}

// ParseFloatArray validates and parses an Array of Number tokens as []float32.
func (t Token) ParseFloatArray(expectedSize int) ([]float32, error) {
	if err := t.checkArrayShape(TypeNumber, expectedSize); err != nil {
		return nil, err
	}
	if err := ParseFloats(t); err != nil {
		return nil, err
	}
	out := make([]float32, 0, t.ElementCount())
	t.ArrayView(func(_ int, v Token) bool {
		f, _ := v.ParseFloat()
		out = append(out, f)
		return true
	})
	return out, nil
}

// ParseUnsignedIntArray validates and parses an Array of Number tokens as []uint32.
func (t Token) ParseUnsignedIntArray(expectedSize int) ([]uint32, error) {
	if err := t.checkArrayShape(TypeNumber, expectedSize); err != nil {
		return nil, err
	}
	return t.UnsignedIntArrayView()
}

// ParseIntArray validates and parses an Array of Number tokens as []int32.
func (t Token) ParseIntArray(expectedSize int) ([]int32, error) {
	if err := t.checkArrayShape(TypeNumber, expectedSize); err != nil {
		return nil, err
	}
	return t.IntArrayView()
}

// ParseUnsignedLongArray validates and parses an Array of Number tokens as []uint64.
func (t Token) ParseUnsignedLongArray(expectedSize int) ([]uint64, error) {
	if err := t.checkArrayShape(TypeNumber, expectedSize); err != nil {
		return nil, err
	}
	return t.UnsignedLongArrayView()
}

// ParseLongArray validates and parses an Array of Number tokens as []int64.
func (t Token) ParseLongArray(expectedSize int) ([]int64, error) {
	if err := t.checkArrayShape(TypeNumber, expectedSize); err != nil {
		return nil, err
	}
	return t.LongArrayView()
}

// ParseSizeArray is an alias for ParseUnsignedLongArray.
func (t Token) ParseSizeArray(expectedSize int) ([]uint64, error) {
	return t.ParseUnsignedLongArray(expectedSize)
}

// ParseBitArray validates and parses an Array of Bool tokens as []bool.
func (t Token) ParseBitArray(expectedSize int) ([]bool, error) {
	if err := t.checkArrayShape(TypeBool, expectedSize); err != nil {
		return nil, err
	}
	return t.BitArrayView()
}

// ParseStringArray validates and parses an Array of String tokens as []string.
func (t Token) ParseStringArray(expectedSize int) ([]string, error) {
	if err := t.checkArrayShape(TypeString, expectedSize); err != nil {
		return nil, err
	}
	out := make([]string, 0, t.ElementCount())
	err := t.StringArrayView(func(_ int, s string) bool {
		out = append(out, s)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StringArrayView iterates a bulk-parsed array of String elements,
// calling yield for each decoded value in order. Strings are not
// fixed-width, so there is no strided view to offer here -- this is the
// callback-iterable form the typed-array design calls for instead.
func (t Token) StringArrayView(yield func(index int, s string) bool) error {
	t.requireType(TypeArray)
	if err := ParseStrings(t); err != nil {
		return err
	}
	var parseErr error
	t.ArrayView(func(i int, v Token) bool {
		s, err := v.ParseString()
		if err != nil {
			parseErr = err
			return false
		}
		return yield(i, s)
	})
	return parseErr
}
