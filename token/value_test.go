package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncruces/gojsontoken/token"
)

// V1: a number token can be parsed as any numeric width; parsing to a
// second, different width re-reads the source rather than reusing the
// first cached value.
func TestValue_V1_ReparseDifferentType(t *testing.T) {
	st := mustScan(t, `3`)
	tok := st.Root()

	d, err := tok.ParseDouble()
	require.NoError(t, err)
	assert.Equal(t, 3.0, d)

	i, err := tok.ParseInt()
	require.NoError(t, err)
	assert.EqualValues(t, 3, i)

	d2, err := tok.ParseDouble()
	require.NoError(t, err)
	assert.Equal(t, 3.0, d2)
}

// V2: an unsigned parse rejects a leading '-' even though the same text
// parses fine as a signed integer.
func TestValue_V2_UnsignedRejectsNegative(t *testing.T) {
	st := mustScan(t, `-5`)
	tok := st.Root()

	_, err := tok.ParseUnsignedInt()
	require.Error(t, err)
	var tokErr *token.Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, token.ErrUnsignedRejectsNegative, tokErr.Code)

	v, err := tok.ParseInt()
	require.NoError(t, err)
	assert.EqualValues(t, -5, v)
}

// V3: a value that overflows the requested width is rejected rather
// than silently truncated.
func TestValue_V3_OverflowRejected(t *testing.T) {
	st := mustScan(t, `99999999999`)
	_, err := st.Root().ParseUnsignedInt()
	require.Error(t, err)
	var tokErr *token.Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, token.ErrNumberOutOfRange, tokErr.Code)
}

// V4: string escape decoding handles two-character escapes (\n, \t)
// and caches the decoded result.
func TestValue_V4_StringEscapes(t *testing.T) {
	st := mustScan(t, `"line1\nline2\tA"`)
	s, err := st.Root().ParseString()
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\tA", s)

	// Second parse returns the cached decode, not a fresh allocation path.
	s2, err := st.Root().ParseString()
	require.NoError(t, err)
	assert.Equal(t, s, s2)
}

func TestValue_UnpairedSurrogateRejected(t *testing.T) {
	st := mustScan(t, `"\ud800"`)
	_, err := st.Root().ParseString()
	require.Error(t, err)
	var tokErr *token.Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, token.ErrInvalidUnicodeEscape, tokErr.Code)
}

func TestValue_UnescapedStringIsZeroCopyEquivalent(t *testing.T) {
	st := mustScan(t, `"hello"`)
	s, err := st.Root().ParseString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.Equal(t, "hello", st.Root().Data())
}

func TestValue_BoolAndNull(t *testing.T) {
	st := mustScan(t, `true`)
	b, err := st.Root().ParseBool()
	require.NoError(t, err)
	assert.True(t, b)

	st2 := mustScan(t, `null`)
	require.NoError(t, st2.Root().ParseNull())
	assert.True(t, st2.Root().IsParsed())
}

func TestValue_BulkParseArray(t *testing.T) {
	st := mustScan(t, `[1,2,3,4]`)
	vals, err := st.Root().DoubleArrayView()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, vals)
}

func TestValue_ParseDoubleArray_SizeAndShapeChecks(t *testing.T) {
	st := mustScan(t, `[1,2,3]`)
	vals, err := st.Root().ParseDoubleArray(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vals)

	_, err = st.Root().ParseDoubleArray(4)
	require.Error(t, err)
	var tokErr *token.Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, token.ErrArraySizeMismatch, tokErr.Code)

	st2 := mustScan(t, `[1,"a",3]`)
	_, err = st2.Root().ParseDoubleArray(0)
	require.Error(t, err)
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, token.ErrHeterogeneousArray, tokErr.Code)

	st3 := mustScan(t, `{"a":1}`)
	_, err = st3.Root().ParseDoubleArray(0)
	require.Error(t, err)
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, token.ErrExpectedArray, tokErr.Code)
}

func TestValue_ParseStringArray(t *testing.T) {
	st := mustScan(t, `["a","b","c"]`)
	vals, err := st.Root().ParseStringArray(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, vals)
}

func TestValue_LiteralTooLong(t *testing.T) {
	digits := make([]byte, 130)
	for i := range digits {
		digits[i] = '1'
	}
	st := mustScan(t, string(digits))
	_, err := st.Root().ParseDouble()
	require.Error(t, err)
	var tokErr *token.Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, token.ErrLiteralTooLong, tokErr.Code)
}

func TestValue_EagerParseLiteralsOption(t *testing.T) {
	st, err := token.NewFromString(`true`, token.OptParseLiterals, token.SourcePos{Line: 1, Column: 1})
	require.NoError(t, err)
	assert.True(t, st.Root().IsParsed())
}

// OptParseStringKeys eagerly decodes object keys while scanning, without
// touching value strings; OptParseStrings eagerly decodes both.
func TestValue_EagerParseStringOptions(t *testing.T) {
	src := `{"a\n":"b\n"}`

	st, err := token.NewFromString(src, token.OptParseStringKeys, token.SourcePos{Line: 1, Column: 1})
	require.NoError(t, err)
	st.Root().ObjectView(func(key, value token.Token) bool {
		assert.True(t, key.IsParsed())
		assert.False(t, value.IsParsed())
		return true
	})

	st2, err := token.NewFromString(src, token.OptParseStrings, token.SourcePos{Line: 1, Column: 1})
	require.NoError(t, err)
	st2.Root().ObjectView(func(key, value token.Token) bool {
		assert.True(t, key.IsParsed())
		assert.True(t, value.IsParsed())
		return true
	})
}
