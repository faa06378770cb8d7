package token_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ncruces/gojsontoken/token"
)

// W1: a compact writer emits no extraneous whitespace.
func TestWriter_W1_CompactOutput(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.Object()
	w.Key("a")
	w.Long(1)
	w.Key("b")
	w.Array()
	w.Long(1)
	w.Long(2)
	w.EndArray()
	w.EndObject()
	assert.Equal(t, `{"a":1,"b":[1,2]}`, w.String())
}

// W2: pretty printing indents nested scopes and separates elements with
// newlines.
func TestWriter_W2_PrettyOutput(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{Pretty: true}, 2, 0)
	w.Object()
	w.Key("a")
	w.Long(1)
	w.EndObject()
	assert.Equal(t, "{\n  \"a\": 1\n}\n", w.String())
}

// W3: calling a writer method in the wrong state panics rather than
// producing malformed output.
func TestWriter_W3_WrongStatePanics(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.Long(1) // completes the top-level value; writer is now stateDocumentEnd
	assert.Panics(t, func() {
		w.Long(2)
	})
}

func TestWriter_EmptyContainers(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.Object()
	w.EndObject()
	assert.Equal(t, `{}`, w.String())

	w2 := token.NewWriter(token.WriterOptions{}, 0, 0)
	w2.Array()
	w2.EndArray()
	assert.Equal(t, `[]`, w2.String())
}

func TestWriter_StringEscaping(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.String("a\nb\"c")
	assert.Equal(t, `"a\nb\"c"`, w.String())
}

func TestWriter_CompactArrayWrap(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{Pretty: true}, 2, 0)
	w.CompactArray(2)
	for i := 0; i < 4; i++ {
		w.Long(int64(i))
	}
	w.EndArray()
	assert.Equal(t, "[\n  0,1,\n  2,3\n]\n", w.String())
}

// A Writer constructed with a nonzero initialIndent is meant to be
// spliced as a fragment into an already-indented document: its own
// levels are offset accordingly, and it does not append the trailing
// newline a standalone pretty document would.
func TestWriter_InitialIndentOmitsTrailingNewline(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{Pretty: true}, 2, 1)
	w.Object()
	w.Key("a")
	w.Long(1)
	w.EndObject()
	assert.Equal(t, "{\n    \"a\": 1\n  }", w.String())
}

// String and WriteToFile require a finished document.
func TestWriter_StringPanicsOnIncompleteDocument(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.Object()
	assert.Panics(t, func() {
		w.String()
	})
}

// Indentation beyond 8 spaces per level is a caller bug, not a data
// error.
func TestWriter_NewWriterPanicsOnExcessiveIndent(t *testing.T) {
	assert.Panics(t, func() {
		token.NewWriter(token.WriterOptions{Pretty: true}, 9, 0)
	})
}

// NaN and infinite floats have no JSON representation.
func TestWriter_DoubleAndFloatPanicOnNonFinite(t *testing.T) {
	assert.Panics(t, func() {
		token.NewWriter(token.WriterOptions{}, 0, 0).Double(math.NaN())
	})
	assert.Panics(t, func() {
		token.NewWriter(token.WriterOptions{}, 0, 0).Double(math.Inf(1))
	})
	assert.Panics(t, func() {
		token.NewWriter(token.WriterOptions{}, 0, 0).Float(float32(math.Inf(-1)))
	})
}

// 64-bit integers are asserted to fit within 2^52 in magnitude.
func TestWriter_LongAndUnsignedLongPanicOnOverflow(t *testing.T) {
	assert.Panics(t, func() {
		token.NewWriter(token.WriterOptions{}, 0, 0).UnsignedLong(1 << 53)
	})
	assert.Panics(t, func() {
		token.NewWriter(token.WriterOptions{}, 0, 0).Long(1 << 53)
	})
	assert.Panics(t, func() {
		token.NewWriter(token.WriterOptions{}, 0, 0).Long(-(1 << 53))
	})
	assert.NotPanics(t, func() {
		token.NewWriter(token.WriterOptions{}, 0, 0).UnsignedLong(1 << 52)
	})
}

// W3: CurrentArraySize tracks elements written to the innermost array.
func TestWriter_W3_CurrentArraySize(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.Array()
	assert.Equal(t, 0, w.CurrentArraySize())
	w.Long(1)
	w.Long(2)
	assert.Equal(t, 2, w.CurrentArraySize())
}

// WriteArray and its per-type siblings are exactly CompactArray +
// per-element scalar call + EndArray.
func TestWriter_WriteArrayFamily(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.WriteLongArray([]int64{1, 2, 3}, 0)
	assert.Equal(t, `[1,2,3]`, w.String())

	w2 := token.NewWriter(token.WriterOptions{}, 0, 0)
	w2.WriteStringArray([]string{"a", "b"}, 0)
	assert.Equal(t, `["a","b"]`, w2.String())
}

func TestWriter_RoundTripsThroughParseAndReemit(t *testing.T) {
	src := `{"name":"ok","count":3,"nested":[1,2,3],"flag":true,"nothing":null}`
	st := mustScan(t, src)
	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	err := token.WriteJSON(w, st.Root())
	assert := assert.New(t)
	assert.NoError(err)

	st2, err := token.NewFromString(w.String(), 0, token.SourcePos{Line: 1, Column: 1})
	assert.NoError(err)
	assert.Equal(st.Root().ChildCount(), st2.Root().ChildCount())
}
