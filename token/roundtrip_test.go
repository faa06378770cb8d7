package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncruces/gojsontoken/token"
)

// objectKeys collects an Object token's immediate key names, in order.
func objectKeys(t *testing.T, obj token.Token) []string {
	t.Helper()
	var keys []string
	obj.ObjectView(func(key, _ token.Token) bool {
		k, err := key.ParseString()
		require.NoError(t, err)
		keys = append(keys, k)
		return true
	})
	return keys
}

// R1: re-emitting a parsed document preserves its structural identity
// (same key order, same element count at every level). Comparing only
// ChildCount at the root and at one nested key is not enough to catch a
// writer that drops or invents a key -- the counts can coincidentally
// still match -- so this also compares the full re-emitted text and the
// key set at every object level.
func TestRoundTrip_R1_StructuralIdentity(t *testing.T) {
	src := `{"a":1,"b":[2,3,{"c":4}],"d":"hi","e":null,"f":true}`
	st := mustScan(t, src)

	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	require.NoError(t, token.WriteJSON(w, st.Root()))
	out := w.String()
	assert.Equal(t, src, out, "re-emitted document should be byte-identical to the input")

	st2, err := token.NewFromString(out, 0, token.SourcePos{Line: 1, Column: 1})
	require.NoError(t, err)

	assert.Equal(t, st.Root().ChildCount(), st2.Root().ChildCount())
	assert.Equal(t, objectKeys(t, st.Root()), objectKeys(t, st2.Root()))

	b := st.Root().Find("b")
	b2 := st2.Root().Find("b")
	require.True(t, b.IsValid())
	require.True(t, b2.IsValid())
	assert.Equal(t, b.ChildCount(), b2.ChildCount())

	c := b.At(2)
	c2 := b2.At(2)
	require.True(t, c.IsValid())
	require.True(t, c2.IsValid())
	assert.Equal(t, objectKeys(t, c), objectKeys(t, c2))

	f := st2.Root().Find("f")
	require.True(t, f.IsValid(), "key %q must survive round-trip", "f")
	fb, err := f.ParseBool()
	require.NoError(t, err)
	assert.True(t, fb)
}

// R2: numeric values round-trip exactly through Double/Float formatting.
func TestRoundTrip_R2_NumberPrecision(t *testing.T) {
	src := `3.141592653589793`
	st := mustScan(t, src)
	d, err := st.Root().ParseDouble()
	require.NoError(t, err)

	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	w.Double(d)

	st2, err := token.NewFromString(w.String(), 0, token.SourcePos{Line: 1, Column: 1})
	require.NoError(t, err)
	d2, err := st2.Root().ParseDouble()
	require.NoError(t, err)
	assert.Equal(t, d, d2)
}

// R3: re-emitting a subtree from one store into a fresh Writer produces
// valid, independently parseable JSON.
func TestRoundTrip_R3_SubtreeReemit(t *testing.T) {
	st := mustScan(t, `{"outer":{"inner":[1,2,3]}}`)
	inner := st.Root().Find("outer").Find("inner")
	require.True(t, inner.IsValid())

	w := token.NewWriter(token.WriterOptions{}, 0, 0)
	require.NoError(t, token.WriteJSON(w, inner))
	assert.Equal(t, `[1,2,3]`, w.String())
}

// E1: a deeply nested, mixed-type document scans and re-emits without
// losing any values.
func TestE2E_E1_MixedDocument(t *testing.T) {
	src := `{
		"id": 42,
		"name": "widget",
		"price": 19.99,
		"tags": ["a", "b", "c"],
		"meta": {"active": true, "owner": null},
		"scores": [1, 2, 3, 4, 5]
	}`
	st := mustScan(t, src)
	root := st.Root()

	id, err := root.Find("id").ParseLong()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	name, err := root.Find("name").ParseString()
	require.NoError(t, err)
	assert.Equal(t, "widget", name)

	scores, err := root.Find("scores").DoubleArrayView()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, scores)

	meta := root.Find("meta")
	active, err := meta.Find("active").ParseBool()
	require.NoError(t, err)
	assert.True(t, active)
}

// E2: an empty document (just whitespace) is rejected as unexpected end.
func TestE2E_E2_EmptyDocumentRejected(t *testing.T) {
	_, err := token.NewFromString("   \n  ", 0, token.SourcePos{Line: 1, Column: 1})
	require.Error(t, err)
}

// E3: a top-level scalar (not wrapped in an object or array) is valid
// per RFC 8259.
func TestE2E_E3_TopLevelScalar(t *testing.T) {
	st := mustScan(t, `"just a string"`)
	s, err := st.Root().ParseString()
	require.NoError(t, err)
	assert.Equal(t, "just a string", s)
}

// E4: writer options (TypographicalSpace) affect compact output without
// switching to full pretty-printing.
func TestE2E_E4_TypographicalSpaceCompact(t *testing.T) {
	w := token.NewWriter(token.WriterOptions{TypographicalSpace: true}, 0, 0)
	w.Object()
	w.Key("a")
	w.Long(1)
	w.Key("b")
	w.Long(2)
	w.EndObject()
	assert.Equal(t, `{"a": 1, "b": 2}`, w.String())
}

// E5: a malformed document reports a position that points at the
// offending byte, not just "somewhere".
func TestE2E_E5_ErrorPositionIsUseful(t *testing.T) {
	_, err := token.NewFromString("{\n  \"a\": ,\n}", 0, token.SourcePos{Line: 1, Column: 1})
	require.Error(t, err)
	var tokErr *token.Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, 2, tokErr.Pos.Row)
}

// E6: a large flat array of numbers parses and exposes a genuinely
// aliasing DoubleArrayView.
func TestE2E_E6_LargeFlatArrayAliasesStore(t *testing.T) {
	src := `[1,2,3,4,5,6,7,8,9,10]`
	st := mustScan(t, src)
	view, err := st.Root().DoubleArrayView()
	require.NoError(t, err)
	require.Len(t, view, 10)
	assert.Equal(t, 1.0, view[0])
	assert.Equal(t, 10.0, view[9])
}
