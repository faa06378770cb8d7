package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncruces/gojsontoken/token"
)

func TestNavigator_ObjectViewOrder(t *testing.T) {
	st := mustScan(t, `{"a":1,"b":2,"c":3}`)
	var keys []string
	st.Root().ObjectView(func(k, v token.Token) bool {
		ks, _ := k.ParseString()
		keys = append(keys, ks)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestNavigator_ArrayViewOrderAndIndices(t *testing.T) {
	st := mustScan(t, `[10,20,30]`)
	var idxs []int
	st.Root().ArrayView(func(i int, v token.Token) bool {
		idxs = append(idxs, i)
		return true
	})
	assert.Equal(t, []int{0, 1, 2}, idxs)
}

func TestNavigator_FirstChildAndNext(t *testing.T) {
	st := mustScan(t, `[1,2,3]`)
	root := st.Root()
	first := root.FirstChild()
	require.True(t, first.IsValid())
	v, _ := first.ParseLong()
	assert.EqualValues(t, 1, v)

	second := first.Next()
	require.True(t, second.IsValid())
	v2, _ := second.ParseLong()
	assert.EqualValues(t, 2, v2)
}

func TestNavigator_Parent(t *testing.T) {
	st := mustScan(t, `{"a":[1,2,{"b":3}]}`)
	root := st.Root()
	a := root.Find("a")
	require.True(t, a.IsValid())

	nested := a.At(2)
	require.True(t, nested.IsValid())
	assert.Equal(t, token.TypeObject, nested.Type())

	parent := nested.Parent()
	require.True(t, parent.IsValid())
	assert.Equal(t, token.TypeArray, parent.Type())
}

func TestNavigator_CommonArrayType(t *testing.T) {
	st := mustScan(t, `[1,2,3]`)
	typ, ok := st.Root().CommonArrayType()
	require.True(t, ok)
	assert.Equal(t, token.TypeNumber, typ)

	st2 := mustScan(t, `[1,"a",3]`)
	_, ok2 := st2.Root().CommonArrayType()
	assert.False(t, ok2)
}

func TestNavigator_FindMissingKey(t *testing.T) {
	st := mustScan(t, `{"a":1}`)
	missing := st.Root().Find("nope")
	assert.False(t, missing.IsValid())
}
