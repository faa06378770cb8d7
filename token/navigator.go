package token

// FirstChild returns the first immediate child of an Object or Array
// token (the first key, or the first element), or the zero Token if the
// container is empty. Calling FirstChild on anything else panics.
func (t Token) FirstChild() Token {
	switch t.Type() {
	case TypeObject, TypeArray:
		if t.ChildCount() == 0 {
			return Token{}
		}
		return Token{store: t.store, index: t.index + 1}
	default:
		panic("token: FirstChild called on a non-container token")
	}
}

// Next returns the token immediately following this one's entire
// subtree, or the zero Token at the end of the store. For any child but
// the last this is its next sibling; after the last child of a container
// it is whatever follows the container's subtree. Starting from a
// container's FirstChild and repeatedly calling Next visits every
// immediate child, as long as the caller stops at the container's end
// boundary (the container's index + 1 + ChildCount).
func (t Token) Next() Token {
	next := int(t.index) + 1 + int(t.ChildCount())
	if next >= len(t.store.tokens) {
		return Token{}
	}
	return Token{store: t.store, index: uint32(next)}
}

// Parent returns the nearest token whose subtree encloses this one: the
// enclosing Object/Array, or, for an object value, its key token (a key's
// subtree covers its value). It returns the zero Token for the root. It
// scans backward one token at a time for the first token whose span
// covers this one, rather than storing an explicit parent pointer (see
// SPEC_FULL.md §4.E).
func (t Token) Parent() Token {
	target := int(t.index)
	i := target - 1
	for i >= 0 {
		tok := Token{store: t.store, index: uint32(i)}
		span := 1 + int(tok.ChildCount())
		if i+span > target {
			return tok
		}
		i--
	}
	return Token{}
}

func (t Token) IsValid() bool { return t.valid() }

// Find looks up an immediate child by object key (linear scan -- no
// lookup acceleration, per the library's explicit non-goal). Panics if
// called on anything but an Object.
//
// ChildCount is a total-descendant count (§3.2.3), not a count of
// immediate pairs, so iteration walks token positions up to the
// subtree's end boundary rather than counting loop iterations.
func (t Token) Find(key string) Token {
	t.requireType(TypeObject)
	i := int(t.index) + 1
	end := int(t.index) + 1 + int(t.ChildCount())
	for i < end {
		keyTok := Token{store: t.store, index: uint32(i)}
		valTok := Token{store: t.store, index: keyTok.index + 1}
		k, err := keyTok.ParseString()
		if err == nil && k == key {
			return valTok
		}
		i += 1 + int(keyTok.ChildCount())
	}
	return Token{}
}

// At returns the i-th immediate element of an Array (0-based), or the
// zero Token if out of range.
func (t Token) At(i int) Token {
	t.requireType(TypeArray)
	if i < 0 {
		return Token{}
	}
	j := int(t.index) + 1
	end := int(t.index) + 1 + int(t.ChildCount())
	for c := 0; j < end; c++ {
		elem := Token{store: t.store, index: uint32(j)}
		if c == i {
			return elem
		}
		j += 1 + int(elem.ChildCount())
	}
	return Token{}
}

// ObjectView iterates the key/value pairs of an Object in order.
func (t Token) ObjectView(yield func(key Token, value Token) bool) {
	t.requireType(TypeObject)
	i := int(t.index) + 1
	end := int(t.index) + 1 + int(t.ChildCount())
	for i < end {
		keyTok := Token{store: t.store, index: uint32(i)}
		valTok := Token{store: t.store, index: keyTok.index + 1}
		if !yield(keyTok, valTok) {
			return
		}
		i += 1 + int(keyTok.ChildCount())
	}
}

// ElementCount returns the number of immediate elements of an Array,
// as opposed to ChildCount's total-descendant count -- the two only
// coincide when every element is itself a leaf. Callers that need "how
// many elements does this array have" (fixed-size validation, sizing a
// zero-copy view over flat scalar elements) want this, not ChildCount.
func (t Token) ElementCount() int {
	t.requireType(TypeArray)
	n := 0
	t.ArrayView(func(_ int, _ Token) bool {
		n++
		return true
	})
	return n
}

// ArrayView iterates the elements of an Array in order.
func (t Token) ArrayView(yield func(index int, value Token) bool) {
	t.requireType(TypeArray)
	i := int(t.index) + 1
	end := int(t.index) + 1 + int(t.ChildCount())
	idx := 0
	for i < end {
		elem := Token{store: t.store, index: uint32(i)}
		if !yield(idx, elem) {
			return
		}
		i += 1 + int(elem.ChildCount())
		idx++
	}
}

// CommonArrayType reports the Type shared by every element of an Array,
// or false if the array is empty or heterogeneous.
func (t Token) CommonArrayType() (Type, bool) {
	t.requireType(TypeArray)
	var common Type
	first := true
	ok := true
	t.ArrayView(func(_ int, v Token) bool {
		if first {
			common = v.Type()
			first = false
		} else if v.Type() != common {
			ok = false
			return false
		}
		return true
	})
	if first || !ok {
		return 0, false
	}
	return common, true
}

// CommonParsedArrayType reports the ParsedType shared by every element
// of an Array, or false if empty, heterogeneous, or any element is
// unparsed.
func (t Token) CommonParsedArrayType() (ParsedType, bool) {
	t.requireType(TypeArray)
	var common ParsedType
	first := true
	ok := true
	t.ArrayView(func(_ int, v Token) bool {
		if !v.IsParsed() {
			ok = false
			return false
		}
		pt := v.ParsedType()
		if first {
			common = pt
			first = false
		} else if pt != common {
			ok = false
			return false
		}
		return true
	})
	if first || !ok {
		return 0, false
	}
	return common, true
}
