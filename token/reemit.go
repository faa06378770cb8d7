package token

// WriteJSON re-serializes tok's subtree into w, dispatching on Type and
// (for Number/String) ParsedType. tok may come from any Store, not
// necessarily one w is otherwise involved with -- this is how a caller
// stitches a fragment parsed from one document into a document being
// written fresh. Calling WriteJSON with an object-key token panics: a
// key can only be written via Writer.Key, since only the enclosing
// object scope knows it needs one.
func WriteJSON(w *Writer, tok Token) error {
	if tok.IsKey() {
		panic("token: WriteJSON cannot re-emit an object key directly, use Writer.Key")
	}
	switch tok.Type() {
	case TypeObject:
		w.Object()
		var err error
		tok.ObjectView(func(key, value Token) bool {
			k, e := key.ParseString()
			if e != nil {
				err = e
				return false
			}
			w.Key(k)
			if e := WriteJSON(w, value); e != nil {
				err = e
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		w.EndObject()
		return nil
	case TypeArray:
		w.Array()
		var err error
		tok.ArrayView(func(_ int, value Token) bool {
			if e := WriteJSON(w, value); e != nil {
				err = e
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		w.EndArray()
		return nil
	case TypeNull:
		w.Null()
		return nil
	case TypeBool:
		v, err := tok.ParseBool()
		if err != nil {
			return err
		}
		w.Bool(v)
		return nil
	case TypeString:
		s, err := tok.ParseString()
		if err != nil {
			return err
		}
		w.String(s)
		return nil
	case TypeNumber:
		return writeNumberJSON(w, tok)
	default:
		panic("token: unreachable token type")
	}
}

// writeNumberJSON re-emits a Number token using whatever numeric type it
// was parsed as; an unparsed number is re-emitted as raw source text,
// since that's already guaranteed-valid JSON and needs no re-formatting.
func writeNumberJSON(w *Writer, tok Token) error {
	switch tok.wideKind() {
	case wideF64:
		v, _ := tok.ParseDouble()
		w.Double(v)
		return nil
	case wideU64:
		v, _ := tok.ParseUnsignedLong()
		w.UnsignedLong(v)
		return nil
	case wideI64:
		v, _ := tok.ParseLong()
		w.Long(v)
		return nil
	}
	switch narrowKind(tok.bits()) {
	case kindNumberF32:
		v, _ := tok.ParseFloat()
		w.Float(v)
	case kindNumberU32:
		v, _ := tok.ParseUnsignedInt()
		w.UnsignedInt(v)
	case kindNumberI32:
		v, _ := tok.ParseInt()
		w.Int(v)
	default:
		w.Raw(tok.Data())
	}
	return nil
}
