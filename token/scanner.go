package token

// maxNestingDepth bounds how deeply objects/arrays may nest. The scanner
// descends recursively (scanValue calls scanContainer, which calls
// scanValue for each element), so every open container costs a Go call
// frame as well as a frame-stack entry; this limit bounds both, and a
// limit this generous is effectively unreachable for any legitimate
// document.
const maxNestingDepth = 100000

// frame tracks one currently-open Object or Array while scanning: the
// index of its own token record. The frame stack is scan-time-only
// bookkeeping; nothing in it survives into the finished Store.
type frame struct {
	tokenIndex int
	isObject   bool
}

type scanner struct {
	store *Store
	opts  Options
	i     int
	stack []frame
}

func (sc *scanner) src() string { return sc.store.source }

func (sc *scanner) run() error {
	src := sc.src()
	if len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF {
		return sc.newError(ErrUnexpectedBOM, "byte-order mark is not valid at the start of a JSON document")
	}
	sc.skipWhitespace()
	if sc.i >= len(src) {
		return sc.newEOFError(ErrUnexpectedEnd, "empty document")
	}
	if err := sc.scanValue(noParentValue); err != nil {
		return err
	}
	sc.skipWhitespace()
	if sc.i != len(src) {
		return sc.newError(ErrTrailingData, "unexpected data after the top-level value")
	}
	return nil
}

func (sc *scanner) skipWhitespace() {
	src := sc.src()
	for sc.i < len(src) {
		switch src[sc.i] {
		case ' ', '\t', '\n', '\r':
			sc.i++
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// scanValue scans exactly one JSON value starting at sc.i, dispatching
// on the current byte as described in SPEC_FULL.md §4.C. parentIndex is
// the back-pointer recorded in an Object/Array token's payload while
// the container is still open; closeContainer replaces it with the
// container's child count.
func (sc *scanner) scanValue(parentIndex uint64) error {
	src := sc.src()
	if sc.i >= len(src) {
		return sc.newEOFError(ErrUnexpectedEnd, "expected a value")
	}
	switch b := src[sc.i]; {
	case b == '{':
		return sc.scanContainer(true, parentIndex)
	case b == '[':
		return sc.scanContainer(false, parentIndex)
	case b == '"':
		_, err := sc.scanString(false)
		return err
	case b == '-' || isDigit(b):
		return sc.scanNumber()
	case b == 'n':
		return sc.scanLiteralWord("null", kindNull, kindNullParsed, 0)
	case b == 't':
		return sc.scanLiteralWord("true", kindBool, kindBoolParsed, 1)
	case b == 'f':
		return sc.scanLiteralWord("false", kindBool, kindBoolParsed, 0)
	case b == ':':
		return sc.newError(ErrUnexpectedByte, "unexpected ':'")
	case b == ',':
		return sc.newError(ErrUnexpectedByte, "unexpected ','")
	default:
		return sc.newError(ErrUnexpectedByte, "unexpected byte 0x%02x", b)
	}
}

func (sc *scanner) scanContainer(isObject bool, parentIndex uint64) error {
	if len(sc.stack) >= maxNestingDepth {
		return sc.newError(ErrNestingTooDeep, "exceeded maximum nesting depth of %d", maxNestingDepth)
	}
	start := sc.i
	sc.i++ // consume '{' or '['
	k := kindArray
	if isObject {
		k = kindObject
	}
	idx := sc.store.allocToken(packNarrow(k, parentIndex), makeOffsetSize(uint64(start), 1, wideNarrow))
	sc.stack = append(sc.stack, frame{tokenIndex: idx, isObject: isObject})

	closeByte := byte(']')
	if isObject {
		closeByte = '}'
	}

	sc.skipWhitespace()
	src := sc.src()
	if sc.i < len(src) && src[sc.i] == closeByte {
		sc.i++
		sc.closeContainer(idx, start)
		return nil
	}

	for {
		if sc.i >= len(src) {
			return sc.newEOFError(ErrUnexpectedEnd, "unterminated container")
		}
		if isObject {
			if src[sc.i] != '"' {
				return sc.newError(ErrUnexpectedByte, "expected '\"' to start an object key")
			}
			if _, err := sc.scanString(true); err != nil {
				return err
			}
			sc.skipWhitespace()
			if sc.i >= len(src) || src[sc.i] != ':' {
				return sc.newError(ErrMissingColon, "expected ':' after object key")
			}
			sc.i++
			sc.skipWhitespace()
		}
		top := &sc.stack[len(sc.stack)-1]
		if err := sc.scanValue(uint64(top.tokenIndex)); err != nil {
			return err
		}

		sc.skipWhitespace()
		src = sc.src()
		if sc.i >= len(src) {
			return sc.newEOFError(ErrUnexpectedEnd, "unterminated container")
		}
		switch src[sc.i] {
		case ',':
			sc.i++
			sc.skipWhitespace()
			if sc.i < len(src) && src[sc.i] == closeByte {
				return sc.newError(ErrTrailingComma, "trailing comma before '%c'", closeByte)
			}
			continue
		case closeByte:
			sc.i++
			sc.closeContainer(idx, start)
			return nil
		default:
			return sc.newError(ErrMissingComma, "expected ',' or '%c'", closeByte)
		}
	}
}

func (sc *scanner) closeContainer(idx int, start int) {
	sc.stack = sc.stack[:len(sc.stack)-1]
	bits := sc.store.tokens[idx]
	k := narrowKind(bits)
	// childCount is the total descendant count, per §4.C: every token
	// emitted since this container's own record is part of its subtree.
	childCount := uint64(len(sc.store.tokens) - idx - 1)
	sc.store.tokens[idx] = packNarrow(k, childCount)
	length := uint64(sc.i - start)
	sc.store.offsetSize[idx] = makeOffsetSize(uint64(start), length, wideNarrow)
}

// scanString scans a JSON string literal starting at sc.i (which must
// be a '"'). It records a String token whose offset/length span the
// content between the quotes (not the quotes themselves), tagged
// unescaped or escaped depending on whether any backslash sequence was
// seen. It validates escape-sequence *shape* (a recognized escape
// character, and exactly 4 hex digits after \u) but does not decode
// escapes -- that's ParseString's job, invoked lazily.
func (sc *scanner) scanString(isKey bool) (int, error) {
	src := sc.src()
	sc.i++ // consume opening quote
	contentStart := sc.i
	escaped := false
	for {
		if sc.i >= len(src) {
			return -1, sc.newEOFError(ErrUnterminatedString, "unterminated string literal")
		}
		b := src[sc.i]
		switch {
		case b == '"':
			contentEnd := sc.i
			sc.i++
			var k kind
			switch {
			case isKey && !escaped:
				k = kindStringKeyUnescaped
			case isKey && escaped:
				k = kindStringKeyEscaped
			case !isKey && !escaped:
				k = kindStringValueUnescaped
			default:
				k = kindStringValueEscaped
			}
			idx := sc.store.allocToken(packNarrow(k, 0), makeOffsetSize(uint64(contentStart), uint64(contentEnd-contentStart), wideNarrow))
			eager := sc.opts.has(OptParseStrings) || (isKey && sc.opts.has(OptParseStringKeys))
			if eager {
				if _, err := (Token{store: sc.store, index: uint32(idx)}).ParseString(); err != nil {
					return -1, err
				}
			}
			return idx, nil
		case b == '\\':
			escaped = true
			sc.i++
			if sc.i >= len(src) {
				return -1, sc.newEOFError(ErrUnterminatedString, "unterminated escape sequence")
			}
			switch src[sc.i] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				sc.i++
			case 'u':
				sc.i++
				for k := 0; k < 4; k++ {
					if sc.i >= len(src) || !isHexDigit(src[sc.i]) {
						return -1, sc.newError(ErrInvalidUnicodeEscape, "\\u escape requires 4 hex digits")
					}
					sc.i++
				}
			default:
				return -1, sc.newError(ErrBadEscape, "invalid escape character '%c'", src[sc.i])
			}
		case b == '\v':
			return -1, sc.newError(ErrUnexpectedByte, "vertical tab is not permitted inside a string")
		case b < 0x20:
			return -1, sc.newError(ErrUnexpectedByte, "control byte 0x%02x is not permitted inside a string", b)
		default:
			sc.i++
		}
	}
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// scanNumber scans a JSON number literal (RFC 8259 grammar: optional
// leading '-', integer part with no superfluous leading zero, optional
// fraction, optional exponent). The raw slice is recorded unparsed;
// numeric materialization always happens on demand, even when
// OptParseDoubles/OptParseFloats request eager parsing -- eager parsing
// just means Parse* is invoked immediately after scanning the slice
// rather than deferred to the caller.
func (sc *scanner) scanNumber() error {
	src := sc.src()
	start := sc.i
	if src[sc.i] == '-' {
		sc.i++
		if sc.i >= len(src) || !isDigit(src[sc.i]) {
			return sc.newError(ErrInvalidLiteral, "expected digit after '-'")
		}
	}
	if src[sc.i] == '0' {
		sc.i++
	} else {
		for sc.i < len(src) && isDigit(src[sc.i]) {
			sc.i++
		}
	}
	if sc.i < len(src) && src[sc.i] == '.' {
		sc.i++
		if sc.i >= len(src) || !isDigit(src[sc.i]) {
			return sc.newError(ErrInvalidLiteral, "expected digit after decimal point")
		}
		for sc.i < len(src) && isDigit(src[sc.i]) {
			sc.i++
		}
	}
	if sc.i < len(src) && (src[sc.i] == 'e' || src[sc.i] == 'E') {
		sc.i++
		if sc.i < len(src) && (src[sc.i] == '+' || src[sc.i] == '-') {
			sc.i++
		}
		if sc.i >= len(src) || !isDigit(src[sc.i]) {
			return sc.newError(ErrInvalidLiteral, "expected digit in exponent")
		}
		for sc.i < len(src) && isDigit(src[sc.i]) {
			sc.i++
		}
	}
	length := uint64(sc.i - start)
	idx := sc.store.allocToken(packNarrow(kindNumberUnparsed, 0), makeOffsetSize(uint64(start), length, wideNarrow))
	if sc.opts.has(OptParseDoubles) {
		if _, err := (Token{store: sc.store, index: uint32(idx)}).ParseDouble(); err != nil {
			return err
		}
	} else if sc.opts.has(OptParseFloats) {
		if _, err := (Token{store: sc.store, index: uint32(idx)}).ParseFloat(); err != nil {
			return err
		}
	}
	return nil
}

// scanLiteralWord scans one of null/true/false. unparsedKind is recorded
// unless OptParseLiterals is set, in which case parsedKind with payload
// is recorded directly (an eager parse that needs no later Data() read).
func (sc *scanner) scanLiteralWord(word string, unparsedKind, parsedKind kind, payload uint64) error {
	src := sc.src()
	start := sc.i
	if start+len(word) > len(src) || src[start:start+len(word)] != word {
		return sc.newError(ErrInvalidLiteral, "invalid literal, expected %q", word)
	}
	end := start + len(word)
	if end < len(src) && isLiteralContinuation(src[end]) {
		return sc.newError(ErrInvalidLiteral, "invalid literal %q followed by unexpected character", word)
	}
	sc.i = end
	k := unparsedKind
	p := uint64(0)
	if sc.opts.has(OptParseLiterals) {
		k = parsedKind
		p = payload
	}
	sc.store.allocToken(packNarrow(k, p), makeOffsetSize(uint64(start), uint64(end-start), wideNarrow))
	return nil
}

func isLiteralContinuation(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || isDigit(b)
}
