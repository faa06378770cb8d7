package token

import (
	"math"
	"strconv"
	"strings"

	"github.com/ncruces/gojsontoken/internal/hostio"
)

// maxSafeInteger is the largest magnitude a u64/i64 value may have when
// written: per SPEC_FULL.md §4.G, 64-bit integers are asserted to fit
// within the NaN-box's 52-bit payload width even though the writer
// itself doesn't NaN-box anything -- this keeps a round-tripped value
// representable by a reader that does.
const maxSafeInteger = 1 << 52

// Writer streams a well-formed JSON document out through an explicit
// state machine, mirroring the one described in SPEC_FULL.md §4.G:
//
//	state                    | valid next calls
//	-------------------------|--------------------------------------------
//	stateValue               | Null/Bool/Double/.../String/Object/Array/Raw
//	stateArrayValueOrEnd     | any value call, or EndArray
//	stateCompactArrayValueOrEnd | any value call, or EndArray; inserts a
//	                         | newline every wrapAfter elements
//	                         | instead of one per element
//	stateObjectKeyOrEnd      | Key, or EndObject
//	stateObjectValue         | any value call (after a Key)
//	stateDocumentEnd         | nothing; the document is complete
//
// A call made in the wrong state panics (an "asserted" failure per §7,
// since it always indicates a caller bug, never bad input data).
type writerState uint8

const (
	stateValue writerState = iota
	stateArrayValueOrEnd
	stateCompactArrayValueOrEnd
	stateObjectKeyOrEnd
	stateObjectValue
	stateDocumentEnd
)

// level tracks one open Object or Array scope. counter is the number of
// elements written so far at this level; isObject distinguishes the two
// kinds of scope (an Array's counter also doubles as "how many elements
// since the last wrap" for a compact array).
type level struct {
	isObject     bool
	isCompact    bool
	counter      int
	wrapAfter    int
	indentPrefix string
}

// WriterOptions configures whitespace and formatting. The zero value
// produces compact, minimal-whitespace output.
type WriterOptions struct {
	// Pretty enables newline + indent formatting.
	Pretty bool
	// TypographicalSpace adds a space after ':' and ',' even when Pretty
	// is false, matching the "minimal but readable" compact style some
	// tools expect.
	TypographicalSpace bool
}

// Writer builds up a JSON document incrementally. The zero Writer is not
// usable; construct one with NewWriter.
type Writer struct {
	buf          strings.Builder
	opts         WriterOptions
	indent       uint8 // 0..8
	baseIndent   string
	initialLevel uint8
	levels       []level
	state        writerState
	root         bool // whether a top-level value has been written yet
}

// NewWriter constructs a Writer. indent is the number of spaces per
// nesting level when opts.Pretty is set; it panics if indent exceeds 8,
// the original library's formatting cap (a caller-bug class failure,
// not a data error).
//
// initialIndent offsets every level this Writer emits by that many
// indent units, without itself opening a scope -- for embedding this
// writer's output as a fragment inside another writer's already-indented
// document. A pretty-printed document only gets the trailing newline
// described in String's doc comment when initialIndent is 0: a nonzero
// initialIndent means the caller is splicing this output into a larger
// one, which supplies its own trailing newline.
func NewWriter(opts WriterOptions, indent, initialIndent uint8) *Writer {
	if indent > 8 {
		panic("token: writer indentation must be at most 8 spaces per level")
	}
	w := &Writer{opts: opts, indent: indent, initialLevel: initialIndent, state: stateValue}
	if opts.Pretty {
		w.baseIndent = strings.Repeat(" ", int(indent)*int(initialIndent))
	}
	return w
}

func (w *Writer) assertState(allowed ...writerState) {
	for _, s := range allowed {
		if w.state == s {
			return
		}
	}
	panic("token: writer called in the wrong state")
}

func (w *Writer) currentIndent() string {
	if len(w.levels) == 0 {
		return w.baseIndent
	}
	return w.levels[len(w.levels)-1].indentPrefix
}

func (w *Writer) childIndent() string {
	if !w.opts.Pretty {
		return ""
	}
	return w.currentIndent() + strings.Repeat(" ", int(w.indent))
}

func (w *Writer) writeCommaAndNewlineIfNeeded(isFirst bool) {
	if isFirst {
		return
	}
	w.buf.WriteByte(',')
	if w.opts.TypographicalSpace && !w.opts.Pretty {
		w.buf.WriteByte(' ')
	}
}

func (w *Writer) writeNewlineAndIndent(indent string) {
	if !w.opts.Pretty {
		return
	}
	w.buf.WriteByte('\n')
	w.buf.WriteString(indent)
}

// beforeValue emits the separator/indentation needed before writing any
// value (scalar, Object, or Array) in the current state and, inside an
// array, advances that array's element counter.
func (w *Writer) beforeValue() {
	switch w.state {
	case stateValue:
		// top-level value, nothing to separate
	case stateArrayValueOrEnd:
		top := &w.levels[len(w.levels)-1]
		w.writeCommaAndNewlineIfNeeded(top.counter == 0)
		w.writeNewlineAndIndent(w.currentIndent())
		top.counter++
	case stateCompactArrayValueOrEnd:
		top := &w.levels[len(w.levels)-1]
		isFirst := top.counter == 0
		w.writeCommaAndNewlineIfNeeded(isFirst)
		if !isFirst && top.wrapAfter > 0 && top.counter%top.wrapAfter == 0 {
			w.writeNewlineAndIndent(w.currentIndent())
		}
		if isFirst && w.opts.Pretty {
			w.writeNewlineAndIndent(w.currentIndent())
		}
		top.counter++
	case stateObjectValue:
		if w.opts.TypographicalSpace || w.opts.Pretty {
			w.buf.WriteByte(' ')
		}
	default:
		panic("token: writer called in the wrong state")
	}
}

// afterValue transitions out of the state a just-written value leaves
// the writer in.
func (w *Writer) afterValue() {
	switch w.state {
	case stateValue:
		w.enterDocumentEnd()
	case stateArrayValueOrEnd:
		// stays stateArrayValueOrEnd
	case stateCompactArrayValueOrEnd:
		// stays stateCompactArrayValueOrEnd
	case stateObjectValue:
		w.state = stateObjectKeyOrEnd
	}
}

func (w *Writer) writeScalar(s string) {
	w.assertState(stateValue, stateArrayValueOrEnd, stateCompactArrayValueOrEnd, stateObjectValue)
	w.beforeValue()
	w.buf.WriteString(s)
	w.afterValue()
}

// Null writes a JSON null.
func (w *Writer) Null() { w.writeScalar("null") }

// Bool writes a JSON boolean.
func (w *Writer) Bool(v bool) {
	if v {
		w.writeScalar("true")
	} else {
		w.writeScalar("false")
	}
}

// Double writes v with enough significant digits (17) to round-trip
// exactly back to the same float64. Panics on NaN or +/-Inf: these have
// no JSON representation, and a caller passing one is a programming
// error rather than a data error.
func (w *Writer) Double(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic("token: writer cannot encode NaN or infinite float64")
	}
	w.writeScalar(strconv.FormatFloat(v, 'g', 17, 64))
}

// Float writes v with enough significant digits (9) to round-trip
// exactly back to the same float32. Panics on NaN or +/-Inf.
func (w *Writer) Float(v float32) {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		panic("token: writer cannot encode NaN or infinite float32")
	}
	w.writeScalar(strconv.FormatFloat(float64(v), 'g', 9, 32))
}

// UnsignedInt writes an unsigned 32-bit integer.
func (w *Writer) UnsignedInt(v uint32) { w.writeScalar(strconv.FormatUint(uint64(v), 10)) }

// Int writes a signed 32-bit integer.
func (w *Writer) Int(v int32) { w.writeScalar(strconv.FormatInt(int64(v), 10)) }

// UnsignedLong writes an unsigned 64-bit integer. Panics if v exceeds
// 2^52 (see maxSafeInteger).
func (w *Writer) UnsignedLong(v uint64) {
	if v > maxSafeInteger {
		panic("token: writer unsigned long exceeds 2^52")
	}
	w.writeScalar(strconv.FormatUint(v, 10))
}

// Long writes a signed 64-bit integer. Panics if |v| is 2^52 or more
// (see maxSafeInteger).
func (w *Writer) Long(v int64) {
	if v >= maxSafeInteger || v <= -maxSafeInteger {
		panic("token: writer long exceeds 2^52 in magnitude")
	}
	w.writeScalar(strconv.FormatInt(v, 10))
}

// String writes v as a properly quoted and escaped JSON string.
func (w *Writer) String(v string) {
	w.assertState(stateValue, stateArrayValueOrEnd, stateCompactArrayValueOrEnd, stateObjectValue)
	w.beforeValue()
	writeQuotedString(&w.buf, v)
	w.afterValue()
}

// Raw writes s verbatim as a value, without validation or escaping.
// The caller is responsible for s being well-formed JSON; this is meant
// for re-emitting a slice already known to be valid (see WriteJSON).
func (w *Writer) Raw(s string) {
	w.assertState(stateValue, stateArrayValueOrEnd, stateCompactArrayValueOrEnd, stateObjectValue)
	w.beforeValue()
	w.buf.WriteString(s)
	w.afterValue()
}

func writeQuotedString(b *strings.Builder, v string) {
	b.WriteByte('"')
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if c < 0x20 {
				b.WriteString("\\u")
				const hex = "0123456789abcdef"
				b.WriteByte(hex[c>>12&0xF])
				b.WriteByte(hex[c>>8&0xF])
				b.WriteByte(hex[c>>4&0xF])
				b.WriteByte(hex[c&0xF])
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
}

// Key writes an object member key. Must be called in stateObjectKeyOrEnd.
func (w *Writer) Key(key string) {
	w.assertState(stateObjectKeyOrEnd)
	top := &w.levels[len(w.levels)-1]
	w.writeCommaAndNewlineIfNeeded(top.counter == 0)
	w.writeNewlineAndIndent(w.currentIndent())
	writeQuotedString(&w.buf, key)
	w.buf.WriteByte(':')
	top.counter++
	w.state = stateObjectValue
}

// Object begins a new object scope. Valid wherever a value is expected.
func (w *Writer) Object() {
	w.assertState(stateValue, stateArrayValueOrEnd, stateCompactArrayValueOrEnd, stateObjectValue)
	w.beforeValue()
	w.buf.WriteByte('{')
	w.pushLevel(level{isObject: true})
	w.state = stateObjectKeyOrEnd
}

// EndObject closes the innermost object scope.
func (w *Writer) EndObject() {
	w.assertState(stateObjectKeyOrEnd)
	top := w.popLevel()
	if top.counter > 0 {
		w.writeNewlineAndIndent(w.currentIndent())
	}
	w.buf.WriteByte('}')
	w.popState()
}

// Array begins a new array scope, one element per line when Pretty.
func (w *Writer) Array() {
	w.assertState(stateValue, stateArrayValueOrEnd, stateCompactArrayValueOrEnd, stateObjectValue)
	w.beforeValue()
	w.buf.WriteByte('[')
	w.pushLevel(level{})
	w.state = stateArrayValueOrEnd
}

// CompactArray begins a new array scope that wraps to a new line only
// every wrapAfter elements (or never, if wrapAfter is 0), instead of one
// element per line -- useful for dense numeric arrays.
func (w *Writer) CompactArray(wrapAfter int) {
	w.assertState(stateValue, stateArrayValueOrEnd, stateCompactArrayValueOrEnd, stateObjectValue)
	w.beforeValue()
	w.buf.WriteByte('[')
	w.pushLevel(level{isCompact: true, wrapAfter: wrapAfter})
	w.state = stateCompactArrayValueOrEnd
}

// EndArray closes the innermost array scope (compact or not).
func (w *Writer) EndArray() {
	w.assertState(stateArrayValueOrEnd, stateCompactArrayValueOrEnd)
	wasCompact := w.levels[len(w.levels)-1].isCompact
	top := w.popLevel()
	if top.counter > 0 && (!wasCompact || w.opts.Pretty) {
		w.writeNewlineAndIndent(w.currentIndent())
	}
	w.buf.WriteByte(']')
	w.popState()
}

// CurrentArraySize reports how many elements have been written to the
// innermost open Array or CompactArray scope so far. Panics if the
// writer isn't currently inside an array scope.
func (w *Writer) CurrentArraySize() int {
	w.assertState(stateArrayValueOrEnd, stateCompactArrayValueOrEnd)
	return w.levels[len(w.levels)-1].counter
}

func (w *Writer) pushLevel(l level) {
	l.indentPrefix = w.childIndent()
	w.levels = append(w.levels, l)
}

func (w *Writer) popLevel() level {
	top := w.levels[len(w.levels)-1]
	w.levels = w.levels[:len(w.levels)-1]
	return top
}

// popState restores the writer's state after closing a scope: back to
// whatever the enclosing scope expects next (array-value-or-end,
// compact-array-value-or-end, object-key-or-end, or document-end at the
// top level).
func (w *Writer) popState() {
	if len(w.levels) == 0 {
		w.enterDocumentEnd()
		return
	}
	top := w.levels[len(w.levels)-1]
	switch {
	case top.isObject:
		w.state = stateObjectKeyOrEnd
	case top.isCompact:
		w.state = stateCompactArrayValueOrEnd
	default:
		w.state = stateArrayValueOrEnd
	}
}

// enterDocumentEnd transitions to stateDocumentEnd and, for a
// pretty-printed document not destined to be spliced into a larger one
// (initialIndent == 0), appends the document's closing newline.
func (w *Writer) enterDocumentEnd() {
	w.state = stateDocumentEnd
	if w.opts.Pretty && w.initialLevel == 0 {
		w.buf.WriteByte('\n')
	}
}

// String returns the document written so far. Panics if the document is
// not yet complete (state != stateDocumentEnd): a partial document is
// never a meaningful string to hand a caller.
func (w *Writer) String() string {
	w.assertState(stateDocumentEnd)
	return w.buf.String()
}

// WriteToFile writes the finished document to path. Panics under the
// same precondition as String.
func (w *Writer) WriteToFile(path string) error {
	w.assertState(stateDocumentEnd)
	return hostio.WriteFile(path, []byte(w.buf.String()))
}

// WriteArray is a convenience wrapper that writes a CompactArray of
// doubles in one call, wrapping after wrapAfter elements. It is exactly
// CompactArray(wrapAfter) + Double per element + EndArray.
func (w *Writer) WriteArray(values []float64, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.Double(v)
	}
	w.EndArray()
}

// WriteFloatArray writes values as a CompactArray of floats.
func (w *Writer) WriteFloatArray(values []float32, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.Float(v)
	}
	w.EndArray()
}

// WriteUnsignedIntArray writes values as a CompactArray of unsigned ints.
func (w *Writer) WriteUnsignedIntArray(values []uint32, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.UnsignedInt(v)
	}
	w.EndArray()
}

// WriteIntArray writes values as a CompactArray of ints.
func (w *Writer) WriteIntArray(values []int32, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.Int(v)
	}
	w.EndArray()
}

// WriteUnsignedLongArray writes values as a CompactArray of unsigned longs.
func (w *Writer) WriteUnsignedLongArray(values []uint64, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.UnsignedLong(v)
	}
	w.EndArray()
}

// WriteLongArray writes values as a CompactArray of longs.
func (w *Writer) WriteLongArray(values []int64, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.Long(v)
	}
	w.EndArray()
}

// WriteBitArray writes values as a CompactArray of booleans.
func (w *Writer) WriteBitArray(values []bool, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.Bool(v)
	}
	w.EndArray()
}

// WriteStringArray writes values as a CompactArray of strings.
func (w *Writer) WriteStringArray(values []string, wrapAfter int) {
	w.CompactArray(wrapAfter)
	for _, v := range values {
		w.String(v)
	}
	w.EndArray()
}
