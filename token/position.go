package token

import (
	"fmt"
	"strings"
)

// Pos is a human-readable location in the source: a 1-based row and
// column, alongside the raw byte offset it was computed from.
type Pos struct {
	Offset int
	Row    int
	Col    int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// PosRange is a start/end pair of Pos, used to describe a token's full
// extent in diagnostics.
type PosRange struct {
	Start Pos
	End   Pos
}

func (r PosRange) String() string {
	if r.Start.Row == r.End.Row {
		return fmt.Sprintf("%d:%d-%d", r.Start.Row, r.Start.Col, r.End.Col)
	}
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Row, r.Start.Col, r.End.Row, r.End.Col)
}

// positionAt computes the row/column of byte offset i by scanning the
// source for newlines up to that point. This is deliberately off the
// fast path: scanning itself never tracks row/col per byte, only on the
// rare occasion an error (or an explicit Position query) needs one.
func (sc *scanner) positionAt(i int) Pos {
	return positionInSource(sc.store.source, i, sc.store.lineOffset, sc.store.columnOffset)
}

func positionInSource(source string, offset, lineOffset, columnOffset int) Pos {
	if offset > len(source) {
		offset = len(source)
	}
	row := 1 + lineOffset
	col := 1
	if lineOffset == 0 {
		col += columnOffset
	}
	lastNL := -1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			row++
			lastNL = i
			col = 1
		}
	}
	if lastNL >= 0 {
		col = offset - lastNL
	} else {
		col = offset + 1 + columnOffset
	}
	return Pos{Offset: offset, Row: row, Col: col}
}

// Position returns the start position of a token's extent.
func (t Token) Position() Pos {
	return positionInSource(t.store.source, int(t.offset()), t.store.lineOffset, t.store.columnOffset)
}

// PositionRange returns the full start/end extent of a token.
func (t Token) PositionRange() PosRange {
	start := int(t.offset())
	end := start + int(t.byteLength())
	return PosRange{
		Start: positionInSource(t.store.source, start, t.store.lineOffset, t.store.columnOffset),
		End:   positionInSource(t.store.source, end, t.store.lineOffset, t.store.columnOffset),
	}
}

// lineCount reports the number of newline bytes in s.
func lineCount(s string) int {
	return strings.Count(s, "\n")
}
