package textspan

import "sort"

// Span is a half-open [Start, End) interval. The unit of the offsets
// (bytes or UTF-16 code units) depends on where the span came from.
type Span struct {
	Start int
	End   int
}

// IsValid reports whether the span is ordered and non-negative.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.Start <= s.End
}

// Len returns the span length in its native unit.
func (s Span) Len() int {
	return s.End - s.Start
}

// Table maps between byte offsets and UTF-16 code unit offsets for a
// fixed piece of text. It records the cumulative byte and code-unit
// offset at every rune boundary; both slices are strictly increasing,
// so lookups are plain binary searches.
type Table struct {
	bytes []int // bytes[i] = byte offset of the i-th rune boundary
	units []int // units[i] = UTF-16 offset of the i-th rune boundary
}

// NewTable builds a conversion table for text. Build cost is O(n) in
// the byte length; the table is immutable afterwards and must be
// rebuilt whenever the document changes.
func NewTable(text string) *Table {
	t := &Table{
		bytes: make([]int, 0, len(text)+1),
		units: make([]int, 0, len(text)+1),
	}

	unit := 0
	for i, r := range text {
		t.bytes = append(t.bytes, i)
		t.units = append(t.units, unit)
		if r >= 0x10000 {
			unit += 2 // surrogate pair
		} else {
			unit++
		}
	}
	t.bytes = append(t.bytes, len(text))
	t.units = append(t.units, unit)

	return t
}

// ByteLen returns the text length in bytes.
func (t *Table) ByteLen() int {
	return t.bytes[len(t.bytes)-1]
}

// UnitLen returns the text length in UTF-16 code units.
func (t *Table) UnitLen() int {
	return t.units[len(t.units)-1]
}

// ByteToUnit converts a byte offset to a UTF-16 code unit offset.
// Offsets outside the text are clamped; an offset inside a multi-byte
// rune snaps back to the start of that rune.
func (t *Table) ByteToUnit(bytePos int) int {
	return convert(t.bytes, t.units, bytePos)
}

// UnitToByte converts a UTF-16 code unit offset to a byte offset.
// Offsets outside the text are clamped; an offset between the halves of
// a surrogate pair snaps back to the start of that rune.
func (t *Table) UnitToByte(unitPos int) int {
	return convert(t.units, t.bytes, unitPos)
}

// SpanToUnits converts a byte span to a UTF-16 code unit span.
func (t *Table) SpanToUnits(s Span) Span {
	return Span{Start: t.ByteToUnit(s.Start), End: t.ByteToUnit(s.End)}
}

// SpanToBytes converts a UTF-16 code unit span to a byte span.
func (t *Table) SpanToBytes(s Span) Span {
	return Span{Start: t.UnitToByte(s.Start), End: t.UnitToByte(s.End)}
}

// convert maps pos from one cumulative offset scale onto the other.
// Both slices are strictly increasing and have equal length, so the
// index found in from addresses the matching boundary in to.
func convert(from, to []int, pos int) int {
	if pos <= 0 {
		return 0
	}
	last := len(from) - 1
	if pos >= from[last] {
		return to[last]
	}

	idx := sort.SearchInts(from, pos)
	if idx <= last && from[idx] == pos {
		return to[idx]
	}
	// Not a boundary: snap to the start of the enclosing rune.
	return to[idx-1]
}
