package textspan

import (
	"testing"
	"unicode/utf8"
)

func TestNewTableEmpty(t *testing.T) {
	tab := NewTable("")
	if tab.ByteLen() != 0 {
		t.Errorf("ByteLen() = %d, want 0", tab.ByteLen())
	}
	if tab.UnitLen() != 0 {
		t.Errorf("UnitLen() = %d, want 0", tab.UnitLen())
	}
	if got := tab.ByteToUnit(0); got != 0 {
		t.Errorf("ByteToUnit(0) = %d, want 0", got)
	}
	if got := tab.UnitToByte(5); got != 0 {
		t.Errorf("UnitToByte(5) = %d, want 0 (clamped)", got)
	}
}

func TestByteToUnitASCII(t *testing.T) {
	tab := NewTable("hello")
	for i := 0; i <= 5; i++ {
		if got := tab.ByteToUnit(i); got != i {
			t.Errorf("ByteToUnit(%d) = %d, want %d", i, got, i)
		}
		if got := tab.UnitToByte(i); got != i {
			t.Errorf("UnitToByte(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestByteToUnitMultiByte(t *testing.T) {
	// "é" is 2 bytes / 1 unit, "漢" is 3 bytes / 1 unit,
	// "😀" is 4 bytes / 2 units (surrogate pair).
	tests := []struct {
		text    string
		bytePos int
		want    int
	}{
		{"éa", 0, 0},
		{"éa", 2, 1},
		{"éa", 3, 2},
		{"漢字x", 3, 1},
		{"漢字x", 6, 2},
		{"漢字x", 7, 3},
		{"😀b", 4, 2},
		{"😀b", 5, 3},
		{"a😀b", 1, 1},
		{"a😀b", 5, 3},
	}

	for _, tt := range tests {
		tab := NewTable(tt.text)
		if got := tab.ByteToUnit(tt.bytePos); got != tt.want {
			t.Errorf("ByteToUnit(%q, %d) = %d, want %d", tt.text, tt.bytePos, got, tt.want)
		}
	}
}

func TestUnitToByteSurrogatePair(t *testing.T) {
	tab := NewTable("a😀b")
	if got := tab.UnitToByte(1); got != 1 {
		t.Errorf("UnitToByte(1) = %d, want 1", got)
	}
	if got := tab.UnitToByte(3); got != 5 {
		t.Errorf("UnitToByte(3) = %d, want 5", got)
	}
	// Offset between the halves of the surrogate pair snaps back.
	if got := tab.UnitToByte(2); got != 1 {
		t.Errorf("UnitToByte(2) = %d, want 1 (rune start)", got)
	}
}

func TestRoundTripAllBoundaries(t *testing.T) {
	texts := []string{
		"",
		"plain ascii text",
		"café déjà vu",
		"日本語のテキスト",
		"mixed 漢字 and ascii",
		"emoji 😀🎉👍 soup",
		"a\nb\r\nc",
		"𝔘𝔫𝔦𝔠𝔬𝔡𝔢", // all astral-plane
	}

	for _, text := range texts {
		tab := NewTable(text)
		for p := 0; p <= len(text); p++ {
			if p < len(text) && !utf8.RuneStart(text[p]) {
				continue // not a valid byte position
			}
			got := tab.UnitToByte(tab.ByteToUnit(p))
			if got != p {
				t.Errorf("round trip %q: UnitToByte(ByteToUnit(%d)) = %d", text, p, got)
			}
		}
	}
}

func TestInteriorBytePosSnapsToRuneStart(t *testing.T) {
	tab := NewTable("漢") // bytes 0..3, boundary only at 0 and 3
	for p := 1; p < 3; p++ {
		if got := tab.ByteToUnit(p); got != 0 {
			t.Errorf("ByteToUnit(%d) = %d, want 0", p, got)
		}
	}
}

func TestSpanConversion(t *testing.T) {
	text := "café 😀 ok"
	tab := NewTable(text)

	// "café " is 6 bytes / 5 units, so "😀" spans bytes [6, 10) and
	// units [5, 7).
	units := tab.SpanToUnits(Span{Start: 6, End: 10})
	if units.Start != 5 || units.End != 7 {
		t.Errorf("SpanToUnits = %+v, want {5 7}", units)
	}
	back := tab.SpanToBytes(units)
	if back.Start != 6 || back.End != 10 {
		t.Errorf("SpanToBytes = %+v, want {6 10}", back)
	}
}

func TestSpanIsValid(t *testing.T) {
	if !(Span{Start: 1, End: 3}).IsValid() {
		t.Error("ordered span reported invalid")
	}
	if (Span{Start: 3, End: 1}).IsValid() {
		t.Error("reversed span reported valid")
	}
	if (Span{Start: -1, End: 0}).IsValid() {
		t.Error("negative span reported valid")
	}
}
