// Package textspan translates text positions between the two encodings
// used in the system: the checking engine reports spans as byte offsets
// over UTF-8 text, while the editing surface addresses positions in
// UTF-16 code units. The two diverge as soon as the text contains
// multi-byte characters (accented letters, CJK, emoji), so every span
// that crosses the boundary between engine and UI must be translated.
//
// A Table is built once per document version in O(n) and answers
// individual conversions in O(log n) via binary search over cumulative
// offsets recorded at every rune boundary.
package textspan
