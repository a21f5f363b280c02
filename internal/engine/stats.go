package engine

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Analyze computes word and sentence counts for text using Unicode
// segmentation (UAX #29), so CJK text and emoji-adjacent words count
// correctly. Blank text yields all-zero stats; any other text reports
// at least one sentence.
func Analyze(text string) Stats {
	if strings.TrimSpace(text) == "" {
		return Stats{}
	}

	words := 0
	state := -1
	remaining := text
	for len(remaining) > 0 {
		var segment string
		segment, remaining, state = uniseg.FirstWordInString(remaining, state)
		if containsAlphanumeric(segment) {
			words++
		}
	}

	sentences := 0
	state = -1
	remaining = text
	for len(remaining) > 0 {
		var sentence string
		sentence, remaining, state = uniseg.FirstSentenceInString(remaining, state)
		if strings.TrimSpace(sentence) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	return Stats{WordCount: words, SentenceCount: sentences}
}

// containsAlphanumeric reports whether the segment carries word content
// rather than spacing or punctuation.
func containsAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
