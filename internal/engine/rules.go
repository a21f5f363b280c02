package engine

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/textspan"
)

// DefaultMaxSentenceWords is the sentence length above which the rule
// checker flags a style issue.
const DefaultMaxSentenceWords = 30

// RuleChecker is the built-in prose linter. It catches mechanical
// mistakes (doubled words, stacked punctuation, double spacing,
// run-on sentences) without any language model or dictionary, so it is
// cheap enough to run on every debounce window.
type RuleChecker struct {
	maxSentenceWords int
}

// RuleCheckerOption configures a RuleChecker.
type RuleCheckerOption func(*RuleChecker)

// WithMaxSentenceWords overrides the run-on sentence threshold.
func WithMaxSentenceWords(n int) RuleCheckerOption {
	return func(rc *RuleChecker) {
		if n > 0 {
			rc.maxSentenceWords = n
		}
	}
}

// NewRuleChecker creates a rule checker with default thresholds.
func NewRuleChecker(opts ...RuleCheckerOption) *RuleChecker {
	rc := &RuleChecker{maxSentenceWords: DefaultMaxSentenceWords}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Check implements Checker. Issues are reported in document order.
func (rc *RuleChecker) Check(text string) (Result, error) {
	var issues []Issue

	issues = append(issues, findDoubledWords(text)...)
	issues = append(issues, findStackedPunctuation(text)...)
	issues = append(issues, findDoubleSpaces(text)...)
	issues = append(issues, rc.findRunOnSentences(text)...)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Span.Start < issues[j].Span.Start
	})

	stats := Analyze(text)
	stats.IssueCount = len(issues)

	return Result{Issues: issues, Stats: stats}, nil
}

// findDoubledWords flags immediate case-insensitive word repetitions
// separated only by whitespace ("the the", "The the").
func findDoubledWords(text string) []Issue {
	var issues []Issue

	type word struct {
		text string
		span textspan.Span
	}

	var prev *word
	offset := 0
	state := -1
	remaining := text
	for len(remaining) > 0 {
		var segment string
		segment, remaining, state = uniseg.FirstWordInString(remaining, state)
		span := textspan.Span{Start: offset, End: offset + len(segment)}
		offset = span.End

		if !containsAlphanumeric(segment) {
			// Whitespace keeps a pending word pair alive; anything
			// else (punctuation) breaks it.
			if strings.TrimSpace(segment) != "" {
				prev = nil
			}
			continue
		}

		if prev != nil && strings.EqualFold(prev.text, segment) {
			issues = append(issues, Issue{
				Span:        textspan.Span{Start: prev.span.Start, End: span.End},
				Message:     fmt.Sprintf("Repeated word %q", segment),
				Suggestions: []string{prev.text},
				Severity:    SeverityError,
			})
			prev = nil
			continue
		}
		prev = &word{text: segment, span: span}
	}

	return issues
}

// findStackedPunctuation flags runs of two or more '!', '?', or ','.
func findStackedPunctuation(text string) []Issue {
	var issues []Issue

	for i := 0; i < len(text); {
		c := text[i]
		if c != '!' && c != '?' && c != ',' {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && text[j] == c {
			j++
		}
		if j-i >= 2 {
			issues = append(issues, Issue{
				Span:        textspan.Span{Start: i, End: j},
				Message:     fmt.Sprintf("Repeated %q", string(c)),
				Suggestions: []string{string(c)},
				Severity:    SeverityWarning,
			})
		}
		i = j
	}

	return issues
}

// findDoubleSpaces flags runs of two or more spaces inside a line.
// Leading indentation is left alone.
func findDoubleSpaces(text string) []Issue {
	var issues []Issue

	lineStart := true
	for i := 0; i < len(text); {
		c := text[i]
		if c == '\n' {
			lineStart = true
			i++
			continue
		}
		if c != ' ' {
			lineStart = false
			i++
			continue
		}

		j := i + 1
		for j < len(text) && text[j] == ' ' {
			j++
		}
		if !lineStart && j-i >= 2 {
			issues = append(issues, Issue{
				Span:        textspan.Span{Start: i, End: j},
				Message:     "Multiple consecutive spaces",
				Suggestions: []string{" "},
				Severity:    SeverityStyle,
			})
		}
		i = j
	}

	return issues
}

// findRunOnSentences flags sentences longer than the configured word
// threshold. No replacement is offered; splitting is the writer's call.
func (rc *RuleChecker) findRunOnSentences(text string) []Issue {
	var issues []Issue

	offset := 0
	state := -1
	remaining := text
	for len(remaining) > 0 {
		var sentence string
		sentence, remaining, state = uniseg.FirstSentenceInString(remaining, state)
		span := textspan.Span{Start: offset, End: offset + len(sentence)}
		offset = span.End

		words := countWords(sentence)
		if words > rc.maxSentenceWords {
			issues = append(issues, Issue{
				Span: trimSpan(text, span),
				Message: fmt.Sprintf("Long sentence (%d words); consider splitting it",
					words),
				Severity: SeverityStyle,
			})
		}
	}

	return issues
}

// countWords counts alphanumeric word segments in s.
func countWords(s string) int {
	count := 0
	state := -1
	for len(s) > 0 {
		var segment string
		segment, s, state = uniseg.FirstWordInString(s, state)
		if containsAlphanumeric(segment) {
			count++
		}
	}
	return count
}

// trimSpan shrinks a span to exclude surrounding whitespace.
func trimSpan(text string, span textspan.Span) textspan.Span {
	for span.Start < span.End && isSpaceByte(text[span.Start]) {
		span.Start++
	}
	for span.End > span.Start && isSpaceByte(text[span.End-1]) {
		span.End--
	}
	return span
}

func isSpaceByte(b byte) bool {
	return b < 0x80 && unicode.IsSpace(rune(b))
}
