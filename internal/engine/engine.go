package engine

import (
	"strings"

	"github.com/dshills/inkwell/internal/textspan"
)

// Severity classifies how strongly an issue should be surfaced.
type Severity int

const (
	// SeverityError marks outright mistakes (grammar, doubled words).
	SeverityError Severity = iota
	// SeverityWarning marks likely problems worth a second look.
	SeverityWarning
	// SeverityStyle marks stylistic suggestions.
	SeverityStyle
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityStyle:
		return "Style"
	default:
		return "Unknown"
	}
}

// ParseSeverity maps a checker-emitted severity tag onto a Severity.
// Unrecognized tags fall back to SeverityStyle.
func ParseSeverity(tag string) Severity {
	switch strings.ToLower(tag) {
	case "error", "spelling", "grammar":
		return SeverityError
	case "warning", "repetition", "punctuation":
		return SeverityWarning
	default:
		return SeverityStyle
	}
}

// Issue is a single flagged span. Span offsets are bytes into the
// checked text. Suggestions are ordered by checker preference; the
// first entry, when present, is the default quick fix and every entry
// is a plain replacement for the span.
type Issue struct {
	Span        textspan.Span
	Message     string
	Suggestions []string
	Severity    Severity
}

// Stats summarizes the checked text.
type Stats struct {
	WordCount     int
	SentenceCount int
	IssueCount    int
}

// Result is one complete check emission. Issues keep the checker's
// emission order; Stats.IssueCount always equals len(Issues).
type Result struct {
	Issues []Issue
	Stats  Stats
}

// Checker analyzes text and reports issues with byte spans. Check must
// be safe for concurrent use.
type Checker interface {
	Check(text string) (Result, error)
}
