package issues

import (
	"sync"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/textspan"
)

// Issue is a flagged span in UI positions (UTF-16 code units), ready
// for the editing surface to underline. Suggestions keep the checker's
// preference order; the first entry is the default quick fix.
type Issue struct {
	Span        textspan.Span
	Message     string
	Suggestions []string
	Severity    engine.Severity
}

// Translate converts engine issues (byte spans) into UI issues (code
// unit spans) using the table built for the same document version.
func Translate(in []engine.Issue, table *textspan.Table) []Issue {
	if len(in) == 0 {
		return nil
	}
	out := make([]Issue, 0, len(in))
	for _, ei := range in {
		suggestions := make([]string, len(ei.Suggestions))
		copy(suggestions, ei.Suggestions)
		out = append(out, Issue{
			Span:        table.SpanToUnits(ei.Span),
			Message:     ei.Message,
			Suggestions: suggestions,
			Severity:    ei.Severity,
		})
	}
	return out
}

// Summary aggregates issue counts by severity.
type Summary struct {
	Errors   int
	Warnings int
	Style    int
}

// Store holds the current issue list and stats for the active document
// version. Reads return copies so callers can never observe a list
// mid-replacement.
type Store struct {
	mu      sync.RWMutex
	issues  []Issue
	stats   engine.Stats
	version uint64
	summary Summary
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in the complete result of a check cycle atomically.
func (s *Store) Replace(version uint64, issues []Issue, stats engine.Stats) {
	var summary Summary
	for _, issue := range issues {
		switch issue.Severity {
		case engine.SeverityError:
			summary.Errors++
		case engine.SeverityWarning:
			summary.Warnings++
		case engine.SeverityStyle:
			summary.Style++
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = issues
	s.stats = stats
	s.version = version
	s.summary = summary
}

// Issues returns a copy of the current issue list in emission order.
func (s *Store) Issues() []Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// Issue returns the issue at index, if it exists.
func (s *Store) Issue(index int) (Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.issues) {
		return Issue{}, false
	}
	return s.issues[index], true
}

// Count returns the number of current issues.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.issues)
}

// Stats returns the statistics of the last applied check.
func (s *Store) Stats() engine.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Version returns the document version the current list belongs to.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Summary returns issue counts grouped by severity.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}
