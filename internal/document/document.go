// Package document holds the live session text buffer. The buffer is
// owned by the UI control thread; every accepted edit, suggestion
// application, or rewrite application replaces content through this
// package and bumps a monotonically increasing version counter that
// downstream consumers use to detect stale results.
package document

import (
	"errors"
	"strings"
	"sync"

	"github.com/dshills/inkwell/internal/textspan"
)

// ErrSpanOutOfRange indicates a replacement span outside the buffer.
var ErrSpanOutOfRange = errors.New("span out of range")

// Document is a mutable text buffer with a version counter. Reads are
// safe from any goroutine; mutation is expected only from the owning
// control thread. The document lives for the session and is never
// persisted.
type Document struct {
	mu      sync.RWMutex
	text    string
	version uint64
}

// New creates a document with the given initial text at version 1.
func New(text string) *Document {
	return &Document{text: text, version: 1}
}

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Version returns the current version counter.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Snapshot returns the content and version as one consistent pair.
func (d *Document) Snapshot() (string, uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text, d.version
}

// SetText replaces the whole content and bumps the version.
func (d *Document) SetText(text string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.version++
	return d.version
}

// Replace substitutes the byte span with s and bumps the version.
// Used when a quick-fix suggestion or a selection rewrite is applied.
func (d *Document) Replace(span textspan.Span, s string) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !span.IsValid() || span.End > len(d.text) {
		return d.version, ErrSpanOutOfRange
	}

	var sb strings.Builder
	sb.Grow(len(d.text) - span.Len() + len(s))
	sb.WriteString(d.text[:span.Start])
	sb.WriteString(s)
	sb.WriteString(d.text[span.End:])

	d.text = sb.String()
	d.version++
	return d.version, nil
}

// IsBlank reports whether the content is empty or whitespace-only.
func (d *Document) IsBlank() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strings.TrimSpace(d.text) == ""
}
