package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/provider"
	"github.com/dshills/inkwell/internal/textspan"
)

// MaxTargetChars is the largest rewrite target accepted. Local models
// degrade sharply past this, so oversized targets are rejected before
// any network contact.
const MaxTargetChars = 5000

// Errors surfaced to the caller as explanatory text.
var (
	// ErrProviderUnavailable means no backend was active when the
	// request arrived; nothing was dispatched.
	ErrProviderUnavailable = errors.New("no local language model is available")

	// ErrProviderCall wraps transport or provider failures during
	// dispatch. The user re-triggers manually; there is no auto-retry.
	ErrProviderCall = errors.New("language model request failed")
)

// Request describes one rewrite. Selection, when set, is a span in UI
// code units over Text; the selected slice becomes the target,
// otherwise the whole text does.
type Request struct {
	Text      string
	Mode      Mode
	Selection *textspan.Span
}

// Result is the outcome shown to the writer. A validation rejection
// has empty Rewritten and the reason in Explanation. ID is set only
// for results that came back from a provider; feedback is keyed on it.
type Result struct {
	ID          string
	Rewritten   string
	Explanation string
	Provider    string
}

// AuditSink records dispatch attempts. Satisfied by *audit.Logger.
type AuditSink interface {
	Event(kind string, payload map[string]any)
}

// Dispatcher validates and sends rewrite requests to the active
// backend. It holds no queue and no per-request mutable state, so
// independent calls may run concurrently; serializing triggers from a
// single UI surface is the caller's job.
type Dispatcher struct {
	detector *provider.Detector
	audit    AuditSink
	maxChars int
	seq      atomic.Uint64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxTargetChars overrides the size limit.
func WithMaxTargetChars(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxChars = n
		}
	}
}

// NewDispatcher creates a dispatcher gated by the detector's status.
func NewDispatcher(detector *provider.Detector, audit AuditSink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		detector: detector,
		audit:    audit,
		maxChars: MaxTargetChars,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Rewrite performs one validated, blocking dispatch. Validation
// failures return a Result carrying the reason with a nil error and no
// I/O performed. Provider absence and call failures return typed
// errors.
func (d *Dispatcher) Rewrite(ctx context.Context, req Request) (Result, error) {
	target, reason := d.resolveTarget(req)
	if reason != "" {
		d.record(req.Mode, len(target), false, "validation: "+reason)
		return Result{Explanation: reason}, nil
	}

	backend, ok := d.detector.Active()
	if !ok {
		d.record(req.Mode, len(target), false, "unavailable")
		return Result{}, ErrProviderUnavailable
	}

	raw, err := backend.Generate(ctx, systemPrompt, buildPrompt(req.Mode, target))
	if err != nil {
		d.record(req.Mode, len(target), false, err.Error())
		return Result{}, fmt.Errorf("%w: %v", ErrProviderCall, err)
	}

	rewritten, explanation := parseResponse(raw)
	if req.Mode == ModeCoach && explanation == "" {
		// Coach output is advice: an undelimited response is all
		// explanation, never replacement text.
		rewritten, explanation = "", rewritten
	}

	d.record(req.Mode, len(target), true, backend.ID())

	return Result{
		ID:          fmt.Sprintf("rw-%d", d.seq.Add(1)),
		Rewritten:   rewritten,
		Explanation: explanation,
		Provider:    backend.ID(),
	}, nil
}

// resolveTarget extracts and validates the text to rewrite. The
// returned reason is empty when the target is acceptable.
func (d *Dispatcher) resolveTarget(req Request) (target, reason string) {
	target = req.Text

	if req.Selection != nil {
		table := textspan.NewTable(req.Text)
		span := table.SpanToBytes(*req.Selection)
		if !span.IsValid() || span.End > len(req.Text) {
			return "", "The selection is out of range."
		}
		target = req.Text[span.Start:span.End]
	}

	if strings.TrimSpace(target) == "" {
		return target, "There is nothing to rewrite: the target text is empty."
	}
	if n := utf8.RuneCountInString(target); n > d.maxChars {
		return target, fmt.Sprintf(
			"The text is too long to rewrite at once (%d characters, limit %d). "+
				"Select a smaller portion.", n, d.maxChars)
	}
	return target, ""
}

// record logs one dispatch attempt to the audit trail.
func (d *Dispatcher) record(mode Mode, textLen int, success bool, outcome string) {
	if d.audit == nil {
		return
	}
	d.audit.Event("rewrite", map[string]any{
		"mode":        string(mode),
		"text_length": textLen,
		"success":     success,
		"provider":    outcome,
	})
}
