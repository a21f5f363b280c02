// Package scheduler debounces document edits into grammar check runs.
//
// Each edit arms (or re-arms) a single debounce timer; only the latest
// edit's timer fires. When it does, the scheduler snapshots the
// document, runs the checking engine off the control thread, and
// delivers the translated result to an injected sink — unless the
// document has moved on in the meantime, in which case the result is
// discarded as stale. Engine failures are swallowed (fail-open):
// checking must never block or break typing.
package scheduler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/issues"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/textspan"
)

// DefaultDebounce is the pause in typing that triggers a check.
const DefaultDebounce = 300 * time.Millisecond

// Sink receives the outcome of a completed, still-current check cycle.
// Implementations are called from the scheduler's timer goroutine.
type Sink interface {
	ApplyCheck(version uint64, list []issues.Issue, stats engine.Stats)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithLogger sets the developer-facing logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// Scheduler coalesces edits into engine runs. It owns one timer; state
// proceeds idle → pending → in-flight → idle, with a pending timer
// reset by every new edit.
type Scheduler struct {
	doc     *document.Document
	checker engine.Checker
	sink    Sink
	delay   time.Duration
	log     *logging.Logger

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

// New creates a scheduler. The sink is injected here rather than
// registered globally so result routing is explicit.
func New(doc *document.Document, checker engine.Checker, sink Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		doc:     doc,
		checker: checker,
		sink:    sink,
		delay:   DefaultDebounce,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NotifyChange records an edit: a pending debounce timer is reset so
// only the latest edit's timer fires.
func (s *Scheduler) NotifyChange() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}

	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() {
		if !s.stillCurrent(gen) {
			return
		}
		s.runCheck()
	})
}

// Flush cancels any pending debounce and runs a check immediately on
// the calling goroutine.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.mu.Unlock()

	s.runCheck()
}

// Close cancels any pending check. In-flight engine calls are not
// aborted; their results are discarded.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// stillCurrent reports whether a fired timer belongs to the latest
// edit. Stop can race with an already-firing timer, so the generation
// check is the authoritative guard.
func (s *Scheduler) stillCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.gen
}

// runCheck performs one check cycle against a document snapshot.
func (s *Scheduler) runCheck() {
	text, version := s.doc.Snapshot()

	// Empty or whitespace-only buffers short-circuit without touching
	// the engine.
	if strings.TrimSpace(text) == "" {
		s.sink.ApplyCheck(version, nil, engine.Stats{})
		return
	}

	result, err := s.safeCheck(text)
	if err != nil {
		// Fail-open: the user sees no issues this cycle, not an error.
		// Stats are recomputed locally so counters do not blank out.
		s.log.Warn("check engine failed: %v", err)
		result = engine.Result{Stats: engine.Analyze(text)}
	}

	// Discard stale results: the document moved on while the engine ran.
	if s.doc.Version() != version {
		s.log.Debug("discarding stale check for version %d", version)
		return
	}

	table := textspan.NewTable(text)
	s.sink.ApplyCheck(version, issues.Translate(result.Issues, table), result.Stats)
}

// safeCheck invokes the engine, converting panics into errors so a
// faulty checker degrades instead of crashing the session.
func (s *Scheduler) safeCheck(text string) (result engine.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panic: %v", r)
		}
	}()
	return s.checker.Check(text)
}
