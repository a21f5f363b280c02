package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/issues"
	"github.com/dshills/inkwell/internal/textspan"
)

// fakeChecker counts calls and can block, fail, or panic on demand.
type fakeChecker struct {
	mu      sync.Mutex
	calls   int
	last    string
	gate    chan struct{} // when set, Check blocks until closed
	err     error
	panicty bool
}

func (f *fakeChecker) Check(text string) (engine.Result, error) {
	f.mu.Lock()
	f.calls++
	f.last = text
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.panicty {
		panic("checker exploded")
	}
	if f.err != nil {
		return engine.Result{}, f.err
	}

	end := len(text)
	if end > 4 {
		end = 4
	}
	stats := engine.Analyze(text)
	stats.IssueCount = 1
	return engine.Result{
		Issues: []engine.Issue{{
			Span:     textspan.Span{Start: 0, End: end},
			Message:  "test issue",
			Severity: engine.SeverityWarning,
		}},
		Stats: stats,
	}, nil
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeChecker) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// recordingSink records every applied check.
type recordingSink struct {
	mu      sync.Mutex
	applied []appliedCheck
}

type appliedCheck struct {
	version uint64
	list    []issues.Issue
	stats   engine.Stats
}

func (r *recordingSink) ApplyCheck(version uint64, list []issues.Issue, stats engine.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, appliedCheck{version: version, list: list, stats: stats})
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.applied)
}

func (r *recordingSink) lastApplied() (appliedCheck, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.applied) == 0 {
		return appliedCheck{}, false
	}
	return r.applied[len(r.applied)-1], true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDebounceCoalescesEdits(t *testing.T) {
	doc := document.New("")
	checker := &fakeChecker{}
	sink := &recordingSink{}
	s := New(doc, checker, sink, WithDebounce(60*time.Millisecond))
	defer s.Close()

	// Edits inside the window must collapse into one engine call.
	doc.SetText("first")
	s.NotifyChange()
	time.Sleep(20 * time.Millisecond)
	doc.SetText("second")
	s.NotifyChange()
	time.Sleep(20 * time.Millisecond)
	doc.SetText("final text")
	s.NotifyChange()

	waitFor(t, func() bool { return sink.count() == 1 })

	if got := checker.callCount(); got != 1 {
		t.Errorf("engine calls = %d, want 1", got)
	}
	if got := checker.lastText(); got != "final text" {
		t.Errorf("checked text = %q, want buffer state after last edit", got)
	}

	// No further calls arrive later.
	time.Sleep(100 * time.Millisecond)
	if got := checker.callCount(); got != 1 {
		t.Errorf("engine calls after settle = %d, want 1", got)
	}
}

func TestBlankBufferShortCircuits(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		doc := document.New(text)
		checker := &fakeChecker{}
		sink := &recordingSink{}
		s := New(doc, checker, sink, WithDebounce(10*time.Millisecond))

		s.NotifyChange()
		waitFor(t, func() bool { return sink.count() == 1 })
		s.Close()

		if checker.callCount() != 0 {
			t.Errorf("text %q: engine invoked %d times, want 0", text, checker.callCount())
		}
		applied, _ := sink.lastApplied()
		if len(applied.list) != 0 {
			t.Errorf("text %q: issues = %v, want none", text, applied.list)
		}
		if applied.stats != (engine.Stats{}) {
			t.Errorf("text %q: stats = %+v, want all zero", text, applied.stats)
		}
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	doc := document.New("version one text")
	gate := make(chan struct{})
	checker := &fakeChecker{gate: gate}
	sink := &recordingSink{}
	s := New(doc, checker, sink)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.Flush()
		close(done)
	}()

	waitFor(t, func() bool { return checker.callCount() == 1 })

	// Advance the document while the engine is still running.
	doc.SetText("version two text")
	close(gate)
	<-done

	if sink.count() != 0 {
		t.Errorf("stale result reached the sink: %+v", sink.applied)
	}
}

func TestCurrentResultApplied(t *testing.T) {
	doc := document.New("steady text")
	checker := &fakeChecker{}
	sink := &recordingSink{}
	s := New(doc, checker, sink)
	defer s.Close()

	s.Flush()

	applied, ok := sink.lastApplied()
	if !ok {
		t.Fatal("no result applied")
	}
	if applied.version != doc.Version() {
		t.Errorf("applied version = %d, want %d", applied.version, doc.Version())
	}
	if len(applied.list) != 1 {
		t.Errorf("issues = %d, want 1", len(applied.list))
	}
	if applied.stats.IssueCount != 1 {
		t.Errorf("stats.IssueCount = %d, want 1", applied.stats.IssueCount)
	}
}

func TestEngineErrorFailsOpen(t *testing.T) {
	doc := document.New("some words here")
	checker := &fakeChecker{err: errors.New("engine blew up")}
	sink := &recordingSink{}
	s := New(doc, checker, sink)
	defer s.Close()

	s.Flush()

	applied, ok := sink.lastApplied()
	if !ok {
		t.Fatal("failure cycle did not reach the sink")
	}
	if len(applied.list) != 0 {
		t.Errorf("issues = %v, want none on engine failure", applied.list)
	}
	if applied.stats.WordCount != 3 {
		t.Errorf("fallback stats.WordCount = %d, want 3", applied.stats.WordCount)
	}
}

func TestEnginePanicFailsOpen(t *testing.T) {
	doc := document.New("text")
	checker := &fakeChecker{panicty: true}
	sink := &recordingSink{}
	s := New(doc, checker, sink)
	defer s.Close()

	s.Flush() // must not panic

	applied, ok := sink.lastApplied()
	if !ok {
		t.Fatal("panic cycle did not reach the sink")
	}
	if len(applied.list) != 0 {
		t.Errorf("issues = %v, want none after panic", applied.list)
	}
}

func TestCloseCancelsPending(t *testing.T) {
	doc := document.New("text")
	checker := &fakeChecker{}
	sink := &recordingSink{}
	s := New(doc, checker, sink, WithDebounce(30*time.Millisecond))

	s.NotifyChange()
	s.Close()

	time.Sleep(60 * time.Millisecond)
	if checker.callCount() != 0 {
		t.Error("engine ran after Close")
	}
	if sink.count() != 0 {
		t.Error("sink received a result after Close")
	}
}
