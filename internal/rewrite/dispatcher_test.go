package rewrite

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/inkwell/internal/provider"
	"github.com/dshills/inkwell/internal/textspan"
)

// scriptedBackend returns a fixed completion (or error) and counts
// generate calls.
type scriptedBackend struct {
	mu        sync.Mutex
	reply     string
	err       error
	generates int
	lastUser  string
}

func (b *scriptedBackend) ID() string   { return "lmstudio" }
func (b *scriptedBackend) Name() string { return "LM Studio" }

func (b *scriptedBackend) Probe(ctx context.Context) (string, error) {
	return "test-model", nil
}

func (b *scriptedBackend) Generate(ctx context.Context, system, prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generates++
	b.lastUser = prompt
	return b.reply, b.err
}

func (b *scriptedBackend) generateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generates
}

// memorySink collects audit events.
type memorySink struct {
	mu     sync.Mutex
	events []auditEvent
}

type auditEvent struct {
	kind    string
	payload map[string]any
}

func (m *memorySink) Event(kind string, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, auditEvent{kind: kind, payload: payload})
}

func (m *memorySink) last(t *testing.T) auditEvent {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		t.Fatal("no audit events recorded")
	}
	return m.events[len(m.events)-1]
}

// newTestDispatcher wires a dispatcher to one scripted backend that is
// already detected as active.
func newTestDispatcher(t *testing.T, backend *scriptedBackend, opts ...DispatcherOption) (*Dispatcher, *memorySink) {
	t.Helper()
	detector := provider.NewDetector([]provider.Backend{backend})
	detector.Detect(context.Background())
	sink := &memorySink{}
	return NewDispatcher(detector, sink, opts...), sink
}

func TestRewriteEmptyTargetRejected(t *testing.T) {
	backend := &scriptedBackend{reply: "should never be called"}
	d, sink := newTestDispatcher(t, backend)

	for _, text := range []string{"", "   \n\t"} {
		result, err := d.Rewrite(context.Background(), Request{Text: text, Mode: ModeClarity})
		if err != nil {
			t.Fatalf("Rewrite(%q) err = %v, want nil (validation result)", text, err)
		}
		if result.Rewritten != "" {
			t.Errorf("Rewritten = %q, want empty", result.Rewritten)
		}
		if result.Explanation == "" {
			t.Error("validation result has no explanation")
		}
	}

	if backend.generateCount() != 0 {
		t.Errorf("provider contacted %d times for invalid targets", backend.generateCount())
	}
	ev := sink.last(t)
	if ev.kind != "rewrite" || ev.payload["success"] != false {
		t.Errorf("audit event = %+v, want failed rewrite", ev)
	}
}

func TestRewriteOversizedTargetRejected(t *testing.T) {
	backend := &scriptedBackend{}
	d, _ := newTestDispatcher(t, backend)

	result, err := d.Rewrite(context.Background(), Request{
		Text: strings.Repeat("a", MaxTargetChars+1),
		Mode: ModeConcise,
	})
	if err != nil {
		t.Fatalf("Rewrite err = %v, want nil", err)
	}
	if result.Rewritten != "" {
		t.Errorf("Rewritten = %q, want empty", result.Rewritten)
	}
	if result.Explanation == "" {
		t.Error("oversized rejection has no explanation")
	}
	if backend.generateCount() != 0 {
		t.Error("provider contacted for oversized target")
	}
}

func TestRewriteAtLimitAccepted(t *testing.T) {
	backend := &scriptedBackend{reply: "ok\nEXPLANATION: fine"}
	d, _ := newTestDispatcher(t, backend)

	_, err := d.Rewrite(context.Background(), Request{
		Text: strings.Repeat("a", MaxTargetChars),
		Mode: ModeConcise,
	})
	if err != nil {
		t.Fatalf("Rewrite err = %v", err)
	}
	if backend.generateCount() != 1 {
		t.Errorf("generate calls = %d, want 1", backend.generateCount())
	}
}

func TestRewriteLimitCountsCharactersNotBytes(t *testing.T) {
	backend := &scriptedBackend{reply: "ok"}
	d, _ := newTestDispatcher(t, backend)

	// 5000 three-byte runes: 15000 bytes but exactly at the char limit.
	_, err := d.Rewrite(context.Background(), Request{
		Text: strings.Repeat("漢", MaxTargetChars),
		Mode: ModeClarity,
	})
	if err != nil {
		t.Fatalf("Rewrite err = %v", err)
	}
	if backend.generateCount() != 1 {
		t.Error("multibyte text at the limit was rejected")
	}
}

func TestRewriteUnavailableProvider(t *testing.T) {
	detector := provider.NewDetector(nil) // no backends, never available
	d := NewDispatcher(detector, &memorySink{})

	_, err := d.Rewrite(context.Background(), Request{Text: "some text", Mode: ModeClarity})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestRewriteSuccess(t *testing.T) {
	backend := &scriptedBackend{reply: "Clear text.\nEXPLANATION: Removed filler."}
	d, sink := newTestDispatcher(t, backend)

	result, err := d.Rewrite(context.Background(), Request{Text: "some messy text", Mode: ModeClarity})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Rewritten != "Clear text." {
		t.Errorf("Rewritten = %q", result.Rewritten)
	}
	if result.Explanation != "Removed filler." {
		t.Errorf("Explanation = %q", result.Explanation)
	}
	if result.ID == "" {
		t.Error("successful result has no ID")
	}
	if result.Provider != "lmstudio" {
		t.Errorf("Provider = %q", result.Provider)
	}

	ev := sink.last(t)
	if ev.payload["success"] != true {
		t.Errorf("audit payload = %+v, want success", ev.payload)
	}
	if ev.payload["text_length"] != len("some messy text") {
		t.Errorf("text_length = %v", ev.payload["text_length"])
	}
}

func TestRewriteResultIDsUnique(t *testing.T) {
	backend := &scriptedBackend{reply: "out"}
	d, _ := newTestDispatcher(t, backend)

	r1, _ := d.Rewrite(context.Background(), Request{Text: "text one", Mode: ModeClarity})
	r2, _ := d.Rewrite(context.Background(), Request{Text: "text two", Mode: ModeClarity})
	if r1.ID == r2.ID {
		t.Errorf("two results share ID %q", r1.ID)
	}
}

func TestRewriteProviderCallFailure(t *testing.T) {
	backend := &scriptedBackend{err: errors.New("connection reset")}
	d, sink := newTestDispatcher(t, backend)

	_, err := d.Rewrite(context.Background(), Request{Text: "text", Mode: ModeFormal})
	if !errors.Is(err, ErrProviderCall) {
		t.Errorf("err = %v, want ErrProviderCall", err)
	}
	if ev := sink.last(t); ev.payload["success"] != false {
		t.Errorf("audit payload = %+v, want failure", ev.payload)
	}
}

func TestRewriteCoachWithoutDelimiter(t *testing.T) {
	backend := &scriptedBackend{reply: "Your second sentence buries the verb."}
	d, _ := newTestDispatcher(t, backend)

	result, err := d.Rewrite(context.Background(), Request{Text: "Some prose.", Mode: ModeCoach})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Rewritten != "" {
		t.Errorf("coach Rewritten = %q, want empty", result.Rewritten)
	}
	if result.Explanation != "Your second sentence buries the verb." {
		t.Errorf("coach Explanation = %q", result.Explanation)
	}
}

func TestRewriteCoachKeepsDelimitedPair(t *testing.T) {
	backend := &scriptedBackend{reply: "Tighter prose.\nEXPLANATION: Verbs first."}
	d, _ := newTestDispatcher(t, backend)

	result, _ := d.Rewrite(context.Background(), Request{Text: "Some prose.", Mode: ModeCoach})
	if result.Rewritten == "" || result.Explanation == "" {
		t.Errorf("delimited coach result = %+v, want both fields", result)
	}
}

func TestRewriteSelectionTarget(t *testing.T) {
	backend := &scriptedBackend{reply: "ok"}
	d, _ := newTestDispatcher(t, backend)

	// "héllo world": selection in UI units; "é" is 1 unit / 2 bytes.
	text := "héllo world"
	sel := textspan.Span{Start: 6, End: 11} // "world"
	_, err := d.Rewrite(context.Background(), Request{Text: text, Mode: ModeClarity, Selection: &sel})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	backend.mu.Lock()
	prompt := backend.lastUser
	backend.mu.Unlock()
	if !strings.Contains(prompt, "Text: world") {
		t.Errorf("prompt target wrong: %q", prompt)
	}
}

func TestRewriteSelectionOutOfRange(t *testing.T) {
	backend := &scriptedBackend{}
	d, _ := newTestDispatcher(t, backend)

	sel := textspan.Span{Start: 90, End: 4}
	result, err := d.Rewrite(context.Background(), Request{Text: "short", Mode: ModeClarity, Selection: &sel})
	if err != nil {
		t.Fatalf("Rewrite err = %v, want nil", err)
	}
	if result.Explanation == "" || backend.generateCount() != 0 {
		t.Errorf("invalid selection not rejected locally: %+v", result)
	}
}
