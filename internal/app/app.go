// Package app wires the assistant's components behind a single facade
// consumed by the surrounding UI. It owns component lifecycles: the
// document, the issue store, the check scheduler, provider detection,
// the rewrite dispatcher, and the audit trail.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/inkwell/internal/audit"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/issues"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/provider"
	"github.com/dshills/inkwell/internal/rewrite"
	"github.com/dshills/inkwell/internal/scheduler"
	"github.com/dshills/inkwell/internal/textspan"
)

// CheckResult is the outcome of a synchronous grammar check.
type CheckResult struct {
	Issues  []issues.Issue
	Stats   engine.Stats
	Summary issues.Summary
}

// Assistant coordinates checking, rewriting, provider management, and
// logging for one editing session.
type Assistant struct {
	cfg config.Config
	log *logging.Logger

	doc         *document.Document
	store       *issues.Store
	sched       *scheduler.Scheduler
	detector    *provider.Detector
	launcher    *provider.Launcher
	dispatcher  *rewrite.Dispatcher
	auditor     *audit.Logger
	highlighter *issues.Highlighter

	genTimeout time.Duration

	runOnce sync.Once
	cancel  context.CancelFunc
	closed  atomic.Bool
}

// Option configures an Assistant.
type Option func(*assistantDeps)

// assistantDeps collects injectable collaborators before wiring.
type assistantDeps struct {
	log      *logging.Logger
	view     issues.View
	checker  engine.Checker
	backends []provider.Backend
	start    provider.StartFunc
	auditor  *audit.Logger
}

// WithLogger sets the developer-facing logger.
func WithLogger(log *logging.Logger) Option {
	return func(d *assistantDeps) { d.log = log }
}

// WithView connects the editing surface's highlight capability.
func WithView(view issues.View) Option {
	return func(d *assistantDeps) { d.view = view }
}

// WithChecker replaces the built-in rule checker.
func WithChecker(c engine.Checker) Option {
	return func(d *assistantDeps) { d.checker = c }
}

// WithBackends replaces the default backend set, in priority order.
func WithBackends(backends []provider.Backend) Option {
	return func(d *assistantDeps) { d.backends = backends }
}

// WithStartFunc replaces the provider launch action.
func WithStartFunc(fn provider.StartFunc) Option {
	return func(d *assistantDeps) { d.start = fn }
}

// WithAuditLogger replaces the default audit logger.
func WithAuditLogger(a *audit.Logger) Option {
	return func(d *assistantDeps) { d.auditor = a }
}

// New wires an Assistant from configuration. Background provider
// detection does not start until Start is called.
func New(cfg config.Config, opts ...Option) (*Assistant, error) {
	deps := &assistantDeps{log: logging.Discard()}
	for _, opt := range opts {
		opt(deps)
	}

	if deps.checker == nil {
		deps.checker = engine.NewRuleChecker(
			engine.WithMaxSentenceWords(cfg.Check.MaxSentenceWords),
		)
	}
	if deps.auditor == nil {
		deps.auditor = audit.New(cfg.Log.Dir,
			audit.WithMirrorCapacity(cfg.Log.MirrorCapacity),
			audit.WithLogger(deps.log),
		)
	}
	if deps.backends == nil {
		backends, err := defaultBackends(cfg.Providers)
		if err != nil {
			return nil, err
		}
		deps.backends = backends
	}
	if deps.view == nil {
		deps.view = nopView{}
	}

	a := &Assistant{
		cfg:        cfg,
		log:        deps.log,
		doc:        document.New(""),
		store:      issues.NewStore(),
		auditor:    deps.auditor,
		genTimeout: cfg.Providers.GenerateTimeout(),
	}

	a.sched = scheduler.New(a.doc, deps.checker, storeSink{a.store},
		scheduler.WithDebounce(cfg.Check.Debounce()),
		scheduler.WithLogger(deps.log),
	)
	a.detector = provider.NewDetector(deps.backends,
		provider.WithProbeTimeout(cfg.Providers.ProbeTimeout()),
		provider.WithDetectInterval(cfg.Providers.DetectInterval()),
		provider.WithDetectorLogger(deps.log),
	)

	launcherOpts := []provider.LauncherOption{
		provider.WithLaunchPoll(cfg.Providers.LaunchPoll(), cfg.Providers.LaunchAttempts),
		provider.WithLauncherLogger(deps.log),
	}
	if deps.start != nil {
		launcherOpts = append(launcherOpts, provider.WithStartFunc(deps.start))
	}
	a.launcher = provider.NewLauncher(a.detector, launcherOpts...)

	a.dispatcher = rewrite.NewDispatcher(a.detector, a.auditor,
		rewrite.WithMaxTargetChars(cfg.Rewrite.MaxChars),
	)
	a.highlighter = issues.NewHighlighter(deps.view, cfg.Highlight.Dwell())

	return a, nil
}

// defaultBackends builds the production backend set in priority order:
// LM Studio first, Ollama second.
func defaultBackends(cfg config.ProvidersConfig) ([]provider.Backend, error) {
	lmstudio := provider.NewLMStudio(cfg.LMStudioBaseURL)
	ollama, err := provider.NewOllama(cfg.OllamaHost, cfg.OllamaModel)
	if err != nil {
		return nil, err
	}
	return []provider.Backend{lmstudio, ollama}, nil
}

// Start begins periodic provider detection. Safe to call once; Close
// stops it.
func (a *Assistant) Start() {
	a.runOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		a.cancel = cancel
		go a.detector.Run(ctx)
	})
}

// CheckGrammar checks text synchronously: the document is replaced,
// any pending debounce is superseded, and the fresh result is returned.
func (a *Assistant) CheckGrammar(text string) CheckResult {
	start := time.Now()

	a.doc.SetText(text)
	a.sched.Flush()

	result := CheckResult{
		Issues:  a.store.Issues(),
		Stats:   a.store.Stats(),
		Summary: a.store.Summary(),
	}

	a.auditor.Event("grammar_check", map[string]any{
		"word_count":  result.Stats.WordCount,
		"issue_count": result.Stats.IssueCount,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return result
}

// UpdateText records an edit and schedules a debounced check.
func (a *Assistant) UpdateText(text string) {
	a.doc.SetText(text)
	a.sched.NotifyChange()
}

// Text returns the current document text.
func (a *Assistant) Text() string {
	return a.doc.Text()
}

// RewriteText dispatches one rewrite, bounded by the configured
// generation timeout.
func (a *Assistant) RewriteText(ctx context.Context, req rewrite.Request) (rewrite.Result, error) {
	if a.closed.Load() {
		return rewrite.Result{}, ErrClosed
	}

	// A session that has never seen a detection cycle gets one now
	// rather than failing on a stale "none".
	if !a.detector.Status().Available {
		a.detector.Detect(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, a.genTimeout)
	defer cancel()
	return a.dispatcher.Rewrite(ctx, req)
}

// ProviderStatus runs a detection cycle and reports the result.
func (a *Assistant) ProviderStatus(ctx context.Context) provider.Status {
	status := a.detector.Detect(ctx)
	a.auditor.Event("llm_status_check", map[string]any{
		"available": status.Available,
		"provider":  status.Provider,
	})
	return status
}

// LaunchProvider starts the preferred backend and waits for it to come
// up. The returned string describes what was launched.
func (a *Assistant) LaunchProvider(ctx context.Context) (string, error) {
	desc, err := a.launcher.Launch(ctx)

	outcome := desc
	if err != nil {
		outcome = err.Error()
	}
	a.auditor.Event("llm_launch", map[string]any{
		"success":       err == nil,
		"path_or_error": outcome,
	})
	return desc, err
}

// SaveFeedback records a rating for a displayed rewrite result. Repeat
// ratings on the same result are silently ignored.
func (a *Assistant) SaveFeedback(resultID string, rec audit.FeedbackRecord) error {
	_, err := a.auditor.Feedback(resultID, rec)
	return err
}

// SelectIssue highlights the issue at index in the current list.
func (a *Assistant) SelectIssue(index int) error {
	issue, ok := a.store.Issue(index)
	if !ok {
		return ErrNoSuchIssue
	}
	a.highlighter.Select(issue.Span)
	return nil
}

// ApplySuggestion replaces an issue's span with one of its suggestions
// and schedules a re-check.
func (a *Assistant) ApplySuggestion(index, suggestion int) error {
	issue, ok := a.store.Issue(index)
	if !ok {
		return ErrNoSuchIssue
	}
	if suggestion < 0 || suggestion >= len(issue.Suggestions) {
		return ErrNoSuchIssue
	}

	table := textspan.NewTable(a.doc.Text())
	if _, err := a.doc.Replace(table.SpanToBytes(issue.Span), issue.Suggestions[suggestion]); err != nil {
		return err
	}
	a.sched.NotifyChange()
	return nil
}

// Issues returns the current issue list.
func (a *Assistant) Issues() []issues.Issue {
	return a.store.Issues()
}

// Stats returns the statistics of the last completed check.
func (a *Assistant) Stats() engine.Stats {
	return a.store.Stats()
}

// Summary returns issue counts by severity.
func (a *Assistant) Summary() issues.Summary {
	return a.store.Summary()
}

// RecentEvents returns the audit mirror for local inspection.
func (a *Assistant) RecentEvents() []audit.Entry {
	return a.auditor.Recent()
}

// Close stops background detection and pending timers. In-flight
// provider calls are not aborted; their results are discarded.
func (a *Assistant) Close() {
	if !a.closed.CompareAndSwap(false, true) {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.sched.Close()
	a.highlighter.Close()
}
