package issues

import (
	"sync"
	"time"

	"github.com/dshills/inkwell/internal/textspan"
)

// DefaultHighlightDwell is how long a selected issue stays marked
// before the highlight clears itself.
const DefaultHighlightDwell = 1500 * time.Millisecond

// View is the editing surface's highlight capability. ShowHighlight is
// expected to scroll the span into view and apply a transient mark.
type View interface {
	ShowHighlight(span textspan.Span)
	ClearHighlight()
}

// Highlighter links issue selection to a transient visual highlight.
// It is a two-state machine (idle / highlighting) owning a single
// dwell timer: a new selection replaces the current span and restarts
// the dwell, and the mark clears once the dwell elapses with no new
// selection. The latest selection always wins; there is no queue.
type Highlighter struct {
	mu     sync.Mutex
	view   View
	dwell  time.Duration
	timer  *time.Timer
	gen    uint64
	active bool
	closed bool
}

// NewHighlighter creates a highlighter for the given view.
func NewHighlighter(view View, dwell time.Duration) *Highlighter {
	if dwell <= 0 {
		dwell = DefaultHighlightDwell
	}
	return &Highlighter{view: view, dwell: dwell}
}

// Select highlights span (UI units) and arms the dwell timer. Any
// pending auto-clear is cancelled first.
func (h *Highlighter) Select(span textspan.Span) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	if h.timer != nil {
		h.timer.Stop()
	}

	h.gen++
	gen := h.gen
	h.active = true
	h.view.ShowHighlight(span)

	h.timer = time.AfterFunc(h.dwell, func() {
		h.expire(gen)
	})
}

// expire clears the mark if no newer selection replaced this one.
func (h *Highlighter) expire(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || gen != h.gen || !h.active {
		return
	}
	h.active = false
	h.view.ClearHighlight()
}

// Active reports whether a highlight is currently showing.
func (h *Highlighter) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Close cancels any pending clear and removes an active mark.
func (h *Highlighter) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	if h.timer != nil {
		h.timer.Stop()
	}
	if h.active {
		h.active = false
		h.view.ClearHighlight()
	}
}
