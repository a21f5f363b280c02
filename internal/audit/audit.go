package audit

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/inkwell/internal/logging"
)

const (
	// DefaultMirrorCapacity bounds the in-memory mirror of recent events.
	DefaultMirrorCapacity = 500

	auditFile    = "audit.jsonl"
	feedbackFile = "feedback.jsonl"
)

var (
	// ErrInvalidRating is returned for a rating outside good/bad.
	ErrInvalidRating = errors.New("audit: invalid rating")

	// ErrNoResultID is returned when feedback carries no result ID.
	ErrNoResultID = errors.New("audit: feedback requires a result ID")
)

// Rating is a user verdict on a displayed rewrite result.
type Rating string

const (
	RatingGood Rating = "good"
	RatingBad  Rating = "bad"
)

func (r Rating) valid() bool {
	return r == RatingGood || r == RatingBad
}

// FeedbackRecord is one user rating of a rewrite result. Records are
// immutable once written.
type FeedbackRecord struct {
	Rating        Rating
	OriginalText  string
	RewrittenText string
	Mode          string
}

// Entry is one event in the in-memory mirror.
type Entry struct {
	Timestamp time.Time
	Kind      string
	Payload   map[string]any
}

// Logger appends audit events to audit.jsonl and feedback records to
// feedback.jsonl in a single directory. One mutex serializes every
// write, so each record lands atomically. Write failures are reported
// on the developer logger and never propagate to the caller whose
// action produced the record.
type Logger struct {
	dir string
	log *logging.Logger
	now func() time.Time

	mu        sync.Mutex
	mirror    []Entry
	mirrorCap int
	rated     map[string]struct{}
}

// Option configures a Logger.
type Option func(*Logger)

// WithMirrorCapacity overrides the mirror size.
func WithMirrorCapacity(n int) Option {
	return func(l *Logger) {
		if n > 0 {
			l.mirrorCap = n
		}
	}
}

// WithLogger sets the developer-facing logger.
func WithLogger(log *logging.Logger) Option {
	return func(l *Logger) {
		l.log = log.WithComponent("audit")
	}
}

// New creates a Logger writing into dir, creating it if needed.
func New(dir string, opts ...Option) *Logger {
	l := &Logger{
		dir:       dir,
		log:       logging.Discard(),
		now:       time.Now,
		mirrorCap: DefaultMirrorCapacity,
		rated:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.log.Error("create log directory %s: %v", dir, err)
	}
	return l
}

// Event appends one audit record and mirrors it. The payload must be
// flat; values are serialized as-is.
func (l *Logger) Event(kind string, payload map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC()
	line, err := encodeEvent(ts, kind, payload)
	if err != nil {
		l.log.Error("encode %s event: %v", kind, err)
		return
	}

	l.appendLine(auditFile, line)
	l.remember(Entry{Timestamp: ts, Kind: kind, Payload: payload})
}

// Feedback records one rating for the rewrite result identified by
// resultID. The first submission per result wins; repeats report false
// and write nothing. A feedback audit event accompanies each accepted
// record.
func (l *Logger) Feedback(resultID string, rec FeedbackRecord) (bool, error) {
	if resultID == "" {
		return false, ErrNoResultID
	}
	if !rec.Rating.valid() {
		return false, ErrInvalidRating
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.rated[resultID]; dup {
		return false, nil
	}
	l.rated[resultID] = struct{}{}

	ts := l.now().UTC()
	line, err := encodeFeedback(ts, rec)
	if err != nil {
		l.log.Error("encode feedback: %v", err)
		return true, nil
	}
	l.appendLine(feedbackFile, line)

	payload := map[string]any{"rating": string(rec.Rating), "mode": rec.Mode}
	if auditLine, err := encodeEvent(ts, "feedback", payload); err == nil {
		l.appendLine(auditFile, auditLine)
	}
	l.remember(Entry{Timestamp: ts, Kind: "feedback", Payload: payload})

	return true, nil
}

// Recent returns a copy of the mirrored events, oldest first.
func (l *Logger) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.mirror))
	copy(out, l.mirror)
	return out
}

// remember appends to the mirror, evicting the oldest entry when full.
// Caller holds l.mu.
func (l *Logger) remember(e Entry) {
	if len(l.mirror) >= l.mirrorCap {
		copy(l.mirror, l.mirror[1:])
		l.mirror[len(l.mirror)-1] = e
		return
	}
	l.mirror = append(l.mirror, e)
}

// appendLine writes one record to the named log file. Open-append-close
// per record keeps records whole even across process restarts. Caller
// holds l.mu.
func (l *Logger) appendLine(name, line string) {
	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.log.Error("open %s: %v", path, err)
		return
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		l.log.Error("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		l.log.Error("close %s: %v", path, err)
	}
}

// encodeEvent builds an audit record. Payload keys are emitted in
// sorted order so record layout is stable.
func encodeEvent(ts time.Time, kind string, payload map[string]any) (string, error) {
	line, err := sjson.Set("{}", "timestamp", ts.Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	if line, err = sjson.Set(line, "event", kind); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if line, err = sjson.Set(line, "payload."+k, payload[k]); err != nil {
			return "", err
		}
	}
	return line, nil
}

// encodeFeedback builds a feedback record in the persisted shape.
func encodeFeedback(ts time.Time, rec FeedbackRecord) (string, error) {
	line, err := sjson.Set("{}", "timestamp", ts.Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	for _, field := range []struct {
		path string
		val  any
	}{
		{"rating", string(rec.Rating)},
		{"original_text", rec.OriginalText},
		{"rewritten_text", rec.RewrittenText},
		{"mode", rec.Mode},
	} {
		if line, err = sjson.Set(line, field.path, field.val); err != nil {
			return "", err
		}
	}
	return line, nil
}
