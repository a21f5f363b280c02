package provider

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dshills/inkwell/internal/logging"
)

// StartFunc starts the preferred backend process and returns a short
// description of what was launched.
type StartFunc func(ctx context.Context) (string, error)

// Launcher starts the preferred backend and waits, with bounded
// polling, for a detection cycle to see it.
type Launcher struct {
	detector *Detector
	start    StartFunc
	poll     time.Duration
	attempts int
	log      *logging.Logger
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithStartFunc replaces the process start action.
func WithStartFunc(fn StartFunc) LauncherOption {
	return func(l *Launcher) {
		l.start = fn
	}
}

// WithLaunchPoll overrides the polling interval and attempt bound.
func WithLaunchPoll(interval time.Duration, attempts int) LauncherOption {
	return func(l *Launcher) {
		if interval > 0 {
			l.poll = interval
		}
		if attempts > 0 {
			l.attempts = attempts
		}
	}
}

// WithLauncherLogger sets the developer-facing logger.
func WithLauncherLogger(log *logging.Logger) LauncherOption {
	return func(l *Launcher) {
		l.log = log.WithComponent("launcher")
	}
}

// NewLauncher creates a launcher bound to a detector.
func NewLauncher(detector *Detector, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		detector: detector,
		start:    StartLMStudio,
		poll:     DefaultLaunchPoll,
		attempts: DefaultLaunchAttempts,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch starts the preferred backend and polls until a detection
// cycle reports it available or the attempt bound is reached. No
// backoff: the window is short and bounded.
func (l *Launcher) Launch(ctx context.Context) (string, error) {
	desc, err := l.start(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	l.log.Info("launched: %s", desc)

	for attempt := 1; attempt <= l.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return desc, ctx.Err()
		case <-time.After(l.poll):
		}

		if status := l.detector.Detect(ctx); status.Available {
			l.log.Info("provider %s up after %d polls", status.Provider, attempt)
			return desc, nil
		}
	}

	return desc, ErrLaunchTimeout
}

// StartLMStudio starts the LM Studio server headlessly via the lms CLI,
// falling back to the GUI application. It returns the path used.
func StartLMStudio(ctx context.Context) (string, error) {
	for _, candidate := range lmsCandidates() {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		cmd := exec.Command(candidate, "server", "start")
		if err := cmd.Start(); err != nil {
			return "", fmt.Errorf("start %s: %w", candidate, err)
		}
		// Detach: the server outlives us; polling decides success.
		go func() { _ = cmd.Wait() }()
		return fmt.Sprintf("lms server start via %s", candidate), nil
	}

	if path, err := exec.LookPath("lms"); err == nil {
		cmd := exec.Command(path, "server", "start")
		if err := cmd.Start(); err != nil {
			return "", fmt.Errorf("start %s: %w", path, err)
		}
		go func() { _ = cmd.Wait() }()
		return fmt.Sprintf("lms server start via %s", path), nil
	}

	return "", fmt.Errorf("LM Studio not found; install from https://lmstudio.ai")
}

// lmsCandidates lists the well-known lms CLI install locations.
func lmsCandidates() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	bin := filepath.Join(home, ".lmstudio", "bin", "lms")
	if runtime.GOOS == "windows" {
		return []string{bin + ".exe"}
	}
	return []string{bin}
}
