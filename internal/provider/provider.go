package provider

import (
	"context"
	"errors"
	"time"
)

// Backend addresses. 127.0.0.1 is deliberate: on some systems
// localhost resolves to ::1 while the servers bind only to IPv4.
const (
	DefaultLMStudioBaseURL = "http://127.0.0.1:1234/v1"
	DefaultOllamaHost      = "http://127.0.0.1:11434"
	DefaultOllamaModel     = "qwen2.5:3b"
)

// Timing defaults.
const (
	DefaultProbeTimeout    = 2 * time.Second
	DefaultDetectInterval  = 30 * time.Second
	DefaultGenerateTimeout = 180 * time.Second
	DefaultLaunchPoll      = 2 * time.Second
	DefaultLaunchAttempts  = 15
)

// Errors reported by detection and launch.
var (
	// ErrNoProvider indicates no configured backend answered a probe.
	ErrNoProvider = errors.New("no language model server reachable")

	// ErrNoModel indicates a backend is up but has no model to serve.
	ErrNoModel = errors.New("backend has no model loaded")

	// ErrLaunchFailed indicates the preferred backend could not be started.
	ErrLaunchFailed = errors.New("could not start language model server")

	// ErrLaunchTimeout indicates the backend did not come up within the
	// bounded polling window after a launch.
	ErrLaunchTimeout = errors.New("language model server did not come up in time")
)

// Backend is one locally running language model server.
type Backend interface {
	// ID is a stable machine identifier ("lmstudio", "ollama").
	ID() string

	// Name is the human-readable provider name.
	Name() string

	// Probe checks reachability and returns the model the backend
	// would serve. A refused connection or timeout is an error.
	Probe(ctx context.Context) (string, error)

	// Generate performs one blocking completion round trip.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Status is the outcome of a detection cycle. At most one backend is
// active per cycle: the first reachable one in priority order.
type Status struct {
	Available bool
	Provider  string // backend ID, "none" when unavailable
	Name      string
	Model     string
}
