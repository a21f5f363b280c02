// Package config loads the assistant configuration from a single TOML
// file, overlaying user values onto built-in defaults. A missing file
// is not an error; a malformed one is.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/inkwell/internal/provider"
	"github.com/dshills/inkwell/internal/rewrite"
	"github.com/dshills/inkwell/internal/scheduler"
)

// DefaultFileName is the config file name inside the config directory.
const DefaultFileName = "config.toml"

// Config is the full assistant configuration.
type Config struct {
	Check     CheckConfig     `toml:"check"`
	Rewrite   RewriteConfig   `toml:"rewrite"`
	Providers ProvidersConfig `toml:"providers"`
	Highlight HighlightConfig `toml:"highlight"`
	Log       LogConfig       `toml:"log"`
}

// CheckConfig tunes the grammar check scheduler.
type CheckConfig struct {
	DebounceMS       int `toml:"debounce_ms"`
	MaxSentenceWords int `toml:"max_sentence_words"`
}

// RewriteConfig tunes the rewrite dispatcher.
type RewriteConfig struct {
	MaxChars int `toml:"max_chars"`
}

// ProvidersConfig holds backend endpoints and detection timing.
type ProvidersConfig struct {
	LMStudioBaseURL  string `toml:"lmstudio_base_url"`
	OllamaHost       string `toml:"ollama_host"`
	OllamaModel      string `toml:"ollama_model"`
	ProbeTimeoutMS   int    `toml:"probe_timeout_ms"`
	DetectIntervalMS int    `toml:"detect_interval_ms"`
	GenerateTimeoutS int    `toml:"generate_timeout_s"`
	LaunchPollMS     int    `toml:"launch_poll_ms"`
	LaunchAttempts   int    `toml:"launch_attempts"`
}

// HighlightConfig tunes issue highlighting.
type HighlightConfig struct {
	DwellMS int `toml:"dwell_ms"`
}

// LogConfig controls audit output and the developer log.
type LogConfig struct {
	Dir            string `toml:"dir"`
	Level          string `toml:"level"`
	MirrorCapacity int    `toml:"mirror_capacity"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Check: CheckConfig{
			DebounceMS:       int(scheduler.DefaultDebounce / time.Millisecond),
			MaxSentenceWords: 30,
		},
		Rewrite: RewriteConfig{
			MaxChars: rewrite.MaxTargetChars,
		},
		Providers: ProvidersConfig{
			LMStudioBaseURL:  provider.DefaultLMStudioBaseURL,
			OllamaHost:       provider.DefaultOllamaHost,
			OllamaModel:      provider.DefaultOllamaModel,
			ProbeTimeoutMS:   int(provider.DefaultProbeTimeout / time.Millisecond),
			DetectIntervalMS: int(provider.DefaultDetectInterval / time.Millisecond),
			GenerateTimeoutS: int(provider.DefaultGenerateTimeout / time.Second),
			LaunchPollMS:     int(provider.DefaultLaunchPoll / time.Millisecond),
			LaunchAttempts:   provider.DefaultLaunchAttempts,
		},
		Highlight: HighlightConfig{
			DwellMS: 1500,
		},
		Log: LogConfig{
			Dir:            DefaultDir(),
			Level:          "info",
			MirrorCapacity: 500,
		},
	}
}

// DefaultDir returns the per-user configuration and log directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inkwell"
	}
	return filepath.Join(home, ".inkwell")
}

// Load reads path over the defaults. A nonexistent file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads from the standard location.
func LoadDefault() (Config, error) {
	return Load(filepath.Join(DefaultDir(), DefaultFileName))
}

// Durations converted from their TOML integer fields.

func (c CheckConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func (c ProvidersConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

func (c ProvidersConfig) DetectInterval() time.Duration {
	return time.Duration(c.DetectIntervalMS) * time.Millisecond
}

func (c ProvidersConfig) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutS) * time.Second
}

func (c ProvidersConfig) LaunchPoll() time.Duration {
	return time.Duration(c.LaunchPollMS) * time.Millisecond
}

func (c HighlightConfig) Dwell() time.Duration {
	return time.Duration(c.DwellMS) * time.Millisecond
}
