package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// Ollama talks to a local Ollama server through its native API.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates a backend for the given host URL. The model is
// used for completions when installed; otherwise the probe falls back
// to the first installed model.
func NewOllama(host, model string) (*Ollama, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	httpClient := &http.Client{Timeout: DefaultGenerateTimeout}
	return &Ollama{
		client: ollama.NewClient(u, httpClient),
		model:  model,
	}, nil
}

// ID implements Backend.
func (o *Ollama) ID() string { return "ollama" }

// Name implements Backend.
func (o *Ollama) Name() string { return "Ollama" }

// Probe implements Backend by listing installed models. The configured
// model is preferred when present (tags may differ, so the match is by
// name prefix).
func (o *Ollama) Probe(ctx context.Context) (string, error) {
	list, err := o.client.List(ctx)
	if err != nil {
		return "", fmt.Errorf("ollama probe: %w", err)
	}
	if len(list.Models) == 0 {
		return "", ErrNoModel
	}
	for _, m := range list.Models {
		if m.Name == o.model || strings.HasPrefix(m.Name, o.model+":") {
			return m.Name, nil
		}
	}
	return list.Models[0].Name, nil
}

// Generate implements Backend with a single non-streaming chat call.
func (o *Ollama) Generate(ctx context.Context, system, prompt string) (string, error) {
	stream := false
	req := &ollama.ChatRequest{
		Model:  o.model,
		Stream: &stream,
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Options: map[string]any{"temperature": 0.3},
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama completion: %w", err)
	}
	return sb.String(), nil
}
