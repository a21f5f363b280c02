package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LMStudio talks to an LM Studio server through its OpenAI-compatible
// API. LM Studio serves whichever model the user has loaded, so the
// probe reports the first entry of the model list.
type LMStudio struct {
	client openai.Client
	model  string
}

// LMStudioOption configures an LMStudio backend.
type LMStudioOption func(*LMStudio)

// WithLMStudioModel pins a model instead of using whatever is loaded.
func WithLMStudioModel(model string) LMStudioOption {
	return func(b *LMStudio) {
		b.model = model
	}
}

// NewLMStudio creates a backend for the given base URL (including the
// /v1 path). LM Studio ignores the API key but the client requires one.
func NewLMStudio(baseURL string, opts ...LMStudioOption) *LMStudio {
	if baseURL == "" {
		baseURL = DefaultLMStudioBaseURL
	}
	b := &LMStudio{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey("lm-studio"),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(DefaultGenerateTimeout),
		),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID implements Backend.
func (b *LMStudio) ID() string { return "lmstudio" }

// Name implements Backend.
func (b *LMStudio) Name() string { return "LM Studio" }

// Probe implements Backend by listing the served models.
func (b *LMStudio) Probe(ctx context.Context) (string, error) {
	page, err := b.client.Models.List(ctx)
	if err != nil {
		return "", fmt.Errorf("lmstudio probe: %w", err)
	}
	if b.model != "" {
		return b.model, nil
	}
	if len(page.Data) == 0 {
		return "", ErrNoModel
	}
	return page.Data[0].ID, nil
}

// Generate implements Backend with a single non-streaming chat
// completion.
func (b *LMStudio) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := b.model
	if model == "" {
		// LM Studio routes any model name to the loaded model.
		model = "default"
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("lmstudio completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("lmstudio completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
