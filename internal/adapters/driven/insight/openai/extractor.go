// Package openai provides an insight extraction adapter using the
// OpenAI chat completions API. It is an alternative to the default
// Ollama provider for deployments without local inference.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	api "github.com/sashabaranov/go-openai"

	"github.com/recapd/recapd/internal/adapters/driven/insight/prompt"
	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.InsightService = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultModel   = api.GPT4oMini
	DefaultTimeout = 120 * time.Second
)

// temperature matches the Ollama provider's deterministic-leaning
// setting.
const temperature = 0.2

// Config holds configuration for the OpenAI insight extractor.
type Config struct {
	// APIKey authenticates against the OpenAI API. Required.
	APIKey string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Extractor produces meeting insights using OpenAI chat completions.
type Extractor struct {
	client *api.Client
	model  string
}

// New creates an OpenAI insight extractor.
func New(cfg Config) *Extractor {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := api.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Extractor{
		client: api.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Extract sends the transcript to the model and normalises its reply.
// The JSON-object response format nudges the model toward the
// contract, but the reply content is still never trusted: malformed
// content degrades to defaults instead of failing.
func (e *Extractor) Extract(ctx context.Context, transcript string) (domain.Insights, error) {
	resp, err := e.client.CreateChatCompletion(ctx, api.ChatCompletionRequest{
		Model: e.model,
		Messages: []api.ChatCompletionMessage{
			{
				Role:    api.ChatMessageRoleUser,
				Content: prompt.Build(transcript),
			},
		},
		Temperature: temperature,
		ResponseFormat: &api.ChatCompletionResponseFormat{
			Type: api.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return domain.Insights{}, fmt.Errorf("%w: %v", domain.ErrInsightService, err)
	}

	if len(resp.Choices) == 0 {
		return domain.Insights{}, fmt.Errorf("%w: empty completion", domain.ErrInsightService)
	}

	insights, _ := domain.ParseInsightPayload(resp.Choices[0].Message.Content)
	return insights, nil
}

// ModelName returns the generative model in use.
func (e *Extractor) ModelName() string {
	return e.model
}
