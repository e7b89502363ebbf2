// Package ollama provides an insight extraction adapter using the
// Ollama generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/recapd/recapd/internal/adapters/driven/insight/prompt"
	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.InsightService = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1:8b"
	DefaultTimeout = 120 * time.Second
)

// temperature favours deterministic, well-formed JSON output.
const temperature = 0.2

// Config holds configuration for the Ollama insight extractor.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the generative model to use (default: llama3.1:8b).
	Model string

	// Timeout is the request timeout (default: 120s). Generation over
	// a long transcript takes minutes, not seconds.
	Timeout time.Duration
}

// Extractor produces meeting insights using Ollama.
type Extractor struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New creates an Ollama insight extractor.
func New(cfg Config) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Extract sends the transcript to the model and normalises its reply.
// Transport failures return domain.ErrInsightService; a reply that is
// not valid JSON degrades to domain.DefaultInsights with no error.
func (e *Extractor) Extract(ctx context.Context, transcript string) (domain.Insights, error) {
	reqBody := generateRequest{
		Model:   e.model,
		Prompt:  prompt.Build(transcript),
		Stream:  false,
		Options: options{Temperature: temperature},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Insights{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return domain.Insights{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.Insights{}, fmt.Errorf("%w: %v", domain.ErrInsightService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return domain.Insights{}, fmt.Errorf("%w: status %d", domain.ErrInsightService, resp.StatusCode)
		}
		return domain.Insights{}, fmt.Errorf("%w: status %d: %s", domain.ErrInsightService, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return domain.Insights{}, fmt.Errorf("%w: decode response: %v", domain.ErrInsightService, err)
	}

	// The envelope arrived; whatever the model put inside it is content,
	// and malformed content degrades instead of failing the job.
	insights, _ := domain.ParseInsightPayload(genResp.Response)
	return insights, nil
}

// ModelName returns the generative model in use.
func (e *Extractor) ModelName() string {
	return e.model
}

// Ping validates the service is reachable via the /api/tags endpoint
// without running inference.
func (e *Extractor) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInsightService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrInsightService, resp.StatusCode)
	}
	return nil
}
