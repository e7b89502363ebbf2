// Package insight provides factory functions for creating insight
// extraction providers.
package insight

import (
	"fmt"

	"github.com/recapd/recapd/internal/adapters/driven/insight/ollama"
	"github.com/recapd/recapd/internal/adapters/driven/insight/openai"
	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

// Provider names accepted by New.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config selects and configures an insight provider.
type Config struct {
	// Provider is "ollama" (default) or "openai".
	Provider string

	Ollama ollama.Config
	OpenAI openai.Config
}

// New creates the configured insight provider.
func New(cfg Config) (driven.InsightService, error) {
	switch cfg.Provider {
	case "", ProviderOllama:
		return ollama.New(cfg.Ollama), nil
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: openai requires an API key", domain.ErrUnsupportedProvider)
		}
		return openai.New(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: ollama, openai)", domain.ErrUnsupportedProvider, cfg.Provider)
	}
}
