package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/internal/adapters/driven/insight/openai"
	"github.com/recapd/recapd/internal/core/domain"
)

func TestNew_DefaultsToOllama(t *testing.T) {
	svc, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "llama3.1:8b", svc.ModelName())
}

func TestNew_OpenAI(t *testing.T) {
	svc, err := New(Config{
		Provider: ProviderOpenAI,
		OpenAI:   openai.Config{APIKey: "sk-test", Model: "gpt-4o"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", svc.ModelName())
}

func TestNew_OpenAIRequiresKey(t *testing.T) {
	_, err := New(Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "bard"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}
