package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/config"
)

func TestRegistry_Generate_UnknownProviderType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Generate(context.Background(), &agent.GenerateInput{
		Config: &config.LLMProviderConfig{Type: config.LLMProviderTypeAnthropic, Model: "claude"},
	})
	assert.Error(t, err)
}

func TestRegistry_Generate_CachesAdapterPerProviderKey(t *testing.T) {
	t.Setenv("UNDERWRITER_TEST_REGISTRY_KEY", "test-key")
	r := NewRegistry()
	cfg := &config.LLMProviderConfig{
		Type: config.LLMProviderTypeOpenAI, Model: "gpt-4o", APIKeyEnv: "UNDERWRITER_TEST_REGISTRY_KEY",
	}

	c1, err := r.clientFor(cfg)
	require.NoError(t, err)
	c2, err := r.clientFor(cfg)
	require.NoError(t, err)

	assert.Same(t, c1, c2)
}

func TestRegistry_Generate_MissingConfig(t *testing.T) {
	r := NewRegistry()
	_, err := r.Generate(context.Background(), &agent.GenerateInput{})
	assert.Error(t, err)
}
