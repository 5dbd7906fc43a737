package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/config"
)

// Registry dispatches each Generate call to the concrete adapter for its
// GenerateInput.Config, lazily constructing and caching one adapter per
// distinct provider config — agents resolve their LLM provider per step
// (spec.md §4.2 layered resolution), so a run can call more than one
// provider even though each adapter only covers one wire protocol.
type Registry struct {
	mu      sync.Mutex
	clients map[string]agent.LLMClient
}

var _ agent.LLMClient = (*Registry)(nil)

// NewRegistry returns an empty, ready-to-use multi-provider client.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]agent.LLMClient)}
}

// Generate resolves the adapter for input.Config, constructing it on first
// use, and delegates the call.
func (r *Registry) Generate(ctx context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	if input.Config == nil {
		return nil, fmt.Errorf("generate input has no LLM provider config")
	}

	client, err := r.clientFor(input.Config)
	if err != nil {
		return nil, err
	}
	return client.Generate(ctx, input)
}

// Close closes every adapter constructed so far.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, c := range r.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Registry) clientFor(cfg *config.LLMProviderConfig) (agent.LLMClient, error) {
	key := providerKey(cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[key]; ok {
		return client, nil
	}

	client, err := newAdapter(cfg)
	if err != nil {
		return nil, err
	}
	r.clients[key] = client
	return client, nil
}

// providerKey identifies the underlying connection an adapter would open —
// distinct API keys or base URLs need distinct adapter instances even for
// the same provider type.
func providerKey(cfg *config.LLMProviderConfig) string {
	return fmt.Sprintf("%s|%s|%s", cfg.Type, cfg.APIKeyEnv, cfg.BaseURL)
}

// newAdapter constructs the concrete agent.LLMClient for a provider type.
// Only LLMProviderTypeOpenAI has a concrete adapter in this runtime; the
// other enum members (google, anthropic, xai, vertexai) are declared in
// config.LLMProviderType for operators to select in underwriter.yaml, but
// constructing a client for them fails clearly rather than silently falling
// back to OpenAI.
func newAdapter(cfg *config.LLMProviderConfig) (agent.LLMClient, error) {
	switch cfg.Type {
	case config.LLMProviderTypeOpenAI:
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("no LLM adapter registered for provider type %q", cfg.Type)
	}
}
