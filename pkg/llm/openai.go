// Package llm provides agent.LLMClient adapters for concrete LLM providers.
// Grounded on the example pack's go-openai usage (haasonsaas-nexus's
// internal/agent/providers/openai.go), adapted from that package's
// provider-interface shape to this runtime's streaming-chunk contract.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/config"
)

// OpenAIClient implements agent.LLMClient against OpenAI's chat completion
// API. One client is constructed per provider config (API key + base URL),
// not per call — the underlying openai.Client is safe for concurrent use.
type OpenAIClient struct {
	client *openai.Client
}

var _ agent.LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client for the given provider configuration.
// The API key is read from the environment variable named by
// providerCfg.APIKeyEnv; NewOpenAIClient returns an error if it is unset,
// since a client with no key can never complete a call (ConfigError,
// spec.md §7 — fails fast at construction, not mid-run).
func NewOpenAIClient(providerCfg *config.LLMProviderConfig) (*OpenAIClient, error) {
	apiKey := os.Getenv(providerCfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %q is not set for LLM provider", providerCfg.APIKeyEnv)
	}

	cfg := openai.DefaultConfig(apiKey)
	if providerCfg.BaseURL != "" {
		cfg.BaseURL = providerCfg.BaseURL
	}

	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}, nil
}

// Generate sends the conversation to OpenAI and streams the response back
// as a channel of chunks. A failure to open the stream is returned as a Go
// error and no channel is produced. Once streaming has started, a stream
// error or context cancellation arrives as one final ErrorChunk; the
// channel is closed when the stream ends.
func (c *OpenAIClient) Generate(ctx context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	req := openai.ChatCompletionRequest{
		Model:         input.Config.Model,
		Messages:      convertMessages(input.Messages),
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	}
	if len(input.Tools) > 0 {
		req.Tools = convertTools(input.Tools)
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI CreateChatCompletionStream: %w", err)
	}

	chunks := make(chan agent.Chunk)
	go streamChunks(ctx, stream, chunks)
	return chunks, nil
}

// Close releases the provider connection. go-openai's client holds no
// persistent connection to close (it uses net/http's pooled transport),
// so this is a no-op kept to satisfy agent.LLMClient.
func (c *OpenAIClient) Close() error { return nil }

// streamChunks drains an OpenAI stream and converts each event into this
// runtime's Chunk types, accumulating partial tool-call arguments across
// the delta events OpenAI splits them into.
func streamChunks(ctx context.Context, stream *openai.ChatCompletionStream, out chan<- agent.Chunk) {
	defer close(out)
	defer stream.Close()

	type building struct{ id, name, args string }
	calls := make(map[int]*building)
	orderedIndexes := make([]int, 0, 4)

	flush := func() {
		for _, idx := range orderedIndexes {
			b := calls[idx]
			if b == nil || b.id == "" || b.name == "" {
				continue
			}
			out <- &agent.ToolCallChunk{CallID: b.id, Name: b.name, Arguments: b.args}
		}
		calls = make(map[int]*building)
		orderedIndexes = orderedIndexes[:0]
	}

	for {
		select {
		case <-ctx.Done():
			out <- &agent.ErrorChunk{Message: ctx.Err().Error(), Code: "context", Retryable: false}
			return
		default:
		}

		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				flush()
				return
			}
			out <- &agent.ErrorChunk{Message: err.Error(), Code: "stream", Retryable: isRetryableError(err)}
			return
		}

		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]
		delta := choice.Delta

		if delta.Content != "" {
			out <- &agent.TextChunk{Content: delta.Content}
		}

		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			b, ok := calls[idx]
			if !ok {
				b = &building{}
				calls[idx] = b
				orderedIndexes = append(orderedIndexes, idx)
			}
			if tc.ID != "" {
				b.id = tc.ID
			}
			if tc.Function.Name != "" {
				b.name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				b.args += tc.Function.Arguments
			}
		}

		if choice.FinishReason == openai.FinishReasonToolCalls {
			flush()
		}

		if resp.Usage != nil {
			out <- &agent.UsageChunk{
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
				TotalTokens:  resp.Usage.TotalTokens,
			}
		}
	}
}

// convertMessages maps this runtime's ConversationMessage to OpenAI's
// chat-completion message shape, including the tool-call/tool-result
// round trip a native function-calling conversation requires.
func convertMessages(messages []agent.ConversationMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}

		switch m.Role {
		case agent.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				msg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
				for i, tc := range m.ToolCalls {
					msg.ToolCalls[i] = openai.ToolCall{
						ID:   tc.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					}
				}
			}
		case agent.RoleTool:
			msg.ToolCallID = m.ToolCallID
		}

		result = append(result, msg)
	}
	return result
}

// convertTools maps this runtime's ToolDefinition (JSON Schema as a raw
// string) to OpenAI's function-tool declaration.
func convertTools(tools []agent.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		var params map[string]any
		if t.ParametersSchema != "" {
			if err := json.Unmarshal([]byte(t.ParametersSchema), &params); err != nil {
				params = map[string]any{"type": "object", "properties": map[string]any{}}
			}
		}
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		}
	}
	return result
}

// isRetryableError reports whether a stream error is worth the controller's
// single LLM-call retry: rate limiting, 5xx responses, and timeouts.
func isRetryableError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "429", "500", "502", "503", "504", "timeout", "deadline exceeded"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
