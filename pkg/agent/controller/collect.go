package controller

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/lendwell/underwriter/pkg/agent"
)

// llmResponse holds the fully-collected response from a streamed LLM call.
type llmResponse struct {
	Text      string
	ToolCalls []agent.ToolCall
	Usage     *agent.TokenUsage
}

// collectStream drains an LLM chunk channel into a complete llmResponse.
// Returns an error if an ErrorChunk is received.
func collectStream(stream <-chan agent.Chunk) (*llmResponse, error) {
	resp := &llmResponse{}
	for chunk := range stream {
		switch c := chunk.(type) {
		case *agent.TextChunk:
			resp.Text += c.Content
		case *agent.ToolCallChunk:
			resp.ToolCalls = append(resp.ToolCalls, agent.ToolCall{
				ID: c.CallID, Name: c.Name, Arguments: c.Arguments,
			})
		case *agent.UsageChunk:
			resp.Usage = &agent.TokenUsage{
				InputTokens:  c.InputTokens,
				OutputTokens: c.OutputTokens,
				TotalTokens:  c.TotalTokens,
			}
		case *agent.ErrorChunk:
			return resp, &llmCallError{chunk: c}
		}
	}
	return resp, nil
}

// llmCallError wraps an ErrorChunk so callers can inspect Retryable without
// string-matching the message.
type llmCallError struct {
	chunk *agent.ErrorChunk
}

func (e *llmCallError) Error() string {
	return fmt.Sprintf("LLM error [%s]: %s", e.chunk.Code, e.chunk.Message)
}

// callLLM performs a single LLM call with context cancellation support and
// returns the fully collected response. Derives a cancellable context so
// the producer goroutine behind Generate is always cleaned up on return.
func callLLM(ctx context.Context, llmClient agent.LLMClient, input *agent.GenerateInput) (*llmResponse, error) {
	llmCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := llmClient.Generate(llmCtx, input)
	if err != nil {
		return nil, fmt.Errorf("LLM Generate failed: %w", err)
	}
	return collectStream(stream)
}

// callLLMWithRetry wraps callLLM with the single-retry budget from
// agent.MaxLLMRetries, honoring the provider's Retryable flag on the
// returned error.
func callLLMWithRetry(ctx context.Context, llmClient agent.LLMClient, input *agent.GenerateInput) (*llmResponse, error) {
	resp, err := callLLM(ctx, llmClient, input)
	if err == nil {
		return resp, nil
	}

	callErr, ok := err.(*llmCallError)
	if !ok || !callErr.chunk.Retryable {
		return resp, err
	}

	for attempt := 0; attempt < agent.MaxLLMRetries; attempt++ {
		if backoffErr := jitteredBackoff(ctx, agent.RetryBackoffMin, agent.RetryBackoffMax); backoffErr != nil {
			return resp, backoffErr
		}
		resp, err = callLLM(ctx, llmClient, input)
		if err == nil {
			return resp, nil
		}
		callErr, ok = err.(*llmCallError)
		if !ok || !callErr.chunk.Retryable {
			return resp, err
		}
	}
	return resp, err
}

// jitteredBackoff sleeps for a random duration in [min, max), honoring
// context cancellation. Mirrors pkg/agent.jitteredBackoff (unexported
// there), duplicated here since the controller package can't reach into
// another package's unexported helpers.
func jitteredBackoff(ctx context.Context, min, max time.Duration) error {
	if max <= min {
		max = min + time.Millisecond
	}
	d := min + time.Duration(rand.Int63n(int64(max-min)))

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
