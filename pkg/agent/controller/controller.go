// Package controller implements the bounded tool-call loop that drives a
// single agent invocation, grounded on the teacher's pkg/agent/controller
// package but stripped of its WebSocket/TimelineEvent streaming machinery
// (this runtime has no live dashboard to push partial output to).
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/schema"
)

// maxSchemaRetries bounds how many times a schema.ValidationError is fed
// back to the LLM as a diagnostic before the invocation fails outright
// (spec §7: "retried with the diagnostic fed back into the prompt; final
// occurrence yields status=failed").
const maxSchemaRetries = 2

// Controller runs the bounded LLM/tool-call loop for one agent execution.
// Implements agent.Controller.
type Controller struct{}

// New creates a tool-call loop controller.
func New() *Controller {
	return &Controller{}
}

var _ agent.Controller = (*Controller)(nil)

// Run drives the conversation until the agent produces output that
// validates against its configured schema, or a terminal failure occurs.
func (c *Controller) Run(ctx context.Context, execCtx *agent.ExecutionContext, ledgerContext string) (*agent.ExecutionResult, error) {
	cfg := execCtx.Config
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = agent.DefaultMaxIterations
	}

	tools, err := execCtx.ToolExecutor.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	messages := []agent.ConversationMessage{
		{Role: agent.RoleSystem, Content: execCtx.PromptBuilder.BuildSystemPrompt(execCtx)},
		{Role: agent.RoleUser, Content: execCtx.PromptBuilder.BuildUserPrompt(execCtx, ledgerContext)},
	}

	var total agent.TokenUsage
	schemaRetries := 0

	for iteration := 1; iteration <= maxIter; iteration++ {
		iterCtx, cancel := context.WithTimeout(ctx, cfg.IterationTimeout)

		// Force a final, tool-free answer on the last allowed iteration so
		// the agent doesn't simply run out of rounds mid tool-call.
		forcedConclusion := iteration == maxIter
		reqTools := tools
		if forcedConclusion {
			messages = append(messages, agent.ConversationMessage{
				Role:    agent.RoleUser,
				Content: execCtx.PromptBuilder.BuildForcedConclusionPrompt(iteration, maxIter),
			})
			reqTools = nil
		}

		resp, err := callLLMWithRetry(iterCtx, execCtx.LLMClient, &agent.GenerateInput{
			RunID:       execCtx.RunID,
			ExecutionID: execCtx.ExecutionID,
			Messages:    messages,
			Config:      cfg.LLMProvider,
			Tools:       reqTools,
		})

		if resp != nil && resp.Usage != nil {
			total.InputTokens += resp.Usage.InputTokens
			total.OutputTokens += resp.Usage.OutputTokens
			total.TotalTokens += resp.Usage.TotalTokens
		}
		if err != nil {
			cancel()
			if errors.Is(err, context.Canceled) {
				return &agent.ExecutionResult{Status: agent.ExecutionStatusCancelled, Error: err, TokensUsed: total}, nil
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return &agent.ExecutionResult{Status: agent.ExecutionStatusTimedOut, Error: err, TokensUsed: total}, nil
			}
			return &agent.ExecutionResult{Status: agent.ExecutionStatusFailed, Error: err, TokensUsed: total}, nil
		}

		messages = append(messages, agent.ConversationMessage{
			Role:      agent.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		if len(resp.ToolCalls) == 0 {
			cancel()
			// No tool calls: this is the agent's candidate final answer.
			result, validated := c.validateOutput(cfg.OutputSchema, resp.Text)
			if validated {
				return &agent.ExecutionResult{
					Status:           agent.ExecutionStatusCompleted,
					StructuredOutput: result,
					TokensUsed:       total,
				}, nil
			}

			schemaRetries++
			if schemaRetries > maxSchemaRetries || forcedConclusion {
				return &agent.ExecutionResult{
					Status:     agent.ExecutionStatusFailed,
					Error:      fmt.Errorf("output did not validate against schema %q after %d attempts", cfg.OutputSchema, schemaRetries),
					TokensUsed: total,
				}, nil
			}

			messages = append(messages, agent.ConversationMessage{
				Role:    agent.RoleUser,
				Content: c.schemaDiagnostic(cfg.OutputSchema, resp.Text),
			})
			continue
		}

		// Dispatch each requested tool call and fold the result back in as
		// a tool message. A scrub rejection is not an ordinary tool error:
		// spec §7 requires it bubble up as a schema violation for the
		// enclosing agent, so it fails the invocation immediately rather
		// than being fed back to the LLM for another attempt.
		for _, call := range resp.ToolCalls {
			toolResult, execErr := execCtx.ToolExecutor.Execute(iterCtx, call)
			if execErr != nil {
				cancel()
				return &agent.ExecutionResult{
					Status:     agent.ExecutionStatusFailed,
					Error:      fmt.Errorf("tool execution failed: %w", execErr),
					TokensUsed: total,
				}, nil
			}

			if toolResult.IsError && isScrubRejection(toolResult.Content) {
				cancel()
				return &agent.ExecutionResult{
					Status:     agent.ExecutionStatusFailed,
					Error:      fmt.Errorf("tool call rejected by parameter scrubbing: %s", toolResult.Content),
					TokensUsed: total,
				}, nil
			}

			messages = append(messages, agent.ConversationMessage{
				Role:       agent.RoleTool,
				Content:    toolResult.Content,
				ToolCallID: toolResult.CallID,
				ToolName:   toolResult.Name,
			})
		}
		cancel()
	}

	return &agent.ExecutionResult{
		Status:     agent.ExecutionStatusFailed,
		Error:      fmt.Errorf("exceeded maximum iterations (%d) without a validated result", maxIter),
		TokensUsed: total,
	}, nil
}

// isScrubRejection reports whether a tool error's content is a rejection
// produced by mcp.ScrubParams, rather than an ordinary tool-server error.
// ToolResult carries no structured error-type field, so this inspects the
// message mcp.ScrubbedParamError.Error() produces.
func isScrubRejection(content string) bool {
	return strings.Contains(content, "matches a government-identifier shape")
}

// validateOutput checks text against the agent's configured output schema.
// Returns (text, true) on success; (_, false) if validation failed.
func (c *Controller) validateOutput(schemaName string, text string) (string, bool) {
	if _, err := schema.Validate(schema.Name(schemaName), []byte(text)); err != nil {
		return "", false
	}
	return text, true
}

// schemaDiagnostic formats a validation failure as feedback for the next
// LLM turn.
func (c *Controller) schemaDiagnostic(schemaName string, text string) string {
	_, err := schema.Validate(schema.Name(schemaName), []byte(text))
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf(
			"Your previous response did not match the required output schema %q:\n%s\n\nRespond again with corrected JSON only.",
			schemaName, strings.Join(verr.Issues, "; "))
	}
	return fmt.Sprintf("Your previous response was not valid JSON for schema %q. Respond again with corrected JSON only.", schemaName)
}
