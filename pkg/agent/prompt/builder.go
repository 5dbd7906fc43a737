// Package prompt builds all prompt text for agent controllers: system
// messages, user messages, and forced-conclusion prompts. Stateless aside
// from its tool-server registry reference — all other state comes from
// the ExecutionContext passed to each call. Grounded on the teacher's
// pkg/agent/prompt package, trimmed to this domain's single iteration
// strategy (no ReAct/native-thinking/chat/synthesis variants — every
// agent here calls tools through the provider's native tool-calling
// contract and produces one structured JSON answer).
package prompt

import (
	"strings"

	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/config"
)

// Builder composes prompt text. Implements agent.PromptBuilder.
type Builder struct {
	toolRegistry *config.ToolServerRegistry
}

var _ agent.PromptBuilder = (*Builder)(nil)

// NewBuilder creates a Builder with access to tool-server configs (for
// per-server instruction text). Panics if toolRegistry is nil — callers
// must provide a valid registry.
func NewBuilder(toolRegistry *config.ToolServerRegistry) *Builder {
	if toolRegistry == nil {
		panic("prompt.NewBuilder: toolRegistry must not be nil")
	}
	return &Builder{toolRegistry: toolRegistry}
}

// ToolServerRegistry returns the tool-server registry for per-server
// config lookup elsewhere (e.g. scrubbing configuration at the executor).
func (b *Builder) ToolServerRegistry() *config.ToolServerRegistry {
	return b.toolRegistry
}

// BuildSystemPrompt builds the system message: general instructions, any
// per-tool-server instructions, unavailable-server warnings, and the
// agent's persona/custom instructions.
func (b *Builder) BuildSystemPrompt(execCtx *agent.ExecutionContext) string {
	return b.ComposeInstructions(execCtx)
}

// BuildUserPrompt builds the user message: the submitted application, the
// accumulated ledger context from prior steps, and the analysis task.
func (b *Builder) BuildUserPrompt(execCtx *agent.ExecutionContext, ledgerContext string) string {
	var sb strings.Builder

	sb.WriteString(FormatApplicationSection(execCtx.ApplicationType, execCtx.ApplicationData))
	sb.WriteString("\n")

	sb.WriteString(FormatLedgerContext(ledgerContext))
	sb.WriteString("\n")

	sb.WriteString(analysisTask)

	return sb.String()
}
