package prompt

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lendwell/underwriter/pkg/agent"
)

// generalInstructions is Tier 1, shared by every agent in the runtime.
const generalInstructions = `## General Underwriting Agent Instructions

You are an expert loan underwriting specialist with deep knowledge of:
- Consumer credit evaluation and risk assessment
- Regulatory requirements for loan origination
- Fraud and identity-verification signals
- Income and employment verification

Assess the application thoroughly and provide actionable findings based on:
1. The submitted application data
2. Results from prior steps in this application's processing
3. Real-time data from available tools

Always be specific, reference actual data, and state your findings precisely.

## Evidence Transparency

Your conclusions MUST be grounded in evidence you actually gathered, not assumptions:

- **Distinguish data sources**: clearly separate what you learned from tool results
  vs. what was already in the submitted application. Never present applicant-
  supplied data as if it were independently verified.
- **Report tool failures honestly**: if a tool call fails or returns an error,
  say so explicitly. Do not silently proceed as if you have the data.
- **Never fabricate evidence**: do not invent figures, scores, or observations
  that did not appear in tool results or the application data.
- **Never request or restate a raw government identifier**: applicant identity
  is addressed by opaque applicant ID only (see below); do not ask a tool for,
  or include in your output, a raw Social Security Number or equivalent.`

// ComposeInstructions builds the instruction set for an agent's system
// prompt: general instructions (Tier 1), per-tool-server instructions
// (Tier 2), unavailable-server warnings, then the agent's own persona and
// custom instructions (Tier 3).
func (b *Builder) ComposeInstructions(execCtx *agent.ExecutionContext) string {
	sections := []string{generalInstructions}

	sections = b.appendToolServerInstructions(sections, execCtx)
	sections = appendUnavailableServerWarnings(sections, execCtx.FailedServers)

	if execCtx.Config.PersonaText != "" {
		sections = append(sections, "## Persona\n\n"+execCtx.Config.PersonaText)
	}
	if execCtx.Config.CustomInstructions != "" {
		sections = append(sections, "## Agent-Specific Instructions\n\n"+execCtx.Config.CustomInstructions)
	}

	return strings.Join(sections, "\n\n")
}

// appendUnavailableServerWarnings adds a warning section when tool servers
// failed to initialize for this run.
func appendUnavailableServerWarnings(sections []string, failedServers map[string]string) []string {
	if len(failedServers) == 0 {
		return sections
	}
	var sb strings.Builder
	sb.WriteString("## Unavailable Tool Servers\n\n")
	sb.WriteString("The following servers failed to initialize and their tools are NOT available:\n")
	keys := make([]string, 0, len(failedServers))
	for k := range failedServers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, serverID := range keys {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", serverID, failedServers[serverID]))
	}
	sb.WriteString("\nDo not attempt to use tools from these servers.")
	return append(sections, sb.String())
}

// appendToolServerInstructions adds Tier 2 per-tool-server instructions for
// every server configured for this agent.
func (b *Builder) appendToolServerInstructions(sections []string, execCtx *agent.ExecutionContext) []string {
	for _, serverID := range execCtx.Config.ToolServers {
		serverCfg, err := b.toolRegistry.Get(serverID)
		if err != nil {
			slog.Debug("tool server not found in registry, skipping instructions",
				"serverID", serverID, "error", err)
			continue
		}
		if serverCfg.Instructions != "" {
			sections = append(sections, "## "+serverID+" Instructions\n\n"+serverCfg.Instructions)
		}
	}
	return sections
}
