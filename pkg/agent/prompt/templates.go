package prompt

import "fmt"

// analysisTask is appended after the application/ledger sections of the
// user prompt, instructing the agent to produce its final structured
// answer once it has gathered what it needs.
const analysisTask = `## Your Task

Gather whatever information you need using the available tools, then provide
your final answer as a single JSON object matching your configured output
schema — no prose before or after it, and no markdown code fences.`

// forcedConclusionTemplate is the prompt injected on the final allowed
// iteration, forcing the agent to answer immediately instead of
// requesting another tool call.
const forcedConclusionTemplate = `You have reached the processing iteration limit (%d of %d iterations).

You must provide your final answer now, without calling any more tools.
Base your answer on the information you have already gathered, and note
any findings you were unable to verify.

Respond with a single JSON object matching your configured output schema —
no prose before or after it, and no markdown code fences.`

// BuildForcedConclusionPrompt returns the prompt forcing an agent to
// conclude at the iteration limit.
func (b *Builder) BuildForcedConclusionPrompt(iteration, maxIterations int) string {
	return fmt.Sprintf(forcedConclusionTemplate, iteration, maxIterations)
}
