package prompt

import "strings"

// FormatApplicationSection builds the submitted-application section of the
// user prompt. applicationType may be empty; applicationData is opaque
// text (JSON) passed through as-is.
func FormatApplicationSection(applicationType, applicationData string) string {
	var sb strings.Builder
	sb.WriteString("## Application Details\n\n")

	if applicationType != "" {
		sb.WriteString("### Application Metadata\n")
		sb.WriteString("**Application Type:** ")
		sb.WriteString(applicationType)
		sb.WriteString("\n\n")
	}

	sb.WriteString("### Submitted Application Data\n")
	if applicationData == "" {
		sb.WriteString("No additional application data provided.\n")
		return sb.String()
	}

	sb.WriteString("<!-- APPLICATION_DATA_START -->\n")
	sb.WriteString(applicationData)
	sb.WriteString("\n<!-- APPLICATION_DATA_END -->\n")
	return sb.String()
}

// FormatLedgerContext wraps the ledger's pre-formatted prior-step context
// into a section. ledgerContext is the output of ledger.BuildContext —
// already formatted, HTML-comment delimited per step.
func FormatLedgerContext(ledgerContext string) string {
	if ledgerContext == "" {
		return "## Prior Step Results\nNo prior steps have run for this application. This is the first step.\n"
	}

	var sb strings.Builder
	sb.WriteString("## Prior Step Results\n")
	sb.WriteString(ledgerContext)
	sb.WriteString("\n")
	return sb.String()
}
