package mcp

import (
	"fmt"
	"regexp"

	"github.com/lendwell/underwriter/pkg/config"
)

// governmentIDShape matches a 9-digit numeric string with or without
// dashes, the shape of a US Social Security Number. Scrubbing checks the
// VALUE shape, never the parameter name — spec §4.3 requires rejection
// "whether or not the parameter name suggests it".
var governmentIDShape = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)

// ScrubbedParamError reports that an outbound tool-call parameter matched
// the shape of a government identifier and was rejected before the call
// reached the tool server. Unrecoverable for that call — the caller never
// retries a scrubbed parameter, it bubbles up as a SchemaViolation for the
// enclosing agent (spec §7).
type ScrubbedParamError struct {
	Server string
	Key    string
}

func (e *ScrubbedParamError) Error() string {
	return fmt.Sprintf(
		"parameter %q for tool server %q rejected: value matches a government-identifier shape",
		e.Key, e.Server)
}

// baseAllowlistKeys are exempted from the government-ID shape check
// regardless of any server's Scrubbing config — structurally similar
// numeric strings the spec explicitly permits (§4.3).
var baseAllowlistKeys = []string{"account_number", "routing_number", "applicant_id"}

// ScrubParams rejects any parameter whose value — at any depth of nested
// maps and slices — matches governmentIDShape, unless its (top-level) key
// is allowlisted. The government-ID shape check is unconditional: it runs
// whether or not a server has Scrubbing configured at all (spec §4.3/§8 —
// "for every tool call issued, its parameters contain no substring matching
// the government-identifier regex"). A server's Scrubbing config, when
// present, only EXTENDS the check — additional allowlisted keys and custom
// regex patterns on top of the base check — it never disables it.
// Allowlisting is by key name at the top level only: a nested structure
// cannot smuggle a government-identifier-shaped value in under an allowed
// key, since account/routing numbers are never nested.
func ScrubParams(serverID string, params map[string]any, scrubbing *config.ScrubbingConfig) error {
	allowed := make(map[string]struct{}, len(baseAllowlistKeys))
	for _, k := range baseAllowlistKeys {
		allowed[k] = struct{}{}
	}

	var customPatterns []*regexp.Regexp
	if scrubbing != nil {
		for _, k := range scrubbing.AllowlistKeys {
			allowed[k] = struct{}{}
		}
		customPatterns = make([]*regexp.Regexp, 0, len(scrubbing.CustomPatterns))
		for _, p := range scrubbing.CustomPatterns {
			if re, err := regexp.Compile(p.Pattern); err == nil {
				customPatterns = append(customPatterns, re)
			}
		}
	}

	for key, val := range params {
		if _, ok := allowed[key]; ok {
			if _, isString := val.(string); isString {
				continue
			}
		}
		if err := scrubValue(serverID, key, val, customPatterns); err != nil {
			return err
		}
	}
	return nil
}

func scrubValue(serverID, key string, val any, customPatterns []*regexp.Regexp) error {
	switch v := val.(type) {
	case string:
		if governmentIDShape.MatchString(v) {
			return &ScrubbedParamError{Server: serverID, Key: key}
		}
		for _, re := range customPatterns {
			if re.MatchString(v) {
				return &ScrubbedParamError{Server: serverID, Key: key}
			}
		}
	case map[string]any:
		for k, nested := range v {
			if err := scrubValue(serverID, key+"."+k, nested, customPatterns); err != nil {
				return err
			}
		}
	case []any:
		for i, nested := range v {
			if err := scrubValue(serverID, fmt.Sprintf("%s[%d]", key, i), nested, customPatterns); err != nil {
				return err
			}
		}
	}
	return nil
}
