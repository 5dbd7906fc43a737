package config

// mergeAgents merges built-in and user-defined agent configurations.
// User-defined agents override built-in agents with the same name.
func mergeAgents(builtinAgents map[string]BuiltinAgentSpec, userAgents map[string]AgentSpec) map[string]*AgentSpec {
	result := make(map[string]*AgentSpec)

	for name, builtin := range builtinAgents {
		toolsCopy := make([]string, len(builtin.ToolServers))
		copy(toolsCopy, builtin.ToolServers)
		result[name] = &AgentSpec{
			Type:               builtin.Type,
			Description:        builtin.Description,
			ToolServers:        toolsCopy,
			PersonaFile:        builtin.PersonaFile,
			CustomInstructions: builtin.CustomInstructions,
			OutputSchema:       builtin.OutputSchema,
		}
	}

	for name, userAgent := range userAgents {
		agentCopy := userAgent
		result[name] = &agentCopy
	}

	return result
}

// mergeToolServers merges built-in and user-defined tool server
// configurations. User-defined servers override built-in servers with the
// same ID.
func mergeToolServers(builtinServers map[string]ToolServerSpec, userServers map[string]ToolServerSpec) map[string]*ToolServerSpec {
	result := make(map[string]*ToolServerSpec)

	for id, server := range builtinServers {
		serverCopy := server
		result[id] = &serverCopy
	}

	for id, userServer := range userServers {
		serverCopy := userServer
		result[id] = &serverCopy
	}

	return result
}

// mergePatterns merges built-in and user-defined pattern configurations.
// User-defined patterns override built-in patterns with the same ID.
func mergePatterns(builtinPatterns map[string]PatternConfig, userPatterns map[string]PatternConfig) map[string]*PatternConfig {
	result := make(map[string]*PatternConfig)

	for id, pattern := range builtinPatterns {
		patternCopy := pattern
		result[id] = &patternCopy
	}

	for id, userPattern := range userPatterns {
		patternCopy := userPattern
		result[id] = &patternCopy
	}

	return result
}

// mergeLLMProviders merges built-in and user-defined LLM provider
// configurations. User-defined providers override built-in providers with
// the same name.
func mergeLLMProviders(builtinProviders map[string]LLMProviderConfig, userProviders map[string]LLMProviderConfig) map[string]*LLMProviderConfig {
	result := make(map[string]*LLMProviderConfig)

	for name, provider := range builtinProviders {
		providerCopy := provider
		result[name] = &providerCopy
	}

	for name, userProvider := range userProviders {
		providerCopy := userProvider
		result[name] = &providerCopy
	}

	return result
}
