package config

// Config is the umbrella configuration object that encapsulates all
// registries, defaults, and configuration state. This is the primary object
// returned by Initialize() and used throughout the application.
type Config struct {
	configDir string // Configuration directory path (for reference)

	// System-wide defaults
	Defaults  *Defaults
	Retention *RetentionConfig

	// Component registries
	AgentRegistry       *AgentRegistry
	PatternRegistry     *PatternRegistry
	ToolServerRegistry  *ToolServerRegistry
	LLMProviderRegistry *LLMProviderRegistry
}

// Initialize is defined in loader.go

// ConfigStats contains statistics about loaded configuration.
type ConfigStats struct {
	Agents       int
	Patterns     int
	ToolServers  int
	LLMProviders int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		Agents:       len(c.AgentRegistry.GetAll()),
		Patterns:     len(c.PatternRegistry.GetAll()),
		ToolServers:  len(c.ToolServerRegistry.GetAll()),
		LLMProviders: len(c.LLMProviderRegistry.GetAll()),
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetAgent retrieves an agent configuration by name.
func (c *Config) GetAgent(name string) (*AgentSpec, error) {
	return c.AgentRegistry.Get(name)
}

// GetPattern retrieves a pattern configuration by ID.
func (c *Config) GetPattern(patternID string) (*PatternConfig, error) {
	return c.PatternRegistry.Get(patternID)
}

// GetPatternByApplicationType retrieves the pattern that handles the given
// application type.
func (c *Config) GetPatternByApplicationType(applicationType string) (*PatternConfig, error) {
	return c.PatternRegistry.GetByApplicationType(applicationType)
}

// GetToolServer retrieves a tool server configuration by ID.
func (c *Config) GetToolServer(serverID string) (*ToolServerSpec, error) {
	return c.ToolServerRegistry.Get(serverID)
}

// GetLLMProvider retrieves an LLM provider configuration by name.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}
