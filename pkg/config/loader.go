package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// UnderwriterYAMLConfig represents the complete underwriter.yaml file
// structure.
type UnderwriterYAMLConfig struct {
	ToolServers map[string]ToolServerSpec `yaml:"tool_servers"`
	Agents      map[string]AgentSpec      `yaml:"agents"`
	Patterns    map[string]PatternConfig  `yaml:"patterns"`
	Defaults    *Defaults                 `yaml:"defaults"`
	Retention   *RetentionConfig          `yaml:"retention"`
}

// LLMProvidersYAMLConfig represents the complete llm-providers.yaml file
// structure.
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration. This
// is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load YAML files from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined configurations
//  5. Build in-memory registries
//  6. Apply default values
//  7. Validate all configuration
//  8. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"agents", stats.Agents,
		"patterns", stats.Patterns,
		"tool_servers", stats.ToolServers,
		"llm_providers", stats.LLMProviders)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	underwriterConfig, err := loader.loadUnderwriterYAML()
	if err != nil {
		return nil, NewLoadError("underwriter.yaml", err)
	}

	llmProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	builtin := GetBuiltinConfig()

	agents := mergeAgents(builtin.Agents, underwriterConfig.Agents)
	toolServers := mergeToolServers(builtin.ToolServers, underwriterConfig.ToolServers)
	patterns := mergePatterns(builtin.PatternDefinitions, underwriterConfig.Patterns)
	llmProvidersMerged := mergeLLMProviders(builtin.LLMProviders, llmProviders)

	agentRegistry := NewAgentRegistry(agents)
	toolServerRegistry := NewToolServerRegistry(toolServers)
	patternRegistry := NewPatternRegistry(patterns)
	llmProviderRegistry := NewLLMProviderRegistry(llmProvidersMerged)

	defaults := underwriterConfig.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if defaults.ApplicationType == "" {
		defaults.ApplicationType = builtin.DefaultApplicationType
	}

	// Resolve retention config (merge user YAML with built-in defaults;
	// non-zero user values override).
	retentionCfg := DefaultRetentionConfig()
	if underwriterConfig.Retention != nil {
		if err := mergo.Merge(retentionCfg, underwriterConfig.Retention, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge retention config: %w", err)
		}
	}

	return &Config{
		configDir:           configDir,
		Defaults:            defaults,
		Retention:           retentionCfg,
		AgentRegistry:       agentRegistry,
		PatternRegistry:     patternRegistry,
		ToolServerRegistry:  toolServerRegistry,
		LLMProviderRegistry: llmProviderRegistry,
	}, nil
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Expand environment variables using shell-style ${VAR}/$VAR syntax.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadUnderwriterYAML() (*UnderwriterYAMLConfig, error) {
	var cfg UnderwriterYAMLConfig
	cfg.ToolServers = make(map[string]ToolServerSpec)
	cfg.Agents = make(map[string]AgentSpec)
	cfg.Patterns = make(map[string]PatternConfig)

	if err := l.loadYAML("underwriter.yaml", &cfg); err != nil {
		if isMissingOptionalFile(err) {
			return &cfg, nil
		}
		return nil, err
	}

	return &cfg, nil
}

func (l *configLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	var cfg LLMProvidersYAMLConfig
	cfg.LLMProviders = make(map[string]LLMProviderConfig)

	if err := l.loadYAML("llm-providers.yaml", &cfg); err != nil {
		if isMissingOptionalFile(err) {
			return cfg.LLMProviders, nil
		}
		return nil, err
	}

	return cfg.LLMProviders, nil
}

// isMissingOptionalFile reports whether err is ErrConfigNotFound. Both
// top-level YAML files are optional: the built-in configuration lets the
// process start with zero external config.
func isMissingOptionalFile(err error) bool {
	return err != nil && os.IsNotExist(err) == false && isErrConfigNotFound(err)
}

func isErrConfigNotFound(err error) bool {
	for err != nil {
		if err == ErrConfigNotFound {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
