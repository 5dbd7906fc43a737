package config

import "time"

// RetentionConfig controls audit-trail retention and cleanup behavior.
type RetentionConfig struct {
	// RunRetentionDays is how many days to keep completed runs (and their
	// assessment records) before they become eligible for cleanup.
	RunRetentionDays int `yaml:"run_retention_days"`

	// CleanupInterval is how often the retention sweep runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RunRetentionDays: 2555, // 7 years — typical lending audit-trail minimum
		CleanupInterval:  24 * time.Hour,
	}
}
