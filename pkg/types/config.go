// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// GeneratorConfig holds settings for the generator backend.
type GeneratorConfig struct {
	// Model is the generator model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generator API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerMinute rate-limits backend calls (default 30).
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`

	// Timeout bounds one generator call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// HistoryConfig holds settings for the attempt history store.
type HistoryConfig struct {
	// HistoryDir is the directory containing the SQLite database.
	HistoryDir string `json:"history_dir" yaml:"history_dir"`
}

// SessionConfig holds settings for retry sessions.
type SessionConfig struct {
	// MaxAttempts bounds one session (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// AcceptThreshold is the composite score an attempt must reach
	// (default 75).
	AcceptThreshold float64 `json:"accept_threshold" yaml:"accept_threshold"`
}

// LearningConfig holds settings shared by the statistical components.
type LearningConfig struct {
	// MinSamples is the sample floor for correlation confidence and
	// weight fitting (default 20).
	MinSamples int `json:"min_samples" yaml:"min_samples"`

	// MinRecommendSamples is the floor below which the sweet-spot
	// recommender reports no data (default 10).
	MinRecommendSamples int `json:"min_recommend_samples" yaml:"min_recommend_samples"`

	// ExclusionConfidence is the confidence a negative correlation must
	// reach before the recommender excludes the parameter (default 0.5).
	ExclusionConfidence float64 `json:"exclusion_confidence" yaml:"exclusion_confidence"`
}

// ProfileConfig holds settings for author profile loading.
type ProfileConfig struct {
	// ProfilesDir is the directory of per-persona YAML files.
	ProfilesDir string `json:"profiles_dir" yaml:"profiles_dir"`
}
