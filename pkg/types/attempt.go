// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ParameterBundle carries every knob sent to the generator for one attempt.
// Bundles are recorded verbatim on each attempt so the learning components
// can mine them. Per prd003-attempt-history R2.1.
type ParameterBundle struct {
	// Temperature is the sampling temperature passed to the generator.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the generated length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// FrequencyPenalty discourages token repetition.
	FrequencyPenalty float64 `json:"frequency_penalty" yaml:"frequency_penalty"`

	// PresencePenalty discourages topic repetition.
	PresencePenalty float64 `json:"presence_penalty" yaml:"presence_penalty"`

	// VoiceStrength scales how firmly the prompt pushes the author voice,
	// in [0, 1].
	VoiceStrength float64 `json:"voice_strength" yaml:"voice_strength"`

	// Tone selects the prompt register: neutral, sober, or enthusiastic.
	Tone string `json:"tone" yaml:"tone"`

	// EnrichDetails asks the prompt to weave in technical specifics.
	EnrichDetails bool `json:"enrich_details" yaml:"enrich_details"`

	// EnrichKeywords asks the prompt to include subject keywords.
	EnrichKeywords bool `json:"enrich_keywords" yaml:"enrich_keywords"`

	// MinAcceptScore is the composite threshold the attempt must clear.
	MinAcceptScore float64 `json:"min_accept_score" yaml:"min_accept_score"`
}

// Canonical parameter names used by the correlation engine and the
// sweet-spot recommender. One name per ParameterBundle field.
const (
	ParamTemperature      = "temperature"
	ParamMaxTokens        = "max_tokens"
	ParamFrequencyPenalty = "frequency_penalty"
	ParamPresencePenalty  = "presence_penalty"
	ParamVoiceStrength    = "voice_strength"
	ParamTone             = "tone"
	ParamEnrichDetails    = "enrich_details"
	ParamEnrichKeywords   = "enrich_keywords"
)

// DefaultParameters is the bundle used when no sweet-spot recommendation
// is available.
func DefaultParameters() ParameterBundle {
	return ParameterBundle{
		Temperature:      0.7,
		MaxTokens:        400,
		FrequencyPenalty: 0.2,
		PresencePenalty:  0.1,
		VoiceStrength:    0.6,
		Tone:             "neutral",
		EnrichDetails:    true,
		EnrichKeywords:   false,
		MinAcceptScore:   75,
	}
}

// GeneratorUsage records token accounting reported by the generator backend
// for one attempt.
type GeneratorUsage struct {
	InputTokens  int64 `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int64 `json:"output_tokens" yaml:"output_tokens"`
}

// Add accumulates usage from another call.
func (u *GeneratorUsage) Add(other GeneratorUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// GenerationAttempt is the immutable record of one generator call:
// target, parameters, produced text, and scores. Attempts are append-only
// and owned by the attempt store. Per prd003-attempt-history R1.1-R1.3.
type GenerationAttempt struct {
	// ID is the store-assigned row identifier. Zero until appended.
	ID int64 `json:"id" yaml:"id"`

	// SessionID groups the attempts of one retry session.
	SessionID string `json:"session_id" yaml:"session_id"`

	// Subject is the business item the copy describes.
	Subject string `json:"subject" yaml:"subject"`

	// SubjectClass groups comparable subjects for learning (e.g. "metal").
	SubjectClass string `json:"subject_class" yaml:"subject_class"`

	// Component is the copy field being generated (e.g. "description").
	Component string `json:"component" yaml:"component"`

	// Domain is the publication domain the copy targets.
	Domain string `json:"domain" yaml:"domain"`

	// Ordinal is the 1-based position of this attempt within its session.
	Ordinal int `json:"ordinal" yaml:"ordinal"`

	// Parameters is the full bundle sent to the generator.
	Parameters ParameterBundle `json:"parameters" yaml:"parameters"`

	// Text is the generated copy. Empty when the generator failed.
	Text string `json:"text" yaml:"text"`

	// Score is the quality result. Zero-valued when the generator failed.
	Score QualityScore `json:"score" yaml:"score"`

	// GeneratorFailed marks attempts where the backend returned no text.
	// Failed attempts count against the retry budget but are excluded from
	// best-attempt selection.
	GeneratorFailed bool `json:"generator_failed" yaml:"generator_failed"`

	// Usage is the backend's token accounting for this call.
	Usage GeneratorUsage `json:"usage" yaml:"usage"`

	// CreatedAt is the append timestamp.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Severity orders validation issues from advisory to blocking. Only
// critical issues block acceptance. Per prd002-validation-telemetry R1.2.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the lowercase severity label.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

// Well-known issue categories. The set is open: callers may record
// categories not listed here and the correlation engine treats every
// distinct category it finds in history as its own contrast.
const (
	IssueLanguageMismatch    = "language-mismatch"
	IssueTranslationArtifact = "translation-artifact"
	IssueContradiction       = "contradiction"
	IssueForbiddenConstruct  = "forbidden-construct"
	IssueProfileInvalid      = "profile-invalid"
	IssueMarkerImbalance     = "marker-imbalance"
)

// ValidationIssue is a write-once defect record tied to a generation target.
// Per prd002-validation-telemetry R1.1.
type ValidationIssue struct {
	ID        int64     `json:"id" yaml:"id"`
	Subject   string    `json:"subject" yaml:"subject"`
	Component string    `json:"component" yaml:"component"`
	Domain    string    `json:"domain" yaml:"domain"`
	Category  string    `json:"category" yaml:"category"`
	Message   string    `json:"message" yaml:"message"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
