// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// InsightKind distinguishes what a correlation insight partitions on.
type InsightKind string

const (
	// InsightIssue partitions attempts by presence of a validation issue
	// category on the same target.
	InsightIssue InsightKind = "issue"

	// InsightParameter partitions attempts by a boolean or categorical
	// generation parameter.
	InsightParameter InsightKind = "parameter"
)

// CorrelationInsight reports, for one issue category or parameter, how mean
// downstream quality differs between attempts with and without it. Insights
// are derived on demand from history and never persisted; they are
// observational contrasts, not randomized experiments.
// Per prd004-correlation R1.1-R1.4.
type CorrelationInsight struct {
	// Kind reports whether Category names an issue or a parameter.
	Kind InsightKind `json:"kind" yaml:"kind"`

	// Category is the issue category or canonical parameter name.
	Category string `json:"category" yaml:"category"`

	// Occurrences counts attempts in the "with" partition.
	Occurrences int `json:"occurrences" yaml:"occurrences"`

	// Samples counts all attempts considered for the contrast.
	Samples int `json:"samples" yaml:"samples"`

	// MeanWith is the mean composite quality of attempts with the category.
	MeanWith float64 `json:"mean_with" yaml:"mean_with"`

	// MeanWithout is the mean composite quality of attempts without it.
	MeanWithout float64 `json:"mean_without" yaml:"mean_without"`

	// Impact is MeanWithout - MeanWith: positive means the category is
	// associated with worse quality. Meaningless when
	// InsufficientContrast is set.
	Impact float64 `json:"impact" yaml:"impact"`

	// Confidence is min(1, Samples / (4 × minimum sample threshold)).
	// Low-confidence insights are reported, not suppressed. Per R1.3.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// InsufficientContrast is set when one partition is empty (the
	// category is always or never present), in which case no impact can
	// be estimated. Per R1.4.
	InsufficientContrast bool `json:"insufficient_contrast" yaml:"insufficient_contrast"`
}

// SweetSpotRecommendation is a parameter bundle derived from the
// top-performing historical attempts of one (subject class, component)
// pair. Recomputed per request, never cached. Per prd005-sweet-spot R1.1.
type SweetSpotRecommendation struct {
	SubjectClass string `json:"subject_class" yaml:"subject_class"`
	Component    string `json:"component" yaml:"component"`

	// Parameters maps canonical parameter names to recommended values.
	// Parameters the correlation engine currently reports as negatively
	// correlated are omitted entirely, never substituted. Per R1.3.
	Parameters map[string]any `json:"parameters" yaml:"parameters"`

	// Omitted lists parameter names excluded for negative correlation.
	Omitted []string `json:"omitted,omitempty" yaml:"omitted,omitempty"`

	// Samples counts the historical attempts the recommendation was
	// mined from (before the quartile cut).
	Samples int `json:"samples" yaml:"samples"`

	// Provenance describes how the bundle was derived, for operators.
	Provenance string `json:"provenance" yaml:"provenance"`

	// ComputedAt is when the recommendation was derived.
	ComputedAt time.Time `json:"computed_at" yaml:"computed_at"`
}

// Apply overlays the recommended values onto base and returns the result.
// Omitted and unrecognized names leave the base value untouched.
func (r SweetSpotRecommendation) Apply(base ParameterBundle) ParameterBundle {
	out := base
	for name, v := range r.Parameters {
		switch name {
		case ParamTemperature:
			if f, ok := v.(float64); ok {
				out.Temperature = f
			}
		case ParamMaxTokens:
			switch n := v.(type) {
			case int:
				out.MaxTokens = n
			case float64:
				out.MaxTokens = int(n)
			}
		case ParamFrequencyPenalty:
			if f, ok := v.(float64); ok {
				out.FrequencyPenalty = f
			}
		case ParamPresencePenalty:
			if f, ok := v.(float64); ok {
				out.PresencePenalty = f
			}
		case ParamVoiceStrength:
			if f, ok := v.(float64); ok {
				out.VoiceStrength = f
			}
		case ParamTone:
			if s, ok := v.(string); ok {
				out.Tone = s
			}
		case ParamEnrichDetails:
			if b, ok := v.(bool); ok {
				out.EnrichDetails = b
			}
		case ParamEnrichKeywords:
			if b, ok := v.(bool); ok {
				out.EnrichKeywords = b
			}
		}
	}
	return out
}
