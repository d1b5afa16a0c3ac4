// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for copy-engine: generation
// attempts, quality scores, validation issues, learning outputs, and
// configuration. Implements: prd001-scoring, prd003-attempt-history
// (shared records); docs/ARCHITECTURE § Data Model.
package types

// Subscore is one quality dimension measured in [0, 100]. A dimension that
// could not be measured (missing author profile, scorer failure) is marked
// unavailable and excluded from the composite with weights renormalized.
type Subscore struct {
	// Value is the measured score in [0, 100]. Meaningless when Available is false.
	Value float64 `json:"value" yaml:"value"`

	// Available reports whether the dimension was measured at all.
	Available bool `json:"available" yaml:"available"`
}

// Measured returns an available subscore with the given value.
func Measured(v float64) Subscore {
	return Subscore{Value: v, Available: true}
}

// QualityScore is the scoring result for one generated text: three
// independent heuristic dimensions plus their weighted composite.
// Per prd001-scoring R1.1.
type QualityScore struct {
	// Pattern measures how unlike stock machine-generated prose the text
	// reads. Higher is less machine-like.
	Pattern Subscore `json:"pattern" yaml:"pattern"`

	// Voice measures fit against the assigned author profile. Unavailable
	// when no profile was supplied or the profile was malformed.
	Voice Subscore `json:"voice" yaml:"voice"`

	// Structural measures sentence-rhythm variety. Texts too short to carry
	// rhythm score the neutral baseline, never zero. Per R1.4.
	Structural Subscore `json:"structural" yaml:"structural"`

	// Composite is the convex combination of the available dimensions under
	// Weights, renormalized over available dimensions. Per R1.2.
	Composite float64 `json:"composite" yaml:"composite"`

	// Weights records the profile the composite was computed under.
	Weights WeightProfile `json:"weights" yaml:"weights"`
}

// WeightProfile holds the non-negative composite weights, summing to 1.
// Per prd006-weight-learning R1.1.
type WeightProfile struct {
	Pattern    float64 `json:"pattern" yaml:"pattern"`
	Voice      float64 `json:"voice" yaml:"voice"`
	Structural float64 `json:"structural" yaml:"structural"`
}

// DefaultWeights is the static profile used until the weight learner has
// enough ground-truth samples to fit from history. Per R1.2.
func DefaultWeights() WeightProfile {
	return WeightProfile{Pattern: 0.40, Voice: 0.30, Structural: 0.30}
}

// Sum returns the total weight mass.
func (w WeightProfile) Sum() float64 {
	return w.Pattern + w.Voice + w.Structural
}
