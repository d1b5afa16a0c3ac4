// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package learn

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/pkg/types"
)

// ErrNoData signals that history holds too few samples for a
// recommendation. Callers fall back to static defaults; this is not a
// retryable failure. Per prd005-sweet-spot R1.2.
var ErrNoData = errors.New("not enough history for a recommendation")

// Recommender derives parameter bundles from the top-performing historical
// attempts of a (subject class, component) pair.
type Recommender struct {
	store               *history.Store
	engine              *Engine
	minSamples          int
	exclusionConfidence float64
}

// NewRecommender builds a recommender over store, consulting engine for
// negative-correlation exclusions.
func NewRecommender(store *history.Store, engine *Engine, cfg types.LearningConfig) *Recommender {
	min := cfg.MinRecommendSamples
	if min <= 0 {
		min = 10
	}
	floor := cfg.ExclusionConfidence
	if floor <= 0 {
		floor = 0.5
	}
	return &Recommender{
		store:               store,
		engine:              engine,
		minSamples:          min,
		exclusionConfidence: floor,
	}
}

// Recommend mines the window's history for subjectClass/component and
// returns the per-parameter median (numeric) or mode (categorical) of the
// top quartile by composite quality. Returns ErrNoData below the sample
// floor. Parameters the correlation engine currently reports as hurting
// quality in the same window are omitted entirely, never substituted
// (R1.3). Recommendations are recomputed per call and never cached.
func (r *Recommender) Recommend(ctx context.Context, subjectClass, component string, w Window) (*types.SweetSpotRecommendation, error) {
	attempts, err := r.store.Attempts(ctx, history.QueryOptions{
		SubjectClass: subjectClass,
		Component:    component,
		Domain:       w.Domain,
		Since:        w.Since,
	})
	if err != nil {
		return nil, fmt.Errorf("loading attempts: %w", err)
	}
	if len(attempts) < r.minSamples {
		return nil, fmt.Errorf("%w: %d attempt(s) for %s/%s, need %d",
			ErrNoData, len(attempts), subjectClass, component, r.minSamples)
	}

	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].Score.Composite > attempts[j].Score.Composite
	})
	q := len(attempts) / 4
	if q < 1 {
		q = 1
	}
	top := attempts[:q]

	params := map[string]any{
		types.ParamTemperature:      medianOf(top, func(p types.ParameterBundle) float64 { return p.Temperature }),
		types.ParamMaxTokens:        int(medianOf(top, func(p types.ParameterBundle) float64 { return float64(p.MaxTokens) })),
		types.ParamFrequencyPenalty: medianOf(top, func(p types.ParameterBundle) float64 { return p.FrequencyPenalty }),
		types.ParamPresencePenalty:  medianOf(top, func(p types.ParameterBundle) float64 { return p.PresencePenalty }),
		types.ParamVoiceStrength:    medianOf(top, func(p types.ParameterBundle) float64 { return p.VoiceStrength }),
		types.ParamTone:             modeTone(top),
		types.ParamEnrichDetails:    modeOf(top, func(p types.ParameterBundle) bool { return p.EnrichDetails }),
		types.ParamEnrichKeywords:   modeOf(top, func(p types.ParameterBundle) bool { return p.EnrichKeywords }),
	}

	insights, err := r.engine.Analyze(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("consulting correlation engine: %w", err)
	}
	var omitted []string
	for _, in := range insights {
		if in.Kind != types.InsightParameter {
			continue
		}
		if _, present := params[in.Category]; present && hurtsQuality(in, r.exclusionConfidence) {
			delete(params, in.Category)
			omitted = append(omitted, in.Category)
		}
	}
	sort.Strings(omitted)

	return &types.SweetSpotRecommendation{
		SubjectClass: subjectClass,
		Component:    component,
		Parameters:   params,
		Omitted:      omitted,
		Samples:      len(attempts),
		Provenance: fmt.Sprintf("median/mode of top %d of %d attempts for %s/%s",
			q, len(attempts), subjectClass, component),
		ComputedAt: time.Now().UTC(),
	}, nil
}

func medianOf(attempts []types.GenerationAttempt, get func(types.ParameterBundle) float64) float64 {
	vals := make([]float64, len(attempts))
	for i, a := range attempts {
		vals[i] = get(a.Parameters)
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

func modeOf(attempts []types.GenerationAttempt, get func(types.ParameterBundle) bool) bool {
	on := 0
	for _, a := range attempts {
		if get(a.Parameters) {
			on++
		}
	}
	return on*2 > len(attempts)
}

func modeTone(attempts []types.GenerationAttempt) string {
	counts := make(map[string]int)
	for _, a := range attempts {
		counts[a.Parameters.Tone]++
	}
	best, bestCount := "neutral", 0
	// Deterministic tie-break: lexicographically smallest tone wins.
	tones := make([]string, 0, len(counts))
	for t := range counts {
		tones = append(tones, t)
	}
	sort.Strings(tones)
	for _, t := range tones {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best
}
