// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package learn

import (
	"context"
	"fmt"
	"math"

	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/pkg/types"
)

// weightStep is the grid resolution for weight fitting. The 3-simplex at
// 5% steps has 231 points; exhaustive search is exact and reproducible.
const weightStep = 0.05

// Learner fits composite-scoring weights from attempts with recorded
// editorial outcomes.
type Learner struct {
	store      *history.Store
	minSamples int
}

// NewLearner builds a weight learner. minSamples (default 20) is the
// ground-truth floor below which the static default is returned.
func NewLearner(store *history.Store, cfg types.LearningConfig) *Learner {
	min := cfg.MinSamples
	if min <= 0 {
		min = 20
	}
	return &Learner{store: store, minSamples: min}
}

// Learn fits the weight profile maximizing Pearson correlation between the
// weighted composite and recorded ground truth over the window. When fewer
// than minSamples ground-truth samples exist it returns the unmodified
// static default with fitted=false; callers treat that as "use defaults",
// never as an error (R1.2). Fitted weights are non-negative and sum to 1
// by construction.
func (l *Learner) Learn(ctx context.Context, w Window) (profile types.WeightProfile, fitted bool, err error) {
	samples, err := l.store.OutcomeSamples(ctx, w.Since)
	if err != nil {
		return types.DefaultWeights(), false, fmt.Errorf("loading ground truth: %w", err)
	}
	if len(samples) < l.minSamples {
		return types.DefaultWeights(), false, nil
	}

	outcomes := make([]float64, len(samples))
	for i, s := range samples {
		outcomes[i] = s.Outcome
	}

	best := types.DefaultWeights()
	bestCorr := math.Inf(-1)

	steps := int(math.Round(1/weightStep)) + 1
	composites := make([]float64, len(samples))
	for i := 0; i < steps; i++ {
		for j := 0; i+j < steps; j++ {
			cand := types.WeightProfile{
				Pattern:    float64(i) * weightStep,
				Voice:      float64(j) * weightStep,
				Structural: 1 - float64(i+j)*weightStep,
			}
			for k, s := range samples {
				composites[k] = renormalizedComposite(s.Score, cand)
			}
			corr := pearson(composites, outcomes)
			if corr > bestCorr {
				bestCorr = corr
				best = cand
			}
		}
	}

	if math.IsInf(bestCorr, -1) || math.IsNaN(bestCorr) {
		// Degenerate ground truth (zero variance): nothing to fit.
		return types.DefaultWeights(), false, nil
	}
	return normalize(best), true, nil
}

// renormalizedComposite recomputes a sample's composite under candidate
// weights, renormalizing over its available dimensions.
func renormalizedComposite(q types.QualityScore, w types.WeightProfile) float64 {
	var sum, mass float64
	if q.Pattern.Available {
		sum += q.Pattern.Value * w.Pattern
		mass += w.Pattern
	}
	if q.Voice.Available {
		sum += q.Voice.Value * w.Voice
		mass += w.Voice
	}
	if q.Structural.Available {
		sum += q.Structural.Value * w.Structural
		mass += w.Structural
	}
	if mass == 0 {
		return 0
	}
	return sum / mass
}

// normalize clamps weights to [0, 1] and rescales them to sum to 1,
// falling back to the static default for a degenerate profile.
func normalize(w types.WeightProfile) types.WeightProfile {
	w.Pattern = math.Max(0, math.Min(1, w.Pattern))
	w.Voice = math.Max(0, math.Min(1, w.Voice))
	w.Structural = math.Max(0, math.Min(1, w.Structural))
	sum := w.Sum()
	if sum == 0 {
		return types.DefaultWeights()
	}
	return types.WeightProfile{
		Pattern:    w.Pattern / sum,
		Voice:      w.Voice / sum,
		Structural: w.Structural / sum,
	}
}

// pearson returns the Pearson correlation coefficient of xs and ys, or NaN
// when either series has zero variance.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return math.NaN()
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}
