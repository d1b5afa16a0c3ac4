// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package learn mines attempt history for parameter and weight
// improvements: issue/quality correlations, sweet-spot parameter bundles,
// and fitted composite weights.
// Implements: prd004-correlation, prd005-sweet-spot, prd006-weight-learning;
//
//	docs/ARCHITECTURE § Learning Loop.
package learn

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/pkg/types"
)

// Window scopes a learning query to a time range and optional domain.
// A zero Since means all of history.
type Window struct {
	Since  time.Time
	Domain string
}

// Engine computes issue/quality correlation insights from history.
// Insights are observational: attempts are partitioned by issue presence,
// not randomized, so impact is association, not causation.
type Engine struct {
	store      *history.Store
	minSamples int
}

// NewEngine builds a correlation engine. minSamples (default 20) anchors
// the confidence scale.
func NewEngine(store *history.Store, cfg types.LearningConfig) *Engine {
	min := cfg.MinSamples
	if min <= 0 {
		min = 20
	}
	return &Engine{store: store, minSamples: min}
}

// boolParams are the generation parameters with a natural with/without
// contrast. Numeric parameters have no boolean partition and are mined by
// the sweet-spot recommender instead.
var boolParams = []struct {
	name    string
	enabled func(types.ParameterBundle) bool
}{
	{types.ParamEnrichDetails, func(p types.ParameterBundle) bool { return p.EnrichDetails }},
	{types.ParamEnrichKeywords, func(p types.ParameterBundle) bool { return p.EnrichKeywords }},
}

// Analyze partitions the window's attempts by each issue category and each
// boolean parameter, and reports the mean-quality contrast per category,
// sorted by |impact| descending. Low-confidence insights are returned, not
// suppressed (R1.3); categories with no contrast are flagged, never
// defaulted to zero impact (R1.4).
func (e *Engine) Analyze(ctx context.Context, w Window) ([]types.CorrelationInsight, error) {
	attempts, err := e.store.Attempts(ctx, history.QueryOptions{
		Since:  w.Since,
		Domain: w.Domain,
	})
	if err != nil {
		return nil, fmt.Errorf("loading attempts: %w", err)
	}
	issues, err := e.store.Issues(ctx, w.Since, w.Domain)
	if err != nil {
		return nil, fmt.Errorf("loading issues: %w", err)
	}

	// Issue categories attach to a (subject, component) target, not to a
	// single attempt; every attempt against a flagged target lands in the
	// "with" partition.
	flagged := make(map[string]map[string]bool)
	for _, is := range issues {
		key := targetKey(is.Subject, is.Component)
		if flagged[is.Category] == nil {
			flagged[is.Category] = make(map[string]bool)
		}
		flagged[is.Category][key] = true
	}

	var out []types.CorrelationInsight

	categories := make([]string, 0, len(flagged))
	for c := range flagged {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		targets := flagged[category]
		insight := e.contrast(types.InsightIssue, category, attempts, func(a types.GenerationAttempt) bool {
			return targets[targetKey(a.Subject, a.Component)]
		})
		out = append(out, insight)
	}

	for _, p := range boolParams {
		pred := p.enabled
		out = append(out, e.contrast(types.InsightParameter, p.name, attempts, func(a types.GenerationAttempt) bool {
			return pred(a.Parameters)
		}))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].InsufficientContrast != out[j].InsufficientContrast {
			return !out[i].InsufficientContrast
		}
		return math.Abs(out[i].Impact) > math.Abs(out[j].Impact)
	})
	return out, nil
}

// contrast partitions attempts by pred and computes the mean-quality
// difference. Impact is mean(without) − mean(with): positive means the
// category is associated with worse quality; relabeling the partitions
// flips the sign.
func (e *Engine) contrast(kind types.InsightKind, category string, attempts []types.GenerationAttempt, pred func(types.GenerationAttempt) bool) types.CorrelationInsight {
	var with, without []float64
	for _, a := range attempts {
		if pred(a) {
			with = append(with, a.Score.Composite)
		} else {
			without = append(without, a.Score.Composite)
		}
	}

	insight := types.CorrelationInsight{
		Kind:        kind,
		Category:    category,
		Occurrences: len(with),
		Samples:     len(attempts),
		Confidence:  confidence(len(attempts), e.minSamples),
	}

	if len(with) == 0 || len(without) == 0 {
		insight.InsufficientContrast = true
		return insight
	}

	insight.MeanWith = mean(with)
	insight.MeanWithout = mean(without)
	insight.Impact = insight.MeanWithout - insight.MeanWith
	return insight
}

// confidence scales raw sample count against four times the minimum
// threshold, capped at 1. No multiple-comparisons correction is applied;
// consumers must treat insights as screening signals.
func confidence(samples, minSamples int) float64 {
	return math.Min(1, float64(samples)/float64(4*minSamples))
}

// hurtsQuality reports whether an insight shows its category associated
// with worse quality at or above the given confidence floor.
func hurtsQuality(in types.CorrelationInsight, confidenceFloor float64) bool {
	return !in.InsufficientContrast && in.Impact > 0 && in.Confidence >= confidenceFloor
}

func targetKey(subject, component string) string {
	return subject + "\x00" + component
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
