// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package learn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/copy-engine/pkg/types"
)

func TestRecommendNoData(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, types.LearningConfig{})
	r := NewRecommender(s, engine, types.LearningConfig{MinRecommendSamples: 10})

	for i := 0; i < 5; i++ {
		seedAttempt(t, s, fmt.Sprintf("sub-%d", i), 60, types.DefaultParameters())
	}

	_, err := r.Recommend(context.Background(), "metal", "description", Window{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoData), "below the sample floor the sentinel must surface: %v", err)
}

func TestRecommendTopQuartile(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, types.LearningConfig{})
	r := NewRecommender(s, engine, types.LearningConfig{MinRecommendSamples: 10})

	// 12 attempts: the top quartile is the 3 best by composite. Their
	// temperatures are 0.3/0.5/0.7 (median 0.5) and tones bold/bold/neutral
	// (mode bold); the other 9 run hot and score poorly.
	top := []struct {
		composite float64
		temp      float64
		tone      string
	}{
		{90, 0.3, "bold"},
		{85, 0.5, "bold"},
		{80, 0.7, "neutral"},
	}
	for i, tc := range top {
		params := types.DefaultParameters()
		params.Temperature = tc.temp
		params.Tone = tc.tone
		seedAttempt(t, s, fmt.Sprintf("top-%d", i), tc.composite, params)
	}
	for i := 0; i < 9; i++ {
		params := types.DefaultParameters()
		params.Temperature = 1.0
		params.Tone = "playful"
		seedAttempt(t, s, fmt.Sprintf("rest-%d", i), 40, params)
	}

	rec, err := r.Recommend(context.Background(), "metal", "description", Window{})
	require.NoError(t, err)

	assert.Equal(t, 12, rec.Samples)
	assert.InDelta(t, 0.5, rec.Parameters[types.ParamTemperature].(float64), 1e-9)
	assert.Equal(t, "bold", rec.Parameters[types.ParamTone])
	assert.IsType(t, 0, rec.Parameters[types.ParamMaxTokens], "max_tokens must round to an int")
	assert.Empty(t, rec.Omitted)
	assert.Contains(t, rec.Provenance, "top 3 of 12")
}

func TestRecommendExcludesHarmfulParameter(t *testing.T) {
	s := newTestStore(t)
	// minSamples 5 → confidence min(1, 20/20) = 1 over 20 attempts.
	engine := NewEngine(s, types.LearningConfig{MinSamples: 5})
	r := NewRecommender(s, engine, types.LearningConfig{
		MinRecommendSamples: 10,
		ExclusionConfidence: 0.5,
	})

	for i := 0; i < 10; i++ {
		params := types.DefaultParameters()
		params.EnrichKeywords = true
		seedAttempt(t, s, fmt.Sprintf("kw-%d", i), 30, params)

		params = types.DefaultParameters()
		params.EnrichKeywords = false
		seedAttempt(t, s, fmt.Sprintf("plain-%d", i), 80, params)
	}

	rec, err := r.Recommend(context.Background(), "metal", "description", Window{})
	require.NoError(t, err)

	assert.Contains(t, rec.Omitted, types.ParamEnrichKeywords)
	_, present := rec.Parameters[types.ParamEnrichKeywords]
	assert.False(t, present, "a parameter flagged as hurting quality must be omitted, never substituted")

	// Every omitted parameter must be absent from the recommendation.
	for _, name := range rec.Omitted {
		_, ok := rec.Parameters[name]
		assert.False(t, ok, "omitted parameter %q still present", name)
	}
}

func TestRecommendationApply(t *testing.T) {
	base := types.DefaultParameters()
	rec := &types.SweetSpotRecommendation{
		Parameters: map[string]any{
			types.ParamTemperature: 0.4,
			types.ParamMaxTokens:   512,
			types.ParamTone:        "bold",
		},
		Omitted: []string{types.ParamEnrichKeywords},
	}

	got := rec.Apply(base)
	assert.InDelta(t, 0.4, got.Temperature, 1e-9)
	assert.Equal(t, 512, got.MaxTokens)
	assert.Equal(t, "bold", got.Tone)
	// Untouched parameters keep the caller's base values.
	assert.InDelta(t, base.FrequencyPenalty, got.FrequencyPenalty, 1e-9)
	assert.Equal(t, base.EnrichKeywords, got.EnrichKeywords)
}

func TestMedianOf(t *testing.T) {
	mk := func(temps ...float64) []types.GenerationAttempt {
		out := make([]types.GenerationAttempt, len(temps))
		for i, v := range temps {
			out[i].Parameters.Temperature = v
		}
		return out
	}
	get := func(p types.ParameterBundle) float64 { return p.Temperature }

	assert.InDelta(t, 0.5, medianOf(mk(0.9, 0.5, 0.1), get), 1e-9)
	assert.InDelta(t, 0.45, medianOf(mk(0.6, 0.3, 0.4, 0.5), get), 1e-9)
}

func TestModeToneTieBreak(t *testing.T) {
	attempts := make([]types.GenerationAttempt, 4)
	attempts[0].Parameters.Tone = "warm"
	attempts[1].Parameters.Tone = "warm"
	attempts[2].Parameters.Tone = "bold"
	attempts[3].Parameters.Tone = "bold"

	// Ties resolve lexicographically so repeated runs agree.
	assert.Equal(t, "bold", modeTone(attempts))
}
