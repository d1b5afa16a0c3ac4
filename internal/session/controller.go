// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session runs the quality-gated regeneration loop: a bounded
// sequence of generate/score attempts for one copy target, tracking the
// best result across the whole session.
// Implements: prd007-regeneration (R1-R4); docs/ARCHITECTURE § Retry Loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/pdiddy/copy-engine/internal/generate"
	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/internal/learn"
	"github.com/pdiddy/copy-engine/internal/score"
	"github.com/pdiddy/copy-engine/pkg/types"
)

// State is the controller's position in the session state machine:
// Pending → Generating → Scoring → {Accepted, Retrying, Exhausted}.
type State string

const (
	StatePending    State = "pending"
	StateGenerating State = "generating"
	StateScoring    State = "scoring"
	StateAccepted   State = "accepted"
	StateRetrying   State = "retrying"
	StateExhausted  State = "exhausted"
)

// Target identifies one (subject, component) generation goal.
type Target struct {
	Subject      string
	SubjectClass string
	Component    string
	Domain       string

	// Profile is the optional author voice. Nil degrades scoring to
	// pattern + structural with renormalized weights.
	Profile *types.AuthorProfile
}

// Result is what a finished session returns. Both terminal states carry
// the best-scoring attempt of the whole session, not the last one:
// non-deterministic generation can regress (R3.2). Best is nil only when
// no attempt produced text, which distinguishes "never tried" from "tried
// and failed".
type Result struct {
	SessionID  string
	State      State
	Accepted   bool
	Attempts   int
	Best       *types.GenerationAttempt
	StopReason string
}

// BestComposite returns the best attempt's composite, or 0 with ok=false
// when no attempt produced text.
func (r Result) BestComposite() (float64, bool) {
	if r.Best == nil {
		return 0, false
	}
	return r.Best.Score.Composite, true
}

// Scorer abstracts quality scoring so tests can supply deterministic
// scores. *score.Scorer is the production implementation.
type Scorer interface {
	Score(text string, profile *types.AuthorProfile, weights types.WeightProfile) score.Result
}

// Controller orchestrates retry sessions. Sessions are synchronous and
// sequential; fan-out across targets is the caller's responsibility.
type Controller struct {
	backend     generate.Backend
	scorer      Scorer
	store       *history.Store
	recorder    *history.Recorder
	recommender *learn.Recommender
	learner     *learn.Learner
	cfg         types.SessionConfig
	w           io.Writer
}

// NewController wires a controller. recommender and learner may be nil, in
// which case static defaults are used for every attempt.
func NewController(
	backend generate.Backend,
	scorer Scorer,
	store *history.Store,
	recommender *learn.Recommender,
	learner *learn.Learner,
	cfg types.SessionConfig,
	w io.Writer,
) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.AcceptThreshold <= 0 {
		cfg.AcceptThreshold = 75
	}
	return &Controller{
		backend:     backend,
		scorer:      scorer,
		store:       store,
		recorder:    history.NewRecorder(store, w),
		recommender: recommender,
		learner:     learner,
		cfg:         cfg,
		w:           w,
	}
}

// temperatureJitter varies sampling temperature across retries so repeated
// attempts do not replay identical generation conditions (R4.1).
var temperatureJitter = []float64{0, 0.1, -0.1, 0.2, -0.2}

// Regenerate runs one bounded retry session for target. The session never
// exceeds the configured attempt budget; each retry requests fresh
// parameters rather than reusing the failed bundle. A permanent generator
// failure aborts immediately with the best attempt so far and a non-nil
// error; cancellation between attempts likewise returns the best so far.
func (c *Controller) Regenerate(ctx context.Context, target Target) (Result, error) {
	res := Result{
		SessionID: uuid.NewString(),
		State:     StatePending,
	}

	weights := c.sessionWeights(ctx)

	for ordinal := 1; ordinal <= c.cfg.MaxAttempts; ordinal++ {
		if err := ctx.Err(); err != nil {
			res.State = StateExhausted
			res.StopReason = fmt.Sprintf("cancelled after %d attempt(s)", res.Attempts)
			return res, nil
		}

		params := c.freshParameters(ctx, target, ordinal)
		prompt, err := generate.BuildPrompt(target.Subject, target.Component, target.Domain, params, target.Profile)
		if err != nil {
			res.State = StateExhausted
			res.StopReason = "prompt construction failed"
			return res, err
		}

		res.State = StateGenerating
		fmt.Fprintf(c.w, "attempt %d/%d for %s/%s (temp %.2f)\n",
			ordinal, c.cfg.MaxAttempts, target.Subject, target.Component, params.Temperature)

		text, usage, genErr := c.backend.Generate(ctx, prompt, params)
		if genErr != nil {
			if generate.IsPermanent(genErr) {
				res.State = StateExhausted
				res.StopReason = "permanent generator failure"
				return res, genErr
			}
			// Transient: burns one attempt, excluded from best-attempt
			// consideration.
			res.Attempts++
			c.append(ctx, &types.GenerationAttempt{
				SessionID:       res.SessionID,
				Subject:         target.Subject,
				SubjectClass:    target.SubjectClass,
				Component:       target.Component,
				Domain:          target.Domain,
				Ordinal:         ordinal,
				Parameters:      params,
				GeneratorFailed: true,
				Usage:           usage,
			})
			fmt.Fprintf(c.w, "attempt %d failed: %v\n", ordinal, genErr)
			res.State = StateRetrying
			continue
		}

		res.State = StateScoring
		scored := c.scorer.Score(text, target.Profile, weights)
		c.recorder.Record(ctx, scored.Issues, target.Subject, target.Component, target.Domain)

		attempt := &types.GenerationAttempt{
			SessionID:    res.SessionID,
			Subject:      target.Subject,
			SubjectClass: target.SubjectClass,
			Component:    target.Component,
			Domain:       target.Domain,
			Ordinal:      ordinal,
			Parameters:   params,
			Text:         text,
			Score:        scored.Score,
			Usage:        usage,
		}
		// The write lands before the next attempt begins so mid-session
		// recommender queries never observe a torn session.
		c.append(ctx, attempt)
		res.Attempts++

		if res.Best == nil || attempt.Score.Composite > res.Best.Score.Composite {
			res.Best = attempt
		}

		fmt.Fprintf(c.w, "attempt %d scored %.1f (pattern %.1f, voice %s, structural %.1f)\n",
			ordinal, scored.Score.Composite,
			scored.Score.Pattern.Value, voiceLabel(scored.Score.Voice), scored.Score.Structural.Value)

		if scored.Score.Composite >= c.cfg.AcceptThreshold && !scored.HasCritical() {
			res.State = StateAccepted
			res.Accepted = true
			res.StopReason = fmt.Sprintf("composite %.1f reached threshold %.1f",
				scored.Score.Composite, c.cfg.AcceptThreshold)
			return res, nil
		}
		if ordinal < c.cfg.MaxAttempts {
			res.State = StateRetrying
		}
	}

	res.State = StateExhausted
	if best, ok := res.BestComposite(); ok {
		res.StopReason = fmt.Sprintf("%d attempt(s) exhausted, best composite %.1f below threshold %.1f",
			res.Attempts, best, c.cfg.AcceptThreshold)
	} else {
		res.StopReason = fmt.Sprintf("%d attempt(s) exhausted, none produced text", res.Attempts)
	}
	return res, nil
}

// sessionWeights asks the weight learner for a fitted profile, falling
// back to the static default.
func (c *Controller) sessionWeights(ctx context.Context) types.WeightProfile {
	if c.learner == nil {
		return types.DefaultWeights()
	}
	weights, fitted, err := c.learner.Learn(ctx, learn.Window{})
	if err != nil {
		fmt.Fprintf(c.w, "warning: weight learning unavailable: %v\n", err)
		return types.DefaultWeights()
	}
	if fitted {
		fmt.Fprintf(c.w, "using fitted weights {%.2f %.2f %.2f}\n",
			weights.Pattern, weights.Voice, weights.Structural)
	}
	return weights
}

// freshParameters derives the bundle for one attempt: sweet-spot
// recommendation when history supports one, static defaults otherwise,
// with deterministic temperature jitter per ordinal.
func (c *Controller) freshParameters(ctx context.Context, target Target, ordinal int) types.ParameterBundle {
	params := types.DefaultParameters()
	params.MinAcceptScore = c.cfg.AcceptThreshold

	if c.recommender != nil {
		rec, err := c.recommender.Recommend(ctx, target.SubjectClass, target.Component, learn.Window{Domain: target.Domain})
		switch {
		case err == nil:
			params = rec.Apply(params)
		case errors.Is(err, learn.ErrNoData):
			// Expected until history accumulates; defaults stand.
		default:
			fmt.Fprintf(c.w, "warning: recommendation unavailable: %v\n", err)
		}
	}

	jitter := temperatureJitter[(ordinal-1)%len(temperatureJitter)]
	params.Temperature = math.Max(0, math.Min(1, params.Temperature+jitter))
	return params
}

// append persists an attempt. Persistence failures are logged, never fatal
// to the generation critical path (R2.3).
func (c *Controller) append(ctx context.Context, a *types.GenerationAttempt) {
	if err := c.store.AppendAttempt(ctx, a); err != nil {
		fmt.Fprintf(c.w, "warning: attempt not recorded: %v\n", err)
	}
}

func voiceLabel(s types.Subscore) string {
	if !s.Available {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", s.Value)
}
