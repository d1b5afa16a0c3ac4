// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate calls the LLM backend that produces candidate copy.
// The backend is abstracted behind an interface so sessions can be tested
// with a mock; the production implementation uses the Anthropic Messages
// API. Implements: prd007-regeneration R2 (generator contract);
//
//	docs/ARCHITECTURE § Generator.
package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/pdiddy/copy-engine/pkg/types"
)

// Backend produces one candidate text for a prompt under a parameter
// bundle. Implementations must return a BackendError so the session
// controller can distinguish transient from permanent failures.
type Backend interface {
	Generate(ctx context.Context, prompt string, params types.ParameterBundle) (string, types.GeneratorUsage, error)
}

// BackendError wraps a generator failure with its retry class. Transient
// failures (timeout, rate limit, provider hiccup, malformed response)
// consume one attempt from the session budget; permanent failures (bad
// credentials, malformed request) abort the session immediately rather
// than burning the remaining budget.
type BackendError struct {
	Permanent bool
	Err       error
}

func (e *BackendError) Error() string {
	class := "transient"
	if e.Permanent {
		class = "permanent"
	}
	return fmt.Sprintf("generator %s failure: %v", class, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsPermanent reports whether err carries a permanent generator failure.
func IsPermanent(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Permanent
}

// AnthropicBackend generates copy through the Anthropic Messages API,
// rate-limited client-side because the session loop is the only caller
// pacing requests.
type AnthropicBackend struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
}

// NewAnthropicBackend builds the production backend from config.
func NewAnthropicBackend(cfg types.GeneratorConfig) *AnthropicBackend {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &AnthropicBackend{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		timeout: timeout,
	}
}

// Generate calls the Messages API once and returns the first text block.
func (b *AnthropicBackend) Generate(ctx context.Context, prompt string, params types.ParameterBundle) (string, types.GeneratorUsage, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", types.GeneratorUsage{}, &BackendError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}

	message, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(params.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", types.GeneratorUsage{}, classify(err)
	}

	usage := types.GeneratorUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, usage, nil
		}
	}
	// A response with no text block is malformed but worth retrying.
	return "", usage, &BackendError{Err: errors.New("no text content in response")}
}

// classify maps an SDK error onto the failure taxonomy. Client-side
// request defects and auth failures are permanent; rate limits, provider
// errors, and network failures are transient.
func classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return &BackendError{Err: err}
		case apierr.StatusCode >= 500:
			return &BackendError{Err: err}
		case apierr.StatusCode == http.StatusUnauthorized,
			apierr.StatusCode == http.StatusForbidden,
			apierr.StatusCode == http.StatusBadRequest,
			apierr.StatusCode == http.StatusNotFound:
			return &BackendError{Permanent: true, Err: err}
		default:
			return &BackendError{Err: err}
		}
	}
	return &BackendError{Err: err}
}
