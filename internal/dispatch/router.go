// Package dispatch routes unified requests to the registered provider
// adapters, gates them through the rate limiter and records every attempt in
// the request log.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/omniprompt/gateway/internal/database"
	"github.com/omniprompt/gateway/internal/providers"
)

var (
	// ErrUnsupportedProvider is returned when the request names a provider
	// with no registered adapter.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrRateLimitExceeded is returned when the rate-limit gate denies the
	// call.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrNotVisionCapable is returned when image analysis is requested from
	// a provider without vision support.
	ErrNotVisionCapable = errors.New("provider does not support image analysis")
)

// Dispatcher is the request router. Side effects per call, in order: rate
// limit gate (identified users only), adapter invocation under the configured
// timeout, one request log insert regardless of outcome, rate limit
// consumption on success.
type Dispatcher struct {
	registry *providers.Registry
	limiter  *Limiter
	db       *database.DB
	log      *zap.SugaredLogger
	timeout  time.Duration
}

func NewDispatcher(registry *providers.Registry, limiter *Limiter, db *database.DB, log *zap.SugaredLogger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Dispatcher{
		registry: registry,
		limiter:  limiter,
		db:       db,
		log:      log,
		timeout:  timeout,
	}
}

// Dispatch routes one unified request to its adapter. An empty userID means
// an anonymous, ungated call.
func (d *Dispatcher) Dispatch(ctx context.Context, req *providers.Request, userID string) (*providers.Response, error) {
	adapter, ok := d.registry.Get(req.Provider)
	if !ok {
		d.record(req, userID, nil, 0, ErrUnsupportedProvider)
		return nil, ErrUnsupportedProvider
	}

	if userID != "" {
		if err := d.gate(userID, req.Provider); err != nil {
			d.record(req, userID, nil, 0, err)
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	resp, err := adapter.Process(callCtx, req)
	if err != nil {
		d.record(req, userID, nil, time.Since(start).Milliseconds(), err)
		return nil, err
	}

	d.finish(req, userID, resp)
	return resp, nil
}

// AnalyzeImage routes a vision request. Same gating and accounting as
// Dispatch; fails for providers without vision support.
func (d *Dispatcher) AnalyzeImage(ctx context.Context, provider, base64Image, prompt, userID string) (*providers.Response, error) {
	req := &providers.Request{Provider: provider, Prompt: prompt}

	adapter, ok := d.registry.Get(provider)
	if !ok {
		d.record(req, userID, nil, 0, ErrUnsupportedProvider)
		return nil, ErrUnsupportedProvider
	}

	vision, ok := adapter.(providers.VisionProvider)
	if !ok {
		d.record(req, userID, nil, 0, ErrNotVisionCapable)
		return nil, ErrNotVisionCapable
	}

	if userID != "" {
		if err := d.gate(userID, provider); err != nil {
			d.record(req, userID, nil, 0, err)
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	resp, err := vision.AnalyzeImage(callCtx, base64Image, prompt)
	if err != nil {
		d.record(req, userID, nil, time.Since(start).Milliseconds(), err)
		return nil, err
	}

	req.Model = resp.Model
	d.finish(req, userID, resp)
	return resp, nil
}

// gate blocks the call when the user is over limit. A storage failure during
// the check is not a denial; it propagates as its own error so callers report
// an internal failure instead of a rate limit.
func (d *Dispatcher) gate(userID, provider string) error {
	allowed, err := d.limiter.Allow(userID, provider)
	if err != nil {
		d.log.Warnw("rate limit check failed", "user_id", userID, "provider", provider, "error", err)
		return fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		return ErrRateLimitExceeded
	}
	return nil
}

// finish fills in the cost, records the success and consumes rate limit
// quota for identified users.
func (d *Dispatcher) finish(req *providers.Request, userID string, resp *providers.Response) {
	cost := d.costFor(req.Provider, resp.Usage.TotalTokens)
	resp.Cost = &cost

	d.record(req, userID, resp, resp.ResponseTimeMs, nil)

	if userID != "" {
		if err := d.limiter.Consume(userID, req.Provider); err != nil {
			d.log.Errorw("rate limit consume failed", "user_id", userID, "provider", req.Provider, "error", err)
		}
	}
}

// record inserts exactly one request log entry for the attempt. A failed
// insert is reported operationally and never masks the dispatch outcome.
func (d *Dispatcher) record(req *providers.Request, userID string, resp *providers.Response, elapsedMs int64, callErr error) {
	entry := &database.RequestLog{
		Provider:       req.Provider,
		Model:          req.Model,
		Prompt:         req.Prompt,
		ResponseTimeMs: elapsedMs,
		Status:         database.StatusError,
		Cost:           decimal.Zero,
	}
	if userID != "" {
		entry.UserID = &userID
	}

	if resp != nil {
		entry.Status = database.StatusSuccess
		entry.Response = &resp.Content
		entry.Tokens = resp.Usage.TotalTokens
		if resp.Cost != nil {
			entry.Cost = *resp.Cost
		}
	} else if callErr != nil {
		msg := callErr.Error()
		entry.ErrorMessage = &msg
	}

	if err := d.db.CreateRequestLog(entry); err != nil {
		d.log.Errorw("failed to record request", "provider", req.Provider, "error", err)
	}
}

func (d *Dispatcher) costFor(provider string, tokens int) decimal.Decimal {
	cfg, err := d.db.GetProviderConfig(provider)
	if err != nil {
		return decimal.Zero
	}
	return cfg.CostPerToken.Mul(decimal.NewFromInt(int64(tokens))).Round(6)
}
