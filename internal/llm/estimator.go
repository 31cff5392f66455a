package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/service"
)

// Stage names used in errors, spans and logs.
const (
	StageExtract = "extract items"
	StageScore   = "score relevance"
	StagePropose = "propose resolutions"
	StageMatch   = "match items"
)

const tracerName = "clash/llm"

// Estimator runs the estimation stages against a backend Caller. Every
// backend call is retried with exponential backoff and rate limited.
type Estimator struct {
	caller    Caller
	logger    *slog.Logger
	limiter   *rateLimiter
	tracer    trace.Tracer
	protocol  Protocol
	model     string
	retryOpts service.RetryOptions
}

// EstimatorOption customizes an Estimator.
type EstimatorOption func(*Estimator)

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(logger *slog.Logger) EstimatorOption {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// WithRetryOptions overrides the retry policy, typically to inject a fake
// sleep in tests.
func WithRetryOptions(opts service.RetryOptions) EstimatorOption {
	return func(e *Estimator) {
		e.retryOpts = opts
	}
}

// WithTracer overrides the tracer used for backend call spans.
func WithTracer(tracer trace.Tracer) EstimatorOption {
	return func(e *Estimator) {
		e.tracer = tracer
	}
}

// NewEstimator wraps caller with the retry policy and rate limit from cfg.
func NewEstimator(caller Caller, cfg Config, opts ...EstimatorOption) *Estimator {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	e := &Estimator{
		caller:   caller,
		logger:   slog.Default(),
		limiter:  newRateLimiter(cfg.RequestsPerMinute),
		tracer:   otel.Tracer(tracerName),
		protocol: cfg.ResolveProtocol(),
		model:    cfg.Model,
		retryOpts: service.RetryOptions{
			MaxAttempts:  maxRetries,
			InitialDelay: retryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the rate limiter.
func (e *Estimator) Close() error {
	e.limiter.Close()
	return nil
}

// generate performs one backend call under the retry policy.
func (e *Estimator) generate(ctx context.Context, stage string, req Request) (Response, error) {
	var resp Response

	err := common.WithRetry(ctx, func(attempt int) error {
		if err := e.limiter.wait(ctx); err != nil {
			return err
		}

		spanCtx, span := e.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
			attribute.String("llm.stage", stage),
			attribute.String("llm.protocol", string(e.protocol)),
			attribute.String("llm.model", e.model),
			attribute.Int("llm.attempt", attempt+1),
		))
		defer span.End()

		r, err := e.caller.Generate(spanCtx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		span.SetAttributes(
			attribute.Int("llm.status", r.Status),
			attribute.Int("llm.tokens", r.TokensUsed),
		)
		resp = r
		return nil
	}, e.retryOpts)
	if err != nil {
		return Response{}, err
	}

	e.logger.Debug("Backend call completed",
		"stage", stage,
		"status", resp.Status,
		"tokens", resp.TokensUsed)

	return resp, nil
}

// decodeObject decodes a JSON object into generic fields. Non-objects yield
// an empty map so that per-field defaults apply.
func decodeObject(raw json.RawMessage) map[string]any {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return map[string]any{}
	}
	return fields
}

func stringField(fields map[string]any, key, fallback string) string {
	if s, ok := fields[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func malformed(stage, raw string) error {
	return &common.MalformedResponseError{Stage: stage, Raw: raw}
}

func emptyResult(stage, format string, args ...any) error {
	return &common.EmptyResultError{Stage: stage, Message: fmt.Sprintf(format, args...)}
}
