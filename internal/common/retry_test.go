package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/clash-cost/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep captures requested delays without waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestWithRetry(t *testing.T) {
	retryable := &TransportError{Status: http.StatusServiceUnavailable}
	permanent := &TransportError{Status: http.StatusBadRequest}

	tests := []struct {
		errs         []error
		name         string
		wantDelays   []time.Duration
		wantAttempts int
		wantErr      bool
		wantMaxRetry bool
	}{
		{
			name:         "success on first attempt",
			errs:         []error{nil},
			wantAttempts: 1,
		},
		{
			name:         "retryable then success",
			errs:         []error{retryable, nil},
			wantAttempts: 2,
			wantDelays:   []time.Duration{time.Second},
		},
		{
			name:         "retryable exhausts attempts",
			errs:         []error{retryable, retryable, retryable},
			wantAttempts: 3,
			wantDelays:   []time.Duration{time.Second, 2 * time.Second},
			wantErr:      true,
			wantMaxRetry: true,
		},
		{
			name:         "non-retryable on first attempt is immediate",
			errs:         []error{permanent},
			wantAttempts: 1,
			wantErr:      true,
		},
		{
			name:         "empty response is retried",
			errs:         []error{ErrEmptyResponse, fmt.Errorf("%w: SAFETY", ErrGenerationHalted), nil},
			wantAttempts: 3,
			wantDelays:   []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:         "non-retryable after a retryable one consumes the next attempt",
			errs:         []error{retryable, permanent, nil},
			wantAttempts: 3,
			wantDelays:   []time.Duration{time.Second, 2 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSleep{}
			attempts := 0
			err := WithRetry(context.Background(), func(attempt int) error {
				assert.Equal(t, attempts, attempt)
				e := tt.errs[attempts]
				attempts++
				return e
			}, service.RetryOptions{Sleep: rec.sleep})

			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantDelays, rec.delays)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMaxRetry, errors.Is(err, ErrMaxRetries))
			assert.ErrorIs(t, err, tt.errs[len(tt.errs)-1])
		})
	}
}

func TestWithRetryNonRetryableReturnsSameError(t *testing.T) {
	cfgErr := &ConfigurationError{Setting: "llm.api_key", Err: ErrMissingCredential}
	err := WithRetry(context.Background(), func(int) error { return cfgErr }, service.RetryOptions{})
	assert.Same(t, cfgErr, err)
}

func TestWithRetryStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := WithRetry(ctx, func(int) error {
		attempts++
		return ErrEmptyResponse
	}, service.RetryOptions{InitialDelay: time.Hour})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestBackoffDelay(t *testing.T) {
	opts := service.RetryOptions{InitialDelay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second}
	assert.Equal(t, time.Second, BackoffDelay(opts, 0))
	assert.Equal(t, 2*time.Second, BackoffDelay(opts, 1))
	assert.Equal(t, 3*time.Second, BackoffDelay(opts, 2))
}
