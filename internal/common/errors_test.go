package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limited", err: &TransportError{Status: http.StatusTooManyRequests}, want: true},
		{name: "server error", err: &TransportError{Status: http.StatusInternalServerError}, want: true},
		{name: "bad gateway wrapped", err: fmt.Errorf("call: %w", &TransportError{Status: http.StatusBadGateway}), want: true},
		{name: "network failure", err: &TransportError{Err: errors.New("connection refused")}, want: true},
		{name: "unauthorized", err: &TransportError{Status: http.StatusUnauthorized}, want: false},
		{name: "bad request", err: &TransportError{Status: http.StatusBadRequest}, want: false},
		{name: "empty response", err: ErrEmptyResponse, want: true},
		{name: "generation halted", err: fmt.Errorf("%w: MAX_TOKENS", ErrGenerationHalted), want: true},
		{name: "missing credential", err: &ConfigurationError{Setting: "llm.api_key", Err: ErrMissingCredential}, want: false},
		{name: "malformed response", err: &MalformedResponseError{Stage: "extract"}, want: false},
		{name: "canceled transport", err: &TransportError{Err: context.Canceled}, want: false},
		{name: "explicit retryable", err: &RetryableError{Err: errors.New("x"), Retryable: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestTransportErrorMessage(t *testing.T) {
	assert.Equal(t, "API error 503: overloaded", (&TransportError{Status: 503, Body: "overloaded"}).Error())
	assert.Equal(t, "API error 404: Not Found", (&TransportError{Status: 404}).Error())
	assert.Contains(t, (&TransportError{Err: errors.New("dial tcp")}).Error(), "dial tcp")
}

func TestMalformedResponseErrorTruncatesRaw(t *testing.T) {
	raw := make([]byte, maxRawInError+100)
	for i := range raw {
		raw[i] = 'x'
	}
	msg := (&MalformedResponseError{Stage: "extract", Raw: string(raw)}).Error()
	assert.Less(t, len(msg), len(raw))
	assert.Contains(t, msg, "extract: parsing failed")
}
