package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/clash-cost/internal/common"
)

func TestChatCaller_Generate(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[{\"name\":\"Reroute\"}]"}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	caller := newChatCaller(Config{APIKey: "test-key", Endpoint: server.URL, Model: "mistral-large"})
	resp, err := caller.Generate(context.Background(), Request{
		Prompt:            "propose",
		SystemInstruction: "json only",
		MaxOutputTokens:   2000,
		JSON:              true,
	})
	require.NoError(t, err)

	assert.Equal(t, `[{"name":"Reroute"}]`, resp.Text)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, http.StatusOK, resp.Status)

	assert.Equal(t, "mistral-large", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
	assert.Equal(t, float64(2000), gotBody["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, gotBody["response_format"])
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "json only"}, messages[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "propose"}, messages[1])
}

func TestChatCaller_OmitsOptionalFields(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	caller := newChatCaller(Config{APIKey: "k", Endpoint: server.URL})
	_, err := caller.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)

	assert.NotContains(t, gotBody, "response_format")
	assert.NotContains(t, gotBody, "max_tokens")
	assert.Len(t, gotBody["messages"], 1)
}

func TestChatCaller_Errors(t *testing.T) {
	tests := []struct {
		check  func(t *testing.T, err error)
		name   string
		body   string
		status int
		noKey  bool
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":"slow down"}`,
			check: func(t *testing.T, err error) {
				var te *common.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, http.StatusTooManyRequests, te.Status)
				assert.True(t, common.IsRetryable(err))
				assert.Contains(t, err.Error(), "slow down")
			},
		},
		{
			name:   "bad request is not retryable",
			status: http.StatusBadRequest,
			body:   `{"error":"bad"}`,
			check: func(t *testing.T, err error) {
				assert.False(t, common.IsRetryable(err))
			},
		},
		{
			name:   "empty content",
			status: http.StatusOK,
			body:   `{"choices":[{"message":{"content":""}}]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, common.ErrEmptyResponse)
				assert.True(t, common.IsRetryable(err))
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, common.ErrEmptyResponse)
			},
		},
		{
			name:  "missing credential",
			noKey: true,
			check: func(t *testing.T, err error) {
				var ce *common.ConfigurationError
				require.ErrorAs(t, err, &ce)
				assert.ErrorIs(t, err, common.ErrMissingCredential)
				assert.False(t, common.IsRetryable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			key := "k"
			if tt.noKey {
				key = ""
			}
			caller := newChatCaller(Config{APIKey: key, Endpoint: server.URL})
			_, err := caller.Generate(context.Background(), Request{Prompt: "p"})
			require.Error(t, err)
			tt.check(t, err)
			if tt.noKey {
				assert.Zero(t, calls.Load(), "no request may be sent without a credential")
			}
		})
	}
}

func TestChatCaller_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	caller := newChatCaller(Config{APIKey: "k", Endpoint: url})
	_, err := caller.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)

	var te *common.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Status)
	assert.True(t, common.IsRetryable(err))
}
