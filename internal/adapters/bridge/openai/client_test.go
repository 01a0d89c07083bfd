package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/chatfs/internal/domain"
)

func TestGenerateSendsHistoryAndParsesReply(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var payload chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4o-mini", payload.Model)
		require.Len(t, payload.Messages, 2)
		assert.Equal(t, chatMessage{Role: "system", Content: "a notice"}, payload.Messages[0])
		assert.Equal(t, chatMessage{Role: "user", Content: "hello"}, payload.Messages[1])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi there"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{
		BaseURL:    server.URL + "/v1",
		APIKey:     "key-123",
		HTTPClient: server.Client(),
	}

	reply, err := client.Generate(context.Background(), []domain.Turn{
		domain.SystemTurn("a notice"),
		domain.UserTurn("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestGenerateMapsRefusalToBlocked(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","refusal":"cannot help with that"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := client.Generate(context.Background(), []domain.Turn{domain.UserTurn("hello")})
	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "cannot help with that", blocked.Reason)
}

func TestGenerateMapsContentFilterToBlocked(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"partial"},"finish_reason":"content_filter"}]}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := client.Generate(context.Background(), []domain.Turn{domain.UserTurn("hello")})
	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
}

func TestGenerateMapsAPIErrorEnvelope(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		status      int
		body        string
		wantBlocked bool
		wantText    string
	}{
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`,
			wantText: "rate limit exceeded",
		},
		{
			name:        "content policy",
			status:      http.StatusBadRequest,
			body:        `{"error":{"message":"rejected by policy","code":"content_policy_violation"}}`,
			wantBlocked: true,
			wantText:    "rejected by policy",
		},
		{
			name:     "opaque failure",
			status:   http.StatusBadGateway,
			body:     `not json`,
			wantText: "status 502",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}

			_, err := client.Generate(context.Background(), []domain.Turn{domain.UserTurn("hello")})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantText)

			var blocked *domain.BlockedError
			assert.Equal(t, tc.wantBlocked, errors.As(err, &blocked))
		})
	}
}

func TestGenerateTimesOutWithoutCallerDeadline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{
		BaseURL:        server.URL,
		HTTPClient:     server.Client(),
		RequestTimeout: 20 * time.Millisecond,
	}

	_, err := client.Generate(context.Background(), []domain.Turn{domain.UserTurn("hello")})
	var serviceErr *domain.ServiceError
	require.ErrorAs(t, err, &serviceErr)
}

func TestGenerateRejectsEmptyHistory(t *testing.T) {
	t.Parallel()

	client := &Client{BaseURL: "https://example.com"}
	_, err := client.Generate(context.Background(), nil)
	var serviceErr *domain.ServiceError
	require.ErrorAs(t, err, &serviceErr)
}
