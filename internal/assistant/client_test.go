package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

func newServer(t *testing.T, status int, body string, seen *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_CompleteSendsSystemPromptAndHistory(t *testing.T) {
	var seen capturedRequest
	var auth string
	srv := newServer(t, http.StatusOK,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"You spent $40 on food."},"finish_reason":"stop"}]}`,
		&seen, &auth)

	c := NewClient(Config{APIKey: "gsk_test", BaseURL: srv.URL})
	reply, err := c.Complete(context.Background(), "SYSTEM", []Message{
		{Role: RoleAssistant, Content: Greeting},
		{Role: RoleUser, Content: "food?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "You spent $40 on food.", reply)
	assert.Equal(t, "Bearer gsk_test", auth)
	assert.Equal(t, DefaultModel, seen.Model)
	assert.Equal(t, DefaultMaxTokens, seen.MaxTokens)
	assert.InDelta(t, DefaultTemperature, seen.Temperature, 0.001)
	require.Len(t, seen.Messages, 3)
	assert.Equal(t, Message{Role: "system", Content: "SYSTEM"}, seen.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "food?"}, seen.Messages[2])
}

func TestClient_MissingKeyMakesNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	assert.False(t, c.Configured())
	_, err := c.Complete(context.Background(), "s", nil)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.False(t, called)
}

func TestClient_SurfacesServerErrorMessage(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`, nil, nil)

	_, err := NewClient(Config{APIKey: "bad", BaseURL: srv.URL}).Complete(context.Background(), "s", nil)

	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "Invalid API Key", err.Error())
	assert.Equal(t, http.StatusUnauthorized, serverErr.StatusCode)
}

func TestClient_GenericFailureWithoutMessage(t *testing.T) {
	srv := newServer(t, http.StatusBadGateway, `upstream unavailable`, nil, nil)

	_, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}).Complete(context.Background(), "s", nil)
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.Equal(t, "assistant request failed", err.Error())
}

func TestClient_EmptyChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"id":"1","object":"chat.completion","choices":[]}`, nil, nil)

	_, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}).Complete(context.Background(), "s", nil)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestClient_HonoursOverrides(t *testing.T) {
	var seen capturedRequest
	srv := newServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`, &seen, nil)

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/", Model: "other-model", MaxTokens: 64, Temperature: 0.2})
	_, err := c.Complete(context.Background(), "s", nil)
	require.NoError(t, err)
	assert.Equal(t, "other-model", seen.Model)
	assert.Equal(t, 64, seen.MaxTokens)
	assert.InDelta(t, 0.2, seen.Temperature, 0.001)
}
