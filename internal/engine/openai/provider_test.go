package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/health-insights/internal/engine"
)

func TestProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "report", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"**What is good**\nfine"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	p := NewProvider("key", "", srv.URL+"/")
	resp, err := p.Generate(context.Background(), engine.Prompt{System: "sys", User: "report"}, "")
	require.NoError(t, err)
	assert.Equal(t, "**What is good**\nfine", resp.Content)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, 42, resp.TokensUsed)
}

func TestProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := NewProvider("key", "", srv.URL).Generate(context.Background(), engine.Prompt{}, "")
	assert.ErrorContains(t, err, "status 429")

	var statusErr *engine.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "openai", statusErr.Provider)
	assert.Contains(t, statusErr.Body, "quota exceeded")
}

func TestNewCompatible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewCompatible("local", "key", "m1", srv.URL, []string{"m1"})
	assert.Equal(t, "local", p.Name())
	assert.Equal(t, []string{"m1"}, p.AvailableModels())

	_, err := p.Generate(context.Background(), engine.Prompt{}, "")
	assert.ErrorContains(t, err, "local returned no choices")
}

func TestProvider_IsConfigured(t *testing.T) {
	assert.False(t, NewProvider("", "", "").IsConfigured())
	assert.True(t, NewProvider("k", "", "").IsConfigured())
}
