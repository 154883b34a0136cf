package ollama

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
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "sys", req.System)
		assert.Equal(t, "llama3", req.Model)

		w.Write([]byte(`{"response":"analysis","done":true,"eval_count":7}`))
	}))
	defer srv.Close()

	resp, err := NewProvider(srv.URL, "").Generate(context.Background(), engine.Prompt{System: "sys", User: "u"}, "")
	require.NoError(t, err)
	assert.Equal(t, "analysis", resp.Content)
	assert.Equal(t, 7, resp.TokensUsed)
}
