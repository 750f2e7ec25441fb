package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnayoung/llm-fanout/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXAI_Query(t *testing.T) {
	var gotReq xaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		err := json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "grok answer"}},
			},
			"usage": map[string]int{"total_tokens": 21},
		})
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := NewXAI(
		config.Provider{APIKey: "test-key"},
		WithXAIBaseURL(srv.URL),
	)

	resp := c.Query(context.Background(), "a question", "")
	require.True(t, resp.OK(), "unexpected error: %s", resp.Err)

	assert.Equal(t, "Grok", resp.Name)
	assert.Equal(t, "xai", resp.ProviderID)
	assert.Equal(t, "grok answer", resp.Content)
	assert.Equal(t, 21, resp.TokensUsed)

	assert.Equal(t, defaultXAIModel, gotReq.Model)
	assert.Equal(t, config.DefaultMaxTokens, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}
