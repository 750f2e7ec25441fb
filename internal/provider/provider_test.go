package provider

import (
	"context"
	"testing"

	"github.com/johnayoung/llm-fanout/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredClientsShortCircuit(t *testing.T) {
	// No key, placeholder key: either way Query must return a
	// configuration error without touching the network or retrying.
	cfgs := map[string]config.Provider{
		"missing key":     {},
		"placeholder key": {APIKey: "your-api-key-here"},
	}

	for name, cfg := range cfgs {
		t.Run(name, func(t *testing.T) {
			clients := []Client{
				NewAnthropic(cfg),
				NewOpenAI(cfg),
				NewGoogle(cfg),
				NewXAI(cfg),
			}

			for _, c := range clients {
				assert.False(t, c.IsConfigured(), "%s should be unconfigured", c.ProviderID())

				resp := c.Query(context.Background(), "hello", "")
				assert.False(t, resp.OK(), "%s should surface a config error", c.ProviderID())
				assert.Empty(t, resp.Content)
				assert.Zero(t, resp.LatencyMS, "config errors never reach the network")
				assert.Equal(t, c.Name(), resp.Name)
				assert.Equal(t, c.ProviderID(), resp.ProviderID)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Config{
		Anthropic: config.Provider{APIKey: "sk-ant-test"},
		Google:    config.Provider{APIKey: "g-test"},
	}

	clients := FromConfig(cfg, nil)
	assert.Len(t, clients, 4)

	ids := make([]string, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ProviderID())
	}
	assert.Equal(t, []string{"anthropic", "openai", "google", "xai"}, ids)

	assert.True(t, clients[0].IsConfigured())
	assert.False(t, clients[1].IsConfigured())
	assert.True(t, clients[2].IsConfigured())
	assert.False(t, clients[3].IsConfigured())
}

func TestClientFunc(t *testing.T) {
	c := ClientFunc{
		ClientName: "fake",
		ID:         "fake-id",
		QueryFn: func(ctx context.Context, prompt, systemPrompt string) Response {
			return Response{Name: "fake", ProviderID: "fake-id", Content: "ok"}
		},
	}

	assert.True(t, c.IsConfigured())
	assert.Equal(t, "fake", c.Name())

	resp := c.Query(context.Background(), "q", "")
	assert.True(t, resp.OK())

	// With no TestFn the probe falls back to QueryFn.
	assert.True(t, c.TestConnection(context.Background()))
}

func TestResponse_OK(t *testing.T) {
	assert.True(t, Response{Content: "answer"}.OK())
	assert.False(t, Response{Err: "boom"}.OK())
}
