package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/johnayoung/llm-fanout/internal/config"
)

// Response is one provider's answer to one question. Err is set iff the
// call failed; a failed response carries empty Content and the latency
// spent before the failure (zero when configuration short-circuits the
// call without touching the network).
type Response struct {
	Name        string    `json:"name"`
	ProviderID  string    `json:"provider_id"`
	Content     string    `json:"content"`
	CompletedAt time.Time `json:"completed_at"`
	LatencyMS   int64     `json:"latency_ms"`
	TokensUsed  int       `json:"tokens_used,omitempty"`
	Err         string    `json:"error,omitempty"`
	Label       string    `json:"label,omitempty"`
}

// OK reports whether the call behind this response succeeded.
func (r Response) OK() bool { return r.Err == "" }

// Client abstracts one backend LLM API.
//
// Query is total: it always returns a Response and by contract never
// panics; failures travel in Response.Err. The orchestrator treats a
// panicking Query as a contract violation and absorbs it.
type Client interface {
	Name() string
	ProviderID() string
	IsConfigured() bool
	Query(ctx context.Context, prompt, systemPrompt string) Response
	TestConnection(ctx context.Context) bool
}

// ClientFunc allows function values to implement Client (adapter pattern).
// Useful for testing and simple inline implementations.
type ClientFunc struct {
	ClientName   string
	ID           string
	Unconfigured bool
	QueryFn      func(ctx context.Context, prompt, systemPrompt string) Response
	TestFn       func(ctx context.Context) bool
}

func (f ClientFunc) Name() string       { return f.ClientName }
func (f ClientFunc) ProviderID() string { return f.ID }
func (f ClientFunc) IsConfigured() bool { return !f.Unconfigured }

func (f ClientFunc) Query(ctx context.Context, prompt, systemPrompt string) Response {
	return f.QueryFn(ctx, prompt, systemPrompt)
}

func (f ClientFunc) TestConnection(ctx context.Context) bool {
	if f.TestFn != nil {
		return f.TestFn(ctx)
	}
	resp := f.Query(ctx, connectionProbe, "")
	return resp.OK() && strings.TrimSpace(resp.Content) != ""
}

// connectionProbe is the lightweight prompt TestConnection sends.
const connectionProbe = `Reply with the single word "ok".`

// FromConfig builds one client per supported backend. Unconfigured
// clients are returned too; the orchestrator filters them out.
func FromConfig(cfg config.Config, logger *slog.Logger) []Client {
	return []Client{
		NewAnthropic(cfg.Anthropic, WithAnthropicLogger(logger)),
		NewOpenAI(cfg.OpenAI, WithOpenAILogger(logger)),
		NewGoogle(cfg.Google, WithGoogleLogger(logger)),
		NewXAI(cfg.XAI, WithXAILogger(logger)),
	}
}

// errorResponse builds the Response shape for a failed call.
func errorResponse(name, id, label string, latencyMS int64, err error) Response {
	return Response{
		Name:        name,
		ProviderID:  id,
		Label:       label,
		CompletedAt: time.Now(),
		LatencyMS:   latencyMS,
		Err:         err.Error(),
	}
}
