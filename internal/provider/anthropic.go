package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/johnayoung/llm-fanout/internal/config"
	"github.com/johnayoung/llm-fanout/internal/retry"
)

// Anthropic Claude Models
// Full list: https://platform.claude.com/docs/en/about-claude/models/overview
//
//   - claude-sonnet-4-5  : Smart model for complex agents and coding
//   - claude-haiku-4-5   : Fastest with near-frontier intelligence
//   - claude-opus-4-5    : Maximum intelligence, premium performance

const defaultAnthropicModel = "claude-sonnet-4-5"

// Anthropic implements Client for Anthropic's Claude API.
type Anthropic struct {
	cfg        config.Provider
	baseURL    string
	httpClient *http.Client
	retrier    retry.Executor
}

// AnthropicOption configures an Anthropic client.
type AnthropicOption func(*Anthropic)

// WithAnthropicBaseURL sets a custom base URL.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(a *Anthropic) { a.baseURL = url }
}

// WithAnthropicHTTPClient sets a custom HTTP client.
func WithAnthropicHTTPClient(c *http.Client) AnthropicOption {
	return func(a *Anthropic) { a.httpClient = c }
}

// WithAnthropicMaxRetries sets the retry budget for transient failures.
func WithAnthropicMaxRetries(n int) AnthropicOption {
	return func(a *Anthropic) { a.retrier.MaxRetries = n }
}

// WithAnthropicLogger sets the logger for retry diagnostics.
func WithAnthropicLogger(l *slog.Logger) AnthropicOption {
	return func(a *Anthropic) { a.retrier.Logger = l }
}

// NewAnthropic creates a Claude client from explicit configuration.
// A missing or placeholder API key yields a client that reports
// IsConfigured() == false and short-circuits every query.
func NewAnthropic(cfg config.Provider, opts ...AnthropicOption) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.DefaultMaxTokens
	}

	a := &Anthropic{
		cfg:        cfg,
		baseURL:    "https://api.anthropic.com/v1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retrier:    retry.Executor{MaxRetries: retry.DefaultMaxRetries},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Anthropic) Name() string       { return "Claude" }
func (a *Anthropic) ProviderID() string { return "anthropic" }

// IsConfigured reports whether a usable API key is present.
func (a *Anthropic) IsConfigured() bool { return a.cfg.Configured() }

// Query sends a prompt to a Claude model. It always returns a Response;
// transport failures are retried per the client's budget and anything
// that still fails lands in Response.Err.
func (a *Anthropic) Query(ctx context.Context, prompt, systemPrompt string) Response {
	if !a.IsConfigured() {
		return errorResponse(a.Name(), a.ProviderID(), a.cfg.Label, 0,
			errors.New("anthropic: missing or placeholder API key"))
	}

	start := time.Now()

	var content string
	var tokens int
	err := a.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		content, tokens, callErr = a.send(ctx, prompt, systemPrompt)
		return callErr
	})

	latency := time.Since(start).Milliseconds()
	if err != nil {
		return errorResponse(a.Name(), a.ProviderID(), a.cfg.Label, latency, err)
	}

	return Response{
		Name:        a.Name(),
		ProviderID:  a.ProviderID(),
		Label:       a.cfg.Label,
		Content:     content,
		TokensUsed:  tokens,
		CompletedAt: time.Now(),
		LatencyMS:   latency,
	}
}

// send performs one transport call against the messages endpoint.
func (a *Anthropic) send(ctx context.Context, prompt, systemPrompt string) (string, int, error) {
	payload := anthropicRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, &APIError{
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", 0, fmt.Errorf("parsing response: %w", err)
	}

	if len(parsed.Content) == 0 {
		return "", 0, errors.New("no content in response")
	}

	return parsed.Content[0].Text, parsed.Usage.InputTokens + parsed.Usage.OutputTokens, nil
}

// TestConnection issues a minimal query and checks a sane answer came back.
func (a *Anthropic) TestConnection(ctx context.Context) bool {
	resp := a.Query(ctx, connectionProbe, "")
	return resp.OK() && strings.TrimSpace(resp.Content) != ""
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
