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

// xAI Grok Models
// Full list: https://docs.x.ai/docs/models
//
//   - grok-4         : Flagship reasoning model
//   - grok-4-fast    : Lower latency, cost-efficient
//   - grok-3-mini    : Lightweight previous generation

const defaultXAIModel = "grok-4"

// XAI implements Client for xAI's Grok API. The wire format is
// OpenAI-compatible chat completions, except the token budget field is
// still named max_tokens.
type XAI struct {
	cfg        config.Provider
	baseURL    string
	httpClient *http.Client
	retrier    retry.Executor
}

// XAIOption configures an xAI client.
type XAIOption func(*XAI)

// WithXAIBaseURL sets a custom base URL.
func WithXAIBaseURL(url string) XAIOption {
	return func(x *XAI) { x.baseURL = url }
}

// WithXAIHTTPClient sets a custom HTTP client.
func WithXAIHTTPClient(c *http.Client) XAIOption {
	return func(x *XAI) { x.httpClient = c }
}

// WithXAIMaxRetries sets the retry budget for transient failures.
func WithXAIMaxRetries(n int) XAIOption {
	return func(x *XAI) { x.retrier.MaxRetries = n }
}

// WithXAILogger sets the logger for retry diagnostics.
func WithXAILogger(l *slog.Logger) XAIOption {
	return func(x *XAI) { x.retrier.Logger = l }
}

// NewXAI creates a Grok client from explicit configuration.
func NewXAI(cfg config.Provider, opts ...XAIOption) *XAI {
	if cfg.Model == "" {
		cfg.Model = defaultXAIModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.DefaultMaxTokens
	}

	x := &XAI{
		cfg:        cfg,
		baseURL:    "https://api.x.ai/v1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retrier:    retry.Executor{MaxRetries: retry.DefaultMaxRetries},
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

func (x *XAI) Name() string       { return "Grok" }
func (x *XAI) ProviderID() string { return "xai" }

// IsConfigured reports whether a usable API key is present.
func (x *XAI) IsConfigured() bool { return x.cfg.Configured() }

// Query sends a prompt to a Grok model. It always returns a Response.
func (x *XAI) Query(ctx context.Context, prompt, systemPrompt string) Response {
	if !x.IsConfigured() {
		return errorResponse(x.Name(), x.ProviderID(), x.cfg.Label, 0,
			errors.New("xai: missing or placeholder API key"))
	}

	start := time.Now()

	var content string
	var tokens int
	err := x.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		content, tokens, callErr = x.send(ctx, prompt, systemPrompt)
		return callErr
	})

	latency := time.Since(start).Milliseconds()
	if err != nil {
		return errorResponse(x.Name(), x.ProviderID(), x.cfg.Label, latency, err)
	}

	return Response{
		Name:        x.Name(),
		ProviderID:  x.ProviderID(),
		Label:       x.cfg.Label,
		Content:     content,
		TokensUsed:  tokens,
		CompletedAt: time.Now(),
		LatencyMS:   latency,
	}
}

func (x *XAI) send(ctx context.Context, prompt, systemPrompt string) (string, int, error) {
	messages := make([]xaiMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, xaiMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, xaiMessage{Role: "user", Content: prompt})

	payload := xaiRequest{
		Model:     x.cfg.Model,
		Messages:  messages,
		MaxTokens: x.cfg.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+x.cfg.APIKey)

	resp, err := x.httpClient.Do(httpReq)
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

	var parsed xaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", 0, fmt.Errorf("parsing response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", 0, errors.New("no choices in response")
	}

	return parsed.Choices[0].Message.Content, parsed.Usage.TotalTokens, nil
}

// TestConnection issues a minimal query and checks a sane answer came back.
func (x *XAI) TestConnection(ctx context.Context) bool {
	resp := x.Query(ctx, connectionProbe, "")
	return resp.OK() && strings.TrimSpace(resp.Content) != ""
}

type xaiRequest struct {
	Model     string       `json:"model"`
	Messages  []xaiMessage `json:"messages"`
	MaxTokens int          `json:"max_tokens,omitempty"`
}

type xaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type xaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}
