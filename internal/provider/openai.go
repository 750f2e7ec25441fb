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

// OpenAI Models
// Full list: https://platform.openai.com/docs/models
//
//   - gpt-5.2        : Best model for coding and agentic tasks
//   - gpt-5.2-pro    : Smarter, more precise responses
//   - gpt-5-mini     : Faster, cost-efficient for well-defined tasks

const defaultOpenAIModel = "gpt-5.2"

// OpenAI implements Client for OpenAI's chat completions API.
type OpenAI struct {
	cfg        config.Provider
	baseURL    string
	httpClient *http.Client
	retrier    retry.Executor
}

// OpenAIOption configures an OpenAI client.
type OpenAIOption func(*OpenAI)

// WithOpenAIBaseURL sets a custom base URL (useful for proxies or
// compatible APIs).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *OpenAI) { o.baseURL = url }
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) { o.httpClient = c }
}

// WithOpenAIMaxRetries sets the retry budget for transient failures.
func WithOpenAIMaxRetries(n int) OpenAIOption {
	return func(o *OpenAI) { o.retrier.MaxRetries = n }
}

// WithOpenAILogger sets the logger for retry diagnostics.
func WithOpenAILogger(l *slog.Logger) OpenAIOption {
	return func(o *OpenAI) { o.retrier.Logger = l }
}

// NewOpenAI creates a GPT client from explicit configuration.
func NewOpenAI(cfg config.Provider, opts ...OpenAIOption) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.DefaultMaxTokens
	}

	o := &OpenAI{
		cfg:        cfg,
		baseURL:    "https://api.openai.com/v1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retrier:    retry.Executor{MaxRetries: retry.DefaultMaxRetries},
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *OpenAI) Name() string       { return "GPT" }
func (o *OpenAI) ProviderID() string { return "openai" }

// IsConfigured reports whether a usable API key is present.
func (o *OpenAI) IsConfigured() bool { return o.cfg.Configured() }

// Query sends a prompt to a GPT model. It always returns a Response.
func (o *OpenAI) Query(ctx context.Context, prompt, systemPrompt string) Response {
	if !o.IsConfigured() {
		return errorResponse(o.Name(), o.ProviderID(), o.cfg.Label, 0,
			errors.New("openai: missing or placeholder API key"))
	}

	start := time.Now()

	var content string
	var tokens int
	err := o.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		content, tokens, callErr = o.send(ctx, prompt, systemPrompt)
		return callErr
	})

	latency := time.Since(start).Milliseconds()
	if err != nil {
		return errorResponse(o.Name(), o.ProviderID(), o.cfg.Label, latency, err)
	}

	return Response{
		Name:        o.Name(),
		ProviderID:  o.ProviderID(),
		Label:       o.cfg.Label,
		Content:     content,
		TokensUsed:  tokens,
		CompletedAt: time.Now(),
		LatencyMS:   latency,
	}
}

func (o *OpenAI) send(ctx context.Context, prompt, systemPrompt string) (string, int, error) {
	messages := make([]openAIMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt})

	payload := openAIRequest{
		Model:               o.cfg.Model,
		Messages:            messages,
		MaxCompletionTokens: o.cfg.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.httpClient.Do(httpReq)
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

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", 0, fmt.Errorf("parsing response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", 0, errors.New("no choices in response")
	}

	return parsed.Choices[0].Message.Content, parsed.Usage.TotalTokens, nil
}

// TestConnection issues a minimal query and checks a sane answer came back.
func (o *OpenAI) TestConnection(ctx context.Context) bool {
	resp := o.Query(ctx, connectionProbe, "")
	return resp.OK() && strings.TrimSpace(resp.Content) != ""
}

type openAIRequest struct {
	Model               string          `json:"model"`
	Messages            []openAIMessage `json:"messages"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}
