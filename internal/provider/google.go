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

// Google Gemini Models
// Full list: https://ai.google.dev/gemini-api/docs/models
//
//   - gemini-3-pro       : Most intelligent, multimodal understanding
//   - gemini-3-flash     : Most balanced, built for speed and scale
//   - gemini-2.5-flash   : Best price-performance, large scale processing

const defaultGoogleModel = "gemini-2.5-flash"

// Google implements Client for Google's Gemini API.
type Google struct {
	cfg        config.Provider
	baseURL    string
	httpClient *http.Client
	retrier    retry.Executor
}

// GoogleOption configures a Google client.
type GoogleOption func(*Google)

// WithGoogleBaseURL sets a custom base URL.
func WithGoogleBaseURL(url string) GoogleOption {
	return func(g *Google) { g.baseURL = url }
}

// WithGoogleHTTPClient sets a custom HTTP client.
func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(g *Google) { g.httpClient = c }
}

// WithGoogleMaxRetries sets the retry budget for transient failures.
func WithGoogleMaxRetries(n int) GoogleOption {
	return func(g *Google) { g.retrier.MaxRetries = n }
}

// WithGoogleLogger sets the logger for retry diagnostics.
func WithGoogleLogger(l *slog.Logger) GoogleOption {
	return func(g *Google) { g.retrier.Logger = l }
}

// NewGoogle creates a Gemini client from explicit configuration.
func NewGoogle(cfg config.Provider, opts ...GoogleOption) *Google {
	if cfg.Model == "" {
		cfg.Model = defaultGoogleModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.DefaultMaxTokens
	}

	g := &Google{
		cfg:        cfg,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retrier:    retry.Executor{MaxRetries: retry.DefaultMaxRetries},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Google) Name() string       { return "Gemini" }
func (g *Google) ProviderID() string { return "google" }

// IsConfigured reports whether a usable API key is present.
func (g *Google) IsConfigured() bool { return g.cfg.Configured() }

// Query sends a prompt to a Gemini model. It always returns a Response.
func (g *Google) Query(ctx context.Context, prompt, systemPrompt string) Response {
	if !g.IsConfigured() {
		return errorResponse(g.Name(), g.ProviderID(), g.cfg.Label, 0,
			errors.New("google: missing or placeholder API key"))
	}

	start := time.Now()

	var content string
	var tokens int
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		content, tokens, callErr = g.send(ctx, prompt, systemPrompt)
		return callErr
	})

	latency := time.Since(start).Milliseconds()
	if err != nil {
		return errorResponse(g.Name(), g.ProviderID(), g.cfg.Label, latency, err)
	}

	return Response{
		Name:        g.Name(),
		ProviderID:  g.ProviderID(),
		Label:       g.cfg.Label,
		Content:     content,
		TokensUsed:  tokens,
		CompletedAt: time.Now(),
		LatencyMS:   latency,
	}
}

func (g *Google) send(ctx context.Context, prompt, systemPrompt string) (string, int, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: g.cfg.MaxTokens,
		},
	}
	if systemPrompt != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshaling request: %w", err)
	}

	// Gemini uses the model name in the URL path and the key as a query
	// parameter.
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.cfg.Model, g.cfg.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
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

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", 0, fmt.Errorf("parsing response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", 0, errors.New("no content in response")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, parsed.UsageMetadata.TotalTokenCount, nil
}

// TestConnection issues a minimal query and checks a sane answer came back.
func (g *Google) TestConnection(ctx context.Context) bool {
	resp := g.Query(ctx, connectionProbe, "")
	return resp.OK() && strings.TrimSpace(resp.Content) != ""
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}
