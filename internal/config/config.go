package config

import (
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultMaxTokens is the output token budget shared by every provider
// unless overridden per client.
const DefaultMaxTokens = 4096

// Provider holds the construction inputs for one backend client.
type Provider struct {
	APIKey    string
	Model     string // empty selects the client's documented default
	MaxTokens int    // zero selects DefaultMaxTokens
	Label     string // optional annotation copied onto every response
}

// placeholders are key fragments left behind by sample .env files.
var placeholders = []string{"your-", "your_", "changeme", "placeholder", "xxxx"}

// Configured reports whether APIKey looks like a real credential rather
// than a missing or sample value.
func (p Provider) Configured() bool {
	key := strings.TrimSpace(p.APIKey)
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	for _, ph := range placeholders {
		if strings.Contains(lower, ph) {
			return false
		}
	}
	return true
}

// Config enumerates every supported backend. It is read once at
// construction; clients never consult the environment themselves.
type Config struct {
	Anthropic Provider
	OpenAI    Provider
	Google    Provider
	XAI       Provider
}

type envConfig struct {
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" env-description:"Anthropic API key"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" env-description:"Override the default Claude model"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY" env-description:"OpenAI API key"`
	OpenAIModel     string `env:"OPENAI_MODEL" env-description:"Override the default GPT model"`
	GoogleAPIKey    string `env:"GOOGLE_API_KEY" env-description:"Google Gemini API key"`
	GoogleModel     string `env:"GOOGLE_MODEL" env-description:"Override the default Gemini model"`
	XAIAPIKey       string `env:"XAI_API_KEY" env-description:"xAI API key"`
	XAIModel        string `env:"XAI_MODEL" env-description:"Override the default Grok model"`
	MaxTokens       int    `env:"LLM_MAX_TOKENS" env-default:"4096" env-description:"Max output tokens per query"`
}

// FromEnv reads provider credentials from the environment once. A missing
// key leaves that client unconfigured rather than failing; the only error
// path is an unparsable variable.
func FromEnv() (Config, error) {
	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Config{}, err
	}

	return Config{
		Anthropic: Provider{APIKey: env.AnthropicAPIKey, Model: env.AnthropicModel, MaxTokens: env.MaxTokens},
		OpenAI:    Provider{APIKey: env.OpenAIAPIKey, Model: env.OpenAIModel, MaxTokens: env.MaxTokens},
		Google:    Provider{APIKey: env.GoogleAPIKey, Model: env.GoogleModel, MaxTokens: env.MaxTokens},
		XAI:       Provider{APIKey: env.XAIAPIKey, Model: env.XAIModel, MaxTokens: env.MaxTokens},
	}, nil
}
