package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds all runtime configuration, populated from the environment.
// A local .env file is loaded first when present.
type Settings struct {
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":8080"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/gateway.db"`
	Env          string `envconfig:"APP_ENV" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigin   string `envconfig:"CORS_ORIGIN" default:"*"`

	// Outbound deadline applied to every provider call, in seconds.
	ProviderTimeoutSeconds int `envconfig:"PROVIDER_TIMEOUT" default:"60"`

	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY" default:""`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY" default:""`
	DeepSeekAPIKey   string `envconfig:"DEEPSEEK_API_KEY" default:""`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY" default:""`
	PerplexityAPIKey string `envconfig:"PERPLEXITY_API_KEY" default:""`
	ElevenLabsAPIKey string `envconfig:"ELEVENLABS_API_KEY" default:""`

	// Base URL overrides for outbound provider calls. Empty means the
	// provider's public endpoint.
	GeminiBaseURL     string `envconfig:"GEMINI_BASE_URL" default:""`
	AnthropicBaseURL  string `envconfig:"ANTHROPIC_BASE_URL" default:""`
	PerplexityBaseURL string `envconfig:"PERPLEXITY_BASE_URL" default:""`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:""`
}

func Load() (*Settings, error) {
	// Best effort; absence of a .env file is not an error.
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
