// Package providers contains the adapters that translate the unified request
// shape into one vendor-specific call each, and normalize the vendor's
// response back into the unified schema.
package providers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Provider identifiers accepted in Request.Provider.
const (
	OpenAI     = "openai"
	Gemini     = "gemini"
	DeepSeek   = "deepseek"
	Anthropic  = "anthropic"
	Perplexity = "perplexity"
	ElevenLabs = "elevenlabs"
)

// Names returns every provider identifier the gateway knows about.
func Names() []string {
	return []string{OpenAI, Gemini, DeepSeek, Anthropic, Perplexity, ElevenLabs}
}

// Parameters are the optional generation knobs of a unified request.
// Text-to-speech providers ignore them.
type Parameters struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
}

// Request is the unified request shape shared by all adapters.
type Request struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	Prompt     string      `json:"prompt"`
	Parameters *Parameters `json:"parameters,omitempty"`
}

func (r *Request) ModelOr(def string) string {
	if r.Model != "" {
		return r.Model
	}
	return def
}

func (r *Request) TemperatureOr(def float64) float64 {
	if r.Parameters != nil && r.Parameters.Temperature != nil {
		return *r.Parameters.Temperature
	}
	return def
}

func (r *Request) MaxTokensOr(def int) int {
	if r.Parameters != nil && r.Parameters.MaxTokens != nil {
		return *r.Parameters.MaxTokens
	}
	return def
}

func (r *Request) TopPOr(def float64) float64 {
	if r.Parameters != nil && r.Parameters.TopP != nil {
		return *r.Parameters.TopP
	}
	return def
}

// Usage is the normalized token accounting of one call. Fields are zero when
// the vendor does not report them.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Response is the unified response shape. Content is plain text, or a
// base64 audio data URI for speech providers. Cost is filled in by the
// dispatcher from the provider's per-token price.
type Response struct {
	Content        string           `json:"content"`
	Usage          Usage            `json:"usage"`
	ResponseTimeMs int64            `json:"responseTimeMs"`
	Model          string           `json:"model"`
	Cost           *decimal.Decimal `json:"cost,omitempty"`
}

// ProviderError wraps any transport or vendor-side failure of an adapter.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

// Provider is implemented by every adapter.
type Provider interface {
	Name() string
	Models() []string

	// Process issues exactly one outbound call and normalizes the result.
	Process(ctx context.Context, req *Request) (*Response, error)

	// CheckHealth issues a minimal low-cost call and reports whether it
	// succeeded. All failures collapse to false.
	CheckHealth(ctx context.Context) bool
}

// VisionProvider is implemented by adapters that can analyze images.
type VisionProvider interface {
	AnalyzeImage(ctx context.Context, base64Image, prompt string) (*Response, error)
}

// VoiceCatalog is implemented by speech adapters that expose a voice listing.
type VoiceCatalog interface {
	Voices(ctx context.Context) ([]Voice, error)
}

// Voice describes one synthesis voice of a speech provider.
type Voice struct {
	VoiceID    string            `json:"voice_id"`
	Name       string            `json:"name"`
	Category   string            `json:"category,omitempty"`
	PreviewURL string            `json:"preview_url,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
}
