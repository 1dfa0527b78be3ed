package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/omniprompt/gateway/internal/config"
)

// Registry maps provider identifiers to adapter instances. It is built once
// at startup, and construction fails on an identifier outside the declared
// set, so an unrecognized provider is a boot-time surprise rather than a
// request-time one.
type Registry struct {
	adapters map[string]Provider
}

// NewRegistry validates the given adapters against the known provider names.
func NewRegistry(adapters ...Provider) (*Registry, error) {
	known := make(map[string]bool, len(Names()))
	for _, n := range Names() {
		known[n] = true
	}

	m := make(map[string]Provider, len(adapters))
	for _, a := range adapters {
		name := strings.ToLower(a.Name())
		if !known[name] {
			return nil, fmt.Errorf("unrecognized provider %q", name)
		}
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("duplicate provider %q", name)
		}
		m[name] = a
	}
	return &Registry{adapters: m}, nil
}

// Build assembles the full adapter set from configuration.
func Build(ctx context.Context, cfg *config.Settings) (*Registry, error) {
	gemini, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return NewRegistry(
		NewOpenAI(cfg.OpenAIAPIKey),
		gemini,
		NewDeepSeek(cfg.DeepSeekAPIKey),
		NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL),
		NewPerplexity(cfg.PerplexityAPIKey, cfg.PerplexityBaseURL),
		NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL),
	)
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.adapters[strings.ToLower(name)]
	return p, ok
}

func (r *Registry) All() map[string]Provider {
	return r.adapters
}
