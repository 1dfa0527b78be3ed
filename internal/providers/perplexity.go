package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultPerplexityModel   = "llama-3.1-sonar-small-128k-online"
	defaultPerplexityBaseURL = "https://api.perplexity.ai"
)

// PerplexityProvider adapts unified requests to Perplexity's OpenAI-shaped
// chat completions endpoint.
type PerplexityProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewPerplexity(apiKey, baseURL string) *PerplexityProvider {
	if baseURL == "" {
		baseURL = defaultPerplexityBaseURL
	}
	return &PerplexityProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *PerplexityProvider) Name() string { return Perplexity }

func (p *PerplexityProvider) Models() []string {
	return []string{"llama-3.1-sonar-small-128k-online", "llama-3.1-sonar-large-128k-online"}
}

type perplexityResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *PerplexityProvider) Process(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model := req.ModelOr(defaultPerplexityModel)

	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": "Be precise and concise."},
			{"role": "user", "content": req.Prompt},
		},
		"max_tokens":  req.MaxTokensOr(1024),
		"temperature": req.TemperatureOr(0.2),
		"top_p":       req.TopPOr(0.9),
		"stream":      false,
	}

	var parsed perplexityResponse
	if err := p.post(ctx, payload, &parsed); err != nil {
		return nil, err
	}

	content := ""
	if len(parsed.Choices) > 0 {
		content = parsed.Choices[0].Message.Content
	}

	return &Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          model,
	}, nil
}

func (p *PerplexityProvider) CheckHealth(ctx context.Context) bool {
	payload := map[string]interface{}{
		"model":      defaultPerplexityModel,
		"messages":   []map[string]string{{"role": "user", "content": "Hello"}},
		"max_tokens": 10,
	}
	var parsed perplexityResponse
	return p.post(ctx, payload, &parsed) == nil
}

func (p *PerplexityProvider) post(ctx context.Context, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ProviderError{Provider: Perplexity, Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return &ProviderError{Provider: Perplexity, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return &ProviderError{Provider: Perplexity, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Provider: Perplexity, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{Provider: Perplexity, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProviderError{Provider: Perplexity, Message: "malformed response: " + err.Error()}
	}
	return nil
}
