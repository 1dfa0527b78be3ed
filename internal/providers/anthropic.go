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
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// AnthropicProvider adapts unified requests to the Anthropic messages API.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAnthropic builds the adapter. An empty baseURL means the public endpoint.
func NewAnthropic(apiKey, baseURL string) *AnthropicProvider {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *AnthropicProvider) Name() string { return Anthropic }

func (p *AnthropicProvider) Models() []string {
	return []string{"claude-sonnet-4-20250514", "claude-3-7-sonnet-20250219"}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *AnthropicProvider) Process(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model := req.ModelOr(defaultAnthropicModel)

	payload := map[string]interface{}{
		"model":       model,
		"max_tokens":  req.MaxTokensOr(1024),
		"temperature": req.TemperatureOr(0.7),
		"messages":    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	var parsed anthropicResponse
	if err := p.post(ctx, payload, &parsed); err != nil {
		return nil, err
	}

	content := ""
	if len(parsed.Content) > 0 {
		content = parsed.Content[0].Text
	}

	return &Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          model,
	}, nil
}

func (p *AnthropicProvider) CheckHealth(ctx context.Context) bool {
	payload := map[string]interface{}{
		"model":      defaultAnthropicModel,
		"max_tokens": 10,
		"messages":   []anthropicMessage{{Role: "user", Content: "Hello"}},
	}
	var parsed anthropicResponse
	return p.post(ctx, payload, &parsed) == nil
}

func (p *AnthropicProvider) post(ctx context.Context, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ProviderError{Provider: Anthropic, Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return &ProviderError{Provider: Anthropic, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return &ProviderError{Provider: Anthropic, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Provider: Anthropic, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{Provider: Anthropic, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProviderError{Provider: Anthropic, Message: "malformed response: " + err.Error()}
	}
	return nil
}
