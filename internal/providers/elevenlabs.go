package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultElevenLabsModel   = "eleven_monolingual_v1"
	defaultElevenLabsVoice   = "21m00Tcm4TlvDq8ikWAM"
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1"
)

// ElevenLabsProvider adapts unified requests to the ElevenLabs text-to-speech
// API. The prompt is synthesized and returned as an audio data URI; generation
// parameters are ignored and the model field selects the synthesis model.
// No true token accounting exists for audio, so usage is approximated from
// input text length and output size.
type ElevenLabsProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewElevenLabs(apiKey, baseURL string) *ElevenLabsProvider {
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}
	return &ElevenLabsProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *ElevenLabsProvider) Name() string { return ElevenLabs }

func (p *ElevenLabsProvider) Models() []string {
	return []string{"eleven_multilingual_v2", "eleven_monolingual_v1"}
}

func (p *ElevenLabsProvider) Process(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model := req.ModelOr(defaultElevenLabsModel)

	payload := map[string]interface{}{
		"text":     req.Prompt,
		"model_id": model,
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.5,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: err.Error()}
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", p.baseURL, defaultElevenLabsVoice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: err.Error()}
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{Provider: ElevenLabs, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, audio)}
	}

	promptTokens := len(req.Prompt)
	completionTokens := len(audio) / 1024

	return &Response{
		Content: "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio),
		Usage: Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          model,
	}, nil
}

// Voices lists the synthesis voices available to the configured key.
func (p *ElevenLabsProvider) Voices(ctx context.Context) ([]Voice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/voices", nil)
	if err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: err.Error()}
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{Provider: ElevenLabs, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, raw)}
	}

	var parsed struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ProviderError{Provider: ElevenLabs, Message: "malformed response: " + err.Error()}
	}
	return parsed.Voices, nil
}

// CheckHealth probes the voices endpoint instead of synthesizing audio.
func (p *ElevenLabsProvider) CheckHealth(ctx context.Context) bool {
	_, err := p.Voices(ctx)
	return err == nil
}
