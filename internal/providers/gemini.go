package providers

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider adapts unified requests to the Gemini generateContent API.
//
// Gemini does not report per-phase token usage on this path, so prompt and
// completion tokens stay zero and the total is a word-count estimate of the
// generated text.
type GeminiProvider struct {
	client *genai.Client
}

// NewGemini builds the adapter. An empty baseURL means the public endpoint.
func NewGemini(ctx context.Context, apiKey, baseURL string) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string { return Gemini }

func (p *GeminiProvider) Models() []string {
	return []string{"gemini-2.5-flash", "gemini-2.5-pro"}
}

func (p *GeminiProvider) Process(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model := req.ModelOr(defaultGeminiModel)

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(req.TemperatureOr(0.7))),
			MaxOutputTokens: int32(req.MaxTokensOr(500)),
			TopP:            genai.Ptr(float32(req.TopPOr(1))),
		})
	if err != nil {
		return nil, &ProviderError{Provider: Gemini, Message: err.Error()}
	}

	content := result.Text()

	return &Response{
		Content: content,
		Usage: Usage{
			TotalTokens: len(strings.Fields(content)),
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          model,
	}, nil
}

// AnalyzeImage sends the decoded image bytes inline with the prompt.
func (p *GeminiProvider) AnalyzeImage(ctx context.Context, base64Image, prompt string) (*Response, error) {
	start := time.Now()
	if prompt == "" {
		prompt = "Analyze this image in detail."
	}

	imgBytes, err := base64.StdEncoding.DecodeString(base64Image)
	if err != nil {
		return nil, &ProviderError{Provider: Gemini, Message: "invalid base64 image: " + err.Error()}
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(imgBytes, "image/jpeg"),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := p.client.Models.GenerateContent(ctx, defaultGeminiModel, contents, nil)
	if err != nil {
		return nil, &ProviderError{Provider: Gemini, Message: err.Error()}
	}

	content := result.Text()

	return &Response{
		Content: content,
		Usage: Usage{
			TotalTokens: len(strings.Fields(content)),
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          defaultGeminiModel,
	}, nil
}

func (p *GeminiProvider) CheckHealth(ctx context.Context) bool {
	_, err := p.client.Models.GenerateContent(ctx, defaultGeminiModel, genai.Text("Hello"),
		&genai.GenerateContentConfig{MaxOutputTokens: 10})
	return err == nil
}
