package providers

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIProvider adapts unified requests to the OpenAI chat completions API
// through the official SDK.
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAI builds the adapter. Extra request options (e.g. a base URL
// override) are passed through to the SDK client.
func NewOpenAI(apiKey string, opts ...option.RequestOption) *OpenAIProvider {
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIProvider{client: openai.NewClient(all...)}
}

func (p *OpenAIProvider) Name() string { return OpenAI }

func (p *OpenAIProvider) Models() []string {
	return []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"}
}

func (p *OpenAIProvider) Process(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model := req.ModelOr(defaultOpenAIModel)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Temperature: openai.Float(req.TemperatureOr(0.7)),
		MaxTokens:   openai.Int(int64(req.MaxTokensOr(500))),
		TopP:        openai.Float(req.TopPOr(1)),
	})
	if err != nil {
		return nil, &ProviderError{Provider: OpenAI, Message: err.Error()}
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          model,
	}, nil
}

// AnalyzeImage sends the image as a data-URI content part alongside the
// prompt in a single multipart user message.
func (p *OpenAIProvider) AnalyzeImage(ctx context.Context, base64Image, prompt string) (*Response, error) {
	start := time.Now()
	if prompt == "" {
		prompt = "Analyze this image in detail."
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: "data:image/jpeg;base64," + base64Image,
		}),
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(defaultOpenAIModel),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
		MaxTokens: openai.Int(500),
	})
	if err != nil {
		return nil, &ProviderError{Provider: OpenAI, Message: err.Error()}
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          defaultOpenAIModel,
	}, nil
}

func (p *OpenAIProvider) CheckHealth(ctx context.Context) bool {
	_, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     defaultOpenAIModel,
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("Hello")},
		MaxTokens: openai.Int(10),
	})
	return err == nil
}
