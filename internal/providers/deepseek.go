package providers

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultDeepSeekModel   = "deepseek-chat"
	defaultDeepSeekBaseURL = "https://api.deepseek.com"
)

// DeepSeekProvider adapts unified requests to DeepSeek's OpenAI-compatible
// endpoint, reusing the OpenAI SDK with a different base URL.
type DeepSeekProvider struct {
	client openai.Client
}

func NewDeepSeek(apiKey string, opts ...option.RequestOption) *DeepSeekProvider {
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(defaultDeepSeekBaseURL),
	}, opts...)
	return &DeepSeekProvider{client: openai.NewClient(all...)}
}

func (p *DeepSeekProvider) Name() string { return DeepSeek }

func (p *DeepSeekProvider) Models() []string {
	return []string{"deepseek-chat", "deepseek-reasoner"}
}

func (p *DeepSeekProvider) Process(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model := req.ModelOr(defaultDeepSeekModel)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Temperature: openai.Float(req.TemperatureOr(0.7)),
		MaxTokens:   openai.Int(int64(req.MaxTokensOr(1024))),
	})
	if err != nil {
		return nil, &ProviderError{Provider: DeepSeek, Message: err.Error()}
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

func (p *DeepSeekProvider) CheckHealth(ctx context.Context) bool {
	_, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     defaultDeepSeekModel,
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("Hello")},
		MaxTokens: openai.Int(10),
	})
	return err == nil
}
