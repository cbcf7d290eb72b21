package summary

import (
	"context"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/pkg/errors"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
	hasKey bool
}

func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		hasKey: apiKey != "",
	}
}

func (p *OpenAIProvider) Name() string {
	return p.model
}

func (p *OpenAIProvider) Generate(ctx context.Context, payload string) (string, error) {
	if !p.hasKey {
		return "", ErrMissingAPIKey
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(payload),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoCandidates
	}
	return resp.Choices[0].Message.Content, nil
}
