package summary

import (
	"context"
	"time"

	"github.com/nijaru/yt-summary/config"
	apperrors "github.com/nijaru/yt-summary/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingAPIKey = errors.New("summarization API key not configured")
	ErrBlocked       = errors.New("content blocked by the model")
	ErrNoCandidates  = errors.New("model returned no text")
)

// Provider sends a single payload to a generative model and returns its text.
type Provider interface {
	Generate(ctx context.Context, payload string) (string, error)
	Name() string
}

// BuildPayload places the prompt directly before the transcript with no
// separator.
func BuildPayload(prompt, text string) string {
	return prompt + text
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(cfg config.SummaryConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, errors.Errorf("unknown summary provider %q", cfg.Provider)
	}
}

type Client struct {
	provider Provider
	logger   *logrus.Logger
}

func NewClient(provider Provider) *Client {
	return &Client{
		provider: provider,
		logger:   logrus.StandardLogger(),
	}
}

// Model returns the identifier of the configured model.
func (c *Client) Model() string {
	return c.provider.Name()
}

// Summarize sends prompt+text to the provider once. The reply is returned
// verbatim; its length is left to the prompt.
func (c *Client) Summarize(ctx context.Context, text, prompt string) (string, error) {
	const op = "SummaryClient.Summarize"

	if text == "" {
		return "", apperrors.TranscriptUnavailable(op, errors.New("empty transcript"))
	}

	logger := c.logger.WithContext(ctx).WithFields(logrus.Fields{
		"model":      c.provider.Name(),
		"input_size": len(text),
	})

	start := time.Now()
	summary, err := c.provider.Generate(ctx, BuildPayload(prompt, text))
	if err != nil {
		logger.WithError(err).Error("Summary generation failed")
		return "", apperrors.SummarizationFailed(op, err)
	}

	logger.WithFields(logrus.Fields{
		"duration":    time.Since(start),
		"output_size": len(summary),
	}).Info("Summary generated")
	return summary, nil
}
