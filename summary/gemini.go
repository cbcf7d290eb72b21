package summary

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const maxErrorDetail = 200

// GeminiProvider calls generateContent through the Gen AI SDK.
type GeminiProvider struct {
	model  string
	client *genai.Client
	err    error
}

// NewGeminiProvider never fails. A missing key or a client that cannot be
// built is reported by Generate instead.
func NewGeminiProvider(apiKey, model, baseURL string, timeout time.Duration) *GeminiProvider {
	p := &GeminiProvider{model: strings.TrimPrefix(model, "models/")}
	if apiKey == "" {
		p.err = ErrMissingAPIKey
		return p
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		p.err = errors.Wrap(err, "failed to create gemini client")
		return p
	}
	p.client = client
	return p
}

func (p *GeminiProvider) Name() string {
	return p.model
}

func (p *GeminiProvider) Generate(ctx context.Context, payload string) (string, error) {
	if p.client == nil {
		return "", p.err
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(payload), nil)
	if err != nil {
		return "", errors.Errorf("gemini API error: %s", truncate(err.Error(), maxErrorDetail))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", errors.Wrap(ErrBlocked, string(resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	text := resp.Text()
	if text == "" {
		if reason := resp.Candidates[0].FinishReason; reason == genai.FinishReasonSafety {
			return "", errors.Wrap(ErrBlocked, string(reason))
		}
		return "", ErrNoCandidates
	}
	return text, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "...(truncated)"
}
