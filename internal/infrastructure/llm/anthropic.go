package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"TrendScanner/internal/config"
	"TrendScanner/internal/ports"
)

// AnthropicGenerator implements ports.TextGenerator via the Anthropic
// Messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ ports.TextGenerator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator builds a generator from configuration.
func NewAnthropicGenerator(cfg config.GeneratorConfig) *AnthropicGenerator {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}
	return &AnthropicGenerator{
		client: &client,
		model:  model,
	}
}

// Submit sends the prompt as a single user message and concatenates the text
// blocks of the reply.
func (a *AnthropicGenerator) Submit(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", mapAnthropicError(err)
	}

	var text string
	for _, block := range resp.Content {
		text += block.Text
	}
	if text == "" {
		return "", fmt.Errorf("no response from anthropic")
	}
	return text, nil
}

func mapAnthropicError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("anthropic request: %w", ports.ErrTimeout)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ports.RateLimitError{}
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return fmt.Errorf("anthropic %d: %w", apiErr.StatusCode, ports.ErrAuthFailed)
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("anthropic %d: %w", apiErr.StatusCode, ports.ErrServerError)
		}
	}

	return fmt.Errorf("anthropic request: %w", err)
}
