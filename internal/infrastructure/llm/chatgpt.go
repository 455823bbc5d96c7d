package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"TrendScanner/internal/config"
	"TrendScanner/internal/ports"
)

// ChatGPTGenerator implements ports.TextGenerator against OpenAI-compatible
// chat-completion endpoints.
type ChatGPTGenerator struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.TextGenerator = (*ChatGPTGenerator)(nil)

// NewChatGPTGenerator builds a generator from configuration.
func NewChatGPTGenerator(cfg config.GeneratorConfig) *ChatGPTGenerator {
	return &ChatGPTGenerator{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Submit posts the prompt as a single user message and returns the first
// choice's content. Transport and status failures map onto the ports error
// kinds so the retry policy can branch on them.
func (c *ChatGPTGenerator) Submit(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt generator misconfigured: %w", ports.ErrAuthFailed)
	}

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("chatgpt request: %w", ports.ErrTimeout)
		}
		return "", fmt.Errorf("chatgpt request: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chatgpt returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ports.RateLimitError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("chatgpt %s: %w", resp.Status, ports.ErrAuthFailed)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("chatgpt %s: %w", resp.Status, ports.ErrServerError)
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
}

func retryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
