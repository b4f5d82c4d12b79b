package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	APIKey  string
	Model   string        // default: claude-3-5-haiku-latest
	BaseURL string        // default: https://api.anthropic.com/v1
	Timeout time.Duration // default: 60s
}

// AnthropicClient invokes the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

var _ Invoker = (*AnthropicClient)(nil)

// NewAnthropicClient creates a client. An API key is required.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	return &AnthropicClient{client: anthropic.NewClient(cfg.APIKey, opts...), model: cfg.Model}, nil
}

// Name returns "anthropic".
func (c *AnthropicClient) Name() string { return "anthropic" }

// Invoke sends the final prompt as a single user message with the system prompt.
func (c *AnthropicClient) Invoke(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(modelFor(req, c.model)),
		System:    req.SystemPrompt,
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(req.FinalPrompt)},
		MaxTokens: maxTokens(req),
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText {
			sb.WriteString(block.GetText())
		}
	}
	if sb.Len() == 0 {
		return Response{}, fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}

	return Response{
		Text:       sb.String(),
		Model:      string(resp.Model),
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}
