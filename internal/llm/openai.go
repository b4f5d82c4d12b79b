package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey  string
	Model   string        // default: gpt-4o-mini
	BaseURL string        // default: https://api.openai.com/v1
	Timeout time.Duration // default: 60s
}

// OpenAIClient invokes the OpenAI chat completions API. Any OpenAI-compatible
// endpoint works through BaseURL.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

var _ Invoker = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client. An API key is required.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{client: openai.NewClientWithConfig(config), model: cfg.Model}, nil
}

// Name returns "openai".
func (c *OpenAIClient) Name() string { return "openai" }

// Invoke sends the system and final prompts as a two-message chat.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.FinalPrompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     modelFor(req, c.model),
		Messages:  messages,
		MaxTokens: maxTokens(req),
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	return Response{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
