package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig holds Ollama client configuration.
type OllamaConfig struct {
	// BaseURL is the Ollama API root (default: http://localhost:11434).
	BaseURL string

	// Model is the model name (default: qwen2.5:7b).
	Model string

	// Timeout is the request timeout (default: 120s; local models are slow).
	Timeout time.Duration
}

// OllamaClient invokes a local model through Ollama's /api/generate endpoint.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ Invoker = (*OllamaClient)(nil)

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumPredict int `json:"num_predict"`
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// NewOllamaClient creates a client, applying defaults for empty fields.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen2.5:7b"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns "ollama".
func (c *OllamaClient) Name() string { return "ollama" }

// Invoke runs a non-streaming generation.
func (c *OllamaClient) Invoke(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(generateRequest{
		Model:   modelFor(req, c.model),
		Prompt:  req.FinalPrompt,
		System:  req.SystemPrompt,
		Stream:  false,
		Options: generateOptions{NumPredict: maxTokens(req)},
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("ollama: failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Response{}, &StatusError{Provider: "ollama", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("ollama: failed to decode response: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return Response{}, fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}

	model := out.Model
	if model == "" {
		model = modelFor(req, c.model)
	}
	return Response{
		Text:       out.Response,
		Model:      model,
		TokensUsed: out.PromptEvalCount + out.EvalCount,
	}, nil
}
