// Package llm invokes language models with composed prompts. Every provider
// client implements Invoker; Resilient adds circuit breaking and retries.
package llm

import "context"

// Request is one prompt sent to a model.
type Request struct {
	FinalPrompt  string
	SystemPrompt string

	// Model overrides the client's configured model when non-empty.
	Model     string
	MaxTokens int
}

// Response is the model's answer.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Invoker sends a prompt to a model. Implementations are safe for concurrent use.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Response, error)
	Name() string
}

// DefaultMaxTokens is used when a request does not set MaxTokens.
const DefaultMaxTokens = 2048

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}

func modelFor(req Request, configured string) string {
	if req.Model != "" {
		return req.Model
	}
	return configured
}
