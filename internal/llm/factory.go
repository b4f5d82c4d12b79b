package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/scrypster/promptcraft/internal/logger"
)

// Provider names accepted by NewInvoker.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration

	Resilience ResilientConfig
}

// NewInvoker builds the provider client named by cfg.Provider and wraps it in
// Resilient. An empty provider means Ollama.
func NewInvoker(cfg Config, log *logger.Logger) (*Resilient, error) {
	var inner Invoker
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		c, err := NewOpenAIClient(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		inner = c
	case ProviderAnthropic:
		c, err := NewAnthropicClient(AnthropicConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		inner = c
	case ProviderOllama, "":
		inner = NewOllamaClient(OllamaConfig{BaseURL: cfg.BaseURL, Model: cfg.Model, Timeout: cfg.Timeout})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
	return NewResilient(inner, cfg.Resilience, log), nil
}
