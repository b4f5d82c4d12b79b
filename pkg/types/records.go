package types

import "time"

// PromptMetadata describes how a GeneratedPrompt was produced.
type PromptMetadata struct {
	Domain    string    `json:"domain,omitempty"`
	Framework Framework `json:"framework,omitempty"`
	VSEnabled bool      `json:"vsEnabled"`
	Timestamp time.Time `json:"timestamp"`
}

// GeneratedPrompt is the output of one composition. A new composition always
// produces a new record; records are never mutated.
type GeneratedPrompt struct {
	SystemPrompt string         `json:"systemPrompt"`
	FinalPrompt  string         `json:"finalPrompt"`
	Metadata     PromptMetadata `json:"metadata"`
}

// PromptTemplate is a named, persisted snapshot of a full prompt configuration.
type PromptTemplate struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Config        BasePromptConfig  `json:"config"`
	VSEnhancement VSConfiguration   `json:"vsEnhancement"`
	Enhancements  EnhancementConfig `json:"enhancements"`
	Tags          []string          `json:"tags,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// ExecutionResult records one model invocation. Results are append-only per session.
type ExecutionResult struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"sessionId,omitempty"`
	Prompt     GeneratedPrompt `json:"generatedPrompt"`
	Response   string          `json:"response"`
	Model      string          `json:"model"`
	TokensUsed int             `json:"tokensUsed"`
	Timestamp  time.Time       `json:"timestamp"`
}

// PromptInput bundles everything the composer consumes.
type PromptInput struct {
	Config        BasePromptConfig  `json:"config"`
	Enhancements  EnhancementConfig `json:"enhancements"`
	VSEnhancement VSConfiguration   `json:"vsEnhancement"`
}

// Input returns the composition input captured by the template.
func (t PromptTemplate) Input() PromptInput {
	return PromptInput{
		Config:        t.Config,
		Enhancements:  t.Enhancements,
		VSEnhancement: t.VSEnhancement,
	}
}
