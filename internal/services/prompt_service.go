// Package services holds the application layer: it ties the pure prompt engine
// to persistence, the key-value store and the model invoker.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/promptcraft/internal/engine"
	"github.com/scrypster/promptcraft/internal/importer"
	"github.com/scrypster/promptcraft/internal/llm"
	"github.com/scrypster/promptcraft/internal/logger"
	"github.com/scrypster/promptcraft/internal/storage"
	"github.com/scrypster/promptcraft/pkg/types"
)

// Usage counter keys in the KV store.
const (
	KeyCompositions = "usage:compositions"
	KeyExecutions   = "usage:executions"
	KeyTokens       = "usage:tokens"
)

// Options wires the collaborators of a PromptService. Invoker may be nil, in
// which case Execute returns ErrNoInvoker.
type Options struct {
	Templates  storage.TemplateStore
	Executions storage.ExecutionStore
	KV         storage.KVStore
	Invoker    llm.Invoker
	Logger     *logger.Logger

	// MaxTokens is used when an execute request does not set one.
	MaxTokens int
}

// PromptService validates, composes, executes and stores prompts.
type PromptService struct {
	templates  storage.TemplateStore
	executions storage.ExecutionStore
	kv         storage.KVStore
	invoker    llm.Invoker
	library    *importer.LibraryImporter
	log        *logger.Logger
	maxTokens  int

	now   func() time.Time
	newID func() string
}

// NewPromptService creates a PromptService. Templates, Executions and KV are required.
func NewPromptService(opts Options) (*PromptService, error) {
	if opts.Templates == nil || opts.Executions == nil || opts.KV == nil {
		return nil, fmt.Errorf("services: template, execution and kv stores are required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &PromptService{
		templates:  opts.Templates,
		executions: opts.Executions,
		kv:         opts.KV,
		invoker:    opts.Invoker,
		library:    importer.NewLibraryImporter(opts.Templates, log),
		log:        log.With("component", "prompt_service"),
		maxTokens:  opts.MaxTokens,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// ComposeResult is a composed prompt together with the validation that
// preceded it. Validation may carry warnings.
type ComposeResult struct {
	Prompt     types.GeneratedPrompt  `json:"generatedPrompt"`
	Validation types.ValidationResult `json:"validation"`
}

// Validate runs every validator over in.
func (s *PromptService) Validate(in types.PromptInput) types.ValidationResult {
	return engine.ValidateCompletePromptConfig(in)
}

// Compose validates in and composes it. A result with errors yields a
// *ValidationError wrapping ErrValidationFailed.
func (s *PromptService) Compose(ctx context.Context, in types.PromptInput) (*ComposeResult, error) {
	result, err := s.compose(in)
	if err != nil {
		return nil, err
	}
	s.incr(ctx, KeyCompositions, 1)
	return result, nil
}

func (s *PromptService) compose(in types.PromptInput) (*ComposeResult, error) {
	validation := s.Validate(in)
	if !validation.IsValid {
		return nil, &ValidationError{Result: validation}
	}
	return &ComposeResult{
		Prompt:     engine.GenerateEnhancedPrompt(in, s.now().UTC()),
		Validation: validation,
	}, nil
}

// ExecuteRequest asks for a composition to be sent to a model. An empty
// SessionID starts a new session.
type ExecuteRequest struct {
	Input     types.PromptInput `json:"input"`
	Model     string            `json:"model,omitempty"`
	MaxTokens int               `json:"maxTokens,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
}

// ExecuteResult is the recorded execution plus the parsed alternatives when
// verbalized sampling was enabled.
type ExecuteResult struct {
	Execution  types.ExecutionResult   `json:"executionResult"`
	Parsed     *types.ParsedVSResponse `json:"parsed,omitempty"`
	Validation types.ValidationResult  `json:"validation"`
}

// Execute composes req.Input, invokes the model and appends the result to the
// session's execution log.
func (s *PromptService) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	if s.invoker == nil {
		return nil, ErrNoInvoker
	}
	composed, err := s.compose(req.Input)
	if err != nil {
		return nil, err
	}
	s.incr(ctx, KeyCompositions, 1)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	start := s.now()
	resp, err := s.invoker.Invoke(ctx, llm.Request{
		FinalPrompt:  composed.Prompt.FinalPrompt,
		SystemPrompt: composed.Prompt.SystemPrompt,
		Model:        req.Model,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		s.log.Warn("model invocation failed", "provider", s.invoker.Name(), "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrInvocationFailed, s.invoker.Name(), err)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	}
	exec := types.ExecutionResult{
		ID:         s.newID(),
		SessionID:  sessionID,
		Prompt:     composed.Prompt,
		Response:   resp.Text,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
		Timestamp:  s.now().UTC(),
	}
	if err := s.executions.Append(ctx, &exec); err != nil {
		return nil, fmt.Errorf("failed to record execution: %w", err)
	}

	s.incr(ctx, KeyExecutions, 1)
	if resp.TokensUsed > 0 {
		s.incr(ctx, KeyTokens, int64(resp.TokensUsed))
	}
	s.log.Info("prompt executed",
		"execution_id", exec.ID,
		"session_id", sessionID,
		"model", exec.Model,
		"tokens", exec.TokensUsed,
		"duration", s.now().Sub(start))

	out := &ExecuteResult{Execution: exec, Validation: composed.Validation}
	if req.Input.VSEnhancement.Enabled {
		parsed := engine.ParseVSResponse(resp.Text)
		out.Parsed = &parsed
	}
	return out, nil
}

// GetExecution returns one recorded execution.
func (s *PromptService) GetExecution(ctx context.Context, id string) (*types.ExecutionResult, error) {
	return s.executions.Get(ctx, id)
}

// ListExecutions returns a session's executions, oldest first.
func (s *PromptService) ListExecutions(ctx context.Context, sessionID string, opts storage.ListOptions) (*storage.PaginatedResult[types.ExecutionResult], error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session is required", storage.ErrInvalidInput)
	}
	return s.executions.ListBySession(ctx, sessionID, opts)
}

// Usage holds the service's running counters.
type Usage struct {
	Compositions int64 `json:"compositions"`
	Executions   int64 `json:"executions"`
	TokensUsed   int64 `json:"tokensUsed"`
}

// Usage reads the usage counters. Missing counters read as zero.
func (s *PromptService) Usage(ctx context.Context) (*Usage, error) {
	var u Usage
	for key, dst := range map[string]*int64{
		KeyCompositions: &u.Compositions,
		KeyExecutions:   &u.Executions,
		KeyTokens:       &u.TokensUsed,
	} {
		v, err := s.counter(ctx, key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return &u, nil
}

func (s *PromptService) counter(ctx context.Context, key string) (int64, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s holds %q: %w", key, raw, storage.ErrInvalidInput)
	}
	return n, nil
}

// incr bumps a usage counter. Counter failures are logged, never returned.
func (s *PromptService) incr(ctx context.Context, key string, delta int64) {
	if _, err := s.kv.Incr(ctx, key, delta); err != nil {
		s.log.Warn("failed to update usage counter", "key", key, "error", err)
	}
}
