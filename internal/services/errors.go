package services

import (
	"errors"
	"fmt"

	"github.com/scrypster/promptcraft/pkg/types"
)

var (
	// ErrValidationFailed is wrapped by ValidationError when a configuration has
	// blocking validation errors.
	ErrValidationFailed = errors.New("prompt validation failed")

	// ErrNoInvoker is returned by Execute when no model is configured.
	ErrNoInvoker = errors.New("no LLM provider configured")

	// ErrInvocationFailed wraps every error returned by the model invoker.
	ErrInvocationFailed = errors.New("model invocation failed")
)

// ValidationError carries the result that blocked a composition.
type ValidationError struct {
	Result types.ValidationResult
}

func (e *ValidationError) Error() string {
	if len(e.Result.Errors) == 0 {
		return ErrValidationFailed.Error()
	}
	first := e.Result.Errors[0]
	if len(e.Result.Errors) == 1 {
		return fmt.Sprintf("%s: %s: %s", ErrValidationFailed, first.Field, first.Message)
	}
	return fmt.Sprintf("%s: %s: %s (and %d more)", ErrValidationFailed, first.Field, first.Message, len(e.Result.Errors)-1)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
