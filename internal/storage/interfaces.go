// Package storage provides composable storage interfaces for promptcraft.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed: SQLite implements all of
// them, PostgreSQL the relational ones, Redis and the in-memory store only KVStore.
package storage

import (
	"context"

	"github.com/scrypster/promptcraft/pkg/types"
)

// TemplateStore persists prompt templates.
type TemplateStore interface {
	// Create stores a new template.
	// Returns ErrAlreadyExists if a template with the same ID exists.
	Create(ctx context.Context, t *types.PromptTemplate) error

	// Get retrieves a template by ID.
	// Returns ErrNotFound if the template doesn't exist.
	Get(ctx context.Context, id string) (*types.PromptTemplate, error)

	// Update replaces an existing template.
	// Returns ErrNotFound if the template doesn't exist.
	Update(ctx context.Context, t *types.PromptTemplate) error

	// Delete removes a template by ID.
	// Returns ErrNotFound if the template doesn't exist.
	Delete(ctx context.Context, id string) error

	// List retrieves templates with pagination.
	List(ctx context.Context, opts ListOptions) (*PaginatedResult[types.PromptTemplate], error)

	// Search matches query case-insensitively against name, description and tags.
	Search(ctx context.Context, query string, opts ListOptions) (*PaginatedResult[types.PromptTemplate], error)
}

// ExecutionStore is an append-only log of model executions.
type ExecutionStore interface {
	// Append records a new execution.
	// Returns ErrAlreadyExists if an execution with the same ID exists.
	Append(ctx context.Context, r *types.ExecutionResult) error

	// Get retrieves an execution by ID.
	// Returns ErrNotFound if the execution doesn't exist.
	Get(ctx context.Context, id string) (*types.ExecutionResult, error)

	// ListBySession returns the executions of a session, oldest first.
	ListBySession(ctx context.Context, sessionID string, opts ListOptions) (*PaginatedResult[types.ExecutionResult], error)
}

// KVStore holds small opaque values: drafts, preferences and usage counters.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key.
	// Returns ErrNotFound if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Incr atomically adds delta to the integer stored under key, treating a
	// missing key as zero, and returns the new value.
	Incr(ctx context.Context, key string, delta int64) (int64, error)
}
