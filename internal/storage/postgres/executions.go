package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scrypster/promptcraft/internal/storage"
	"github.com/scrypster/promptcraft/pkg/types"
)

// ExecutionStore implements storage.ExecutionStore using PostgreSQL.
type ExecutionStore struct {
	db *sql.DB
}

var _ storage.ExecutionStore = (*ExecutionStore)(nil)

// Append records a new execution.
func (s *ExecutionStore) Append(ctx context.Context, r *types.ExecutionResult) error {
	if r == nil {
		return storage.ErrInvalidInput
	}
	if r.ID == "" {
		return fmt.Errorf("%w: execution ID is required", storage.ErrInvalidInput)
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode execution: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (id, session_id, model, tokens_used, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		r.ID, r.SessionID, r.Model, r.TokensUsed, string(doc), r.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("postgres: failed to insert execution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: execution %s", storage.ErrAlreadyExists, r.ID)
	}
	return nil
}

// Get retrieves an execution by ID.
func (s *ExecutionStore) Get(ctx context.Context, id string) (*types.ExecutionResult, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, "SELECT document FROM executions WHERE id = $1", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get execution: %w", err)
	}
	var r types.ExecutionResult
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("postgres: failed to decode execution: %w", err)
	}
	return &r, nil
}

// ListBySession returns the executions of a session in insertion order.
func (s *ExecutionStore) ListBySession(ctx context.Context, sessionID string, opts storage.ListOptions) (*storage.PaginatedResult[types.ExecutionResult], error) {
	opts.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions WHERE session_id = $1", sessionID).Scan(&total); err != nil {
		return nil, fmt.Errorf("postgres: failed to count executions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT document FROM executions WHERE session_id = $1 ORDER BY seq ASC LIMIT $2 OFFSET $3",
		sessionID, opts.Limit, opts.Offset())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list executions: %w", err)
	}
	defer rows.Close()

	var items []types.ExecutionResult
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan execution: %w", err)
		}
		var r types.ExecutionResult
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("postgres: failed to decode execution: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate executions: %w", err)
	}
	return storage.NewPaginatedResult(items, total, opts), nil
}
