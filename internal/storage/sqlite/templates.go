package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/scrypster/promptcraft/internal/storage"
	"github.com/scrypster/promptcraft/pkg/types"
)

// TemplateStore implements storage.TemplateStore. The full template is kept as a
// JSON document; name, description, tags and timestamps are duplicated into
// columns for listing and search.
type TemplateStore struct {
	db *sql.DB
}

var _ storage.TemplateStore = (*TemplateStore)(nil)

type templateRow struct {
	tags     string
	document string
}

func encodeTemplate(t *types.PromptTemplate) (templateRow, error) {
	if t == nil {
		return templateRow{}, storage.ErrInvalidInput
	}
	if t.ID == "" {
		return templateRow{}, fmt.Errorf("%w: template ID is required", storage.ErrInvalidInput)
	}
	if strings.TrimSpace(t.Name) == "" {
		return templateRow{}, fmt.Errorf("%w: template name is required", storage.ErrInvalidInput)
	}

	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return templateRow{}, fmt.Errorf("failed to encode tags: %w", err)
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return templateRow{}, fmt.Errorf("failed to encode template: %w", err)
	}
	return templateRow{tags: string(tagsJSON), document: string(doc)}, nil
}

// Create stores a new template.
func (s *TemplateStore) Create(ctx context.Context, t *types.PromptTemplate) error {
	row, err := encodeTemplate(t)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, description, tags, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		t.ID, t.Name, t.Description, row.tags, row.document, t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: template %s", storage.ErrAlreadyExists, t.ID)
	}
	return nil
}

// Get retrieves a template by ID.
func (s *TemplateStore) Get(ctx context.Context, id string) (*types.PromptTemplate, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM templates WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return decodeTemplate(doc)
}

// Update replaces an existing template.
func (s *TemplateStore) Update(ctx context.Context, t *types.PromptTemplate) error {
	row, err := encodeTemplate(t)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name = ?, description = ?, tags = ?, document = ?, created_at = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Description, row.tags, row.document, t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a template by ID.
func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves templates with pagination, optionally filtered by tag.
func (s *TemplateStore) List(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.PromptTemplate], error) {
	return s.query(ctx, "", opts)
}

// Search matches query case-insensitively against name, description and tags.
func (s *TemplateStore) Search(ctx context.Context, query string, opts storage.ListOptions) (*storage.PaginatedResult[types.PromptTemplate], error) {
	return s.query(ctx, query, opts)
}

func (s *TemplateStore) query(ctx context.Context, search string, opts storage.ListOptions) (*storage.PaginatedResult[types.PromptTemplate], error) {
	opts.Normalize()

	var where []string
	var args []interface{}
	if strings.TrimSpace(search) != "" {
		p := storage.LikePattern(search)
		// Tags are matched one element at a time; the column holds JSON text.
		where = append(where, `(`+foldFunc+`(name) LIKE ? ESCAPE '\' OR `+foldFunc+`(description) LIKE ? ESCAPE '\' OR `+
			`EXISTS (SELECT 1 FROM json_each(templates.tags) WHERE `+foldFunc+`(json_each.value) LIKE ? ESCAPE '\'))`)
		args = append(args, p, p, p)
	}
	if opts.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(templates.tags) WHERE "+foldFunc+"(json_each.value) = ?)")
		args = append(args, strings.ToLower(strings.TrimSpace(opts.Tag)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM templates"+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}

	// SortBy and SortOrder are whitelisted by Normalize.
	q := fmt.Sprintf("SELECT document FROM templates%s ORDER BY %s %s, id ASC LIMIT ? OFFSET ?", clause, opts.SortBy, opts.SortOrder)
	rows, err := s.db.QueryContext(ctx, q, append(args, opts.Limit, opts.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var items []types.PromptTemplate
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		t, err := decodeTemplate(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return storage.NewPaginatedResult(items, total, opts), nil
}

func decodeTemplate(doc string) (*types.PromptTemplate, error) {
	var t types.PromptTemplate
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}
	return &t, nil
}
