package postgres

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

// TemplateStore implements storage.TemplateStore using PostgreSQL.
type TemplateStore struct {
	db *sql.DB
}

var _ storage.TemplateStore = (*TemplateStore)(nil)

func encodeTemplate(t *types.PromptTemplate) (tags, doc []byte, err error) {
	if t == nil {
		return nil, nil, storage.ErrInvalidInput
	}
	if t.ID == "" {
		return nil, nil, fmt.Errorf("%w: template ID is required", storage.ErrInvalidInput)
	}
	if strings.TrimSpace(t.Name) == "" {
		return nil, nil, fmt.Errorf("%w: template name is required", storage.ErrInvalidInput)
	}
	list := t.Tags
	if list == nil {
		list = []string{}
	}
	if tags, err = json.Marshal(list); err != nil {
		return nil, nil, fmt.Errorf("postgres: failed to encode tags: %w", err)
	}
	if doc, err = json.Marshal(t); err != nil {
		return nil, nil, fmt.Errorf("postgres: failed to encode template: %w", err)
	}
	return tags, doc, nil
}

// Create stores a new template.
func (s *TemplateStore) Create(ctx context.Context, t *types.PromptTemplate) error {
	tags, doc, err := encodeTemplate(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, description, tags, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.Name, t.Description, string(tags), string(doc), t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("postgres: failed to insert template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: template %s", storage.ErrAlreadyExists, t.ID)
	}
	return nil
}

// Get retrieves a template by ID.
func (s *TemplateStore) Get(ctx context.Context, id string) (*types.PromptTemplate, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, "SELECT document FROM templates WHERE id = $1", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get template: %w", err)
	}
	return decodeTemplate(doc)
}

// Update replaces an existing template.
func (s *TemplateStore) Update(ctx context.Context, t *types.PromptTemplate) error {
	tags, doc, err := encodeTemplate(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name = $1, description = $2, tags = $3, document = $4, created_at = $5, updated_at = $6
		WHERE id = $7`,
		t.Name, t.Description, string(tags), string(doc), t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(), t.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a template by ID.
func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete template: %w", err)
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
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if strings.TrimSpace(search) != "" {
		p := next(storage.LikePattern(search))
		where = append(where, fmt.Sprintf(`(lower(name) LIKE %[1]s ESCAPE '\' OR lower(description) LIKE %[1]s ESCAPE '\' OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS tag WHERE lower(tag) LIKE %[1]s ESCAPE '\'))`, p))
	}
	if opts.Tag != "" {
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS tag WHERE lower(tag) = lower(%s))", next(opts.Tag)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM templates"+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("postgres: failed to count templates: %w", err)
	}

	limit := next(opts.Limit)
	offset := next(opts.Offset())
	q := fmt.Sprintf("SELECT document FROM templates%s ORDER BY %s %s, id ASC LIMIT %s OFFSET %s",
		clause, opts.SortBy, opts.SortOrder, limit, offset)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list templates: %w", err)
	}
	defer rows.Close()

	var items []types.PromptTemplate
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan template: %w", err)
		}
		t, err := decodeTemplate(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate templates: %w", err)
	}
	return storage.NewPaginatedResult(items, total, opts), nil
}

func decodeTemplate(doc []byte) (*types.PromptTemplate, error) {
	var t types.PromptTemplate
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("postgres: failed to decode template: %w", err)
	}
	return &t, nil
}
