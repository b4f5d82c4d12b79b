package storage

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists indicates that a resource with the same ID is already stored.
	ErrAlreadyExists = errors.New("resource already exists")
)

// PaginatedResult represents a paginated result set with type safety using generics.
type PaginatedResult[T any] struct {
	// Items is the slice of results for the current page.
	Items []T `json:"items"`

	// Total is the total number of items across all pages.
	Total int `json:"total"`

	// Page is the current page number (1-indexed).
	Page int `json:"page"`

	// PageSize is the number of items per page.
	PageSize int `json:"pageSize"`

	// HasMore indicates whether there are more pages available.
	HasMore bool `json:"hasMore"`
}

// NewPaginatedResult fills the paging fields from opts and total.
func NewPaginatedResult[T any](items []T, total int, opts ListOptions) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}
}

// ListOptions provides pagination and filtering options for list operations.
type ListOptions struct {
	// Page is the page number to retrieve (1-indexed, default: 1).
	Page int

	// Limit is the number of items per page (default: 20, max: 100).
	Limit int

	// SortBy is one of "name", "created_at" or "updated_at".
	SortBy string

	// SortOrder is "asc" or "desc" (default "desc").
	SortOrder string

	// Tag restricts template listings to templates carrying this tag.
	Tag string
}

// Normalize applies defaults and validates the ListOptions.
func (o *ListOptions) Normalize() {
	// Whitelist validation for SortBy to prevent SQL injection
	allowedSortFields := map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSortFields[o.SortBy] {
		o.SortBy = "created_at"
	}
	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = "desc"
	}
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	o.Tag = strings.TrimSpace(o.Tag)
}

// Offset returns the row offset for the current page.
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// LikePattern builds a case-insensitive substring pattern for SQL LIKE, escaping
// wildcards with a backslash. Callers must use ESCAPE '\'.
func LikePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}
