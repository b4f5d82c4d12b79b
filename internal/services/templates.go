package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scrypster/promptcraft/internal/export"
	"github.com/scrypster/promptcraft/internal/importer"
	"github.com/scrypster/promptcraft/internal/storage"
	"github.com/scrypster/promptcraft/pkg/types"
)

// SaveTemplate stores t as a new template. The ID and both timestamps are
// always assigned here.
func (s *PromptService) SaveTemplate(ctx context.Context, t *types.PromptTemplate) (*types.PromptTemplate, error) {
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	out := *t
	now := s.now().UTC()
	out.ID = s.newID()
	out.CreatedAt = now
	out.UpdatedAt = now
	if err := s.templates.Create(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	s.log.Info("template saved", "template_id", out.ID, "name", out.Name)
	return &out, nil
}

// GetTemplate returns the template with the given ID.
func (s *PromptService) GetTemplate(ctx context.Context, id string) (*types.PromptTemplate, error) {
	return s.templates.Get(ctx, id)
}

// UpdateTemplate replaces the template with t.ID, keeping its creation time.
func (s *PromptService) UpdateTemplate(ctx context.Context, t *types.PromptTemplate) (*types.PromptTemplate, error) {
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	existing, err := s.templates.Get(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	out := *t
	out.CreatedAt = existing.CreatedAt
	out.UpdatedAt = s.now().UTC()
	if err := s.templates.Update(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return &out, nil
}

// DeleteTemplate removes a template.
func (s *PromptService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("template deleted", "template_id", id)
	return nil
}

// ListTemplates pages through stored templates.
func (s *PromptService) ListTemplates(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.PromptTemplate], error) {
	return s.templates.List(ctx, opts)
}

// SearchTemplates matches query against name, description and tags.
func (s *PromptService) SearchTemplates(ctx context.Context, query string, opts storage.ListOptions) (*storage.PaginatedResult[types.PromptTemplate], error) {
	if strings.TrimSpace(query) == "" {
		return s.templates.List(ctx, opts)
	}
	return s.templates.Search(ctx, query, opts)
}

// ImportTemplate parses a template document and stores it. When the document's
// ID is already taken the template is stored under a fresh ID.
func (s *PromptService) ImportTemplate(ctx context.Context, data []byte) (*types.PromptTemplate, error) {
	t, err := export.ImportTemplate(data)
	if err != nil {
		return nil, err
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}

	err = s.templates.Create(ctx, t)
	if errors.Is(err, storage.ErrAlreadyExists) {
		original := t.ID
		t.ID = s.newID()
		s.log.Info("imported template id taken, assigning new id", "original_id", original, "template_id", t.ID)
		err = s.templates.Create(ctx, t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store imported template: %w", err)
	}
	return t, nil
}

// ExportTemplate renders a stored template. The json format produces the
// document ImportTemplate accepts; other formats render the composed prompt.
func (s *PromptService) ExportTemplate(ctx context.Context, id, format string) (string, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if format == "" || strings.EqualFold(format, export.FormatJSON) {
		return export.ExportTemplateJSON(*t)
	}
	return export.Render(format, export.NewBundle(t.Input(), nil, nil, s.now().UTC()))
}

// ExportExecutionCSV renders the alternatives parsed from an execution's
// response as CSV.
func (s *PromptService) ExportExecutionCSV(ctx context.Context, id string) (string, error) {
	exec, err := s.executions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return export.ExportVSResponsesAsCSV(exec)
}

// ImportLibrary imports every Markdown prompt under dir synchronously.
func (s *PromptService) ImportLibrary(ctx context.Context, dir string) (*importer.ImportResult, error) {
	return s.library.Import(ctx, dir)
}

// StartLibraryImport imports dir in the background and returns the job ID.
func (s *PromptService) StartLibraryImport(ctx context.Context, dir string) (string, error) {
	return s.library.StartImport(ctx, dir)
}

// LibraryImportStatus reports the progress of an import job, and its result
// once finished.
func (s *PromptService) LibraryImportStatus(jobID string) (importer.ImportProgress, *importer.ImportResult, bool) {
	job, ok := s.library.Job(jobID)
	if !ok {
		return importer.ImportProgress{}, nil, false
	}
	return job.Progress(), s.library.JobResult(jobID), true
}

func checkTemplate(t *types.PromptTemplate) error {
	if t == nil {
		return fmt.Errorf("%w: template is required", storage.ErrInvalidInput)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", storage.ErrInvalidInput)
	}
	return nil
}
