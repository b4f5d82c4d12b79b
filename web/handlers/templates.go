package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/scrypster/promptcraft/internal/export"
	"github.com/scrypster/promptcraft/internal/services"
	"github.com/scrypster/promptcraft/pkg/types"
)

// TemplateHandlers serves template CRUD, export and import.
type TemplateHandlers struct {
	svc *services.PromptService
}

// NewTemplateHandlers creates TemplateHandlers backed by svc.
func NewTemplateHandlers(svc *services.PromptService) *TemplateHandlers {
	return &TemplateHandlers{svc: svc}
}

// List handles GET /api/templates. A q parameter switches to search.
func (h *TemplateHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	result, err := h.svc.SearchTemplates(r.Context(), r.URL.Query().Get("q"), opts)
	if err != nil {
		respondServiceError(w, "failed to list templates", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create handles POST /api/templates.
func (h *TemplateHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var t types.PromptTemplate
	if !decodeJSON(w, r, &t) {
		return
	}
	saved, err := h.svc.SaveTemplate(r.Context(), &t)
	if err != nil {
		respondServiceError(w, "failed to save template", err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// Get handles GET /api/templates/{id}.
func (h *TemplateHandlers) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, "template not found", err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// Update handles PUT /api/templates/{id}. The path ID wins over the body.
func (h *TemplateHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var t types.PromptTemplate
	if !decodeJSON(w, r, &t) {
		return
	}
	t.ID = r.PathValue("id")
	updated, err := h.svc.UpdateTemplate(r.Context(), &t)
	if err != nil {
		respondServiceError(w, "failed to update template", err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/templates/{id}.
func (h *TemplateHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, "failed to delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var exportContentTypes = map[string]string{
	export.FormatJSON:     "application/json",
	export.FormatText:     "text/plain; charset=utf-8",
	export.FormatMarkdown: "text/markdown; charset=utf-8",
	export.FormatYAML:     "application/yaml",
}

// Export handles GET /api/templates/{id}/export?format=json|text|markdown|yaml.
func (h *TemplateHandlers) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatJSON
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		respondErrorCode(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", fmt.Sprintf("unsupported export format %q", format), nil)
		return
	}

	id := r.PathValue("id")
	out, err := h.svc.ExportTemplate(r.Context(), id, format)
	if err != nil {
		respondServiceError(w, "failed to export template", err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "template-"+id+"."+format))
	respondText(w, contentType, out)
}

// Import handles POST /api/templates/import. The body is a template document
// as produced by the json export.
func (h *TemplateHandlers) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to read request body", err)
		return
	}
	t, err := h.svc.ImportTemplate(r.Context(), data)
	if err != nil {
		respondServiceError(w, "failed to import template", err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// ImportLibrary handles POST /api/templates/import-library.
// Accepts a JSON body with {"path": "/absolute/or/relative/path"} and starts an
// asynchronous import of every Markdown prompt below it.
func (h *TemplateHandlers) ImportLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var req importByPathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		respondError(w, http.StatusBadRequest, "path is required", nil)
		return
	}

	dirPath, err := filepath.Abs(req.Path)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cannot resolve path", err)
		return
	}
	if info, err := os.Stat(dirPath); err != nil || !info.IsDir() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("directory not found: %s", req.Path), nil)
		return
	}

	// The job outlives the request.
	jobID, err := h.svc.StartLibraryImport(context.WithoutCancel(r.Context()), dirPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to start import", err)
		return
	}
	respondJSON(w, http.StatusAccepted, importJobResponse{
		JobID:   jobID,
		Message: fmt.Sprintf("Import started for %s", req.Path),
	})
}

// ImportStatus handles GET /api/imports/{job_id}.
// Returns live progress while running, and the full result when complete.
func (h *TemplateHandlers) ImportStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	progress, result, ok := h.svc.LibraryImportStatus(r.PathValue("job_id"))
	if !ok {
		respondErrorCode(w, http.StatusNotFound, "NOT_FOUND", "import job not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, importStatusResponse{Progress: progress, Result: result})
}
