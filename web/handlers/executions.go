package handlers

import (
	"fmt"
	"net/http"

	"github.com/scrypster/promptcraft/internal/services"
)

// ExecutionHandlers serves the execution log.
type ExecutionHandlers struct {
	svc *services.PromptService
}

// NewExecutionHandlers creates ExecutionHandlers backed by svc.
func NewExecutionHandlers(svc *services.PromptService) *ExecutionHandlers {
	return &ExecutionHandlers{svc: svc}
}

// List handles GET /api/executions?session=….
func (h *ExecutionHandlers) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	opts := listOptions(r)
	result, err := h.svc.ListExecutions(r.Context(), r.URL.Query().Get("session"), opts)
	if err != nil {
		respondServiceError(w, "failed to list executions", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /api/executions/{id}.
func (h *ExecutionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	exec, err := h.svc.GetExecution(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, "execution not found", err)
		return
	}
	respondJSON(w, http.StatusOK, exec)
}

// CSV handles GET /api/executions/{id}/csv.
func (h *ExecutionHandlers) CSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	id := r.PathValue("id")
	out, err := h.svc.ExportExecutionCSV(r.Context(), id)
	if err != nil {
		respondServiceError(w, "failed to export execution", err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "execution-"+id+".csv"))
	respondText(w, "text/csv; charset=utf-8", out)
}
