package handlers

import (
	"net/http"
	"strings"

	"github.com/scrypster/promptcraft/internal/engine"
	"github.com/scrypster/promptcraft/internal/export"
	"github.com/scrypster/promptcraft/internal/logger"
	"github.com/scrypster/promptcraft/internal/services"
	"github.com/scrypster/promptcraft/pkg/types"
)

// PromptHandlers serves composition, validation, parsing and execution.
type PromptHandlers struct {
	svc *services.PromptService
	log *logger.Logger
}

// NewPromptHandlers creates PromptHandlers backed by svc.
func NewPromptHandlers(svc *services.PromptService, log *logger.Logger) *PromptHandlers {
	if log == nil {
		log = logger.Nop()
	}
	return &PromptHandlers{svc: svc, log: log}
}

// Compose handles POST /api/compose. Invalid configurations get a 422 carrying
// the validation result.
func (h *PromptHandlers) Compose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var in types.PromptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.Compose(r.Context(), in)
	if err != nil {
		respondServiceError(w, "failed to compose prompt", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Validate handles POST /api/validate. The result is always 200; IsValid says
// whether composition would succeed.
func (h *PromptHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var in types.PromptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Validate(in))
}

// Parse handles POST /api/parse. With ?format=csv the alternatives are
// returned as CSV.
func (h *PromptHandlers) Parse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var req parseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	parsed := engine.ParseVSResponse(req.Response)

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		out, err := export.ResponsesCSV(parsed.Responses)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to render CSV", err)
			return
		}
		respondText(w, "text/csv; charset=utf-8", out)
		return
	}
	respondJSON(w, http.StatusOK, parsed)
}

// Execute handles POST /api/execute.
func (h *PromptHandlers) Execute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var req services.ExecuteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.Execute(r.Context(), req)
	if err != nil {
		h.log.Warn("execute failed", "error", err)
		respondServiceError(w, "failed to execute prompt", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Usage handles GET /api/usage.
func (h *PromptHandlers) Usage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	usage, err := h.svc.Usage(r.Context())
	if err != nil {
		respondServiceError(w, "failed to read usage", err)
		return
	}
	respondJSON(w, http.StatusOK, usage)
}
