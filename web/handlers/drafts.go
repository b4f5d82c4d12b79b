package handlers

import (
	"net/http"

	"github.com/scrypster/promptcraft/internal/services"
	"github.com/scrypster/promptcraft/pkg/types"
)

// DraftHandlers serves named work-in-progress configurations.
type DraftHandlers struct {
	svc *services.PromptService
}

// NewDraftHandlers creates DraftHandlers backed by svc.
func NewDraftHandlers(svc *services.PromptService) *DraftHandlers {
	return &DraftHandlers{svc: svc}
}

// Get handles GET /api/drafts/{name}.
func (h *DraftHandlers) Get(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.LoadDraft(r.Context(), r.PathValue("name"))
	if err != nil {
		respondServiceError(w, "draft not found", err)
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// Put handles PUT /api/drafts/{name}.
func (h *DraftHandlers) Put(w http.ResponseWriter, r *http.Request) {
	var in types.PromptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.svc.SaveDraft(r.Context(), r.PathValue("name"), in); err != nil {
		respondServiceError(w, "failed to save draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/drafts/{name}.
func (h *DraftHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDraft(r.Context(), r.PathValue("name")); err != nil {
		respondServiceError(w, "failed to delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
