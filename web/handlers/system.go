package handlers

import (
	"context"
	"net/http"

	"github.com/scrypster/promptcraft/internal/backup"
	"github.com/scrypster/promptcraft/internal/config"
)

// BackupRunner is the part of the backup service the API exposes.
type BackupRunner interface {
	BackupNow(ctx context.Context) (*backup.Result, error)
	List() ([]backup.Info, error)
	Health() (*backup.HealthStatus, error)
}

// SystemHandlers serves configuration and backup endpoints.
type SystemHandlers struct {
	cfg     *config.Config
	backups BackupRunner
}

// NewSystemHandlers creates SystemHandlers. backups may be nil when backups
// are disabled.
func NewSystemHandlers(cfg *config.Config, backups BackupRunner) *SystemHandlers {
	return &SystemHandlers{cfg: cfg, backups: backups}
}

// Config handles GET /api/config.
func (h *SystemHandlers) Config(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	respondJSON(w, http.StatusOK, ToConfigResponse(h.cfg))
}

// Backups handles GET /api/backups (list with health) and POST /api/backups
// (run a backup now).
func (h *SystemHandlers) Backups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		respondErrorCode(w, http.StatusNotFound, "BACKUPS_DISABLED", "backups are disabled", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := h.backups.List()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to list backups", err)
			return
		}
		health, err := h.backups.Health()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to read backup health", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"backups": list,
			"health":  health,
		})
	case http.MethodPost:
		result, err := h.backups.BackupNow(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "backup failed", err)
			return
		}
		respondJSON(w, http.StatusCreated, result)
	default:
		methodNotAllowed(w, r)
	}
}
