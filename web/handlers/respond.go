package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/scrypster/promptcraft/internal/export"
	"github.com/scrypster/promptcraft/internal/llm"
	"github.com/scrypster/promptcraft/internal/services"
	"github.com/scrypster/promptcraft/internal/storage"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// listOptions reads pagination and sorting from the query string.
func listOptions(r *http.Request) storage.ListOptions {
	q := r.URL.Query()
	opts := storage.ListOptions{
		Page:      parseInt(q.Get("page"), 1),
		Limit:     parseInt(q.Get("limit"), 20),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Tag:       q.Get("tag"),
	}
	opts.Normalize()
	return opts
}

// decodeJSON reads a bounded JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body", err)
		return false
	}
	return true
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are already sent; an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(data)
}

// respondText writes a non-JSON body.
func respondText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	respondErrorCode(w, statusCode, http.StatusText(statusCode), message, err)
}

func respondErrorCode(w http.ResponseWriter, statusCode int, code, message string, err error) {
	errResp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		errResp.Details = map[string]interface{}{"error": err.Error()}
	}
	respondJSON(w, statusCode, errResp)
}

// respondServiceError maps service and storage errors to HTTP responses.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "prompt configuration is invalid",
			Code:    "VALIDATION_FAILED",
			Details: map[string]interface{}{"validation": verr.Result},
		})
	case errors.Is(err, storage.ErrNotFound):
		respondErrorCode(w, http.StatusNotFound, "NOT_FOUND", message, err)
	case errors.Is(err, storage.ErrInvalidInput):
		respondErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", message, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		respondErrorCode(w, http.StatusConflict, "ALREADY_EXISTS", message, err)
	case errors.Is(err, export.ErrInvalidTemplate):
		respondErrorCode(w, http.StatusBadRequest, "INVALID_TEMPLATE", message, err)
	case errors.Is(err, export.ErrMissingExecutionResult):
		respondErrorCode(w, http.StatusBadRequest, "MISSING_EXECUTION", message, err)
	case errors.Is(err, services.ErrNoInvoker), errors.Is(err, llm.ErrCircuitOpen):
		respondErrorCode(w, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", message, err)
	case errors.Is(err, services.ErrInvocationFailed):
		respondErrorCode(w, http.StatusBadGateway, "LLM_ERROR", message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondErrorCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", fmt.Sprintf("method %s not allowed", r.Method), nil)
}
