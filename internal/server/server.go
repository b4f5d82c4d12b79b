// Package server provides HTTP server initialization and lifecycle management
// for the promptcraft API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/promptcraft/internal/config"
	"github.com/scrypster/promptcraft/internal/logger"
	"github.com/scrypster/promptcraft/internal/services"
	"github.com/scrypster/promptcraft/web/handlers"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Service *services.PromptService

	// Backups is optional; leave nil when backups are disabled.
	Backups handlers.BackupRunner

	Logger *logger.Logger
}

// byMethod dispatches on the request method, answering 405 otherwise.
func byMethod(routes map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method]; ok {
			h(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"method not allowed","code":"METHOD_NOT_ALLOWED"}`))
	}
}

// NewHandler builds the full middleware chain and route table.
func NewHandler(cfg *config.Config, deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	prompts := handlers.NewPromptHandlers(deps.Service, log)
	templates := handlers.NewTemplateHandlers(deps.Service)
	executions := handlers.NewExecutionHandlers(deps.Service)
	drafts := handlers.NewDraftHandlers(deps.Service)
	system := handlers.NewSystemHandlers(cfg, deps.Backups)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/compose", prompts.Compose)
	apiMux.HandleFunc("/api/validate", prompts.Validate)
	apiMux.HandleFunc("/api/parse", prompts.Parse)
	apiMux.HandleFunc("/api/execute", prompts.Execute)
	apiMux.HandleFunc("/api/usage", prompts.Usage)

	apiMux.HandleFunc("/api/templates", byMethod(map[string]http.HandlerFunc{
		http.MethodGet:  templates.List,
		http.MethodPost: templates.Create,
	}))
	apiMux.HandleFunc("/api/templates/{id}", byMethod(map[string]http.HandlerFunc{
		http.MethodGet:    templates.Get,
		http.MethodPut:    templates.Update,
		http.MethodDelete: templates.Delete,
	}))
	apiMux.HandleFunc("/api/templates/{id}/export", templates.Export)
	apiMux.HandleFunc("/api/templates/import", templates.Import)
	apiMux.HandleFunc("/api/templates/import-library", templates.ImportLibrary)
	apiMux.HandleFunc("/api/imports/{job_id}", templates.ImportStatus)

	apiMux.HandleFunc("/api/executions", executions.List)
	apiMux.HandleFunc("/api/executions/{id}", executions.Get)
	apiMux.HandleFunc("/api/executions/{id}/csv", executions.CSV)

	apiMux.HandleFunc("/api/drafts/{name}", byMethod(map[string]http.HandlerFunc{
		http.MethodGet:    drafts.Get,
		http.MethodPut:    drafts.Put,
		http.MethodDelete: drafts.Delete,
	}))

	apiMux.HandleFunc("/api/config", system.Config)
	apiMux.HandleFunc("/api/backups", system.Backups)

	mux := http.NewServeMux()

	// Health endpoints, no auth required
	health := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	}
	mux.HandleFunc("/health", health)
	mux.HandleFunc("/api/health", health)

	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// Wrap entire server with rate limiting, then security headers
	rateLimiter := handlers.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	return handlers.SecurityHeaders(handler)
}

// Start listens on cfg.Server.Addr() and serves until ctx is cancelled.
// Returns the actual address being listened on (useful for testing with port 0).
func Start(ctx context.Context, cfg *config.Config, deps Deps) (string, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Execute waits on the model, so writes get the LLM timeout on top.
		WriteTimeout: 30*time.Second + cfg.LLM.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("server listening", "addr", actualAddr)
	return actualAddr, nil
}
