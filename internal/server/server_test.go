package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/promptcraft/internal/config"
	"github.com/scrypster/promptcraft/internal/server"
	"github.com/scrypster/promptcraft/internal/services"
	"github.com/scrypster/promptcraft/internal/storage/memory"
	"github.com/scrypster/promptcraft/internal/storage/sqlite"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Security: config.SecurityConfig{
			Mode:           "development",
			RateLimitRPS:   100,
			RateLimitBurst: 100,
		},
	}
}

func testDeps(t *testing.T) server.Deps {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "promptcraft.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, err := services.NewPromptService(services.Options{
		Templates:  store.Templates(),
		Executions: store.Executions(),
		KV:         memory.NewKVStore(),
	})
	require.NoError(t, err)
	return server.Deps{Service: svc}
}

func do(t *testing.T, h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	h := server.NewHandler(testConfig(), testDeps(t))
	validInput := `{"config":{"basePrompt":"Summarise the meeting notes for the team."}}`

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"api health", http.MethodGet, "/api/health", "", http.StatusOK},
		{"compose", http.MethodPost, "/api/compose", validInput, http.StatusOK},
		{"compose invalid", http.MethodPost, "/api/compose", `{"config":{"basePrompt":""}}`, http.StatusUnprocessableEntity},
		{"validate", http.MethodPost, "/api/validate", validInput, http.StatusOK},
		{"parse", http.MethodPost, "/api/parse", `{"response":"1. A (Probability: 0.5)"}`, http.StatusOK},
		{"execute without provider", http.MethodPost, "/api/execute", `{"input":` + validInput + `}`, http.StatusServiceUnavailable},
		{"list templates", http.MethodGet, "/api/templates", "", http.StatusOK},
		{"templates wrong method", http.MethodPatch, "/api/templates", "", http.StatusMethodNotAllowed},
		{"missing template", http.MethodGet, "/api/templates/nope", "", http.StatusNotFound},
		{"import invalid", http.MethodPost, "/api/templates/import", `{}`, http.StatusBadRequest},
		{"executions need session", http.MethodGet, "/api/executions", "", http.StatusBadRequest},
		{"missing draft", http.MethodGet, "/api/drafts/none", "", http.StatusNotFound},
		{"usage", http.MethodGet, "/api/usage", "", http.StatusOK},
		{"config", http.MethodGet, "/api/config", "", http.StatusOK},
		{"backups disabled", http.MethodGet, "/api/backups", "", http.StatusNotFound},
		{"unknown import job", http.MethodGet, "/api/imports/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestTemplateLifecycle(t *testing.T) {
	h := server.NewHandler(testConfig(), testDeps(t))

	w := do(t, h, http.MethodPost, "/api/templates",
		`{"name":"Standup","config":{"basePrompt":"Summarise yesterday's standup."},"tags":["meetings"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, h, http.MethodGet, "/api/templates/"+created.ID+"/export?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Prompt Export")

	w = do(t, h, http.MethodGet, "/api/templates?tag=meetings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)

	w = do(t, h, http.MethodDelete, "/api/templates/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthInProductionMode(t *testing.T) {
	cfg := testConfig()
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = "s3cret"
	h := server.NewHandler(cfg, testDeps(t))

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/usage", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/usage", "", "Authorization", "Bearer s3cret").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitRPS = 1
	cfg.Security.RateLimitBurst = 1
	h := server.NewHandler(cfg, testDeps(t))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestStart_ServesAndShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := server.Start(ctx, testConfig(), testDeps(t))
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","version":"`+server.Version+`"}`, string(body))

	cancel()
	assert.Eventually(t, func() bool {
		_, err := client.Get("http://" + addr + "/health")
		return err != nil
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStart_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "256.0.0.1"
	_, err := server.Start(context.Background(), cfg, testDeps(t))
	assert.Error(t, err)
}
