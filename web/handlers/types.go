package handlers

import (
	"github.com/scrypster/promptcraft/internal/config"
	"github.com/scrypster/promptcraft/internal/importer"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ConfigResponse is the response format for GET /api/config.
// API keys are masked.
type ConfigResponse struct {
	LLM     LLMConfigResponse `json:"llm"`
	Storage StorageConfig     `json:"storage"`
	Backup  BackupConfig      `json:"backup"`
}

// LLMConfigResponse contains LLM configuration with masked API keys.
type LLMConfigResponse struct {
	Provider        string `json:"provider"`
	OllamaURL       string `json:"ollama_url"`
	OllamaModel     string `json:"ollama_model"`
	OpenAIAPIKey    string `json:"openai_api_key"` // Masked
	OpenAIModel     string `json:"openai_model"`
	AnthropicAPIKey string `json:"anthropic_api_key"` // Masked
	AnthropicModel  string `json:"anthropic_model"`
	MaxTokens       int    `json:"max_tokens"`
}

// StorageConfig names the active backends.
type StorageConfig struct {
	Engine    string `json:"engine"`
	KVBackend string `json:"kv_backend"`
}

// BackupConfig contains backup settings.
type BackupConfig struct {
	Enabled   bool   `json:"enabled"`
	Schedule  string `json:"schedule"`
	Retention int    `json:"retention"`
}

// parseRequest is the body of POST /api/parse.
type parseRequest struct {
	Response string `json:"response"`
}

// importByPathRequest is the JSON body for POST /api/templates/import-library.
type importByPathRequest struct {
	// Path is a directory accessible on the server's filesystem.
	Path string `json:"path"`
}

// importJobResponse is returned immediately after starting an import.
type importJobResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type importStatusResponse struct {
	Progress importer.ImportProgress `json:"progress"`
	Result   *importer.ImportResult  `json:"result,omitempty"`
}

// MaskAPIKey masks an API key for safe display.
// Shows first 7 chars and last 4 chars, hides the middle.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) < 12 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// ToConfigResponse converts a config.Config to ConfigResponse with masked keys.
func ToConfigResponse(cfg *config.Config) ConfigResponse {
	return ConfigResponse{
		LLM: LLMConfigResponse{
			Provider:        cfg.LLM.Provider,
			OllamaURL:       cfg.LLM.OllamaURL,
			OllamaModel:     cfg.LLM.OllamaModel,
			OpenAIAPIKey:    MaskAPIKey(cfg.LLM.OpenAIAPIKey),
			OpenAIModel:     cfg.LLM.OpenAIModel,
			AnthropicAPIKey: MaskAPIKey(cfg.LLM.AnthropicAPIKey),
			AnthropicModel:  cfg.LLM.AnthropicModel,
			MaxTokens:       cfg.LLM.MaxTokens,
		},
		Storage: StorageConfig{
			Engine:    cfg.Storage.Engine,
			KVBackend: cfg.KV.Backend,
		},
		Backup: BackupConfig{
			Enabled:   cfg.Backup.Enabled,
			Schedule:  cfg.Backup.Schedule,
			Retention: cfg.Backup.Retention,
		},
	}
}
