package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/promptcraft/internal/config"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "***"},
		{"sk-proj-abcdefghijklmnopqrstuvwxyz1234567890", "sk-proj...7890"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskAPIKey(tt.in))
	}
	assert.NotContains(t, MaskAPIKey("sk-proj-abcdefghijklmnopqrstuvwxyz1234567890"), "abcdefgh")
}

func TestToConfigResponse_MasksKeys(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			Provider:        "anthropic",
			AnthropicAPIKey: "sk-ant-0123456789abcdef",
			AnthropicModel:  "claude-test",
		},
		Backup: config.BackupConfig{Enabled: true, Schedule: "@daily", Retention: 7},
	}

	resp := ToConfigResponse(cfg)
	assert.Equal(t, "sk-ant-...cdef", resp.LLM.AnthropicAPIKey)
	assert.Equal(t, "anthropic", resp.LLM.Provider)
	assert.Equal(t, 7, resp.Backup.Retention)
}

func TestErrorResponse_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(&ErrorResponse{
		Error:   "Template not found",
		Code:    "NOT_FOUND",
		Details: map[string]interface{}{"id": "t-123"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Template not found","code":"NOT_FOUND","details":{"id":"t-123"}}`, string(data))
}
