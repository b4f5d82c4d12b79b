package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RedactsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("calling provider", "provider", "openai", "api_key", "sk-123", "Authorization", "Bearer abc")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "openai", fields["provider"])
	assert.Equal(t, redacted, fields["api_key"])
	assert.Equal(t, redacted, fields["Authorization"])
}

func TestLogger_WithRedacts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("api_token", "t0k3n", "component", "server")

	log.Warn("hello")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, redacted, fields["api_token"])
	assert.Equal(t, "server", fields["component"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("dev", "loud")
	assert.Error(t, err)

	l, err := New("production", "warn")
	require.NoError(t, err)
	assert.NotNil(t, l)
}
