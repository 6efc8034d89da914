package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	cfg := DefaultConfig()
	cfg.LogFile = path
	cfg.Development = true

	log, err := New(cfg)
	require.NoError(t, err)

	log.WithComponent("test").Debug("hello", zap.String("k", "v"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestForOperation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ForUser(ForOperation(base, "pnl_conversation"), "42").Info("first")
	ForOperation(base, "pnl_conversation").Info("second")

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	second := entries[1].ContextMap()
	assert.Equal(t, "pnl_conversation", first["operation"])
	assert.Equal(t, "42", first["user_id"])
	assert.NotEmpty(t, first["correlation_id"])
	assert.NotEqual(t, first["correlation_id"], second["correlation_id"])
}
