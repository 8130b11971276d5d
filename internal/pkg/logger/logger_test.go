package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"clickservice/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutsideDevelopment(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Environment = "staging"
	cfg.Logging.Level = "info"

	var buf bytes.Buffer
	log := NewWithWriter(cfg, &buf)
	log.Info("slot reserved", slog.Int64("slot_id", 9))
	log.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "slot reserved", line["msg"])
	assert.Equal(t, "clickservice", line["service"])
	assert.Equal(t, float64(9), line["slot_id"])
}

func TestNew_TextInDevelopmentWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := &config.Config{}
	cfg.Server.Environment = "development"
	cfg.Logging.Level = "debug"
	cfg.Logging.File = config.LogFileConfig{Enabled: true, Path: path, MaxSizeMB: 1}

	var buf bytes.Buffer
	NewWithWriter(cfg, &buf).Debug("request assigned")

	assert.Contains(t, buf.String(), "msg=\"request assigned\"")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "request assigned")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
