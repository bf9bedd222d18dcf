package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, slog.LevelInfo)

	l.Info("email sent", "user_id", "42")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "email sent", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "42", entry["user_id"])
}

func TestSetup_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, slog.LevelWarn)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetupDefault_ReplacesGlobal(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupDefault(&buf, slog.LevelInfo)
	slog.Info("global")

	assert.Contains(t, buf.String(), `"msg":"global"`)
}
