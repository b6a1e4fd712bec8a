package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Info("catalog loaded", "faqs", 42)

	out := buf.String()
	assert.Contains(t, out, "catalog loaded")
	assert.Contains(t, out, "faqs=42")
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("turn complete", "is_faq", true)

	out := buf.String()
	assert.Contains(t, out, `"msg":"turn complete"`)
	assert.Contains(t, out, `"is_faq":true`)
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Debug("not emitted")
	logger.Info("not emitted either")
	logger.Warn("emitted")

	out := buf.String()
	assert.NotContains(t, out, "not emitted")
	assert.Contains(t, out, "emitted")
}

func TestNewNop_DiscardsOutput(t *testing.T) {
	logger := NewNop()
	require.NotNil(t, logger)

	// Must not panic, must not write anywhere observable.
	logger.Error("dropped", "key", "value")
}
