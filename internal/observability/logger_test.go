package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "text")

	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("suppressed")
	assert.Empty(t, buf.String())

	logger.Warn("emitted")
	assert.Contains(t, buf.String(), "emitted")
}

func TestParseLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "nonsense", "json")

	logger.Debug("suppressed at default info level")
	assert.Empty(t, buf.String())
}
