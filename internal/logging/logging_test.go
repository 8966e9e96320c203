package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/solverbench/internal/logging"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := logging.ParseLevel("loud")
	require.Error(t, err)
}

func TestInitText(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer
	require.NoError(t, logging.Init(slog.LevelInfo, "text", &buf))

	logging.New("runner").Info("hello")
	logging.New("runner").Debug("hidden")

	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "component=runner")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitJSON(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer
	require.NoError(t, logging.Init(slog.LevelDebug, "json", &buf))

	logging.New("report").Debug("json check")

	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"component":"report"`)
}

func TestInitRejectsFormat(t *testing.T) {
	require.Error(t, logging.Init(slog.LevelInfo, "xml", nil))
}

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}
