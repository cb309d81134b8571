package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))

	assert.True(t, ValidLevel("Info"))
	assert.False(t, ValidLevel("trace"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LogConfig{Level: "warn", Console: true}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	logger := newLogger(LogConfig{Level: "debug", File: true, FilePath: path, MaxSize: 1}, nil)

	LogTrade(logger, "BUY", "stock", "IBM", 100, 50, 5009.99)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"symbol":"IBM"`)
	assert.Contains(t, string(data), `"side":"BUY"`)
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	WithOperation(WithSymbol(base, "ABCFX"), "update_all").Info().Msg("x")
	LogPriceUpdate(base.Level(zerolog.DebugLevel), "IBM", 50, 55)

	out := buf.String()
	assert.Contains(t, out, `"symbol":"ABCFX"`)
	assert.Contains(t, out, `"operation":"update_all"`)
	assert.Contains(t, out, `"new_price":55`)
}
