package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"WARN":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"info":    log.InfoLevel,
		"":        log.InfoLevel,
		"loud":    log.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("FUNCMATCH_LOG_LEVEL", "warn")
	t.Setenv("FUNCMATCH_LOG_PREFIX", "test")
	t.Setenv("FUNCMATCH_LOG_FORMAT", "logfmt")

	var buf bytes.Buffer
	lg, err := New(&buf, OptionsFromEnv())
	require.NoError(t, err)
	lg.Info("hidden")
	lg.Warn("shown", "symbol", "update__Fv")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "prefix=test")
	assert.Contains(t, out, "symbol=update__Fv")
	assert.NoError(t, lg.Close())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New(&buf, Options{Level: log.InfoLevel, Formatter: ParseFormatter("json")})
	require.NoError(t, err)
	lg.Info("Dump scanned", "labels", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Dump scanned", rec["msg"])
	assert.EqualValues(t, 3, rec["labels"])
}

func TestLogDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	lg, err := New(&buf, Options{Level: log.InfoLevel, Dir: dir})
	require.NoError(t, err)
	lg.Info("to file")
	require.NoError(t, lg.Close())
	assert.Empty(t, buf.String())

	matches, err := filepath.Glob(filepath.Join(dir, "funcmatch-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	_, err = New(&buf, Options{Dir: filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
