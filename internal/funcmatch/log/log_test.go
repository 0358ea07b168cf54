package log

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcmatch.log")
	require.NoError(t, Setup(path, true))
	assert.True(t, Initialized())

	slog.Debug("Dump scanned", "labels", 3)
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Dump scanned"`)
	assert.Contains(t, string(data), `"labels":3`)
}

func TestRecoverPanic(t *testing.T) {
	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
		panic(errors.New("boom"))
	}()
	assert.True(t, cleaned)
}
