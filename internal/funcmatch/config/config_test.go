package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmatch/internal/dump"
	"funcmatch/internal/image"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	base, err := cfg.BaseAddress()
	require.NoError(t, err)
	assert.Equal(t, image.Base{Addr: image.DefaultBase}, base)
	assert.Equal(t, dump.DefaultToolPath, cfg.DumpTool)
	assert.Equal(t, dump.DefaultFlags, cfg.DumpFlags)
	assert.Equal(t, "text", cfg.Format)

	mode, err := cfg.MatchMode()
	require.NoError(t, err)
	assert.Equal(t, dump.MatchStrict, mode)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`base: "0x80003000"
dump_tool: /opt/cw/gdump
match: suffix
format: json
`), 0o644))
	t.Setenv("FUNCMATCH_FORMAT", "markdown")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	base, err := cfg.BaseAddress()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x80003000), base.Addr)
	assert.Equal(t, "/opt/cw/gdump", cfg.DumpTool)
	assert.Equal(t, "suffix", cfg.Match)
	assert.Equal(t, "markdown", cfg.Format)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad base":   "base: nowhere\n",
		"bad match":  "match: fuzzy\n",
		"bad format": "format: xml\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(viper.New(), path)
			assert.Error(t, err)
		})
	}

	_, err := Load(viper.New(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFormatCase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "funcmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: JSON\n"), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)

	t.Setenv("FUNCMATCH_FORMAT", " Markdown ")
	cfg, err = Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.Format)
}

func TestSchema(t *testing.T) {
	out, err := Schema()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"dump_tool"`)
	assert.Contains(t, string(out), `"suffix"`)
}

func TestLoadHomeConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".funcmatch.yaml"), []byte("match: suffix\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "suffix", cfg.Match)
}
