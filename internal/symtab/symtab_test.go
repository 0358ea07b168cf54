package symtab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmatch/internal/elfx"
)

func TestParseCSV(t *testing.T) {
	text := `name,start,end
# player update loop
update__6PlayerFv, 0x80003100, 0x80003168
draw__Fv,2147496296,2147496320
`
	syms, err := ParseCSV(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, syms, 2)

	assert.Equal(t, Symbol{Name: "update__6PlayerFv", Start: 0x80003100, End: 0x80003168}, syms[0])
	assert.Equal(t, uint64(0x68), syms[0].Size())
	assert.Equal(t, Symbol{Name: "draw__Fv", Start: 2147496296, End: 2147496320}, syms[1])
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "bad start after header", text: "a,0x10,0x20\nb,zz,0x30\n"},
		{name: "bad end", text: "a,0x10,nope\n"},
		{name: "missing column", text: "a,0x10\n"},
		{name: "empty range", text: "a,0x10,0x10\n"},
		{name: "inverted range", text: "a,0x20,0x10\n"},
		{name: "empty name", text: " ,0x10,0x20\n"},
		{name: "typo in first row", text: "foo,0x8000G,0x80001000\nbar,0x100,0x200\n"},
		{name: "typo in first row end", text: "foo,0x80001000,0x8000100G\n"},
		{name: "unaligned start", text: "odd,0x80000002,0x80000008\n"},
		{name: "unaligned range", text: "odd,0x80000002,0x80000006\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.text))
			assert.Error(t, err)
		})
	}

	_, err := ParseCSV(strings.NewReader("a,0x20,0x10\n"))
	assert.ErrorIs(t, err, ErrBadRange)

	_, err = ParseCSV(strings.NewReader("odd,0x80000002,0x80000006\n"))
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestParseCSVHeader(t *testing.T) {
	tests := map[string]string{
		"named":            "name,start,end\nbar,0x100,0x200\n",
		"named mixed case": "Name, Start, End\nbar,0x100,0x200\n",
		"other labels":     "symbol,from,to\nbar,0x100,0x200\n",
		"no header":        "bar,0x100,0x200\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			syms, err := ParseCSV(strings.NewReader(text))
			require.NoError(t, err)
			assert.Equal(t, []Symbol{{Name: "bar", Start: 0x100, End: 0x200}}, syms)
		})
	}
}

func TestParseYAML(t *testing.T) {
	text := `
- name: update__6PlayerFv
  start: 0x80003100
  end: "0x80003168"
- name: _ZN6Player4drawEv
  start: 2147496296
  end: 2147496320
`
	syms, err := ParseYAML(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, uint64(0x80003100), syms[0].Start)
	assert.Equal(t, uint64(0x80003168), syms[0].End)
	assert.Equal(t, "_ZN6Player4drawEv", syms[1].Name)

	_, err = ParseYAML(strings.NewReader("- name: a\n  start: 0x20\n  end: 0x10\n"))
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "symbols.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("fn_a,0x100,0x110\nfn_b,0x110,0x120\n"), 0o644))

	table, err := Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, table.Symbols, 2)

	sym, err := table.Lookup("fn_b")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x110), sym.Start)

	_, err = table.Lookup("fn_c")
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	yamlPath := filepath.Join(dir, "symbols.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- {name: fn_a, start: '0x100', end: '0x104'}\n"), 0o644))
	table, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []Symbol{{Name: "fn_a", Start: 0x100, End: 0x104}}, table.Symbols)

	dupPath := filepath.Join(dir, "dup.csv")
	require.NoError(t, os.WriteFile(dupPath, []byte("fn_a,0x100,0x110\nfn_a,0x110,0x120\n"), 0o644))
	_, err = Load(dupPath)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestDemangled(t *testing.T) {
	assert.Equal(t, "Player::draw()", Symbol{Name: "_ZN6Player4drawEv"}.Demangled())
	// Names outside the Itanium scheme are returned unchanged.
	assert.Equal(t, "update__6PlayerFv", Symbol{Name: "update__6PlayerFv"}.Demangled())
}

func TestFromFuncs(t *testing.T) {
	syms, err := FromFuncs([]elfx.Func{
		{Name: "main", Addr: 0x80003000, Size: 8},
		{Name: "local", Addr: 0x80003008, Size: 4},
		{Name: "local", Addr: 0x80003100, Size: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []Symbol{
		{Name: "main", Start: 0x80003000, End: 0x80003008},
		{Name: "local", Start: 0x80003008, End: 0x8000300c},
	}, syms)

	_, err = FromFuncs(nil)
	assert.Error(t, err)
}
