package dump

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmatch/internal/disasm"
)

// line formats a data line the way the dump tool does: offset at
// column 2, the instruction word at columns 11-18.
func line(offset int, code uint32) string {
	return fmt.Sprintf("  %08x %08X    ; raw", offset, code)
}

func listing(blocks ...any) string {
	var sb strings.Builder
	offset := 0
	for _, b := range blocks {
		switch v := b.(type) {
		case string:
			sb.WriteString(v + ":\n")
		case uint32:
			sb.WriteString(line(offset, v) + "\n")
			offset += 4
		}
	}
	return sb.String()
}

func TestColumnParser(t *testing.T) {
	var p ColumnParser

	code, err := p.ParseLine(line(0x10, 0x4E800020))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4E800020), code)

	code, err = p.ParseLine("           9421fff0")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x9421fff0), code)

	_, err = p.ParseLine("  00000000 4E80")
	assert.Error(t, err)

	_, err = p.ParseLine("  00000000 4E80002G")
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	text := listing(
		"first", uint32(0x9421fff0), uint32(0x4e800020),
		"second", uint32(0x38600001), uint32(0x38800002), uint32(0x4e800020),
		"empty",
	)

	got, err := NewScanner().Scan(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Block{Name: "first", Code: disasm.Sequence{0x9421fff0, 0x4e800020}}, got[0])
	assert.Equal(t, Block{Name: "second", Code: disasm.Sequence{0x38600001, 0x38800002, 0x4e800020}}, got[1])
	assert.Equal(t, "empty", got[2].Name)
	assert.Empty(t, got[2].Code)
}

func TestScanLabelWithTrailingWhitespace(t *testing.T) {
	text := "fn__Fv:  \t\r\n" + line(0, 0x4e800020) + "\n\n"
	got, err := NewScanner().Scan(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fn__Fv", got[0].Name)
	assert.Equal(t, disasm.Sequence{0x4e800020}, got[0].Code)
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
	}{
		{
			name:     "instruction before label",
			text:     line(0, 0x4e800020) + "\nfn:\n",
			wantLine: 1,
		},
		{
			name:     "short data line",
			text:     "fn:\n" + line(0, 0x4e800020) + "\n  bogus\n",
			wantLine: 3,
		},
		{
			name:     "non hex column",
			text:     "fn:\n  00000000 XYZW0020\n",
			wantLine: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner().Scan(strings.NewReader(tt.text))
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantLine, perr.Line)
		})
	}
}

func TestFindSymbolSecondBlock(t *testing.T) {
	text := listing(
		"alpha", uint32(0x11111111), uint32(0x22222222),
		"beta", uint32(0x33333333), uint32(0x44444444),
	)

	for _, mode := range []MatchMode{MatchStrict, MatchSuffix} {
		t.Run(mode.String(), func(t *testing.T) {
			code, label, err := NewScanner().FindSymbol(strings.NewReader(text), "beta", mode)
			require.NoError(t, err)
			assert.Equal(t, "beta", label)
			assert.Equal(t, disasm.Sequence{0x33333333, 0x44444444}, code)
		})
	}
}

func TestFindSymbolNotFound(t *testing.T) {
	text := listing("alpha", uint32(0x11111111), "beta", uint32(0x22222222))

	for _, mode := range []MatchMode{MatchStrict, MatchSuffix} {
		t.Run(mode.String(), func(t *testing.T) {
			_, _, err := NewScanner().FindSymbol(strings.NewReader(text), "gamma", mode)
			assert.ErrorIs(t, err, ErrSymbolNotFound)
		})
	}
}

func TestFindSymbolSuffix(t *testing.T) {
	text := listing(
		"mod1::update__Fv", uint32(0x11111111),
		"mod2::update__Fv", uint32(0x22222222),
		"draw__Fv", uint32(0x33333333),
	)

	t.Run("suffix mode takes first hit", func(t *testing.T) {
		code, label, err := NewScanner().FindSymbol(strings.NewReader(text), "update__Fv", MatchSuffix)
		require.NoError(t, err)
		assert.Equal(t, "mod1::update__Fv", label)
		assert.Equal(t, disasm.Sequence{0x11111111}, code)
	})

	t.Run("strict mode rejects ambiguity", func(t *testing.T) {
		_, _, err := NewScanner().FindSymbol(strings.NewReader(text), "update__Fv", MatchStrict)
		assert.ErrorIs(t, err, ErrAmbiguousSymbol)
		assert.Contains(t, err.Error(), "mod2::update__Fv")
	})

	t.Run("strict mode accepts unique suffix", func(t *testing.T) {
		code, label, err := NewScanner().FindSymbol(strings.NewReader(text), "2::update__Fv", MatchStrict)
		require.NoError(t, err)
		assert.Equal(t, "mod2::update__Fv", label)
		assert.Equal(t, disasm.Sequence{0x22222222}, code)
	})

	t.Run("strict mode prefers exact label", func(t *testing.T) {
		text := listing("draw__Fv", uint32(0x1), "xdraw__Fv", uint32(0x2))
		code, _, err := NewScanner().FindSymbol(strings.NewReader(text), "draw__Fv", MatchStrict)
		require.NoError(t, err)
		assert.Equal(t, disasm.Sequence{0x1}, code)
	})
}

func TestFindSymbolSuffixStopsAtNextLabel(t *testing.T) {
	// Lines after the block that follows the match are never parsed.
	text := listing("target", uint32(0x4e800020), "next") + "  garbage that would not parse\n"

	code, _, err := NewScanner().FindSymbol(strings.NewReader(text), "target", MatchSuffix)
	require.NoError(t, err)
	assert.Equal(t, disasm.Sequence{0x4e800020}, code)
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("suffix")
	require.NoError(t, err)
	assert.Equal(t, MatchSuffix, m)

	m, err = ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchStrict, m)

	_, err = ParseMatchMode("fuzzy")
	assert.Error(t, err)
}
