// Package colorize highlights PowerPC assembly text for terminal output.
package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Enabled reports whether color output is allowed. FUNCMATCH_NO_COLOR
// and NO_COLOR both disable it.
func Enabled() bool {
	return os.Getenv("FUNCMATCH_NO_COLOR") == "" && os.Getenv("NO_COLOR") == ""
}

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	// GNU as syntax is what the decoder emits
	candidates := []string{"gas", "GAS", "nasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getDisasmStyle() *chroma.Style {
	candidates := []string{"funcmatch-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Assembly highlights a block of assembly text. On failure the input is
// returned unchanged along with the error.
func Assembly(code string) (string, error) {
	if !Enabled() {
		return code, nil
	}
	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}
	out := buf.String()
	// The lexer terminates its input with a newline; drop it again.
	if !strings.HasSuffix(code, "\n") {
		if i := strings.LastIndex(out, "\n"); i >= 0 {
			out = out[:i] + out[i+1:]
		}
	}
	return out, nil
}

// Instruction highlights one decoded instruction. The illegal sentinel
// is shown in the mismatch color instead of going through the lexer.
func Instruction(text string) string {
	if !Enabled() {
		return text
	}
	if strings.HasPrefix(text, "<illegal") {
		return paint(text, 255, 95, 135)
	}
	out, err := Assembly(text)
	if err != nil {
		return text
	}
	return out
}

// Address renders an address or instruction word in gray.
func Address(s string) string {
	return paint(s, 79, 79, 79)
}

// Marker colors a listing status marker: ~ for relocation noise, ! for
// a difference, < and > for rows present on one side only.
func Marker(m string) string {
	switch m {
	case "~":
		return paint(m, 255, 215, 0)
	case "!", "<", ">":
		return paint(m, 255, 95, 135)
	default:
		return m
	}
}

// Verdict colors a final verdict word.
func Verdict(s string, ok bool) string {
	if ok {
		return paint(s, 124, 156, 157)
	}
	return paint(s, 255, 95, 135)
}

func paint(s string, r, g, b int) string {
	if !Enabled() || s == "" {
		return s
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm%s\033[0m", r, g, b, s)
}

// Strip removes ANSI escape sequences.
func Strip(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

// VisibleWidth counts the characters of s that are not part of an
// escape sequence.
func VisibleWidth(s string) int {
	return len([]rune(Strip(s)))
}
