// Package dump reads the hex listing printed by the object dump tool and
// runs the tool itself.
package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"funcmatch/internal/disasm"
)

var (
	ErrSymbolNotFound  = errors.New("symbol not found in dump")
	ErrAmbiguousSymbol = errors.New("symbol suffix matches more than one label")
)

// ParseError reports a line of the listing that does not fit the layout.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dump line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser extracts the instruction word from one data line.
type Parser interface {
	ParseLine(line string) (uint32, error)
}

// Column window holding the hex word in a raw listing line.
const (
	codeStart = 11
	codeEnd   = 19
)

// ColumnParser reads the 8 hex digits at columns 11-18 of a line.
type ColumnParser struct{}

func (ColumnParser) ParseLine(line string) (uint32, error) {
	if len(line) < codeEnd {
		return 0, fmt.Errorf("line shorter than %d columns", codeEnd)
	}
	code, err := strconv.ParseUint(line[codeStart:codeEnd], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("column %d-%d is not a hex word: %w", codeStart, codeEnd-1, err)
	}
	return uint32(code), nil
}

// MatchMode selects how a requested symbol is matched against labels.
type MatchMode int

const (
	// MatchStrict prefers an exact label and rejects ambiguous suffixes.
	MatchStrict MatchMode = iota
	// MatchSuffix takes the first label ending with the symbol name.
	MatchSuffix
)

func (m MatchMode) String() string {
	switch m {
	case MatchSuffix:
		return "suffix"
	default:
		return "strict"
	}
}

// ParseMatchMode converts a flag value into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return MatchStrict, nil
	case "suffix":
		return MatchSuffix, nil
	default:
		return MatchStrict, fmt.Errorf("unknown match mode %q (want strict or suffix)", s)
	}
}

// Block is the instruction run following one label.
type Block struct {
	Name string
	Code disasm.Sequence
}

// Listing holds every labelled block of a dump in order of appearance.
type Listing []Block

// Lookup returns the block whose label equals name.
func (l Listing) Lookup(name string) (Block, bool) {
	for _, b := range l {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}

// Find resolves target against the labels according to mode.
func (l Listing) Find(target string, mode MatchMode) (Block, error) {
	if mode == MatchSuffix {
		for _, b := range l {
			if strings.HasSuffix(b.Name, target) {
				return b, nil
			}
		}
		return Block{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, target)
	}

	if b, ok := l.Lookup(target); ok {
		return b, nil
	}
	var hits []Block
	for _, b := range l {
		if strings.HasSuffix(b.Name, target) {
			hits = append(hits, b)
		}
	}
	switch len(hits) {
	case 0:
		return Block{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, target)
	case 1:
		return hits[0], nil
	default:
		names := make([]string, len(hits))
		for i, h := range hits {
			names[i] = h.Name
		}
		return Block{}, fmt.Errorf("%w: %s matches %s", ErrAmbiguousSymbol, target, strings.Join(names, ", "))
	}
}

// Scanner walks a listing line by line.
type Scanner struct {
	Parser Parser
}

// NewScanner returns a scanner for the raw column layout.
func NewScanner() *Scanner {
	return &Scanner{Parser: ColumnParser{}}
}

// labelName reports whether line is a label and returns its name.
func labelName(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t\r")
	if !strings.HasSuffix(trimmed, ":") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimSuffix(trimmed, ":")), true
}

// walk feeds every label and data word to the callbacks. Returning
// false from onLabel stops the walk.
func (s *Scanner) walk(r io.Reader, onLabel func(name string) bool, onCode func(code uint32)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	seenLabel := false
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if name, ok := labelName(line); ok {
			seenLabel = true
			if !onLabel(name) {
				return nil
			}
			continue
		}
		if !seenLabel {
			return &ParseError{Line: lineNo, Text: line, Err: errors.New("instruction before any label")}
		}
		code, err := s.Parser.ParseLine(line)
		if err != nil {
			return &ParseError{Line: lineNo, Text: line, Err: err}
		}
		onCode(code)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	return nil
}

// Scan parses the whole listing.
func (s *Scanner) Scan(r io.Reader) (Listing, error) {
	var listing Listing
	err := s.walk(r,
		func(name string) bool {
			listing = append(listing, Block{Name: name, Code: disasm.Sequence{}})
			return true
		},
		func(code uint32) {
			cur := &listing[len(listing)-1]
			cur.Code = append(cur.Code, code)
		},
	)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// FindSymbol returns the instructions of target and the label that
// matched it. In suffix mode reading stops at the label following the
// match; lines after it are never parsed.
func (s *Scanner) FindSymbol(r io.Reader, target string, mode MatchMode) (disasm.Sequence, string, error) {
	if mode != MatchSuffix {
		listing, err := s.Scan(r)
		if err != nil {
			return nil, "", err
		}
		b, err := listing.Find(target, mode)
		if err != nil {
			return nil, "", err
		}
		return b.Code, b.Name, nil
	}

	var found bool
	var matched string
	code := disasm.Sequence{}
	err := s.walk(r,
		func(name string) bool {
			if found {
				return false
			}
			if strings.HasSuffix(name, target) {
				found = true
				matched = name
			}
			return true
		},
		func(c uint32) {
			if found {
				code = append(code, c)
			}
		},
	)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", fmt.Errorf("%w: %s", ErrSymbolNotFound, target)
	}
	return code, matched, nil
}
