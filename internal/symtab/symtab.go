// Package symtab loads the table of functions to verify: one mangled
// name with its address range per row.
package symtab

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"funcmatch/internal/disasm"
	"funcmatch/internal/elfx"
)

var (
	ErrUnknownSymbol = errors.New("symbol not in table")
	ErrBadRange      = errors.New("bad address range")
)

// Symbol is a named function with its half-open address range.
type Symbol struct {
	Name  string `yaml:"name"`
	Start uint64 `yaml:"start"`
	End   uint64 `yaml:"end"`
}

// Size is the length of the range in bytes.
func (s Symbol) Size() uint64 {
	return s.End - s.Start
}

// Demangled returns a readable form of the name, or the name itself
// when it is not in a known mangling scheme.
func (s Symbol) Demangled() string {
	return CachedDemangle(s.Name)
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s [%#x, %#x)", s.Name, s.Start, s.End)
}

// Table is the ordered list of symbols read from one file.
type Table struct {
	Path    string
	Symbols []Symbol
	byName  map[string]int
}

func newTable(path string, syms []Symbol) (*Table, error) {
	t := &Table{Path: path, Symbols: syms, byName: make(map[string]int, len(syms))}
	for i, s := range syms {
		if _, dup := t.byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate symbol %s", s.Name)
		}
		t.byName[s.Name] = i
	}
	return t, nil
}

// Lookup returns the symbol named name.
func (t *Table) Lookup(name string) (Symbol, error) {
	i, ok := t.byName[name]
	if !ok {
		return Symbol{}, fmt.Errorf("%w: %s (table %s)", ErrUnknownSymbol, name, t.Path)
	}
	return t.Symbols[i], nil
}

// Load reads a symbol table file: the function symbols of an ELF image,
// a YAML table when the file ends in .yaml or .yml, or CSV otherwise.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open symbol table: %w", err)
	}

	var syms []Symbol
	switch {
	case elfx.IsELF(data):
		syms, err = ParseELF(data)
	case strings.EqualFold(filepath.Ext(path), ".yaml"), strings.EqualFold(filepath.Ext(path), ".yml"):
		syms, err = ParseYAML(bytes.NewReader(data))
	default:
		syms, err = ParseCSV(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return newTable(path, syms)
}

// ParseAddress accepts decimal or 0x-prefixed hexadecimal.
func ParseAddress(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 0, 64)
}

// ParseCSV reads rows of name,start,end. Lines starting with # are
// comments. The first row is a header when it reads name,start,end or
// neither address column is a number.
func ParseCSV(r io.Reader) ([]Symbol, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var syms []Symbol
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if row == 1 && isHeader(rec) {
			continue
		}
		start, err := ParseAddress(rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: start address %q: %w", row, rec[1], err)
		}
		end, err := ParseAddress(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: end address %q: %w", row, rec[2], err)
		}
		sym := Symbol{Name: strings.TrimSpace(rec[0]), Start: start, End: end}
		if err := validate(sym); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		syms = append(syms, sym)
	}
	return syms, nil
}

func isHeader(rec []string) bool {
	names := [...]string{"name", "start", "end"}
	named := true
	for i, want := range names {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), want) {
			named = false
		}
	}
	if named {
		return true
	}
	_, startErr := ParseAddress(rec[1])
	_, endErr := ParseAddress(rec[2])
	return startErr != nil && endErr != nil
}

type yamlSymbol struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ParseYAML reads a list of {name, start, end} mappings.
func ParseYAML(r io.Reader) ([]Symbol, error) {
	var raw []yamlSymbol
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	syms := make([]Symbol, 0, len(raw))
	for i, rs := range raw {
		start, err := ParseAddress(rs.Start)
		if err != nil {
			return nil, fmt.Errorf("entry %d: start address %q: %w", i+1, rs.Start, err)
		}
		end, err := ParseAddress(rs.End)
		if err != nil {
			return nil, fmt.Errorf("entry %d: end address %q: %w", i+1, rs.End, err)
		}
		sym := Symbol{Name: strings.TrimSpace(rs.Name), Start: start, End: end}
		if err := validate(sym); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		syms = append(syms, sym)
	}
	return syms, nil
}

// ParseELF reads the sized function symbols of an unstripped ELF image.
// A name defined more than once keeps its lowest address.
func ParseELF(data []byte) ([]Symbol, error) {
	im, err := elfx.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromFuncs(im.Funcs)
}

// FromFuncs converts ELF function symbols into table rows.
func FromFuncs(funcs []elfx.Func) ([]Symbol, error) {
	if len(funcs) == 0 {
		return nil, errors.New("elf has no function symbols")
	}
	seen := make(map[string]bool, len(funcs))
	syms := make([]Symbol, 0, len(funcs))
	for _, f := range funcs {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		sym := Symbol{Name: f.Name, Start: f.Addr, End: f.Addr + f.Size}
		if err := validate(sym); err != nil {
			return nil, err
		}
		syms = append(syms, sym)
	}
	return syms, nil
}

func validate(s Symbol) error {
	if s.Name == "" {
		return errors.New("empty symbol name")
	}
	if s.Start >= s.End {
		return fmt.Errorf("%w: %s [%#x, %#x): start must be below end", ErrBadRange, s.Name, s.Start, s.End)
	}
	if s.Start%disasm.WordSize != 0 || s.End%disasm.WordSize != 0 {
		return fmt.Errorf("%w: %s [%#x, %#x): not word aligned", ErrBadRange, s.Name, s.Start, s.End)
	}
	return nil
}
