// Package matcher runs the verification pipeline: reference code from the
// image, candidate code from the dump, and the comparison between them.
package matcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"funcmatch/internal/compare"
	"funcmatch/internal/disasm"
	"funcmatch/internal/dump"
	"funcmatch/internal/image"
	"funcmatch/internal/symtab"
)

// Session holds everything loaded for one run.
type Session struct {
	Image      *image.Image
	Table      *symtab.Table
	Source     dump.Source
	Scanner    *dump.Scanner
	Comparator *compare.Comparator
	ObjectPath string
	Match      dump.MatchMode
}

// Outcome is the verdict for one symbol. Err is set instead of Result
// when the symbol could not be compared at all. Absent marks a table
// symbol the object does not define; it carries neither.
type Outcome struct {
	Symbol    symtab.Symbol
	Label     string
	Reference disasm.Sequence
	Candidate disasm.Sequence
	Result    compare.Result
	Err       error
	Absent    bool
}

// Matches reports whether the symbol was compared and found identical.
func (o Outcome) Matches() bool {
	return !o.Absent && o.Err == nil && o.Result.Matches()
}

// Compared drops the outcomes of symbols the object does not define.
func Compared(outcomes []Outcome) []Outcome {
	out := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Absent {
			out = append(out, o)
		}
	}
	return out
}

// Rows returns the side-by-side listing of the outcome.
func (s *Session) Rows(o Outcome) []compare.Row {
	return s.Comparator.Listing(o.Reference, o.Candidate)
}

func (s *Session) reference(sym symtab.Symbol) (disasm.Sequence, error) {
	ref, err := s.Image.Extract(sym.Start, sym.End)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", sym.Name, err)
	}
	return ref, nil
}

// Compare verifies a single symbol. Every failure to produce a result is
// returned as an error; a mismatch is not an error.
func (s *Session) Compare(ctx context.Context, name string) (Outcome, error) {
	sym, err := s.Table.Lookup(name)
	if err != nil {
		return Outcome{}, err
	}
	ref, err := s.reference(sym)
	if err != nil {
		return Outcome{}, err
	}

	out, err := s.Source.Run(ctx, s.ObjectPath)
	if err != nil {
		return Outcome{}, err
	}
	cand, label, err := s.Scanner.FindSymbol(bytes.NewReader(out), sym.Name, s.Match)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w (object %s, table %s)", err, s.ObjectPath, s.Table.Path)
	}
	slog.Debug("Symbol resolved", "symbol", sym.Name, "label", label,
		"reference", len(ref), "candidate", len(cand))

	return Outcome{
		Symbol:    sym,
		Label:     label,
		Reference: ref,
		Candidate: cand,
		Result:    s.Comparator.Compare(ref, cand),
	}, nil
}

// CompareAll verifies every symbol of the table that the object defines,
// against a single dump of the object. Symbols without a label in the
// dump are marked Absent. Other per-symbol problems are recorded in the
// outcome; only a failure to obtain or parse the dump is returned as an
// error.
func (s *Session) CompareAll(ctx context.Context) ([]Outcome, error) {
	out, err := s.Source.Run(ctx, s.ObjectPath)
	if err != nil {
		return nil, err
	}
	listing, err := s.Scanner.Scan(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	slog.Debug("Dump scanned", "labels", len(listing))

	outcomes := make([]Outcome, 0, len(s.Table.Symbols))
	for _, sym := range s.Table.Symbols {
		o := Outcome{Symbol: sym}
		block, err := listing.Find(sym.Name, s.Match)
		switch {
		case errors.Is(err, dump.ErrSymbolNotFound):
			o.Absent = true
		case err != nil:
			o.Err = err
		default:
			o.Label = block.Name
			o.Candidate = block.Code
			if o.Reference, o.Err = s.reference(sym); o.Err == nil {
				o.Result = s.Comparator.Compare(o.Reference, o.Candidate)
			}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// Summary counts outcomes by verdict.
type Summary struct {
	Total     int `json:"total"`
	Identical int `json:"identical"`
	Mismatch  int `json:"mismatch"`
	Failed    int `json:"failed"`
	Absent    int `json:"absent"`
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Absent:
			s.Absent++
		case o.Err != nil:
			s.Failed++
		case o.Result.Matches():
			s.Identical++
		default:
			s.Mismatch++
		}
	}
	return s
}

// Compared is the number of symbols the object defines.
func (s Summary) Compared() int {
	return s.Total - s.Absent
}

// OK reports whether at least one symbol was compared and every compared
// symbol was found identical.
func (s Summary) OK() bool {
	return s.Compared() > 0 && s.Identical == s.Compared()
}
