package compare

import (
	"funcmatch/internal/classify"
	"funcmatch/internal/disasm"
)

// Status classifies one row of a side-by-side listing.
type Status int

const (
	Same Status = iota
	Relocated
	Differs
	Missing
	Extra
)

func (s Status) String() string {
	switch s {
	case Same:
		return "same"
	case Relocated:
		return "relocated"
	case Differs:
		return "differs"
	case Missing:
		return "missing"
	default:
		return "extra"
	}
}

// Marker is the single character shown between the two columns.
func (s Status) Marker() string {
	switch s {
	case Same:
		return " "
	case Relocated:
		return "~"
	case Differs:
		return "!"
	case Missing:
		return "<"
	default:
		return ">"
	}
}

// Row pairs the instruction at one position of both sequences.
// HasOriginal or HasCandidate is false past the end of the shorter side.
type Row struct {
	Index         int
	Status        Status
	HasOriginal   bool
	HasCandidate  bool
	OriginalCode  uint32
	CandidateCode uint32
	Original      classify.Mnemonic
	Candidate     classify.Mnemonic
}

// Listing is a full side-by-side view of two sequences. Unlike Compare
// it keeps going after the first divergence; it is for display only.
func (c *Comparator) Listing(reference, candidate disasm.Sequence) []Row {
	n := max(len(reference), len(candidate))
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row := Row{Index: i}
		if i < len(reference) {
			row.HasOriginal = true
			row.OriginalCode = reference[i]
			row.Original = c.classifier.Decode(reference[i])
		}
		if i < len(candidate) {
			row.HasCandidate = true
			row.CandidateCode = candidate[i]
			row.Candidate = c.classifier.Decode(candidate[i])
		}

		switch {
		case !row.HasCandidate:
			row.Status = Missing
		case !row.HasOriginal:
			row.Status = Extra
		case row.OriginalCode == row.CandidateCode || row.Original == row.Candidate:
			row.Status = Same
		case c.classifier.Equivalent(row.Original, row.Candidate):
			row.Status = Relocated
		default:
			row.Status = Differs
		}
		rows = append(rows, row)
	}
	return rows
}
