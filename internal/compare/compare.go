// Package compare decides whether a rebuilt function reproduces the
// reference machine code.
package compare

import (
	"fmt"

	"funcmatch/internal/classify"
	"funcmatch/internal/disasm"
)

// Kind is the verdict of one comparison.
type Kind int

const (
	Identical Kind = iota
	LengthMismatch
	SemanticMismatch
)

func (k Kind) String() string {
	switch k {
	case Identical:
		return "identical"
	case LengthMismatch:
		return "length mismatch"
	case SemanticMismatch:
		return "semantic mismatch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result describes the first divergence between two sequences, if any.
// Index, the codes and the mnemonics are only meaningful for mismatches;
// for a length mismatch only Index and the original side are set.
type Result struct {
	Kind          Kind
	Index         int
	OriginalCode  uint32
	CandidateCode uint32
	Original      classify.Mnemonic
	Candidate     classify.Mnemonic
}

// Matches reports whether the candidate reproduces the reference.
func (r Result) Matches() bool {
	return r.Kind == Identical
}

func (r Result) String() string {
	switch r.Kind {
	case Identical:
		return "identical"
	case LengthMismatch:
		return fmt.Sprintf("candidate ends at instruction %d (expected %s)", r.Index, r.Original)
	default:
		return fmt.Sprintf("instruction %d differs: expected %q, found %q", r.Index, r.Original, r.Candidate)
	}
}

// Comparator walks two instruction sequences in lockstep.
type Comparator struct {
	classifier *classify.Classifier
}

func New(classifier *classify.Classifier) *Comparator {
	return &Comparator{classifier: classifier}
}

// Compare returns the first point at which candidate stops reproducing
// reference. Differences the classifier considers relocation noise are
// skipped. Instructions past the end of reference are not examined.
func (c *Comparator) Compare(reference, candidate disasm.Sequence) Result {
	if reference.Equal(candidate) {
		return Result{Kind: Identical}
	}

	for i, want := range reference {
		if i >= len(candidate) {
			return Result{
				Kind:         LengthMismatch,
				Index:        i,
				OriginalCode: want,
				Original:     c.classifier.Decode(want),
			}
		}
		got := candidate[i]
		if want == got {
			continue
		}

		a := c.classifier.Decode(want)
		b := c.classifier.Decode(got)
		if a == b || c.classifier.Equivalent(a, b) {
			continue
		}
		return Result{
			Kind:          SemanticMismatch,
			Index:         i,
			OriginalCode:  want,
			CandidateCode: got,
			Original:      a,
			Candidate:     b,
		}
	}
	return Result{Kind: Identical}
}
