package compare

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcmatch/internal/classify"
	"funcmatch/internal/disasm"
)

// table decodes a fixed set of words; anything else is illegal.
type table map[uint32]string

func (t table) Decode(code uint32) (string, error) {
	if m, ok := t[code]; ok {
		return m, nil
	}
	return "", errors.New("illegal")
}

var words = table{
	0x9421fff0: "stwu r1,-16(r1)",
	0x7c0802a6: "mflr r0",
	0x48000010: "b 0x10",
	0x48000020: "b 0x20",
	0x38600001: "li r3,1",
	0x38600002: "li r3,2",
	0x7c642a14: "add r3,r4,r5",
	0x7c643214: "add r3,r4,r6",
	0x7c641a14: "add r3,r4,r3",
	0x4e800020: "blr",
}

func newComparator() *Comparator {
	return New(classify.New(words))
}

func TestCompareReflexive(t *testing.T) {
	c := newComparator()
	seqs := []disasm.Sequence{
		{},
		{0x4e800020},
		{0x9421fff0, 0x7c0802a6, 0x48000010, 0x4e800020},
		{0xdeadbeef, 0x00000000},
	}
	for _, s := range seqs {
		assert.Equal(t, Result{Kind: Identical}, c.Compare(s, s))
	}
}

func TestCompareFastPathSkipsDecoding(t *testing.T) {
	calls := 0
	c := New(classify.New(classify.DecoderFunc(func(code uint32) (string, error) {
		calls++
		return fmt.Sprintf("%08x", code), nil
	})))
	r := c.Compare(disasm.Sequence{1, 2, 3}, disasm.Sequence{1, 2, 3})
	assert.True(t, r.Matches())
	assert.Zero(t, calls)
}

func TestCompareBranchOperand(t *testing.T) {
	c := newComparator()
	ref := disasm.Sequence{0x9421fff0, 0x48000010, 0x4e800020}
	cand := disasm.Sequence{0x9421fff0, 0x48000020, 0x4e800020}

	r := c.Compare(ref, cand)
	assert.Equal(t, Identical, r.Kind)
}

func TestCompareRealDecoderBranchOperand(t *testing.T) {
	// b +0x10 against b +0x20: same opcode, different displacement.
	c := New(classify.New(classify.PPC{}))
	r := c.Compare(disasm.Sequence{0x48000010}, disasm.Sequence{0x48000020})
	assert.Equal(t, Identical, r.Kind)
}

func TestCompareSemanticMismatch(t *testing.T) {
	c := newComparator()
	ref := disasm.Sequence{0x9421fff0, 0x7c642a14, 0x7c641a14, 0x4e800020}
	cand := disasm.Sequence{0x9421fff0, 0x7c642a14, 0x7c643214, 0x48000010}

	r := c.Compare(ref, cand)
	require.Equal(t, SemanticMismatch, r.Kind)
	assert.Equal(t, 2, r.Index)
	assert.Equal(t, classify.Mnemonic("add r3,r4,r3"), r.Original)
	assert.Equal(t, classify.Mnemonic("add r3,r4,r6"), r.Candidate)
	assert.Equal(t, uint32(0x7c641a14), r.OriginalCode)
	assert.Equal(t, uint32(0x7c643214), r.CandidateCode)
	assert.False(t, r.Matches())
}

func TestCompareIllegalWords(t *testing.T) {
	c := newComparator()
	r := c.Compare(disasm.Sequence{0x00000001}, disasm.Sequence{0x00000002})
	require.Equal(t, SemanticMismatch, r.Kind)
	assert.Equal(t, classify.Mnemonic("<illegal; found: 0x00000001>"), r.Original)
	assert.Equal(t, classify.Mnemonic("<illegal; found: 0x00000002>"), r.Candidate)
}

func TestCompareShortCandidate(t *testing.T) {
	c := newComparator()
	ref := disasm.Sequence{0x9421fff0, 0x7c0802a6, 0x38600001, 0x4e800020}
	cand := disasm.Sequence{0x9421fff0, 0x7c0802a6, 0x38600002}

	r := c.Compare(ref, cand)
	require.Equal(t, LengthMismatch, r.Kind)
	assert.Equal(t, len(cand), r.Index)
	assert.Equal(t, classify.Mnemonic("blr"), r.Original)
}

func TestCompareLongerCandidate(t *testing.T) {
	c := newComparator()
	r := c.Compare(disasm.Sequence{0x4e800020}, disasm.Sequence{0x4e800020, 0x7c642a14})
	assert.Equal(t, Identical, r.Kind)
}

func TestCompareStopsAtFirstDivergence(t *testing.T) {
	c := newComparator()
	ref := disasm.Sequence{0x7c642a14, 0x7c642a14}
	cand := disasm.Sequence{0x7c643214, 0x7c641a14}

	r := c.Compare(ref, cand)
	assert.Equal(t, 0, r.Index)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "identical", Result{}.String())
	assert.Contains(t, Result{Kind: LengthMismatch, Index: 3, Original: "blr"}.String(), "instruction 3")
	assert.Contains(t, Result{Kind: SemanticMismatch, Index: 1, Original: "mr", Candidate: "or"}.String(), `"or"`)
}

func TestListing(t *testing.T) {
	c := newComparator()
	ref := disasm.Sequence{0x9421fff0, 0x48000010, 0x7c642a14, 0x4e800020}
	cand := disasm.Sequence{0x9421fff0, 0x48000020, 0x7c643214, 0x4e800020, 0x38600001}

	rows := c.Listing(ref, cand)
	require.Len(t, rows, 5)

	statuses := make([]Status, len(rows))
	for i, r := range rows {
		statuses[i] = r.Status
	}
	assert.Equal(t, []Status{Same, Relocated, Differs, Same, Extra}, statuses)
	assert.False(t, rows[4].HasOriginal)
	assert.Equal(t, classify.Mnemonic("li r3,1"), rows[4].Candidate)

	rows = c.Listing(disasm.Sequence{0x4e800020}, disasm.Sequence{})
	require.Len(t, rows, 1)
	assert.Equal(t, Missing, rows[0].Status)
	assert.Equal(t, "<", rows[0].Status.Marker())
}
