package report

import (
	"fmt"

	"funcmatch/internal/compare"
	"funcmatch/internal/matcher"
)

// Document is the JSON form of a whole-table run.
type Document struct {
	Results []Record        `json:"results"`
	Summary matcher.Summary `json:"summary"`
}

// Record is the JSON form of one outcome.
type Record struct {
	Symbol       string      `json:"symbol"`
	Demangled    string      `json:"demangled,omitempty"`
	Label        string      `json:"label,omitempty"`
	Start        string      `json:"start"`
	End          string      `json:"end"`
	Verdict      string      `json:"verdict"`
	Index        *int        `json:"index,omitempty"`
	Expected     string      `json:"expected,omitempty"`
	ExpectedCode string      `json:"expected_code,omitempty"`
	Found        string      `json:"found,omitempty"`
	FoundCode    string      `json:"found_code,omitempty"`
	Reference    int         `json:"reference_instructions"`
	Candidate    int         `json:"candidate_instructions"`
	Error        string      `json:"error,omitempty"`
	Listing      []RowRecord `json:"listing,omitempty"`
}

type RowRecord struct {
	Index         int    `json:"index"`
	Status        string `json:"status"`
	Original      string `json:"original,omitempty"`
	OriginalCode  string `json:"original_code,omitempty"`
	Candidate     string `json:"candidate,omitempty"`
	CandidateCode string `json:"candidate_code,omitempty"`
}

func hexWord(w uint32) string {
	return fmt.Sprintf("0x%08X", w)
}

func (r *Reporter) record(o matcher.Outcome) Record {
	rec := Record{
		Symbol:    o.Symbol.Name,
		Label:     o.Label,
		Start:     fmt.Sprintf("%#x", o.Symbol.Start),
		End:       fmt.Sprintf("%#x", o.Symbol.End),
		Verdict:   Verdict(o),
		Reference: len(o.Reference),
		Candidate: len(o.Candidate),
	}
	if d := o.Symbol.Demangled(); d != o.Symbol.Name {
		rec.Demangled = d
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
		return rec
	}

	res := o.Result
	switch res.Kind {
	case compare.LengthMismatch:
		rec.Index = &res.Index
		rec.Expected = string(res.Original)
		rec.ExpectedCode = hexWord(res.OriginalCode)
	case compare.SemanticMismatch:
		rec.Index = &res.Index
		rec.Expected = string(res.Original)
		rec.ExpectedCode = hexWord(res.OriginalCode)
		rec.Found = string(res.Candidate)
		rec.FoundCode = hexWord(res.CandidateCode)
	}

	for _, row := range r.rows(o) {
		rr := RowRecord{Index: row.Index, Status: row.Status.String()}
		if row.HasOriginal {
			rr.Original = string(row.Original)
			rr.OriginalCode = hexWord(row.OriginalCode)
		}
		if row.HasCandidate {
			rr.Candidate = string(row.Candidate)
			rr.CandidateCode = hexWord(row.CandidateCode)
		}
		rec.Listing = append(rec.Listing, rr)
	}
	return rec
}
