package report

import (
	"fmt"
	"io"
	"strings"

	"funcmatch/internal/compare"
	"funcmatch/internal/matcher"
	"funcmatch/internal/ui/colorize"
)

const mnemonicWidth = 32

func (r *Reporter) writeOutcomeText(w io.Writer, o matcher.Outcome) error {
	var b strings.Builder
	if o.Err == nil && o.Result.Matches() {
		b.WriteString(colorize.Verdict("identical", true))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "%s: %s\n", displayName(o), colorize.Verdict(Verdict(o), false))
		fmt.Fprintf(&b, "  %s\n", Detail(o))
	}
	if rows := r.rows(o); len(rows) > 0 {
		b.WriteString("\n")
		writeRows(&b, rows, o.Symbol.Start)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Reporter) writeAllText(w io.Writer, outcomes []matcher.Outcome) error {
	var b strings.Builder
	for _, o := range matcher.Compared(outcomes) {
		ok := o.Matches()
		mark := "✓"
		if !ok {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s %s", colorize.Verdict(mark, ok), pad(colorize.Verdict(Verdict(o), ok), 18), displayName(o))
		if d := Detail(o); d != "" {
			fmt.Fprintf(&b, "\n    %s", d)
		}
		b.WriteString("\n")
		if rows := r.rows(o); len(rows) > 0 {
			writeRows(&b, rows, o.Symbol.Start)
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "\n%s\n", summaryLine(matcher.Summarize(outcomes), ""))
	_, err := io.WriteString(w, b.String())
	return err
}

// writeRows prints the side-by-side listing. Addresses are those of the
// reference function starting at start.
func writeRows(b *strings.Builder, rows []compare.Row, start uint64) {
	for _, row := range rows {
		b.WriteString(FormatRow(row, start))
		b.WriteString("\n")
	}
}

// FormatRow renders one listing row as
// "address  word  reference  marker  word  candidate".
func FormatRow(row compare.Row, start uint64) string {
	addr := colorize.Address(fmt.Sprintf("%08x", start+uint64(row.Index)*4))

	left := pad("", 8+2+mnemonicWidth)
	if row.HasOriginal {
		left = colorize.Address(fmt.Sprintf("%08x", row.OriginalCode)) + "  " +
			pad(colorize.Instruction(string(row.Original)), mnemonicWidth)
	}
	right := ""
	if row.HasCandidate {
		right = colorize.Address(fmt.Sprintf("%08x", row.CandidateCode)) + "  " +
			colorize.Instruction(string(row.Candidate))
	}
	return strings.TrimRight(fmt.Sprintf("%s  %s %s %s", addr, left, colorize.Marker(row.Status.Marker()), right), " ")
}
