package report

import (
	"fmt"
	"strings"

	"funcmatch/internal/compare"
	"funcmatch/internal/matcher"
)

// OutcomeMarkdown renders a single outcome as a markdown document.
func (r *Reporter) OutcomeMarkdown(o matcher.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", displayName(o))
	writeOutcomeMarkdown(&b, o)
	if rows := r.rows(o); len(rows) > 0 {
		b.WriteString("\n")
		writeRowsMarkdown(&b, rows, o.Symbol.Start)
	}
	return b.String()
}

// AllMarkdown renders a whole-table run with a summary table.
func (r *Reporter) AllMarkdown(outcomes []matcher.Outcome) string {
	var b strings.Builder
	b.WriteString("# funcmatch\n\n")
	fmt.Fprintf(&b, "%s.\n\n", summaryLine(matcher.Summarize(outcomes), "**"))
	outcomes = matcher.Compared(outcomes)

	b.WriteString("| Symbol | Verdict | Detail |\n|---|---|---|\n")
	for _, o := range outcomes {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", displayName(o), Verdict(o), cell(Detail(o)))
	}

	for _, o := range outcomes {
		rows := r.rows(o)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", displayName(o))
		writeRowsMarkdown(&b, rows, o.Symbol.Start)
	}
	return b.String()
}

func writeOutcomeMarkdown(b *strings.Builder, o matcher.Outcome) {
	fmt.Fprintf(b, "- **Symbol:** `%s`\n", o.Symbol.Name)
	if o.Label != "" && o.Label != o.Symbol.Name {
		fmt.Fprintf(b, "- **Label:** `%s`\n", o.Label)
	}
	fmt.Fprintf(b, "- **Range:** `%#x`–`%#x` (%d instructions)\n", o.Symbol.Start, o.Symbol.End, len(o.Reference))
	fmt.Fprintf(b, "- **Verdict:** %s\n", Verdict(o))
	if d := Detail(o); d != "" {
		fmt.Fprintf(b, "\n> %s\n", d)
	}
}

func writeRowsMarkdown(b *strings.Builder, rows []compare.Row, start uint64) {
	b.WriteString("| Address | Reference | | Candidate |\n|---|---|---|---|\n")
	for _, row := range rows {
		left, right := "", ""
		if row.HasOriginal {
			left = "`" + string(row.Original) + "`"
		}
		if row.HasCandidate {
			right = "`" + string(row.Candidate) + "`"
		}
		fmt.Fprintf(b, "| `%08x` | %s | %s | %s |\n",
			start+uint64(row.Index)*4, left, markerCell(row.Status), right)
	}
}

func markerCell(s compare.Status) string {
	if s == compare.Same {
		return ""
	}
	return "`" + s.Marker() + "`"
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
