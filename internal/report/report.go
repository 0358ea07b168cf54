// Package report renders comparison outcomes as plain text, JSON or
// markdown.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"funcmatch/internal/compare"
	"funcmatch/internal/funcmatch/styles"
	"funcmatch/internal/matcher"
	"funcmatch/internal/ui/colorize"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or markdown)", s)
	}
}

// Lister produces the side-by-side rows of an outcome.
type Lister interface {
	Rows(o matcher.Outcome) []compare.Row
}

type Options struct {
	Format Format
	// Listing adds the full side-by-side listing to each result.
	Listing bool
	// Glamour renders markdown output for the terminal.
	Glamour bool
	Width   int
}

// Reporter writes outcomes in the configured format.
type Reporter struct {
	opts   Options
	lister Lister
}

func New(lister Lister, opts Options) *Reporter {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Reporter{opts: opts, lister: lister}
}

// Outcome writes the result of a single-symbol run. An identical result
// in text format is the single word "identical".
func (r *Reporter) Outcome(w io.Writer, o matcher.Outcome) error {
	switch r.opts.Format {
	case FormatJSON:
		return writeJSON(w, r.record(o))
	case FormatMarkdown:
		return r.writeMarkdown(w, r.OutcomeMarkdown(o))
	default:
		return r.writeOutcomeText(w, o)
	}
}

// All writes the results of a whole-table run followed by a summary.
// Symbols the object does not define only appear in the summary.
func (r *Reporter) All(w io.Writer, outcomes []matcher.Outcome) error {
	switch r.opts.Format {
	case FormatJSON:
		doc := Document{Summary: matcher.Summarize(outcomes), Results: []Record{}}
		for _, o := range matcher.Compared(outcomes) {
			doc.Results = append(doc.Results, r.record(o))
		}
		return writeJSON(w, doc)
	case FormatMarkdown:
		return r.writeMarkdown(w, r.AllMarkdown(outcomes))
	default:
		return r.writeAllText(w, outcomes)
	}
}

func (r *Reporter) rows(o matcher.Outcome) []compare.Row {
	if !r.opts.Listing || o.Err != nil || r.lister == nil {
		return nil
	}
	return r.lister.Rows(o)
}

func (r *Reporter) writeMarkdown(w io.Writer, md string) error {
	if r.opts.Glamour {
		out, err := styles.RenderMarkdown(md, r.opts.Width)
		if err != nil {
			return err
		}
		md = out
	}
	_, err := io.WriteString(w, md)
	return err
}

// Verdict is the one-word state of an outcome.
func Verdict(o matcher.Outcome) string {
	switch {
	case o.Absent:
		return "absent"
	case o.Err != nil:
		return "error"
	default:
		return o.Result.Kind.String()
	}
}

// Detail describes why an outcome is not identical, or is empty.
func Detail(o matcher.Outcome) string {
	switch {
	case o.Absent:
		return "not defined by the object"
	case o.Err != nil:
		return o.Err.Error()
	case o.Result.Matches():
		return ""
	case o.Result.Kind == compare.LengthMismatch:
		return fmt.Sprintf("candidate ends after %d instructions; expected %s", o.Result.Index, o.Result.Original)
	default:
		return fmt.Sprintf("instruction %d: expected %s, found %s", o.Result.Index, o.Result.Original, o.Result.Candidate)
	}
}

func displayName(o matcher.Outcome) string {
	if d := o.Symbol.Demangled(); d != o.Symbol.Name {
		return d
	}
	return o.Symbol.Name
}

// summaryLine counts the compared symbols; absent ones are noted after.
func summaryLine(s matcher.Summary, strong string) string {
	line := fmt.Sprintf("%[5]s%[1]d%[5]s symbols: %[5]s%[2]d%[5]s identical, %[5]s%[3]d%[5]s mismatched, %[5]s%[4]d%[5]s failed",
		s.Compared(), s.Identical, s.Mismatch, s.Failed, strong)
	if s.Absent > 0 {
		line += fmt.Sprintf(" (%d not defined by the object)", s.Absent)
	}
	return line
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pad(s string, width int) string {
	if n := colorize.VisibleWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
