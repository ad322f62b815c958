package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Reporter prints human-readable progress. The text is not meant to be parsed.
type Reporter struct {
	w    io.Writer
	step *color.Color
	ok   *color.Color
	fail *color.Color
	bold *color.Color
}

// NewReporter writes progress to w. Colors follow fatih/color's terminal
// detection (and NO_COLOR).
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{
		w:    w,
		step: color.New(color.FgCyan),
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed, color.Bold),
		bold: color.New(color.Bold),
	}
}

func (r *Reporter) Banner(title string) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(r.w, rule)
	r.bold.Fprintln(r.w, title)
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w)
}

func (r *Reporter) Step(format string, args ...any) {
	r.step.Fprint(r.w, "→ ")
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *Reporter) Done(format string, args ...any) {
	r.ok.Fprint(r.w, "✓ ")
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *Reporter) Failed(format string, args ...any) {
	r.fail.Fprint(r.w, "✗ ")
	fmt.Fprintf(r.w, format+"\n", args...)
}

// Summary prints the final statistics block.
func (r *Reporter) Summary(res *Result) {
	fmt.Fprintln(r.w)
	r.bold.Fprintln(r.w, "Summary:")
	fmt.Fprintf(r.w, "   - Updated at:   %s\n", res.Snapshot.UpdatedAt)
	fmt.Fprintf(r.w, "   - Total models: %d\n", res.Snapshot.TotalModels)
	fmt.Fprintf(r.w, "   - Output file:  %s\n", res.OutputPath)
	if res.ManifestPath != "" {
		fmt.Fprintf(r.w, "   - Manifest:     %s\n", res.ManifestPath)
	}
	fmt.Fprintln(r.w)
	r.ok.Fprintln(r.w, "Done!")
}
