package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/scenario"
	"github.com/muesli/termenv"
)

// TracePrinter writes scenario results in a human readable form.
type TracePrinter struct {
	out     *termenv.Output
	profile termenv.Profile
}

// NewTracePrinter creates a printer writing to w. Colour is disabled unless color is set.
func NewTracePrinter(w io.Writer, color bool) *TracePrinter {
	profile := termenv.Ascii
	if color {
		profile = termenv.ColorProfile()
	}
	return &TracePrinter{
		out:     termenv.NewOutput(w, termenv.WithProfile(profile)),
		profile: profile,
	}
}

var kindColors = map[domain.EventKind]string{
	domain.EventGetBefore: "#818cf8",
	domain.EventGet:       "#a78bfa",
	domain.EventGetAfter:  "#c084fc",
	domain.EventSetBefore: "#f472b6",
	domain.EventSet:       "#fb7185",
	domain.EventSetAfter:  "#fda4af",
}

// Print writes the trace grouped by step, then reads, expected errors, the final state and
// what changed since the run started.
func (p *TracePrinter) Print(res *scenario.Result) {
	title := res.Name
	if title == "" {
		title = "scenario"
	}
	fmt.Fprintln(p.out, p.out.String(title).Bold())
	fmt.Fprintf(p.out, "observing: %s\n", strings.Join(res.Properties, ", "))

	step := -2
	for _, e := range res.Trace {
		if e.Step != step {
			step = e.Step
			fmt.Fprintf(p.out, "\nstep %d\n", step)
		}
		channel := p.out.String(fmt.Sprintf("%-18s", e.Channel)).Foreground(p.profile.Color(kindColors[e.Kind]))
		fmt.Fprintf(p.out, "  %s %s\n", channel, formatArgs(e.Args))
	}

	if len(res.Reads) > 0 {
		fmt.Fprintln(p.out, "\nreads:")
		for i, v := range res.Reads {
			fmt.Fprintf(p.out, "  %d: %v\n", i, v)
		}
	}
	for _, e := range res.Errors {
		fmt.Fprintf(p.out, "\n%s step %d: %s\n", p.out.String("expected error").Faint(), e.Step, e.Error)
	}

	fmt.Fprintln(p.out, "\nfinal:")
	for _, name := range sortedNames(res.Final) {
		fmt.Fprintf(p.out, "  %s = %v\n", name, res.Final[name])
	}
	if len(res.Changed) > 0 {
		fmt.Fprintln(p.out, "\nchanged:")
		for _, name := range sortedNames(res.Changed) {
			fmt.Fprintf(p.out, "  %s: %v -> %v\n", name, formatChanged(res.Initial, name), formatChanged(res.Changed, name))
		}
	}

	status := p.out.String("restored").Foreground(p.profile.Color("#22c55e"))
	if !res.Restored {
		status = p.out.String("NOT restored").Foreground(p.profile.Color("#ef4444"))
	}
	fmt.Fprintf(p.out, "\n%s\n", status)
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprintf("%v", a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatChanged marks names missing from m as absent.
func formatChanged(m map[string]any, name string) string {
	v, ok := m[name]
	if !ok || v == nil {
		return "(absent)"
	}
	return fmt.Sprintf("%v", v)
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
