package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/vigil/pkg/object"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// DescriptorTable renders the own properties of target as a markdown table.
// Inherited names listed in extra are shown with kind "inherited".
func DescriptorTable(title string, target *object.Object, extra ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString("| property | kind | value | writable | enumerable | configurable |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")

	seen := make(map[string]bool)
	for _, name := range target.OwnKeys() {
		seen[name] = true
		d, _ := target.OwnDescriptor(name)
		kind := "data"
		value := formatValue(d.Value)
		switch {
		case d.IsAccessor():
			kind = accessorKind(d)
			value = "-"
		case object.IsCallable(d.Value):
			kind = "method"
			value = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			name, kind, value, mark(d.IsWritable()), mark(d.Enumerable), mark(d.Configurable))
	}
	for _, name := range extra {
		if seen[name] {
			continue
		}
		kind := "absent"
		value := "-"
		if target.Has(name) {
			kind = "inherited"
			if v, err := target.Get(name); err == nil {
				value = formatValue(v)
			}
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | - | - | - |\n", name, kind, value)
	}
	return sb.String()
}

func accessorKind(d object.Descriptor) string {
	switch {
	case d.Get != nil && d.Set != nil:
		return "accessor"
	case d.Get != nil:
		return "getter"
	default:
		return "setter"
	}
}

func formatValue(v any) string {
	if v == nil {
		return "_nil_"
	}
	if object.IsCallable(v) {
		return "[method]"
	}
	s := fmt.Sprintf("%v", v)
	return strings.ReplaceAll(s, "|", "\\|")
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
