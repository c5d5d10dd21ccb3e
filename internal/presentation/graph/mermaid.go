package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/scenario"
)

// GenerateSequence produces a Mermaid sequence diagram from a scenario trace.
// Each observed property is a participant; every fired event is an arrow from the caller.
// Writes cancelled in "set:before" are annotated as vetoed.
func GenerateSequence(res *scenario.Result) string {
	var sb strings.Builder
	sb.WriteString("sequenceDiagram\n")
	sb.WriteString("    participant caller\n")
	for _, name := range res.Properties {
		sb.WriteString(fmt.Sprintf("    participant %s as %s\n", sanitizeMermaidID(name), name))
	}

	vetoed := vetoedWrites(res.Trace)
	step := -2
	for i, e := range res.Trace {
		if e.Step != step {
			step = e.Step
			sb.WriteString(fmt.Sprintf("    Note over caller: step %d\n", step))
		}
		safeID := sanitizeMermaidID(e.Property)
		arrow := "->>"
		if e.Kind.IsBefore() {
			arrow = "-->>"
		}
		label := string(e.Kind)
		if len(e.Args) > 0 {
			label += " " + sanitizeLabel(fmt.Sprint(e.Args...))
		}
		sb.WriteString(fmt.Sprintf("    caller%s%s: %s\n", arrow, safeID, label))
		if vetoed[i] {
			sb.WriteString(fmt.Sprintf("    Note right of %s: vetoed\n", safeID))
		}
	}
	return sb.String()
}

// vetoedWrites marks "set:before" entries not followed by "set" for the same step and property.
func vetoedWrites(trace []scenario.TraceEntry) map[int]bool {
	out := make(map[int]bool)
	for i, e := range trace {
		if e.Kind != domain.EventSetBefore {
			continue
		}
		committed := false
		for _, next := range trace[i+1:] {
			if next.Step != e.Step {
				break
			}
			if next.Property == e.Property && next.Kind == domain.EventSet {
				committed = true
				break
			}
		}
		if !committed {
			out[i] = true
		}
	}
	return out
}

func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, ";", ",")
	s = strings.ReplaceAll(s, "#", "")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
