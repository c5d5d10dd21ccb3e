package domain

import (
	"reflect"
)

// Diff returns the values of after that are new or differ from before.
// Names present in before but missing from after are reported with a nil value.
// It returns nil when nothing changed, so the result can be omitted from JSON.
func Diff(before, after map[string]any) map[string]any {
	delta := make(map[string]any)

	// Added or modified
	for k, newVal := range after {
		oldVal, exists := before[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	// Deleted
	for k := range before {
		if _, exists := after[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}
