package scenario

import (
	"sort"

	"github.com/aretw0/vigil/pkg/object"
)

// shape is the comparable part of a descriptor. Values are left out: writes made while
// observed legitimately survive unobserve.
type shape struct {
	Present      bool
	Accessor     bool
	HasGet       bool
	HasSet       bool
	Writable     bool
	Enumerable   bool
	Configurable bool
}

func shapeOf(target *object.Object, name string) shape {
	d, ok := target.OwnDescriptor(name)
	if !ok {
		return shape{}
	}
	return shape{
		Present:      true,
		Accessor:     d.IsAccessor(),
		HasGet:       d.Get != nil,
		HasSet:       d.Set != nil,
		Writable:     d.Writable,
		Enumerable:   d.Enumerable,
		Configurable: d.Configurable,
	}
}

// captureShapes records every own property plus the allow-listed names.
func captureShapes(target *object.Object, f *File) map[string]shape {
	out := make(map[string]shape)
	for _, name := range target.OwnKeys() {
		out[name] = shapeOf(target, name)
	}
	for _, name := range f.Properties {
		out[name] = shapeOf(target, name)
	}
	return out
}

// compareShapes reports whether after restores before. A name absent before may come back as
// a plain data property if it was written while observed.
func compareShapes(before, after map[string]shape) bool {
	plain := shape{Present: true, Writable: true, Enumerable: true, Configurable: true}
	for name, b := range before {
		a := after[name]
		if a == b {
			continue
		}
		if !b.Present && a == plain {
			continue
		}
		return false
	}
	for name, a := range after {
		if _, ok := before[name]; !ok && a.Present {
			return false
		}
	}
	return true
}

func sortedShapeNames(m map[string]shape) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
