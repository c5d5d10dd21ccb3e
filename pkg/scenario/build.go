package scenario

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/schema"
)

// Build creates the scenario's object. Plain values are defined first, then descriptors,
// each group in name order. Inherited values live on a prototype. The result must satisfy
// the scenario's schema.
func Build(f *File, reg *registry.Registry) (*object.Object, error) {
	var proto *object.Object
	if len(f.Inherited) > 0 {
		proto = object.FromMap(f.Inherited)
	}

	target := object.New(proto)
	for _, name := range sortedKeys(f.Object) {
		if err := target.DefineProperty(name, object.Data(f.Object[name])); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(f.Descriptors))
	for name := range f.Descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, dup := f.Object[name]; dup {
			return nil, fmt.Errorf("property %q declared in object and descriptors", name)
		}
		d, err := f.Descriptors[name].descriptor(reg)
		if err != nil {
			return nil, fmt.Errorf("descriptor %q: %w", name, err)
		}
		if err := target.DefineProperty(name, d); err != nil {
			return nil, fmt.Errorf("descriptor %q: %w", name, err)
		}
	}
	if len(f.Schema) > 0 {
		if err := schema.Validate(f.Schema, target); err != nil {
			return nil, err
		}
	}
	return target, nil
}

func (s DescriptorSpec) descriptor(reg *registry.Registry) (object.Descriptor, error) {
	d := object.Descriptor{
		Enumerable:   flag(s.Enumerable),
		Configurable: flag(s.Configurable),
	}
	if s.ReadOnly {
		value := s.Value
		d.Get = func(*object.Object) (any, error) { return value, nil }
		return d, nil
	}

	d.Value = s.Value
	d.Writable = flag(s.Writable)
	if s.Method != "" {
		if reg == nil {
			return d, fmt.Errorf("method %q: no registry", s.Method)
		}
		fn, err := reg.Lookup(s.Method)
		if err != nil {
			return d, err
		}
		d.Value = fn
	}
	return d, nil
}

func flag(b *bool) bool {
	return b == nil || *b
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Arm installs the scenario's schema guard and rules on obs. The returned func removes both.
func Arm(obs *observer.ObjectObserver, f *File, logger *slog.Logger) func() {
	removeGuard := schema.Guard(obs, f.Schema)
	removeRules := InstallRules(obs, f.Rules, logger)
	return func() {
		removeRules()
		removeGuard()
	}
}

type ruleSet struct{ n int }

// InstallRules registers rules on obs. The returned func removes them again.
func InstallRules(obs *observer.ObjectObserver, rules []Rule, logger *slog.Logger) func() {
	owner := &ruleSet{n: len(rules)}
	for _, rule := range rules {
		obs.On(rule.On, func(args ...any) (any, error) {
			if rule.Log {
				logger.Info("rule fired", "channel", rule.On, "args", describeArgs(args))
			}
			switch {
			case rule.Veto:
				return false, nil
			case rule.Override != nil:
				return rule.Override, nil
			}
			return nil, nil
		}, owner)
	}
	return func() { obs.Off("", nil, owner) }
}

// describeArgs drops the target and makes functions printable.
func describeArgs(args []any) []any {
	if len(args) > 0 {
		if _, ok := args[0].(*object.Object); ok {
			args = args[1:]
		}
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = printable(a)
	}
	return out
}

// MethodPlaceholder stands in for function values in traces and snapshots.
const MethodPlaceholder = "[method]"

func printable(v any) any {
	if object.IsCallable(v) {
		return MethodPlaceholder
	}
	return v
}
