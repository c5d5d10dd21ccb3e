package dsl

import (
	"fmt"
	"slices"

	"github.com/aretw0/vigil/pkg/scenario"
	"github.com/aretw0/vigil/pkg/schema"
)

// Builder manages the scenario construction.
type Builder struct {
	file  scenario.File
	props map[string]*PropertyBuilder
	order []string
}

// New creates a new scenario builder.
func New(name string) *Builder {
	return &Builder{
		file:  scenario.File{Name: name},
		props: make(map[string]*PropertyBuilder),
	}
}

// Describe sets the scenario description.
func (b *Builder) Describe(text string) *Builder {
	b.file.Description = text
	return b
}

// Value adds a plain property to the object.
func (b *Builder) Value(name string, v any) *Builder {
	if b.file.Object == nil {
		b.file.Object = make(map[string]any)
	}
	b.file.Object[name] = v
	return b
}

// Inherit adds a property to the object's prototype.
func (b *Builder) Inherit(name string, v any) *Builder {
	if b.file.Inherited == nil {
		b.file.Inherited = make(map[string]any)
	}
	b.file.Inherited[name] = v
	return b
}

// Observe restricts observation to names. Without it every enumerable property is observed.
func (b *Builder) Observe(names ...string) *Builder {
	b.file.Properties = append(b.file.Properties, names...)
	return b
}

// Type declares the schema type of a property.
func (b *Builder) Type(name string, t schema.Type) *Builder {
	if b.file.Schema == nil {
		b.file.Schema = make(schema.Schema)
	}
	b.file.Schema[name] = t
	return b
}

// Property declares a property with an explicit shape.
// If the property already exists, it returns the existing builder.
func (b *Builder) Property(name string) *PropertyBuilder {
	if pb, ok := b.props[name]; ok {
		return pb
	}
	pb := &PropertyBuilder{builder: b}
	b.props[name] = pb
	b.order = append(b.order, name)
	return pb
}

// Veto cancels every write announced on channel.
func (b *Builder) Veto(channel string) *Builder {
	b.file.Rules = append(b.file.Rules, scenario.Rule{On: channel, Veto: true})
	return b
}

// Override answers every access announced on channel with v.
func (b *Builder) Override(channel string, v any) *Builder {
	b.file.Rules = append(b.file.Rules, scenario.Rule{On: channel, Override: v})
	return b
}

// Log writes every event fired on channel to the run logger.
func (b *Builder) Log(channel string) *Builder {
	b.file.Rules = append(b.file.Rules, scenario.Rule{On: channel, Log: true})
	return b
}

// Get adds a read step.
func (b *Builder) Get(name string) *Builder {
	return b.step(scenario.Step{Get: name})
}

// Set adds a write step.
func (b *Builder) Set(name string, v any) *Builder {
	return b.step(scenario.Step{Set: name, Value: v})
}

// Call adds a method call step.
func (b *Builder) Call(name string, args ...any) *Builder {
	return b.step(scenario.Step{Call: name, Args: args})
}

// Unobserve adds a step that restores the object mid-run.
func (b *Builder) Unobserve() *Builder {
	return b.step(scenario.Step{Unobserve: true})
}

// ExpectError marks the last step as expected to fail.
func (b *Builder) ExpectError() *Builder {
	if n := len(b.file.Steps); n > 0 {
		b.file.Steps[n-1].ExpectError = true
	}
	return b
}

func (b *Builder) step(s scenario.Step) *Builder {
	b.file.Steps = append(b.file.Steps, s)
	return b
}

// Build returns the validated scenario.
func (b *Builder) Build() (*scenario.File, error) {
	f := b.file
	f.Rules = slices.Clone(b.file.Rules)
	f.Steps = slices.Clone(b.file.Steps)
	f.Properties = slices.Clone(b.file.Properties)
	if len(b.props) > 0 {
		f.Descriptors = make(map[string]scenario.DescriptorSpec, len(b.props))
		for _, name := range b.order {
			f.Descriptors[name] = b.props[name].decl
		}
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", f.Name, err)
	}
	return &f, nil
}
