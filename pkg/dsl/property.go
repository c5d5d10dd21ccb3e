package dsl

import "github.com/aretw0/vigil/pkg/scenario"

// PropertyBuilder provides a fluent API for configuring a property's shape.
type PropertyBuilder struct {
	decl    scenario.DescriptorSpec
	builder *Builder
}

// Value sets the property value.
func (p *PropertyBuilder) Value(v any) *PropertyBuilder {
	p.decl.Value = v
	return p
}

// Method installs the registry function name as the value.
func (p *PropertyBuilder) Method(name string) *PropertyBuilder {
	p.decl.Method = name
	return p
}

// ReadOnly turns the property into a getter without a setter.
func (p *PropertyBuilder) ReadOnly() *PropertyBuilder {
	p.decl.ReadOnly = true
	return p
}

// Frozen makes the property non-writable.
func (p *PropertyBuilder) Frozen() *PropertyBuilder {
	p.decl.Writable = ptr(false)
	return p
}

// Hidden makes the property non-enumerable.
func (p *PropertyBuilder) Hidden() *PropertyBuilder {
	p.decl.Enumerable = ptr(false)
	return p
}

// Sealed makes the property non-configurable. Sealed properties cannot be observed.
func (p *PropertyBuilder) Sealed() *PropertyBuilder {
	p.decl.Configurable = ptr(false)
	return p
}

// Done returns to the scenario builder.
func (p *PropertyBuilder) Done() *Builder {
	return p.builder
}

// Descriptor returns the underlying descriptor declaration.
func (p *PropertyBuilder) Descriptor() scenario.DescriptorSpec {
	return p.decl
}

func ptr(b bool) *bool { return &b }
