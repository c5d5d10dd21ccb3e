package schema

import (
	"github.com/aretw0/vigil/pkg/object"
)

// Validate checks the current value of every declared property of target. Absent properties
// read as nil, so only nullable and any types accept them. Reads go through target.Get and
// fire events when target is observed.
func Validate(s Schema, target *object.Object) error {
	var errs []error
	for _, name := range s.Names() {
		value, err := target.Get(name)
		if err != nil {
			return err
		}
		if verr := check(s[name], name, value); verr != nil {
			errs = append(errs, verr)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func check(t Type, name string, value any) error {
	if err := t.Validate(value); err != nil {
		return &ValidationError{
			Property: name,
			Type:     t.Name(),
			Reason:   err.Error(),
			Value:    value,
		}
	}
	return nil
}
