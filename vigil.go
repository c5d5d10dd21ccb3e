package vigil

import (
	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/observer"
)

// Option configures an observer.
type Option = observer.Option

// WithLogger sets the logger used for observe/unobserve diagnostics.
var WithLogger = observer.WithLogger

// WithProperties restricts Observe to an explicit list of names.
var WithProperties = observer.WithProperties

// Observe instruments the enumerable properties of target (or the WithProperties list) and
// returns the observer publishing their events. Call Unobserve to restore target.
func Observe(target *object.Object, opts ...Option) (*observer.ObjectObserver, error) {
	return observer.NewObjectObserver(target, opts...)
}

// ObserveProperty instruments a single property of target.
func ObserveProperty(target *object.Object, name string, opts ...Option) (*observer.PropertyObserver, error) {
	return observer.NewPropertyObserver(target, name, opts...)
}

// NewObject returns an object holding values as plain properties, defined in name order.
func NewObject(values map[string]any) *object.Object {
	return object.FromMap(values)
}
