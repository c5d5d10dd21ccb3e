package object

import "errors"

// ErrNotConfigurable is returned when redefining or deleting a non-configurable property.
var ErrNotConfigurable = errors.New("property is not configurable")

// ErrReadOnly is returned when writing a property that has no setter or is not writable.
var ErrReadOnly = errors.New("property is read-only")

// ErrNotCallable is returned when calling a property whose value is not a Func.
var ErrNotCallable = errors.New("property is not callable")
