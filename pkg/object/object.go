package object

import (
	"fmt"
	"sort"
	"sync"
)

// Func is a callable property value. The receiver is the object the call was made on.
type Func func(this *Object, args ...any) (any, error)

// Getter computes the value of an accessor property.
type Getter func(this *Object) (any, error)

// Setter stores a value through an accessor property.
type Setter func(this *Object, value any) error

// Descriptor describes the shape of a single property.
// A descriptor with a Get or Set function is an accessor descriptor and its Value/Writable
// fields are ignored.
type Descriptor struct {
	Value        any
	Writable     bool
	Get          Getter
	Set          Setter
	Enumerable   bool
	Configurable bool
}

// Data returns a writable, enumerable and configurable value descriptor,
// the shape a plain assignment creates.
func Data(value any) Descriptor {
	return Descriptor{
		Value:        value,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	}
}

// IsAccessor reports whether the descriptor has a getter or a setter.
func (d Descriptor) IsAccessor() bool {
	return d.Get != nil || d.Set != nil
}

// IsWritable reports whether a write through this descriptor can succeed.
func (d Descriptor) IsWritable() bool {
	if d.IsAccessor() {
		return d.Set != nil
	}
	return d.Writable
}

// IsCallable reports whether v can be invoked as a method.
func IsCallable(v any) bool {
	_, ok := v.(Func)
	return ok
}

// Object is a dynamic property bag with per-property descriptors and an optional prototype.
// Property bookkeeping is safe for concurrent use; getters, setters and functions run
// without any internal lock held, so they may access the object again.
type Object struct {
	mu    sync.RWMutex
	proto *Object
	keys  []string
	props map[string]Descriptor
}

// New creates an empty object inheriting from proto (which may be nil).
func New(proto *Object) *Object {
	return &Object{
		proto: proto,
		props: make(map[string]Descriptor),
	}
}

// FromMap creates an object with one plain data property per map entry.
// Keys are inserted in sorted order.
func FromMap(values map[string]any) *Object {
	o := New(nil)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.keys = append(o.keys, k)
		o.props[k] = Data(values[k])
	}
	return o
}

// Proto returns the prototype, or nil.
func (o *Object) Proto() *Object {
	return o.proto
}

// OwnDescriptor returns the descriptor of an own property.
func (o *Object) OwnDescriptor(name string) (Descriptor, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	d, ok := o.props[name]
	return d, ok
}

// HasOwn reports whether name is an own property.
func (o *Object) HasOwn(name string) bool {
	_, ok := o.OwnDescriptor(name)
	return ok
}

// Has reports whether name resolves on the object or its prototype chain.
func (o *Object) Has(name string) bool {
	_, _, ok := o.lookup(name)
	return ok
}

// DefineProperty installs d as the descriptor of name, replacing any configurable own property.
func (o *Object) DefineProperty(name string, d Descriptor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.props[name]; ok {
		if !existing.Configurable {
			return fmt.Errorf("define %q: %w", name, ErrNotConfigurable)
		}
	} else {
		o.keys = append(o.keys, name)
	}
	o.props[name] = d
	return nil
}

// DeleteProperty removes an own property. Deleting an absent property is a no-op.
func (o *Object) DeleteProperty(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	existing, ok := o.props[name]
	if !ok {
		return nil
	}
	if !existing.Configurable {
		return fmt.Errorf("delete %q: %w", name, ErrNotConfigurable)
	}
	delete(o.props, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return nil
}

// lookup resolves name along the prototype chain and reports whether it was found on o itself.
func (o *Object) lookup(name string) (Descriptor, bool, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if d, ok := cur.OwnDescriptor(name); ok {
			return d, cur == o, true
		}
	}
	return Descriptor{}, false, false
}

// Get reads name. Absent properties and accessors without a getter read as nil.
func (o *Object) Get(name string) (any, error) {
	d, _, ok := o.lookup(name)
	if !ok {
		return nil, nil
	}
	if d.IsAccessor() {
		if d.Get == nil {
			return nil, nil
		}
		return d.Get(o)
	}
	return d.Value, nil
}

// Set writes name the way a plain assignment would.
func (o *Object) Set(name string, value any) error {
	d, own, ok := o.lookup(name)
	switch {
	case !ok:
		return o.assign(name, value)
	case d.IsAccessor():
		if d.Set == nil {
			return fmt.Errorf("set %q: %w", name, ErrReadOnly)
		}
		return d.Set(o, value)
	case !d.Writable:
		return fmt.Errorf("set %q: %w", name, ErrReadOnly)
	case own:
		o.mu.Lock()
		defer o.mu.Unlock()
		cur, still := o.props[name]
		if !still {
			o.keys = append(o.keys, name)
			cur = Data(nil)
		}
		cur.Value = value
		o.props[name] = cur
		return nil
	default:
		return o.assign(name, value)
	}
}

// assign creates a new own plain data property.
func (o *Object) assign(name string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.props[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.props[name] = Data(value)
	return nil
}

// Call invokes the function stored under name with o as receiver.
func (o *Object) Call(name string, args ...any) (any, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(Func)
	if !ok {
		return nil, fmt.Errorf("call %q: %w", name, ErrNotCallable)
	}
	return fn(o, args...)
}

// OwnKeys returns every own property name, enumerable or not, in insertion order.
func (o *Object) OwnKeys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.keys...)
}

// Keys returns own enumerable property names in insertion order.
func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	keys := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if o.props[k].Enumerable {
			keys = append(keys, k)
		}
	}
	return keys
}

// EnumerableKeys returns every enumerable name visible on the object: own names first,
// then inherited ones. A name shadowed by a closer property is reported at most once and only
// if the closest definition is enumerable.
func (o *Object) EnumerableKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for cur := o; cur != nil; cur = cur.proto {
		cur.mu.RLock()
		for _, k := range cur.keys {
			if seen[k] {
				continue
			}
			seen[k] = true
			if cur.props[k].Enumerable {
				keys = append(keys, k)
			}
		}
		cur.mu.RUnlock()
	}
	return keys
}

// Snapshot reads the given names, or every enumerable name when none are given.
func (o *Object) Snapshot(names ...string) (map[string]any, error) {
	if len(names) == 0 {
		names = o.EnumerableKeys()
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		v, err := o.Get(name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
