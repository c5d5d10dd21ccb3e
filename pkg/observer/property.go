package observer

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/events"
	"github.com/aretw0/vigil/pkg/object"
)

// PropertyObserver instruments one property of one object.
// Listeners are registered through the embedded hub, on the six event kinds of package domain.
type PropertyObserver struct {
	*events.Hub

	target *object.Object
	name   string

	original object.Descriptor
	hadOwn   bool

	// shadow backs properties whose original shape has no accessor pair; mu guards it.
	mu         sync.Mutex
	shadow     any
	funcValued bool
	accessor   bool
	getable    bool
	setable    bool
	active     atomic.Bool

	logger *slog.Logger
}

// NewPropertyObserver instruments target's property name and returns the active observer.
// A property that does not exist is observed as a plain property whose value is nil.
//
// Dropping the observer without calling Unobserve leaves the target instrumented.
func NewPropertyObserver(target *object.Object, name string, opts ...Option) (*PropertyObserver, error) {
	if target == nil {
		return nil, domain.ErrNilTarget
	}
	cfg := newConfig(opts)

	p := &PropertyObserver{
		Hub:    events.NewHub(),
		target: target,
		name:   name,
		logger: cfg.logger.With("property", name),
	}
	p.original, p.hadOwn = target.OwnDescriptor(name)
	if p.hadOwn && !p.original.Configurable {
		return nil, fmt.Errorf("observe %q: %w", name, object.ErrNotConfigurable)
	}

	current, err := target.Get(name)
	if err != nil {
		return nil, fmt.Errorf("observe %q: %w", name, err)
	}
	p.funcValued = object.IsCallable(current)
	p.accessor = p.hadOwn && p.original.IsAccessor()
	if !p.accessor {
		p.shadow = current
	}

	p.getable = true
	p.setable = true
	switch {
	case p.accessor:
		p.getable = p.original.Get != nil
		p.setable = p.original.Set != nil
	case p.hadOwn:
		p.setable = p.original.Writable
	}

	if err := p.install(); err != nil {
		return nil, err
	}
	p.active.Store(true)
	p.logger.Debug("property observed", "function", p.funcValued, "accessor", p.accessor)
	return p, nil
}

// Target returns the instrumented object.
func (p *PropertyObserver) Target() *object.Object { return p.target }

// Name returns the instrumented property name.
func (p *PropertyObserver) Name() string { return p.name }

// Active reports whether the property is currently instrumented.
func (p *PropertyObserver) Active() bool { return p.active.Load() }

// FunctionValued reports whether the property was classified as a method.
func (p *PropertyObserver) FunctionValued() bool { return p.funcValued }

// Original returns the descriptor captured before instrumentation, and whether the
// property existed at all.
func (p *PropertyObserver) Original() (object.Descriptor, bool) {
	return p.original, p.hadOwn
}

func (p *PropertyObserver) install() error {
	enumerable := true
	if p.hadOwn {
		enumerable = p.original.Enumerable
	}
	d := object.Descriptor{
		Enumerable:   enumerable,
		Configurable: true,
	}

	if p.funcValued {
		d.Get = p.method
		if p.setable {
			d.Set = func(_ *object.Object, v any) error { return p.write(v) }
		}
	} else {
		if p.getable {
			d.Get = p.get
		}
		if p.setable {
			d.Set = p.set
		}
	}

	if err := p.target.DefineProperty(p.name, d); err != nil {
		return fmt.Errorf("observe %q: %w", p.name, err)
	}
	return nil
}

// trigger is a no-op once teardown has started.
func (p *PropertyObserver) trigger(kind domain.EventKind, args ...any) (any, error) {
	if !p.active.Load() {
		return nil, nil
	}
	return p.Trigger(string(kind), args...)
}

// read returns the backing value without firing events.
func (p *PropertyObserver) read() (any, error) {
	if p.accessor {
		if p.original.Get == nil {
			return nil, nil
		}
		return p.original.Get(p.target)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shadow, nil
}

// write stores the backing value without firing events.
func (p *PropertyObserver) write(v any) error {
	if p.accessor {
		return p.original.Set(p.target, v)
	}
	p.mu.Lock()
	p.shadow = v
	p.mu.Unlock()
	return nil
}

// method returns the call wrapper while the backing value is still a function.
func (p *PropertyObserver) method(*object.Object) (any, error) {
	v, err := p.read()
	if err != nil {
		return nil, err
	}
	if !object.IsCallable(v) {
		return v, nil
	}
	return object.Func(p.call), nil
}

func (p *PropertyObserver) get(*object.Object) (any, error) {
	result, err := p.trigger(domain.EventGetBefore, p.target, p.name)
	if err != nil {
		return nil, err
	}
	if result == nil {
		if result, err = p.read(); err != nil {
			return nil, err
		}
	}
	if _, err := p.trigger(domain.EventGet, p.target, p.name, result); err != nil {
		return nil, err
	}
	if _, err := p.trigger(domain.EventGetAfter, p.target, p.name, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *PropertyObserver) set(_ *object.Object, value any) error {
	old, err := p.read()
	if err != nil {
		return err
	}
	verdict, err := p.trigger(domain.EventSetBefore, p.target, p.name, value, old)
	if err != nil {
		return err
	}
	if cancelled, ok := verdict.(bool); ok && !cancelled {
		return nil
	}
	if err := p.write(value); err != nil {
		return err
	}
	if _, err := p.trigger(domain.EventSet, p.target, p.name, value, old); err != nil {
		return err
	}
	_, err = p.trigger(domain.EventSetAfter, p.target, p.name, value, old)
	return err
}

// call wraps the backing function. The receiver is always the target.
func (p *PropertyObserver) call(_ *object.Object, args ...any) (any, error) {
	result, err := p.trigger(domain.EventGetBefore, p.eventArgs(nil, args)...)
	if err != nil {
		return nil, err
	}
	if result == nil {
		v, err := p.read()
		if err != nil {
			return nil, err
		}
		fn, ok := v.(object.Func)
		if !ok {
			return nil, fmt.Errorf("call %q: %w", p.name, object.ErrNotCallable)
		}
		if result, err = fn(p.target, args...); err != nil {
			return nil, err
		}
	}
	after := p.eventArgs([]any{result}, args)
	if _, err := p.trigger(domain.EventGet, after...); err != nil {
		return nil, err
	}
	if _, err := p.trigger(domain.EventGetAfter, after...); err != nil {
		return nil, err
	}
	return result, nil
}

// eventArgs builds (target, name, fixed..., callArgs...).
func (p *PropertyObserver) eventArgs(fixed []any, callArgs []any) []any {
	args := make([]any, 0, 2+len(fixed)+len(callArgs))
	args = append(args, p.target, p.name)
	args = append(args, fixed...)
	return append(args, callArgs...)
}

// Unobserve restores the original descriptor and carries the latest value over to it.
// Calling it on an inactive observer is a no-op. If the original descriptor can no longer be
// installed the error is returned and the observer stays active.
func (p *PropertyObserver) Unobserve() error {
	if !p.active.CompareAndSwap(true, false) {
		return nil
	}

	var (
		value    any
		readable = p.getable
		err      error
	)
	switch {
	case p.funcValued:
		value, err = p.read()
	case readable:
		value, err = p.target.Get(p.name)
	}
	if err != nil {
		p.active.Store(true)
		return fmt.Errorf("unobserve %q: %w", p.name, err)
	}

	if p.hadOwn {
		err = p.target.DefineProperty(p.name, p.original)
	} else {
		err = p.target.DeleteProperty(p.name)
	}
	if err != nil {
		p.active.Store(true)
		p.logger.Error("restore failed", "error", err)
		return fmt.Errorf("unobserve %q: %w", p.name, err)
	}

	if readable && p.restoredWritable() {
		restored, err := p.target.Get(p.name)
		if err != nil {
			return fmt.Errorf("unobserve %q: %w", p.name, err)
		}
		// Own data properties always take the written value back, so identity survives.
		// Elsewhere an equal value is left alone and nothing is copied down from a prototype.
		if (p.hadOwn && !p.accessor) || !sameValue(restored, value) {
			if err := p.target.Set(p.name, value); err != nil {
				return fmt.Errorf("unobserve %q: %w", p.name, err)
			}
		}
	}

	p.logger.Debug("property restored")
	return nil
}

func (p *PropertyObserver) restoredWritable() bool {
	if !p.hadOwn {
		return true
	}
	return p.original.IsWritable()
}

// sameValue compares two property values. Functions are compared by code pointer, so a
// method replaced by another closure of the same literal is not written back.
func sameValue(a, b any) bool {
	if fa, ok := a.(object.Func); ok {
		fb, ok := b.(object.Func)
		return ok && reflect.ValueOf(fa).Pointer() == reflect.ValueOf(fb).Pointer()
	}
	return reflect.DeepEqual(a, b)
}
