package observer

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/events"
	"github.com/aretw0/vigil/pkg/object"
)

// ObjectObserver instruments a set of properties of one object and republishes each
// property's events on a generic channel ("set") and a property channel ("set:x").
type ObjectObserver struct {
	*events.Hub

	target     *object.Object
	properties []string

	mu       sync.RWMutex
	children map[string]*PropertyObserver

	logger *slog.Logger
}

// NewObjectObserver instruments target. Without WithProperties every enumerable name visible
// on target at this point is observed; properties added later are not.
func NewObjectObserver(target *object.Object, opts ...Option) (*ObjectObserver, error) {
	if target == nil {
		return nil, domain.ErrNilTarget
	}
	cfg := newConfig(opts)

	names := cfg.properties
	if !cfg.scoped {
		names = target.EnumerableKeys()
	}

	o := &ObjectObserver{
		Hub:      events.NewHub(),
		target:   target,
		children: make(map[string]*PropertyObserver, len(names)),
		logger:   cfg.logger,
	}

	for _, name := range names {
		if _, dup := o.children[name]; dup {
			continue
		}
		child, err := NewPropertyObserver(target, name, WithLogger(cfg.logger))
		if err != nil {
			// Leave the target as we found it.
			if undoErr := o.Unobserve(); undoErr != nil {
				err = errors.Join(err, undoErr)
			}
			return nil, err
		}
		o.relay(child)
		o.children[name] = child
		o.properties = append(o.properties, name)
	}

	o.logger.Debug("object observed", "properties", o.properties)
	return o, nil
}

func (o *ObjectObserver) relay(child *PropertyObserver) {
	name := child.Name()
	for _, kind := range domain.Kinds {
		generic := string(kind)
		qualified := kind.Qualified(name)

		var fn events.Listener
		if kind.IsBefore() {
			fn = func(args ...any) (any, error) {
				result, err := o.Trigger(qualified, args...)
				if err != nil || result != nil {
					return result, err
				}
				return o.Trigger(generic, args...)
			}
		} else {
			fn = func(args ...any) (any, error) {
				if _, err := o.Trigger(generic, args...); err != nil {
					return nil, err
				}
				_, err := o.Trigger(qualified, args...)
				return nil, err
			}
		}
		child.On(generic, fn, o)
	}
}

// Target returns the instrumented object.
func (o *ObjectObserver) Target() *object.Object { return o.target }

// Properties returns the observed names in observation order.
func (o *ObjectObserver) Properties() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.properties...)
}

// Property returns the observer of one property.
func (o *ObjectObserver) Property(name string) (*PropertyObserver, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.children[name]
	return p, ok
}

// Active reports whether any property is still instrumented.
func (o *ObjectObserver) Active() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.children) > 0
}

// Unobserve restores every observed property. Errors from individual properties are joined;
// properties that failed to restore stay observed so the call can be retried.
func (o *ObjectObserver) Unobserve() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	kept := make([]string, 0)
	for _, name := range o.properties {
		child := o.children[name]
		if err := child.Unobserve(); err != nil {
			errs = append(errs, err)
			kept = append(kept, name)
			continue
		}
		child.Off("", nil, o)
		delete(o.children, name)
	}
	o.properties = kept

	if err := errors.Join(errs...); err != nil {
		o.logger.Error("unobserve incomplete", "error", err)
		return err
	}
	o.logger.Debug("object restored")
	return nil
}
