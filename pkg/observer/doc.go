/*
Package observer instruments object properties so that every read, write or call passes through
a before/main/after event sequence, and restores them losslessly afterwards.

# Property observers

NewPropertyObserver captures the property's descriptor, installs a replacement accessor on the
target and fires, on its own hub:

  - reads:  "get:before" (target, name), then "get" and "get:after" (target, name, result);
  - calls:  "get:before" (target, name, args...), then "get" and "get:after"
    (target, name, result, args...);
  - writes: "set:before", "set" and "set:after" (target, name, value, oldValue).

A non-nil "get:before" result replaces the value or call result without consulting the property.
A "set:before" result of exactly false cancels the write: nothing changes and no further events
fire. Listener errors abort the access and are returned to whoever performed it.

# Object observers

NewObjectObserver creates one property observer per name and republishes their events as
"<kind>" and "<kind>:<name>". For the before phases the property channel is consulted first and
a defined result there wins over the generic channel.

# Teardown

Unobserve must be called to restore the target: an observer that is simply dropped leaves its
properties instrumented for good.

	target := object.FromMap(map[string]any{"x": 10})
	obs, _ := observer.NewObjectObserver(target)
	obs.On("set:before:x", func(args ...any) (any, error) { return false, nil }, nil)
	_ = target.Set("x", 12) // cancelled, x is still 10
	_ = obs.Unobserve()
*/
package observer
