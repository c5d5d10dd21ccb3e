/*
Package vigil intercepts property access on dynamic objects.

An observer replaces a property with an accessor that fires events around every read, write
and method call. Listeners can override values, veto writes or simply watch. When observation
ends the original descriptor is put back, keeping the latest value.

# Events

Every access fires three events on the observer's hub:

  - "get:before", "get", "get:after" for reads and method calls;
  - "set:before", "set", "set:after" for writes.

A non-nil result from a "get:before" listener replaces the value. A "set:before" listener
returning false cancels the write. An object observer republishes each event on "<kind>" and on
"<kind>:<property>".

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/vigil"
	)

	func main() {
		person := vigil.NewObject(map[string]any{"name": "ada", "age": 36})

		obs, err := vigil.Observe(person)
		if err != nil {
			log.Fatal(err)
		}
		defer obs.Unobserve()

		obs.On("set:before:age", func(args ...any) (any, error) {
			return args[2].(int) >= 0, nil // reject negative ages
		}, nil)
		obs.On("set", func(args ...any) (any, error) {
			fmt.Printf("%s: %v -> %v\n", args[1], args[3], args[2])
			return nil, nil
		}, nil)

		_ = person.Set("age", -1) // vetoed
		_ = person.Set("age", 37) // prints "age: 36 -> 37"
	}

# Packages

  - pkg/object: the dynamic object model with property descriptors.
  - pkg/events: the synchronous event hub.
  - pkg/observer: property and object observers.
  - pkg/journal, pkg/adapters: recording writes, metrics and the HTTP inspector.
  - pkg/scenario: declarative scenario files, run by the vigil command.
*/
package vigil
