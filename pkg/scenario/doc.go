// Package scenario runs declarative observation scenarios.
//
// A scenario file describes an object, the listeners to install on its observer and a list of
// accesses to perform. Run executes the accesses, records every event fired on the
// property channels and checks that unobserving restored the object's descriptors.
//
//	object:
//	  x: 10
//	descriptors:
//	  double: {method: sum}
//	rules:
//	  - on: "set:before:x"
//	    veto: true
//	steps:
//	  - set: x
//	    value: 12
//	  - get: x
package scenario
