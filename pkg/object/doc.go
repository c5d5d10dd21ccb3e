/*
Package object provides the instrumentable target used by the observers.

Go structs have no property descriptors, so vigil works on an explicit dynamic object: every
property carries a Descriptor (plain value or getter/setter pair, plus enumerability and
configurability), and reads, writes and calls go through Get, Set and Call. An object may
inherit names from a prototype object.

	target := object.FromMap(map[string]any{"x": 10})
	_ = target.Set("x", 12)
	v, _ := target.Get("x") // 12
*/
package object
