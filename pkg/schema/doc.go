// Package schema declares the value types of an object's properties and enforces them.
//
// A Schema maps property names to types. Validate checks the current values of an object;
// Guard rejects writes of ill-typed values on an observed object with a *ValidationError.
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "name": "string",
//	    "age":  "int",
//	    "tags": "[string]",
//	    "note": "?string", // nil allowed
//	})
//
//	remove := schema.Guard(obs, s)
//	defer remove()
//
// Types are parsed from short names: string, int, float, number (alias of float), bool,
// method, any, "[T]" for slices and "?T" for nullable values.
package schema
