/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing Vigil scenarios.

It allows developers to define objects, rules and steps using a fluent builder pattern instead of
relying on external YAML or JSON files. This is particularly useful for table-driven tests and
for generating scenarios dynamically.

Example usage:

	b := dsl.New("person")
	b.Value("name", "ada").Value("age", 36)
	b.Property("id").Value("p-1").Frozen()
	b.Veto("set:before:age")
	b.Get("name").Set("age", 40).Set("id", "p-2").ExpectError()

	f, err := b.Build()
	if err != nil {
		return err
	}
	res, err := scenario.Run(ctx, f)
*/
package dsl
