package vigil_test

import (
	"fmt"

	"github.com/aretw0/vigil"
)

func Example() {
	person := vigil.NewObject(map[string]any{"name": "ada", "age": 36})

	obs, err := vigil.Observe(person)
	if err != nil {
		panic(err)
	}

	obs.On("set:before:age", func(args ...any) (any, error) {
		return args[2].(int) >= 0, nil
	}, nil)
	obs.On("set", func(args ...any) (any, error) {
		fmt.Printf("%s: %v -> %v\n", args[1], args[3], args[2])
		return nil, nil
	}, nil)

	_ = person.Set("age", -1)
	_ = person.Set("age", 37)

	if err := obs.Unobserve(); err != nil {
		panic(err)
	}
	age, _ := person.Get("age")
	fmt.Println("after unobserve:", age)

	// Output:
	// age: 36 -> 37
	// after unobserve: 37
}

func ExampleObserveProperty() {
	config := vigil.NewObject(map[string]any{"mode": "prod"})

	p, err := vigil.ObserveProperty(config, "mode")
	if err != nil {
		panic(err)
	}
	defer p.Unobserve()

	p.On("get:before", func(args ...any) (any, error) {
		return "test", nil
	}, nil)

	mode, _ := config.Get("mode")
	fmt.Println(mode)

	// Output:
	// test
}
