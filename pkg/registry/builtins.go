package registry

import (
	"fmt"
	"strings"

	"github.com/aretw0/vigil/pkg/object"
)

// Echo returns its only argument, or all of them as a slice.
func Echo(_ *object.Object, args ...any) (any, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return args, nil
}

// Sum adds numeric arguments. The result is an int when every argument is an integer.
func Sum(_ *object.Object, args ...any) (any, error) {
	var (
		total    float64
		integral = true
	)
	for i, a := range args {
		switch n := a.(type) {
		case int:
			total += float64(n)
		case int64:
			total += float64(n)
		case float64:
			total += n
			integral = integral && n == float64(int64(n))
		default:
			return nil, fmt.Errorf("sum: argument %d is %T, not a number", i, a)
		}
	}
	if integral {
		return int(total), nil
	}
	return total, nil
}

// Concat joins the string form of its arguments.
func Concat(_ *object.Object, args ...any) (any, error) {
	var b strings.Builder
	for _, a := range args {
		fmt.Fprint(&b, a)
	}
	return b.String(), nil
}
