package middleware

import "github.com/aretw0/vigil/pkg/ports"

// Middleware allows wrapping a Journal to add behavior.
type Middleware func(ports.Journal) ports.Journal

// Chain wraps j with mws. The first middleware is the outermost one.
func Chain(j ports.Journal, mws ...Middleware) ports.Journal {
	for i := len(mws) - 1; i >= 0; i-- {
		j = mws[i](j)
	}
	return j
}
