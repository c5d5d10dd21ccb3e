package schema

import (
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/observer"
)

type guard struct{ s Schema }

// Guard rejects writes of ill-typed values to the declared properties of obs: the write
// fails with a *ValidationError and no further event fires. The guard listens on the
// property channels, so other listeners cannot bypass it. The returned func removes it.
func Guard(obs *observer.ObjectObserver, s Schema) func() {
	owner := &guard{s}
	for _, name := range s.Names() {
		if _, ok := obs.Property(name); !ok {
			continue
		}
		typ := s[name]
		obs.On(domain.EventSetBefore.Qualified(name), func(args ...any) (any, error) {
			if len(args) < 3 {
				return nil, nil
			}
			return nil, check(typ, name, args[2])
		}, owner)
	}
	return func() { obs.Off("", nil, owner) }
}
