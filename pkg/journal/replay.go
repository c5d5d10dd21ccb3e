package journal

import (
	"context"
	"fmt"

	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/ports"
)

// Replay applies every recorded change to target, in order, through target.Set.
// When target is itself observed the writes fire events and can be vetoed again.
// It returns the number of changes applied.
func Replay(ctx context.Context, j ports.Journal, target *object.Object) (int, error) {
	entries, err := j.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("replay: %w", err)
	}
	for i, change := range entries {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := target.Set(change.Property, change.Value); err != nil {
			return i, fmt.Errorf("replay entry %d (%s): %w", i, change.Property, err)
		}
	}
	return len(entries), nil
}
