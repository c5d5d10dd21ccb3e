package ports

import (
	"context"

	"github.com/aretw0/vigil/pkg/domain"
)

// Journal records committed writes in order.
// It backs change tracking on top of an object observer.
type Journal interface {
	// Append records a change after the existing ones.
	Append(ctx context.Context, change domain.Change) error

	// Entries returns every recorded change, oldest first.
	Entries(ctx context.Context) ([]domain.Change, error)

	// Reset removes every recorded change.
	Reset(ctx context.Context) error
}
