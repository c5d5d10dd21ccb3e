package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/vigil/internal/presentation/graph"
	"github.com/aretw0/vigil/internal/presentation/tui"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/scenario"
)

// ErrNotRestored is returned when a scenario leaves the object with different descriptors.
var ErrNotRestored = errors.New("object was not restored after unobserve")

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Path    string
	JSON    bool
	Mermaid bool
	Color   bool
	Out     io.Writer
	Logger  *slog.Logger
}

// Run executes a scenario file and prints its trace.
func Run(ctx context.Context, opts RunOptions) error {
	f, err := scenario.Load(opts.Path)
	if err != nil {
		return err
	}

	res, err := scenario.Run(ctx, f,
		scenario.WithLogger(opts.Logger),
		scenario.WithSetup(func(obs *observer.ObjectObserver) func() {
			return attachDebugListeners(obs, opts.Logger)
		}),
	)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", f.Name, err)
	}

	switch {
	case opts.JSON:
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	case opts.Mermaid:
		fmt.Fprint(opts.Out, graph.GenerateSequence(res))
	default:
		tui.NewTracePrinter(opts.Out, opts.Color).Print(res)
	}

	if !res.Restored {
		return ErrNotRestored
	}
	return nil
}
