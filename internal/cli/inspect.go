package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/vigil/internal/presentation/tui"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/scenario"
)

// InspectOptions configures the Inspect command.
type InspectOptions struct {
	Path string
	// Observed renders the descriptors while the object is instrumented.
	Observed bool
	// Raw prints the markdown instead of rendering it.
	Raw    bool
	Out    io.Writer
	Logger *slog.Logger
}

// Inspect prints the descriptor table of a scenario's object.
func Inspect(opts InspectOptions) error {
	f, err := scenario.Load(opts.Path)
	if err != nil {
		return err
	}
	target, err := scenario.Build(f, registry.Builtins())
	if err != nil {
		return err
	}

	extra := append(target.EnumerableKeys(), f.Properties...)
	title := f.Name
	var md string
	if opts.Observed {
		var observeOpts []observer.Option
		observeOpts = append(observeOpts, observer.WithLogger(opts.Logger))
		if len(f.Properties) > 0 {
			observeOpts = append(observeOpts, observer.WithProperties(f.Properties...))
		}
		obs, err := observer.NewObjectObserver(target, observeOpts...)
		if err != nil {
			return err
		}
		md = tui.DescriptorTable(title+" (observed)", target, extra...)
		if err := obs.Unobserve(); err != nil {
			return err
		}
	} else {
		md = tui.DescriptorTable(title, target, extra...)
	}

	if opts.Raw {
		_, err := fmt.Fprint(opts.Out, md)
		return err
	}
	out, err := tui.NewRenderer()(md)
	if err != nil {
		opts.Logger.Warn("markdown rendering failed", "error", err)
	}
	_, err = fmt.Fprint(opts.Out, out)
	return err
}
