package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/vigil/internal/logging"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/registry"
)

// TraceEntry is one event fired on a property channel during a run.
type TraceEntry struct {
	Step     int              `json:"step"`
	Channel  string           `json:"channel"`
	Kind     domain.EventKind `json:"kind"`
	Property string           `json:"property"`
	Args     []any            `json:"args,omitempty"`
}

// StepError is a step failure the scenario declared as expected.
type StepError struct {
	Step  int    `json:"step"`
	Error string `json:"error"`
}

// Result is the outcome of a run.
type Result struct {
	Name       string         `json:"name"`
	Properties []string       `json:"properties"`
	Trace      []TraceEntry   `json:"trace"`
	Reads      []any          `json:"reads"`
	Errors     []StepError    `json:"errors,omitempty"`
	Initial    map[string]any `json:"initial"`
	Final      map[string]any `json:"final"`
	Changed    map[string]any `json:"changed,omitempty"`
	Restored   bool           `json:"restored"`
}

type runConfig struct {
	registry *registry.Registry
	logger   *slog.Logger
	setup    []func(*observer.ObjectObserver) func()
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithRegistry sets the methods available to descriptors. Defaults to registry.Builtins.
func WithRegistry(r *registry.Registry) RunOption {
	return func(c *runConfig) { c.registry = r }
}

// WithLogger sets the logger used by observers and logging rules.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) { c.logger = logger }
}

// WithSetup runs fn once the observer exists and before any step. The func it returns, if any,
// runs before the object is restored.
func WithSetup(fn func(*observer.ObjectObserver) func()) RunOption {
	return func(c *runConfig) { c.setup = append(c.setup, fn) }
}

// Run executes f against a fresh object and restores it afterwards. A step error aborts the
// run unless the step declares expect_error.
func Run(ctx context.Context, f *File, opts ...RunOption) (*Result, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = registry.Builtins()
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	target, err := Build(f, cfg.registry)
	if err != nil {
		return nil, err
	}

	var observeOpts []observer.Option
	observeOpts = append(observeOpts, observer.WithLogger(cfg.logger))
	if len(f.Properties) > 0 {
		observeOpts = append(observeOpts, observer.WithProperties(f.Properties...))
	}

	before := captureShapes(target, f)
	initial, err := readValues(target, before)
	if err != nil {
		return nil, err
	}
	obs, err := observer.NewObjectObserver(target, observeOpts...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Name:       f.Name,
		Properties: obs.Properties(),
		Reads:      []any{},
		Initial:    initial,
	}

	step := -1
	for _, name := range res.Properties {
		for _, kind := range domain.Kinds {
			channel := kind.Qualified(name)
			obs.On(channel, func(args ...any) (any, error) {
				res.Trace = append(res.Trace, TraceEntry{
					Step:     step,
					Channel:  channel,
					Kind:     kind,
					Property: name,
					Args:     describeArgs(dropName(args)),
				})
				return nil, nil
			}, res)
		}
	}
	disarm := Arm(obs, f, cfg.logger)

	var teardown []func()
	for _, fn := range cfg.setup {
		if undo := fn(obs); undo != nil {
			teardown = append(teardown, undo)
		}
	}

	runErr := func() error {
		for i, s := range f.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			step = i
			err := perform(target, obs, s, res)
			switch {
			case err != nil && s.ExpectError:
				res.Errors = append(res.Errors, StepError{Step: i, Error: err.Error()})
			case err != nil:
				return fmt.Errorf("step %d (%s %s): %w", i, s.Op(), s.Property(), err)
			case s.ExpectError:
				return fmt.Errorf("step %d (%s %s): expected an error", i, s.Op(), s.Property())
			}
		}
		return nil
	}()

	for i := len(teardown) - 1; i >= 0; i-- {
		teardown[i]()
	}
	disarm()
	obs.Off("", nil, res)
	if err := obs.Unobserve(); err != nil {
		return res, err
	}
	if runErr != nil {
		return res, runErr
	}

	if res.Final, err = readValues(target, before); err != nil {
		return res, err
	}
	res.Changed = domain.Diff(res.Initial, res.Final)
	res.Restored = compareShapes(before, captureShapes(target, f))
	cfg.logger.Debug("scenario finished", "name", f.Name, "events", len(res.Trace), "restored", res.Restored)
	return res, nil
}

func perform(target *object.Object, obs *observer.ObjectObserver, s Step, res *Result) error {
	switch s.Op() {
	case "get":
		v, err := target.Get(s.Get)
		if err != nil {
			return err
		}
		res.Reads = append(res.Reads, printable(v))
	case "set":
		return target.Set(s.Set, s.Value)
	case "call":
		v, err := target.Call(s.Call, s.Args...)
		if err != nil {
			return err
		}
		res.Reads = append(res.Reads, printable(v))
	case "unobserve":
		return obs.Unobserve()
	}
	return nil
}

// readValues reads every captured name that target still has, without observation.
func readValues(target *object.Object, shapes map[string]shape) (map[string]any, error) {
	values := make(map[string]any, len(shapes))
	for _, name := range sortedShapeNames(shapes) {
		if !target.Has(name) {
			continue
		}
		v, err := target.Get(name)
		if err != nil {
			return nil, err
		}
		values[name] = printable(v)
	}
	return values, nil
}

// dropName removes the name argument that follows the target.
func dropName(args []any) []any {
	if len(args) < 2 {
		return args
	}
	return append([]any{args[0]}, args[2:]...)
}
