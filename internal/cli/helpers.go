package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/vigil/internal/logging"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/observer"
	"golang.org/x/term"
)

// SignalContext is cancelled by SIGINT, SIGTERM or its parent, and remembers which signal
// ended it.
type SignalContext struct {
	context.Context
	Cancel func()

	mu     sync.Mutex
	sigVal os.Signal
}

// NewSignalContext behaves like signal.NotifyContext and additionally records the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// CreateLogger configures the application logger from a --log-level value.
// Logs go to Stderr so Stdout stays clean for traces and JSON.
func CreateLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// ShouldColor reports whether w is an interactive terminal that accepts colour.
// NO_COLOR disables colour regardless of the terminal.
func ShouldColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// attachDebugListeners logs every event fired by obs at debug level.
func attachDebugListeners(obs *observer.ObjectObserver, logger *slog.Logger) func() {
	owner := &struct{ name string }{"debug"}
	for _, kind := range domain.Kinds {
		obs.On(string(kind), func(args ...any) (any, error) {
			property := ""
			if len(args) > 1 {
				property, _ = args[1].(string)
			}
			logger.Debug("Property Event", "kind", kind, "property", property)
			return nil, nil
		}, owner)
	}
	return func() { obs.Off("", nil, owner) }
}
