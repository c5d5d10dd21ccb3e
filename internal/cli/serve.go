package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/vigil/internal/presentation/tui"
	httpAdapter "github.com/aretw0/vigil/pkg/adapters/http"
	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/adapters/metrics"
	"github.com/aretw0/vigil/pkg/adapters/redis"
	"github.com/aretw0/vigil/pkg/journal"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/persistence/middleware"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/scenario"
	"github.com/prometheus/client_golang/prometheus"
)

// ServeOptions configures the Serve command.
type ServeOptions struct {
	Path      string
	Addr      string
	RedisAddr string
	// Redact lists patterns of property names whose values are masked in the journal.
	Redact []string
	// JournalKey, when set, encrypts journal entries with AES-256.
	JournalKey []byte
	Banner     bool
	Out        io.Writer
	Logger     *slog.Logger
	// Ready, if set, receives the bound address once the server accepts connections.
	Ready func(addr string)
}

// Serve observes the scenario's object and exposes it over HTTP until ctx is cancelled.
// Rules of the scenario are installed; its steps are not run.
func Serve(ctx context.Context, opts ServeOptions) error {
	f, err := scenario.Load(opts.Path)
	if err != nil {
		return err
	}
	target, err := scenario.Build(f, registry.Builtins())
	if err != nil {
		return err
	}

	var observeOpts []observer.Option
	observeOpts = append(observeOpts, observer.WithLogger(opts.Logger))
	if len(f.Properties) > 0 {
		observeOpts = append(observeOpts, observer.WithProperties(f.Properties...))
	}
	obs, err := observer.NewObjectObserver(target, observeOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := obs.Unobserve(); err != nil {
			opts.Logger.Error("unobserve failed", "error", err)
		}
	}()
	disarm := scenario.Arm(obs, f, opts.Logger)
	defer disarm()
	defer attachDebugListeners(obs, opts.Logger)()

	var j ports.Journal = memory.NewJournal()
	if opts.RedisAddr != "" {
		rj := redis.New(opts.RedisAddr, "", 0, f.Name)
		defer rj.Close()
		j = rj
	}
	if j, err = secureJournal(j, opts); err != nil {
		return err
	}
	rec := journal.Attach(ctx, obs, j)
	defer rec.Detach()

	collector := metrics.NewCollector()
	collector.Attach(obs)
	defer collector.Detach(obs)
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	handler := httpAdapter.NewHandler(obs,
		httpAdapter.WithJournal(j),
		httpAdapter.WithGatherer(reg),
		httpAdapter.WithLogger(opts.Logger),
	)
	defer handler.Close()

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}
	srv := &http.Server{
		Handler: handler,
		// Streams end with ctx instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	if opts.Banner {
		tui.PrintBanner(opts.Out)
	}
	printSystemMessage(opts.Out, "Observing %d properties of %q on http://%s", len(obs.Properties()), f.Name, ln.Addr())
	opts.Logger.Info("server started", "addr", ln.Addr().String(), "scenario", f.Name)

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()
	if opts.Ready != nil {
		opts.Ready(ln.Addr().String())
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Logger.Warn("graceful shutdown did not complete", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(opts.Out, "Server stopped gracefully")
		return nil
	}
}

// secureJournal masks values before encrypting them.
func secureJournal(j ports.Journal, opts ServeOptions) (ports.Journal, error) {
	var mws []middleware.Middleware
	if len(opts.Redact) > 0 {
		redact, err := middleware.NewRedactMiddleware(opts.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, redact)
	}
	if len(opts.JournalKey) > 0 {
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: opts.JournalKey})
		if err != nil {
			return nil, fmt.Errorf("journal key: %w", err)
		}
		mws = append(mws, encrypt)
	}
	return middleware.Chain(j, mws...), nil
}
