package observer

import (
	"log/slog"

	"github.com/aretw0/vigil/internal/logging"
)

type config struct {
	logger     *slog.Logger
	properties []string
	scoped     bool
}

// Option configures an observer.
type Option func(*config)

// WithLogger configures a logger for observe/unobserve diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProperties restricts an ObjectObserver to an explicit allow-list of names.
// It is ignored by PropertyObserver.
func WithProperties(names ...string) Option {
	return func(c *config) {
		c.properties = append(c.properties, names...)
		c.scoped = true
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}
