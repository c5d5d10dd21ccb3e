package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.Journal
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks the values of properties whose name
// matches one of the patterns. Keys of nested maps are matched too.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.Journal) ports.Journal {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Append(ctx context.Context, change domain.Change) error {
	if m.matches(change.Property) {
		change.Value = Mask
		if change.OldValue != nil {
			change.OldValue = Mask
		}
	} else {
		// Copy so the caller's maps are left untouched.
		change.Value = m.mask(change.Value)
		change.OldValue = m.mask(change.OldValue)
	}
	return m.next.Append(ctx, change)
}

func (m *redactMiddleware) Entries(ctx context.Context) ([]domain.Change, error) {
	return m.next.Entries(ctx)
}

func (m *redactMiddleware) Reset(ctx context.Context) error {
	return m.next.Reset(ctx)
}

func (m *redactMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// mask returns a copy of v with matching map keys masked.
func (m *redactMiddleware) mask(v any) any {
	sub, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(sub))
	for k, val := range sub {
		if m.matches(k) {
			out[k] = Mask
			continue
		}
		out[k] = m.mask(val)
	}
	return out
}
