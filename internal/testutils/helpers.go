package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/stretchr/testify/require"
)

// WriteScenario writes content to a temporary scenario file and returns its path.
// The extension of name selects the decoder used when the file is loaded.
// It fails the test immediately on error.
func WriteScenario(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Failed to write scenario")
	return path
}

// Observe builds an object from values and observes all of it. The object is restored when
// the test ends.
func Observe(t *testing.T, values map[string]any, opts ...observer.Option) (*object.Object, *observer.ObjectObserver) {
	t.Helper()

	target := object.FromMap(values)
	obs, err := observer.NewObjectObserver(target, opts...)
	require.NoError(t, err, "Failed to observe object")
	t.Cleanup(func() { _ = obs.Unobserve() })
	return target, obs
}
