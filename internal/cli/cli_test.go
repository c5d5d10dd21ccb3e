package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/vigil/internal/logging"
	"github.com/aretw0/vigil/internal/testutils"
	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personScenario = `
name: person
object:
  name: ada
  age: 36
descriptors:
  id: {value: p-1, writable: false}
rules:
  - on: "set:before:age"
    veto: true
steps:
  - get: name
  - set: age
    value: 40
  - set: name
    value: grace
`

func TestRun_Text(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Path:   testutils.WriteScenario(t, "scenario.yaml", personScenario),
		Out:    &out,
		Logger: logging.NewNop(),
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "person")
	assert.Contains(t, out.String(), "set:before:age")
	assert.Contains(t, out.String(), "name = grace")
	assert.Contains(t, out.String(), "restored")
	assert.Contains(t, out.String(), "name: ada -> grace")
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Path:   testutils.WriteScenario(t, "scenario.yaml", personScenario),
		JSON:   true,
		Out:    &out,
		Logger: logging.NewNop(),
	})
	require.NoError(t, err)

	var res struct {
		Reads    []any          `json:"reads"`
		Final    map[string]any `json:"final"`
		Restored bool           `json:"restored"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, []any{"ada"}, res.Reads)
	assert.Equal(t, 36.0, res.Final["age"])
	assert.True(t, res.Restored)
}

func TestRun_Mermaid(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Path:    testutils.WriteScenario(t, "scenario.yaml", personScenario),
		Mermaid: true,
		Out:     &out,
		Logger:  logging.NewNop(),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "sequenceDiagram"))
	assert.Contains(t, out.String(), "Note right of age: vetoed")
}

func TestRun_DebugLogging(t *testing.T) {
	var logs bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Path:   testutils.WriteScenario(t, "scenario.yaml", personScenario),
		Out:    io.Discard,
		Logger: logging.NewWithWriter(&logs, -4),
	})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Property Event")
	assert.Contains(t, logs.String(), "property=name")
}

func TestRun_MissingFile(t *testing.T) {
	err := Run(context.Background(), RunOptions{Path: "does-not-exist.yaml", Out: io.Discard, Logger: logging.NewNop()})
	assert.ErrorContains(t, err, "failed to read scenario")
}

func TestInspect(t *testing.T) {
	path := testutils.WriteScenario(t, "scenario.yaml", personScenario)

	var out bytes.Buffer
	require.NoError(t, Inspect(InspectOptions{Path: path, Raw: true, Out: &out, Logger: logging.NewNop()}))
	assert.Contains(t, out.String(), "| id | data | p-1 | no | yes | yes |")

	out.Reset()
	require.NoError(t, Inspect(InspectOptions{Path: path, Raw: true, Observed: true, Out: &out, Logger: logging.NewNop()}))
	assert.Contains(t, out.String(), "(observed)")
	assert.Contains(t, out.String(), "| id | getter | - | no | yes | yes |")
	assert.Contains(t, out.String(), "| age | accessor | - | yes | yes | yes |")

	out.Reset()
	require.NoError(t, Inspect(InspectOptions{Path: path, Out: &out, Logger: logging.NewNop()}))
	assert.Contains(t, out.String(), "p-1")
}

func TestServe(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		done <- Serve(ctx, ServeOptions{
			Path:      testutils.WriteScenario(t, "scenario.yaml", personScenario),
			Addr:      "127.0.0.1:0",
			RedisAddr: mr.Addr(),
			Out:       &out,
			Logger:    logging.NewNop(),
			Ready:     func(addr string) { ready <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	base := "http://" + addr

	req, err := http.NewRequest(http.MethodPut, base+"/properties/name", strings.NewReader(`"grace"`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/journal")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	resp.Body.Close()
	require.Len(t, entries, 1)
	assert.Equal(t, "grace", entries[0]["value"])
	assert.True(t, mr.Exists("vigil:journal:person"), "journal is stored in redis")

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "vigil_observed_properties 3")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestShouldColor(t *testing.T) {
	assert.False(t, ShouldColor(&bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldColor(os.Stdout))
}

func TestSecureJournal(t *testing.T) {
	ctx := context.Background()
	raw := memory.NewJournal()
	key := bytes.Repeat([]byte{7}, 32)

	j, err := secureJournal(raw, ServeOptions{Redact: []string{"^name$"}, JournalKey: key})
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, domain.Change{Property: "name", Value: "grace", OldValue: "ada"}))
	require.NoError(t, j.Append(ctx, domain.Change{Property: "age", Value: "40"}))

	stored, err := raw.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotEqual(t, "40", stored[1].Value, "stored entries are encrypted")

	entries, err := j.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "***", entries[0].Value)
	assert.Equal(t, "***", entries[0].OldValue)
	assert.Equal(t, "40", entries[1].Value)

	plain, err := secureJournal(raw, ServeOptions{})
	require.NoError(t, err)
	assert.Same(t, raw, plain)

	_, err = secureJournal(raw, ServeOptions{JournalKey: []byte("short")})
	assert.Error(t, err)
	_, err = secureJournal(raw, ServeOptions{Redact: []string{"("}})
	assert.Error(t, err)
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := NewSignalContext(parent)
	defer ctx.Cancel()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with its parent")
	}
	assert.Nil(t, ctx.Signal())

	ctx.Cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
