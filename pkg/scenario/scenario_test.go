package scenario_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/aretw0/vigil/internal/logging"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/registry"
	"github.com/aretw0/vigil/pkg/scenario"
	"github.com/aretw0/vigil/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	f, err := scenario.Load(filepath.Join("testdata", "person.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "person", f.Name, "name defaults to the file name")
	assert.Equal(t, 36, f.Object["age"])
	require.Contains(t, f.Descriptors, "id")
	require.NotNil(t, f.Descriptors["id"].Writable)
	assert.False(t, *f.Descriptors["id"].Writable)
	assert.Nil(t, f.Descriptors["id"].Enumerable)
	assert.Equal(t, "concat", f.Descriptors["greet"].Method)
	assert.Len(t, f.Rules, 2)
	assert.Len(t, f.Steps, 7)
	assert.Equal(t, "call", f.Steps[4].Op())
	assert.Equal(t, "greet", f.Steps[4].Property())
}

func TestRun_Person(t *testing.T) {
	f, err := scenario.Load(filepath.Join("testdata", "person.yaml"))
	require.NoError(t, err)

	var logs bytes.Buffer
	res, err := scenario.Run(context.Background(), f, scenario.WithLogger(logging.NewWithWriter(&logs, slog.LevelInfo)))
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "name", "greet", "id", "species"}, res.Properties)
	assert.Equal(t, []any{"ADA", 36, "hello world", "ada"}, res.Reads)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Step)
	assert.Contains(t, res.Errors[0].Error, object.ErrReadOnly.Error())

	var channels []string
	for _, e := range res.Trace {
		channels = append(channels, e.Channel)
	}
	assert.Equal(t, []string{
		"get:before:name", "get:name", "get:after:name",
		"set:before:age",
		"get:before:age", "get:age", "get:after:age",
		"get:before:greet", "get:greet", "get:after:greet",
	}, channels)

	setBefore := res.Trace[3]
	assert.Equal(t, 1, setBefore.Step)
	assert.Equal(t, domain.EventSetBefore, setBefore.Kind)
	assert.Equal(t, "age", setBefore.Property)
	assert.Equal(t, []any{40, 36}, setBefore.Args)
	assert.Equal(t, []any{"hello world", "hello", " ", "world"}, res.Trace[8].Args)

	assert.Equal(t, map[string]any{
		"age":    36,
		"greet":  scenario.MethodPlaceholder,
		"hidden": 1,
		"id":     "p-1",
		"name":   "ada",
	}, res.Final)
	assert.Equal(t, res.Initial, res.Final)
	assert.Nil(t, res.Changed, "vetoed and rejected writes leave no change")
	assert.True(t, res.Restored)
	assert.Contains(t, logs.String(), "rule fired")
}

func TestRun_JSONAllowList(t *testing.T) {
	f, err := scenario.Load(filepath.Join("testdata", "counter.json"))
	require.NoError(t, err)

	res, err := scenario.Run(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, []string{"count", "total"}, res.Properties)
	assert.Equal(t, []any{1.0}, res.Reads)
	assert.Equal(t, map[string]any{"count": 1.0, "total": 5.0}, res.Final)
	assert.Equal(t, map[string]any{"count": 0.0}, res.Initial)
	assert.Equal(t, res.Final, res.Changed)
	assert.True(t, res.Restored, "an absent property written while observed comes back as plain data")
}

func TestRun_StepErrorAborts(t *testing.T) {
	f, err := scenario.Parse([]byte(`
descriptors:
  id: {value: 1, writable: false}
steps:
  - set: id
    value: 2
`), ".yaml")
	require.NoError(t, err)

	res, err := scenario.Run(context.Background(), f)
	assert.ErrorIs(t, err, object.ErrReadOnly)
	assert.ErrorContains(t, err, "step 0 (set id)")
	require.NotNil(t, res)
}

func TestRun_UnexpectedSuccess(t *testing.T) {
	f, err := scenario.Parse([]byte(`
object: {x: 1}
steps:
  - get: x
    expect_error: true
`), ".yml")
	require.NoError(t, err)

	_, err = scenario.Run(context.Background(), f)
	assert.ErrorContains(t, err, "expected an error")
}

func TestRun_SetupHook(t *testing.T) {
	f, err := scenario.Parse([]byte(`
object: {x: 1}
steps:
  - set: x
    value: 2
`), ".yaml")
	require.NoError(t, err)

	var writes int
	undone := false
	res, err := scenario.Run(context.Background(), f, scenario.WithSetup(func(obs *observer.ObjectObserver) func() {
		obs.On("set", func(args ...any) (any, error) { writes++; return nil, nil }, nil)
		return func() { undone = true }
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, writes)
	assert.True(t, undone)
	assert.Equal(t, 2, res.Final["x"])
	assert.Equal(t, map[string]any{"x": 2}, res.Changed)
}

func TestRun_CustomRegistry(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("answer", func(*object.Object, ...any) (any, error) { return 42, nil })

	f, err := scenario.Parse([]byte(`
descriptors:
  answer: {method: answer}
rules:
  - on: "get:after"
    log: true
steps:
  - call: answer
`), ".yaml")
	require.NoError(t, err)

	res, err := scenario.Run(context.Background(), f, scenario.WithRegistry(reg))
	require.NoError(t, err)
	assert.Equal(t, []any{42}, res.Reads)

	_, err = scenario.Run(context.Background(), f)
	assert.ErrorContains(t, err, "method not found: answer")
}

func TestRun_Cancelled(t *testing.T) {
	f, err := scenario.Parse([]byte(`
object: {x: 1}
steps:
  - get: x
`), ".yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = scenario.Run(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown channel", "rules:\n  - on: read\n", "unknown channel"},
		{"veto and override", "rules:\n  - on: set:before\n    veto: true\n    override: 1\n", "exclusive"},
		{"two operations", "steps:\n  - get: x\n    set: y\n", "exactly one"},
		{"empty step", "steps:\n  - value: 1\n", "exactly one"},
		{"unknown descriptor field", "descriptors:\n  x: {colour: red}\n", "descriptor \"x\""},
		{"method and readonly", "descriptors:\n  x: {method: echo, readonly: true}\n", "exclusive"},
		{"bad yaml", "object: [", "failed to parse scenario yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tt.data), ".yaml")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuild(t *testing.T) {
	f, err := scenario.Parse([]byte(`
object: {a: 1}
descriptors:
  ro: {value: 7, readonly: true}
  weak: {value: 1, enumerable: "false"}
inherited: {p: 2}
`), ".yaml")
	require.NoError(t, err)

	target, err := scenario.Build(f, registry.Builtins())
	require.NoError(t, err)

	d, ok := target.OwnDescriptor("ro")
	require.True(t, ok)
	assert.True(t, d.IsAccessor())
	assert.Nil(t, d.Set)
	v, err := target.Get("ro")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	d, _ = target.OwnDescriptor("weak")
	assert.False(t, d.Enumerable, "weakly typed flags are accepted")

	v, _ = target.Get("p")
	assert.Equal(t, 2, v)
	assert.False(t, target.HasOwn("p"))
}

func TestBuild_DuplicateName(t *testing.T) {
	f, err := scenario.Parse([]byte("object: {a: 1}\ndescriptors:\n  a: {value: 2}\n"), ".yaml")
	require.NoError(t, err)
	_, err = scenario.Build(f, nil)
	assert.ErrorContains(t, err, "declared in object and descriptors")
}

func TestRun_SchemaGuard(t *testing.T) {
	f, err := scenario.Parse([]byte(`
object: {age: 36, name: ada}
schema:
  age: int
  name: string
steps:
  - set: age
    value: old
    expect_error: true
  - set: age
    value: 37
`), ".yaml")
	require.NoError(t, err)

	res, err := scenario.Run(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error, `property "age" (int)`)
	assert.Equal(t, 37, res.Final["age"])
}

func TestBuild_SchemaMismatch(t *testing.T) {
	f, err := scenario.Parse([]byte("object: {age: old}\nschema: {age: int}\n"), ".yaml")
	require.NoError(t, err)

	_, err = scenario.Build(f, nil)
	assert.ErrorIs(t, err, schema.ErrInvalid)
}
