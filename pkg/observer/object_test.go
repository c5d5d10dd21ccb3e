package observer_test

import (
	"errors"
	"testing"

	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPerson() *object.Object {
	return object.FromMap(map[string]any{"name": "ada", "age": 36})
}

func TestObjectObserver_AllEnumerableByDefault(t *testing.T) {
	proto := object.FromMap(map[string]any{"kind": "person"})
	target := object.New(proto)
	require.NoError(t, target.Set("name", "ada"))
	require.NoError(t, target.DefineProperty("secret", object.Descriptor{Value: "s", Writable: true, Configurable: true}))

	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	assert.Equal(t, []string{"name", "kind"}, o.Properties())
	_, ok := o.Property("secret")
	assert.False(t, ok, "non-enumerable names are not tracked")
}

func TestObjectObserver_LaterAdditionsNotTracked(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	fired := 0
	o.On("set", func(args ...any) (any, error) { fired++; return nil, nil }, nil)

	require.NoError(t, target.Set("email", "a@b.c"))
	assert.Zero(t, fired)
	assert.ElementsMatch(t, []string{"age", "name"}, o.Properties())
}

func TestObjectObserver_AllowList(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target, observer.WithProperties("age", "missing", "age"))
	require.NoError(t, err)
	defer o.Unobserve()

	assert.Equal(t, []string{"age", "missing"}, o.Properties())

	var channels []string
	o.On("get", func(args ...any) (any, error) { channels = append(channels, args[1].(string)); return nil, nil }, nil)
	_, _ = target.Get("name")
	_, _ = target.Get("age")
	assert.Equal(t, []string{"age"}, channels)
}

func TestObjectObserver_RepublishesOnBothChannels(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	var got []string
	for _, ch := range []string{"set:before", "set", "set:after", "set:before:age", "set:age", "set:after:age", "set:name"} {
		channel := ch
		o.On(channel, func(args ...any) (any, error) {
			got = append(got, channel)
			return nil, nil
		}, nil)
	}

	require.NoError(t, target.Set("age", 37))

	assert.Equal(t, []string{
		"set:before:age", "set:before",
		"set", "set:age",
		"set:after", "set:after:age",
	}, got)
}

func TestObjectObserver_ArgumentsForwarded(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	var generic, qualified []any
	o.On("set", func(args ...any) (any, error) { generic = args; return nil, nil }, nil)
	o.On("set:name", func(args ...any) (any, error) { qualified = args; return nil, nil }, nil)

	require.NoError(t, target.Set("name", "grace"))
	want := []any{target, "name", "grace", "ada"}
	assert.Equal(t, want, generic)
	assert.Equal(t, want, qualified)
}

func TestObjectObserver_QualifiedOverridesGeneric(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	o.On("get:before", func(args ...any) (any, error) { return "generic", nil }, nil)
	o.On("get:before:name", func(args ...any) (any, error) { return "specific", nil }, nil)

	v, _ := target.Get("name")
	assert.Equal(t, "specific", v)

	v, _ = target.Get("age")
	assert.Equal(t, "generic", v, "generic override applies where no specific one exists")
}

func TestObjectObserver_GenericUsedWhenQualifiedUndefined(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	qualifiedCalled := false
	o.On("get:before:name", func(args ...any) (any, error) { qualifiedCalled = true; return nil, nil }, nil)
	o.On("get:before", func(args ...any) (any, error) { return "generic", nil }, nil)

	v, _ := target.Get("name")
	assert.True(t, qualifiedCalled)
	assert.Equal(t, "generic", v)
}

func TestObjectObserver_VetoPrecedence(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	// A generic validator rejects everything; age is explicitly allowed.
	o.On("set:before", func(args ...any) (any, error) { return false, nil }, nil)
	o.On("set:before:age", func(args ...any) (any, error) { return true, nil }, nil)

	require.NoError(t, target.Set("name", "grace"))
	require.NoError(t, target.Set("age", 40))

	name, _ := target.Get("name")
	age, _ := target.Get("age")
	assert.Equal(t, "ada", name)
	assert.Equal(t, 40, age)
}

func TestObjectObserver_ListenerErrorPropagates(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	boom := errors.New("boom")
	o.On("get:after:age", func(args ...any) (any, error) { return nil, boom }, nil)

	_, err = target.Get("age")
	assert.ErrorIs(t, err, boom)
}

func TestObjectObserver_IsolatedHubs(t *testing.T) {
	a := newPerson()
	b := newPerson()
	oa, err := observer.NewObjectObserver(a)
	require.NoError(t, err)
	defer oa.Unobserve()
	ob, err := observer.NewObjectObserver(b)
	require.NoError(t, err)
	defer ob.Unobserve()

	fired := 0
	oa.On("set", func(args ...any) (any, error) { fired++; return nil, nil }, nil)
	require.NoError(t, b.Set("age", 1))
	assert.Zero(t, fired)
}

func TestObjectObserver_UnobserveRestoresEverything(t *testing.T) {
	target := newPerson()
	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)

	require.NoError(t, target.Set("age", 37))
	require.NoError(t, o.Unobserve())
	require.NoError(t, o.Unobserve())

	assert.False(t, o.Active())
	assert.Empty(t, o.Properties())
	for name, want := range map[string]any{"name": "ada", "age": 37} {
		d, ok := target.OwnDescriptor(name)
		require.True(t, ok)
		assert.Equal(t, object.Data(want), d, name)
	}
}

func TestObjectObserver_ConstructionFailureRollsBack(t *testing.T) {
	target := object.FromMap(map[string]any{"a": 1})
	require.NoError(t, target.DefineProperty("z", object.Descriptor{Value: 2, Enumerable: true}))

	_, err := observer.NewObjectObserver(target)
	require.ErrorIs(t, err, object.ErrNotConfigurable)

	d, _ := target.OwnDescriptor("a")
	assert.Equal(t, object.Data(1), d, "already observed properties are restored")
}

func TestObjectObserver_MethodChannels(t *testing.T) {
	target := object.New(nil)
	require.NoError(t, target.Set("sum", object.Func(func(_ *object.Object, args ...any) (any, error) {
		total := 0
		for _, a := range args {
			total += a.(int)
		}
		return total, nil
	})))

	o, err := observer.NewObjectObserver(target)
	require.NoError(t, err)
	defer o.Unobserve()

	var after []any
	o.On("get:after:sum", func(args ...any) (any, error) { after = args; return nil, nil }, nil)

	out, err := target.Call("sum", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, out)
	assert.Equal(t, []any{target, "sum", 6, 1, 2, 3}, after)

	o.On("get:before:sum", func(args ...any) (any, error) { return -1, nil }, nil)
	out, _ = target.Call("sum", 1)
	assert.Equal(t, -1, out)
}

func TestObjectObserver_NilTarget(t *testing.T) {
	_, err := observer.NewObjectObserver(nil)
	assert.Error(t, err)
}
