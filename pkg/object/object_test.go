package object_test

import (
	"testing"

	"github.com/aretw0/vigil/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_FromMapGetSet(t *testing.T) {
	o := object.FromMap(map[string]any{"b": 2, "a": 1})

	assert.Equal(t, []string{"a", "b"}, o.Keys())

	v, err := o.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, o.Set("a", 10))
	v, _ = o.Get("a")
	assert.Equal(t, 10, v)

	// Assigning an unknown name creates a plain property.
	require.NoError(t, o.Set("c", "new"))
	d, ok := o.OwnDescriptor("c")
	require.True(t, ok)
	assert.Equal(t, object.Data("new"), d)
	assert.Equal(t, []string{"a", "b", "c"}, o.Keys())
}

func TestObject_AbsentReadsNil(t *testing.T) {
	o := object.New(nil)
	v, err := o.Get("missing")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, o.Has("missing"))
}

func TestObject_Accessors(t *testing.T) {
	o := object.New(nil)
	var backing any = "init"

	require.NoError(t, o.DefineProperty("rw", object.Descriptor{
		Get:          func(this *object.Object) (any, error) { return backing, nil },
		Set:          func(this *object.Object, v any) error { backing = v; return nil },
		Enumerable:   true,
		Configurable: true,
	}))
	require.NoError(t, o.DefineProperty("ro", object.Descriptor{
		Get: func(this *object.Object) (any, error) { return "fixed", nil },
	}))
	require.NoError(t, o.DefineProperty("wo", object.Descriptor{
		Set: func(this *object.Object, v any) error { backing = v; return nil },
	}))

	require.NoError(t, o.Set("rw", "changed"))
	v, _ := o.Get("rw")
	assert.Equal(t, "changed", v)

	err := o.Set("ro", 1)
	assert.ErrorIs(t, err, object.ErrReadOnly)

	v, err = o.Get("wo")
	assert.NoError(t, err)
	assert.Nil(t, v)
	require.NoError(t, o.Set("wo", "via-setter"))
	assert.Equal(t, "via-setter", backing)

	assert.Equal(t, []string{"rw"}, o.Keys(), "only enumerable names are listed")
}

func TestObject_NonWritableAndNonConfigurable(t *testing.T) {
	o := object.New(nil)
	require.NoError(t, o.DefineProperty("k", object.Descriptor{Value: 1, Enumerable: true}))

	assert.ErrorIs(t, o.Set("k", 2), object.ErrReadOnly)
	assert.ErrorIs(t, o.DefineProperty("k", object.Data(3)), object.ErrNotConfigurable)
	assert.ErrorIs(t, o.DeleteProperty("k"), object.ErrNotConfigurable)
	assert.NoError(t, o.DeleteProperty("absent"))
}

func TestObject_DeleteProperty(t *testing.T) {
	o := object.FromMap(map[string]any{"a": 1, "b": 2, "c": 3})
	require.NoError(t, o.DeleteProperty("b"))
	assert.False(t, o.HasOwn("b"))
	assert.Equal(t, []string{"a", "c"}, o.Keys())
}

func TestObject_Call(t *testing.T) {
	o := object.FromMap(map[string]any{"n": 2})
	require.NoError(t, o.Set("double", object.Func(func(this *object.Object, args ...any) (any, error) {
		n, _ := this.Get("n")
		return n.(int) * 2, nil
	})))

	v, err := o.Call("double")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	_, err = o.Call("n")
	assert.ErrorIs(t, err, object.ErrNotCallable)
	assert.True(t, object.IsCallable(object.Func(nil)))
	assert.False(t, object.IsCallable(2))
}

func TestObject_PrototypeChain(t *testing.T) {
	proto := object.FromMap(map[string]any{"inherited": "p", "shadowed": "p"})
	o := object.New(proto)
	require.NoError(t, o.DefineProperty("shadowed", object.Descriptor{Value: "own", Writable: true, Configurable: true}))
	require.NoError(t, o.Set("own", 1))

	v, _ := o.Get("inherited")
	assert.Equal(t, "p", v)
	assert.True(t, o.Has("inherited"))
	assert.False(t, o.HasOwn("inherited"))

	// own non-enumerable "shadowed" hides the enumerable inherited one
	assert.Equal(t, []string{"own", "inherited"}, o.EnumerableKeys())

	// writing an inherited writable name creates an own property and leaves the prototype alone
	require.NoError(t, o.Set("inherited", "o"))
	v, _ = proto.Get("inherited")
	assert.Equal(t, "p", v)
	v, _ = o.Get("inherited")
	assert.Equal(t, "o", v)
}

func TestObject_Snapshot(t *testing.T) {
	o := object.FromMap(map[string]any{"a": 1, "b": "two"})
	snap, err := o.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, snap)

	snap, err = o.Snapshot("a", "zzz")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "zzz": nil}, snap)
}

func TestObject_OwnKeysIncludesHidden(t *testing.T) {
	o := object.FromMap(map[string]any{"a": 1})
	require.NoError(t, o.DefineProperty("h", object.Descriptor{Value: 2, Configurable: true}))

	assert.Equal(t, []string{"a", "h"}, o.OwnKeys())
	assert.Equal(t, []string{"a"}, o.Keys())
}
