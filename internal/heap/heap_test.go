package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstAllocationIsStartID(t *testing.T) {
	h := New()
	id := h.AllocStruct()
	assert.Equal(t, StartID, id)
}

func TestIDSpaceIsSharedAcrossKinds(t *testing.T) {
	h := New()
	s := h.AllocStruct()
	a := h.AllocArray(2)
	d := h.AllocDict()
	assert.Equal(t, s+1, a)
	assert.Equal(t, a+1, d)
}

func TestStructFields(t *testing.T) {
	h := New()
	id := h.AllocStruct()
	require.True(t, h.SetField(id, "val", int64(7)))
	v, ok := h.GetField(id, "val")
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = h.GetField(id, "missing")
	assert.False(t, ok)
}

func TestArrayBoundsAndElements(t *testing.T) {
	h := New()
	id := h.AllocArray(3)
	n, ok := h.ArrayLen(id)
	require.True(t, ok)
	assert.Equal(t, 3, n)

	require.True(t, h.SetIndex(id, 1, "x"))
	v, ok := h.GetIndex(id, 1)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	assert.False(t, h.SetIndex(id, 3, "oob"))
	_, ok = h.GetIndex(id, -1)
	assert.False(t, ok)
}

func TestDictSetGetHasKeysInInsertionOrder(t *testing.T) {
	h := New()
	id := h.AllocDict()
	require.True(t, h.Set(id, "b", int64(2)))
	require.True(t, h.Set(id, "a", int64(1)))
	require.True(t, h.Set(id, "b", int64(20)))

	v, ok := h.Get(id, "b")
	require.True(t, ok)
	assert.Equal(t, int64(20), v)

	assert.True(t, h.Has(id, "a"))
	assert.False(t, h.Has(id, "z"))

	keys, ok := h.Keys(id)
	require.True(t, ok)
	assert.Equal(t, []any{"b", "a"}, keys)

	n, ok := h.DictLen(id)
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestUnknownIDOperationsFail(t *testing.T) {
	h := New()
	_, ok := h.GetField(ID(99999), "x")
	assert.False(t, ok)
	assert.False(t, h.SetField(ID(99999), "x", 1))
	_, ok = h.ArrayLen(ID(99999))
	assert.False(t, ok)
	_, ok = h.DictLen(ID(99999))
	assert.False(t, ok)
}
