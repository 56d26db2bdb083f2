package placeholder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_ProducerRunsOnce(t *testing.T) {
	m := NewMap()
	calls := 0
	m.SetFunc("k", func() string {
		calls++
		return "v"
	})

	for range 3 {
		v, ok, err := m.Lookup("k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, calls)
}

func TestMap_CloneSharesCells(t *testing.T) {
	m := NewMap()
	calls := 0
	m.SetFunc("k", func() string {
		calls++
		return "v"
	})

	c := m.Clone()
	c.SetString("extra", "x")
	_, _, _ = c.Lookup("k")
	_, _, _ = m.Lookup("k")

	assert.Equal(t, 1, calls)
	assert.True(t, c.Has("extra"))
	assert.False(t, m.Has("extra"))
	assert.Equal(t, 1, m.Len())
}

func TestMap_ErrorIsCached(t *testing.T) {
	m := NewMap()
	boom := errors.New("boom")
	calls := 0
	m.Set("k", func() (string, error) {
		calls++
		return "", boom
	})

	_, ok, err := m.Lookup("k")
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
	_, _, err = m.Lookup("k")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestMap_MissingKey(t *testing.T) {
	_, ok, err := NewMap().Lookup("nope")
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestMap_KeysSorted(t *testing.T) {
	m := NewMap()
	m.SetString("b", "")
	m.SetString("a", "")
	m.SetString("c", "")
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}
