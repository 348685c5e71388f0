package store

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/value"
)

func digestFor(n int) string {
	return strings.Repeat("0", 60) + fmt.Sprintf("%04d", n)
}

func TestMemoryPutGet(t *testing.T) {
	m := NewMemory()
	d := digestFor(1)

	_, err := m.Get("add", d)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put("add", d, value.NewInt(8)))
	got, err := m.Get("add", d)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.NewInt(8), got))

	// The composite key separates operations sharing a digest.
	_, err = m.Get("multiply", d)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStats(t *testing.T) {
	m := NewMemory()
	d := digestFor(2)

	_, _ = m.Get("op", d)
	require.NoError(t, m.Put("op", d, value.NewInt(1)))
	_, err := m.Get("op", d)
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Puts)

	m.ResetStats()
	assert.Equal(t, Stats{}, m.Stats())
}

func TestMemoryPutIdempotent(t *testing.T) {
	m := NewMemory()
	d := digestFor(3)
	require.NoError(t, m.Put("op", d, value.NewInt(5)))
	require.NoError(t, m.Put("op", d, value.NewInt(5)))

	got, err := m.Get("op", d)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.NewInt(5), got))
	assert.Equal(t, 1, m.Len())
}

func TestMemoryLRUEviction(t *testing.T) {
	m := NewMemoryLRU(2)
	require.NoError(t, m.Put("op", digestFor(1), value.NewInt(1)))
	require.NoError(t, m.Put("op", digestFor(2), value.NewInt(2)))

	// Touch 1 so 2 becomes the eviction victim.
	_, err := m.Get("op", digestFor(1))
	require.NoError(t, err)

	require.NoError(t, m.Put("op", digestFor(3), value.NewInt(3)))
	assert.Equal(t, 2, m.Len())

	_, err = m.Get("op", digestFor(2))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get("op", digestFor(1))
	assert.NoError(t, err)
}

func TestMemoryLFUEviction(t *testing.T) {
	m := NewMemoryLFU(2)
	require.NoError(t, m.Put("op", digestFor(1), value.NewInt(1)))
	require.NoError(t, m.Put("op", digestFor(2), value.NewInt(2)))

	// Drive up the frequency of 1; 2 stays cold and gets evicted.
	for i := 0; i < 3; i++ {
		_, err := m.Get("op", digestFor(1))
		require.NoError(t, err)
	}
	require.NoError(t, m.Put("op", digestFor(3), value.NewInt(3)))

	_, err := m.Get("op", digestFor(2))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get("op", digestFor(1))
	assert.NoError(t, err)
}

func TestMemoryUnbounded(t *testing.T) {
	m := NewMemoryUnbounded()
	for i := 0; i < 2000; i++ {
		require.NoError(t, m.Put("op", digestFor(i), value.NewInt(int64(i))))
	}
	assert.Equal(t, 2000, m.Len())
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put("op", digestFor(1), value.NewInt(1)))
	_, err := m.Get("op", digestFor(1))
	require.NoError(t, err)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, Stats{Misses: 1}, func() Stats {
		_, _ = m.Get("op", digestFor(1))
		return m.Stats()
	}())
}

func TestMemoryCustomPolicy(t *testing.T) {
	m := NewMemoryWithPolicy(newUnboundedPolicy())
	require.NoError(t, m.Put("op", digestFor(1), value.NewInt(1)))
	ok, err := m.Exists("op", digestFor(1))
	require.NoError(t, err)
	assert.True(t, ok)
}
