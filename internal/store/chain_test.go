package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/value"
)

func newChain(t *testing.T) (*Chain, *Memory, *Disk) {
	t.Helper()
	l1 := NewMemory()
	l2, err := NewDisk(t.TempDir(), nil)
	require.NoError(t, err)
	return NewChain(l1, l2), l1, l2
}

func TestChainPutWritesBothTiers(t *testing.T) {
	c, l1, l2 := newChain(t)
	artifact := value.NewInt(8)
	digest := someDigest(artifact)

	require.NoError(t, c.Put("add", digest, artifact))

	ok, err := l1.Exists("add", digest)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l2.Exists("add", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChainPromotesL2Hit(t *testing.T) {
	c, l1, _ := newChain(t)
	artifact := value.Str("warm")
	digest := someDigest(artifact)
	require.NoError(t, c.Put("op", digest, artifact))

	// Drop L1; the next Get recovers from L2 and promotes.
	l1.Clear()
	ok, err := l1.Exists("op", digest)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := c.Get("op", digest)
	require.NoError(t, err)
	assert.True(t, value.Equal(artifact, got))

	ok, err = l1.Exists("op", digest)
	require.NoError(t, err)
	assert.True(t, ok, "L2 hit should promote into L1")
}

func TestChainExistsConsultsBothTiers(t *testing.T) {
	c, l1, l2 := newChain(t)
	artifact := value.NewInt(1)
	digest := someDigest(artifact)

	ok, err := c.Exists("op", digest)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l2.Put("op", digest, artifact))
	ok, err = c.Exists("op", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l1.Put("op", digest, artifact))
	ok, err = c.Exists("op", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChainAggregateStats(t *testing.T) {
	c, _, _ := newChain(t)
	artifact := value.NewInt(3)
	digest := someDigest(artifact)

	_, _ = c.Get("op", digest) // logical miss
	require.NoError(t, c.Put("op", digest, artifact))
	_, err := c.Get("op", digest) // logical hit via L1
	require.NoError(t, err)

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Puts: 1}, c.Stats())

	// Tier counters stay independent of the aggregate.
	l1Stats := c.L1.Stats()
	assert.Equal(t, uint64(1), l1Stats.Puts)
}

func TestChainMiss(t *testing.T) {
	c, _, _ := newChain(t)
	_, err := c.Get("op", someDigest(value.NewInt(99)))
	require.ErrorIs(t, err, ErrNotFound)
}
