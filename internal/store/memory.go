package store

import (
	"fmt"
	"sync"

	"github.com/vk/invariant/internal/value"
)

// DefaultMemoryCapacity bounds the default LRU policy.
const DefaultMemoryCapacity = 1000

// Memory holds artifacts directly, without serialization, behind an
// eviction policy. Safe for concurrent use.
type Memory struct {
	counters
	mu     sync.Mutex
	policy Policy
}

// NewMemory returns a memory store with the default LRU policy.
func NewMemory() *Memory {
	return NewMemoryLRU(DefaultMemoryCapacity)
}

// NewMemoryLRU returns a memory store bounded by a least-recently-used
// policy of the given capacity.
func NewMemoryLRU(capacity int) *Memory {
	return &Memory{policy: newLRUPolicy(capacity)}
}

// NewMemoryLFU returns a memory store bounded by a least-frequently-used
// policy of the given capacity.
func NewMemoryLFU(capacity int) *Memory {
	return &Memory{policy: newLFUPolicy(capacity)}
}

// NewMemoryUnbounded returns a memory store that never evicts.
func NewMemoryUnbounded() *Memory {
	return &Memory{policy: newUnboundedPolicy()}
}

// NewMemoryWithPolicy returns a memory store delegating to a caller-supplied
// mapping policy.
func NewMemoryWithPolicy(p Policy) *Memory {
	return &Memory{policy: p}
}

func memoryKey(op, digest string) string {
	return op + "\x00" + digest
}

// Exists reports key presence without touching the counters.
func (m *Memory) Exists(op, digest string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.policy.Get(memoryKey(op, digest))
	return ok, nil
}

// Get returns the stored artifact or ErrNotFound.
func (m *Memory) Get(op, digest string) (value.Value, error) {
	m.mu.Lock()
	v, ok := m.policy.Get(memoryKey(op, digest))
	m.mu.Unlock()
	if !ok {
		m.miss()
		return nil, fmt.Errorf("%w: (%s, %s)", ErrNotFound, op, digest)
	}
	m.hit()
	return v, nil
}

// Put stores the artifact. Re-putting the same key is idempotent.
func (m *Memory) Put(op, digest string, artifact value.Value) error {
	m.mu.Lock()
	m.policy.Add(memoryKey(op, digest), artifact)
	m.mu.Unlock()
	m.put()
	return nil
}

// Len reports how many artifacts are currently resident.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Len()
}

// Clear drops every artifact and zeroes the statistics.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.policy.Purge()
	m.mu.Unlock()
	m.ResetStats()
}
