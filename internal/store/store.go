package store

import (
	"errors"
	"strings"
	"sync"

	"github.com/vk/invariant/internal/value"
)

// ErrNotFound reports an absent artifact. It is the one Get failure that
// means "miss"; anything else is a real error.
var ErrNotFound = errors.New("artifact not found")

// ErrCorrupt reports an artifact that exists but cannot be decoded. It is
// always fatal: a present-but-unreadable artifact must never degrade into a
// silent miss.
var ErrCorrupt = errors.New("artifact is corrupt")

// Store is content-addressed artifact storage. Keys are the pair of
// operation name and 64-character lowercase hex manifest digest.
type Store interface {
	Exists(op, digest string) (bool, error)
	Get(op, digest string) (value.Value, error)
	Put(op, digest string, artifact value.Value) error
	Stats() Stats
	ResetStats()
}

// Stats are the counters every store tracks.
type Stats struct {
	Hits   uint64
	Misses uint64
	Puts   uint64
}

// counters is the embedded, lock-guarded Stats implementation shared by the
// store types.
type counters struct {
	mu    sync.Mutex
	stats Stats
}

func (c *counters) hit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
}

func (c *counters) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

func (c *counters) put() {
	c.mu.Lock()
	c.stats.Puts++
	c.mu.Unlock()
}

// Stats returns a snapshot of the counters.
func (c *counters) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResetStats zeroes the counters.
func (c *counters) ResetStats() {
	c.mu.Lock()
	c.stats = Stats{}
	c.mu.Unlock()
}

// SanitizeOp substitutes filesystem-unsafe characters in an operation name
// with '_'. The rule is fixed so different processes agree on layout.
func SanitizeOp(op string) string {
	return strings.NewReplacer(":", "_", "/", "_").Replace(op)
}
