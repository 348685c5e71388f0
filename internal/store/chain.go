package store

import (
	"errors"
	"fmt"

	"github.com/vk/invariant/internal/value"
)

// Chain composes a fast L1 over a persistent L2. Get consults L1 first; an
// L2 hit is promoted into L1 before returning. Put writes to both tiers.
//
// Each tier keeps its own counters; the chain's Stats report the logical
// aggregate (one hit or miss per Get, one put per Put).
type Chain struct {
	counters
	L1 Store
	L2 Store
}

// NewChain composes l1 and l2.
func NewChain(l1, l2 Store) *Chain {
	return &Chain{L1: l1, L2: l2}
}

// Exists consults L1, then L2.
func (c *Chain) Exists(op, digest string) (bool, error) {
	ok, err := c.L1.Exists(op, digest)
	if err != nil || ok {
		return ok, err
	}
	return c.L2.Exists(op, digest)
}

// Get returns from L1 when possible, otherwise promotes an L2 hit into L1.
func (c *Chain) Get(op, digest string) (value.Value, error) {
	v, err := c.L1.Get(op, digest)
	if err == nil {
		c.hit()
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	v, err = c.L2.Get(op, digest)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.miss()
			return nil, fmt.Errorf("%w: (%s, %s)", ErrNotFound, op, digest)
		}
		return nil, err
	}
	if err := c.L1.Put(op, digest, v); err != nil {
		return nil, fmt.Errorf("promoting (%s, %s) into l1: %w", op, digest, err)
	}
	c.hit()
	return v, nil
}

// Put writes to both tiers.
func (c *Chain) Put(op, digest string, artifact value.Value) error {
	if err := c.L1.Put(op, digest, artifact); err != nil {
		return err
	}
	if err := c.L2.Put(op, digest, artifact); err != nil {
		return err
	}
	c.put()
	return nil
}
