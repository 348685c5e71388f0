package store

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vk/invariant/internal/value"
)

// Policy is a bounded or unbounded mapping the memory store delegates to.
// Implementations may evict on Add; Get marks recency/frequency as the
// policy requires. Callers supply their own to customise eviction.
type Policy interface {
	Get(key string) (value.Value, bool)
	Add(key string, v value.Value)
	Len() int
	Purge()
}

// lruPolicy adapts hashicorp's LRU cache.
type lruPolicy struct {
	c *lru.Cache[string, value.Value]
}

func newLRUPolicy(capacity int) *lruPolicy {
	c, err := lru.New[string, value.Value](capacity)
	if err != nil {
		// Only a non-positive capacity can fail; that is a programmer error.
		panic(err)
	}
	return &lruPolicy{c: c}
}

func (p *lruPolicy) Get(key string) (value.Value, bool) { return p.c.Get(key) }
func (p *lruPolicy) Add(key string, v value.Value)      { p.c.Add(key, v) }
func (p *lruPolicy) Len() int                           { return p.c.Len() }
func (p *lruPolicy) Purge()                             { p.c.Purge() }

// lfuPolicy is a small least-frequently-used cache with FIFO tie-breaking.
// No pack dependency ships an LFU, so this one is local.
type lfuPolicy struct {
	capacity int
	entries  map[string]*lfuEntry
	clock    uint64
}

type lfuEntry struct {
	v     value.Value
	count uint64
	added uint64
}

func newLFUPolicy(capacity int) *lfuPolicy {
	if capacity <= 0 {
		panic("lfu capacity must be positive")
	}
	return &lfuPolicy{capacity: capacity, entries: make(map[string]*lfuEntry)}
}

func (p *lfuPolicy) Get(key string) (value.Value, bool) {
	e, ok := p.entries[key]
	if !ok {
		return nil, false
	}
	e.count++
	return e.v, true
}

func (p *lfuPolicy) Add(key string, v value.Value) {
	if e, ok := p.entries[key]; ok {
		e.v = v
		e.count++
		return
	}
	if len(p.entries) >= p.capacity {
		p.evict()
	}
	p.clock++
	p.entries[key] = &lfuEntry{v: v, added: p.clock}
}

func (p *lfuPolicy) evict() {
	var victim string
	var victimEntry *lfuEntry
	for k, e := range p.entries {
		if victimEntry == nil ||
			e.count < victimEntry.count ||
			(e.count == victimEntry.count && e.added < victimEntry.added) {
			victim, victimEntry = k, e
		}
	}
	delete(p.entries, victim)
}

func (p *lfuPolicy) Len() int { return len(p.entries) }
func (p *lfuPolicy) Purge()   { p.entries = make(map[string]*lfuEntry) }

// unboundedPolicy never evicts.
type unboundedPolicy struct {
	entries map[string]value.Value
}

func newUnboundedPolicy() *unboundedPolicy {
	return &unboundedPolicy{entries: make(map[string]value.Value)}
}

func (p *unboundedPolicy) Get(key string) (value.Value, bool) {
	v, ok := p.entries[key]
	return v, ok
}

func (p *unboundedPolicy) Add(key string, v value.Value) { p.entries[key] = v }
func (p *unboundedPolicy) Len() int                      { return len(p.entries) }
func (p *unboundedPolicy) Purge()                        { p.entries = make(map[string]value.Value) }
