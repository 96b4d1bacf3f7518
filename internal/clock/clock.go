// Package clock issues record keys derived from wall time.
package clock

import (
	"sync/atomic"
	"time"
)

// NowFunc returns the current time. Tests substitute a manual source.
type NowFunc func() time.Time

// Clock issues strictly increasing millisecond keys.
//
// Each key is max(now in Unix milliseconds, previous key + 1), so two
// writes in the same millisecond never collide and keys never go
// backwards when the wall clock does.
//
// Thread-safety: Clock is safe for concurrent use (atomic CAS loop).
type Clock struct {
	now  NowFunc
	last atomic.Int64
}

// New creates a clock backed by time.Now.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource creates a clock backed by now.
func NewWithSource(now NowFunc) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Advance raises the floor so the next key is greater than floor.
// Used after opening a store to resume above its highest existing key.
// A floor below the current position is ignored.
func (c *Clock) Advance(floor int64) {
	for {
		cur := c.last.Load()
		if floor <= cur {
			return
		}
		if c.last.CompareAndSwap(cur, floor) {
			return
		}
	}
}

// Next returns the next key and records it.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	for {
		prev := c.last.Load()
		next := c.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Current returns the last issued key without advancing.
func (c *Clock) Current() int64 {
	return c.last.Load()
}
