package testutil

import (
	"sync"
	"time"
)

// ManualTime is a thread-safe, settable time source for tests.
//
// Passed as clock.NowFunc via Now, it makes record keys deterministic:
// a store scenario run twice produces identical ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualTime struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualTime creates a time source fixed at the given Unix millisecond.
func NewManualTime(unixMilli int64) *ManualTime {
	return &ManualTime{now: time.UnixMilli(unixMilli)}
}

// Now returns the current manual time.
func (m *ManualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Tick moves the time forward by d.
func (m *ManualTime) Tick(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set jumps to the given Unix millisecond, forwards or backwards.
func (m *ManualTime) Set(unixMilli int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = time.UnixMilli(unixMilli)
}
