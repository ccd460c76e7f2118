// Package lockmgr implements the local lock service (spec §4.10): an
// in-process guard against a single client racing itself over the same
// commitment, not a substitute for the on-chain nullifier set.
package lockmgr

import (
	"sync"
	"time"
)

// DefaultTimeout is how long a lock is held before the sweeper considers
// it abandoned.
const DefaultTimeout = 5 * time.Minute

// DefaultSweepInterval is how often the background sweeper scans for
// expired locks.
const DefaultSweepInterval = 1 * time.Minute

// lockEntry records when a commitment was locked and for what operation.
type lockEntry struct {
	lockedAt time.Time
	op       string
}

// Manager holds commitment → lockEntry, all-or-nothing acquisition, and a
// background sweeper for abandoned locks.
type Manager struct {
	mu      sync.Mutex
	locks   map[string]lockEntry
	timeout time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// New starts a Manager with the given timeout and sweep interval. A
// sweepInterval of 0 disables the background sweeper (tests may sweep
// manually via Sweep).
func New(timeout, sweepInterval time.Duration) *Manager {
	m := &Manager{
		locks:   make(map[string]lockEntry),
		timeout: timeout,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

// NewDefault starts a Manager with spec §4.10's default timeout and
// sweep interval.
func NewDefault() *Manager {
	return New(DefaultTimeout, DefaultSweepInterval)
}

// TryLock attempts to acquire every commitment in commitments for op,
// all-or-nothing: if any is already held, none are acquired and false is
// returned.
func (m *Manager) TryLock(commitments []string, op string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, c := range commitments {
		if entry, held := m.locks[c]; held && now.Sub(entry.lockedAt) < m.timeout {
			return false
		}
	}

	for _, c := range commitments {
		m.locks[c] = lockEntry{lockedAt: now, op: op}
	}
	return true
}

// Unlock releases every commitment in commitments. Idempotent: unlocking
// an already-unlocked commitment is a no-op.
func (m *Manager) Unlock(commitments []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range commitments {
		delete(m.locks, c)
	}
}

// Sweep removes any lock older than the configured timeout. Called
// periodically by the background loop; exported so tests and callers
// that disabled the loop can drive it manually.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for c, entry := range m.locks {
		if now.Sub(entry.lockedAt) >= m.timeout {
			delete(m.locks, c)
		}
	}
}

func (m *Manager) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

// Close stops the background sweeper. Safe to call multiple times and
// safe to call on a Manager built with sweepInterval 0.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
