package lockmgr

import (
	"testing"
	"time"
)

func TestTryLockIsAllOrNothing(t *testing.T) {
	m := New(time.Minute, 0)
	defer m.Close()

	if !m.TryLock([]string{"a", "b"}, "withdraw") {
		t.Fatal("expected first lock to succeed")
	}
	if m.TryLock([]string{"b", "c"}, "withdraw") {
		t.Fatal("expected overlapping lock to fail")
	}
	// "c" must not have been locked by the failed attempt.
	if !m.TryLock([]string{"c"}, "withdraw") {
		t.Error("expected c to remain unlocked after a failed all-or-nothing attempt")
	}
}

func TestUnlockIsIdempotent(t *testing.T) {
	m := New(time.Minute, 0)
	defer m.Close()

	m.TryLock([]string{"a"}, "deposit")
	m.Unlock([]string{"a"})
	m.Unlock([]string{"a"}) // second call must not panic

	if !m.TryLock([]string{"a"}, "deposit") {
		t.Error("expected a to be lockable again after unlock")
	}
}

func TestSweepExpiresOldLocks(t *testing.T) {
	m := New(10*time.Millisecond, 0)
	defer m.Close()

	m.TryLock([]string{"a"}, "deposit")
	time.Sleep(20 * time.Millisecond)
	m.Sweep()

	if !m.TryLock([]string{"a"}, "deposit") {
		t.Error("expected expired lock to be swept and reacquirable")
	}
}
