package txcore

import (
	"fmt"
	"time"

	"github.com/ccoin/shield/internal/note"
	"github.com/ccoin/shield/pkg/types"
)

// lockOp names the operation recorded against a held commitment lock.
const lockOp = "txcore:execute"

// realInputCommitments returns the commitment identifiers of the
// non-dummy notes a transaction will spend, in the order
// planner.SelectSpendable picks them. Computing these does not require
// tree state: a note's commitment depends only on its own fields.
func realInputCommitments(selected []types.Note) ([]string, error) {
	ids := make([]string, 0, len(selected))
	for _, n := range selected {
		c, err := note.Commitment(n)
		if err != nil {
			return nil, fmt.Errorf("txcore: compute input commitment: %w", err)
		}
		ids = append(ids, c.String())
	}
	return ids, nil
}

// acquireLocks implements the Idle → Selecting transition's lock
// acquisition (spec §4.9 step 1): try, and on contention retry
// cfg.LockRetries times spaced cfg.LockRetryDelay apart before giving up.
// An empty commitment list (a fresh deposit with no real inputs) always
// succeeds without touching the lock manager.
func (e *Engine) acquireLocks(commitments []string) bool {
	if len(commitments) == 0 {
		return true
	}
	for attempt := 0; attempt <= e.cfg.LockRetries; attempt++ {
		if e.locks.TryLock(commitments, lockOp) {
			return true
		}
		if attempt < e.cfg.LockRetries {
			time.Sleep(e.cfg.LockRetryDelay)
		}
	}
	return false
}
