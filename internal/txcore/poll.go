package txcore

import (
	"context"
	"time"
)

// poll implements the Polling → Done transition (spec §4.9 step 5): it
// checks tree state up to cfg.PollAttempts times, cfg.PollInterval apart,
// and considers the transaction observed once next_index reaches at
// least submissionNextIndex+2 — the two leaves this transaction's outputs
// occupy. A higher observed next_index also counts (spec §5: the bound is
// a lower bound, not an exact match).
//
// The transaction has already been submitted by the time poll runs, so
// nothing here can turn it into a failure: exhausting every attempt, a
// context cancellation, or a transient tree-state fetch error all end the
// loop early and are reported as a non-empty warning, never an error
// (spec §5 cancellation: submission is fire-and-forget; rely on the
// spent-set, not the poll, to confirm a transaction landed).
func (e *Engine) poll(ctx context.Context, submissionNextIndex uint32) (observedNextIndex uint32, observed bool, warning string) {
	threshold := submissionNextIndex + 2

	for attempt := 0; attempt < e.cfg.PollAttempts; attempt++ {
		state, err := e.tree.TreeState(ctx)
		if err != nil {
			return observedNextIndex, false, "txcore: poll tree state: " + err.Error()
		}
		observedNextIndex = state.NextIndex
		if state.NextIndex >= threshold {
			return observedNextIndex, true, ""
		}

		if attempt < e.cfg.PollAttempts-1 {
			select {
			case <-ctx.Done():
				return observedNextIndex, false, "txcore: polling cancelled before observing the tree advance"
			case <-time.After(e.cfg.PollInterval):
			}
		}
	}

	return observedNextIndex, false, "txcore: polling exhausted without observing the tree advance"
}
