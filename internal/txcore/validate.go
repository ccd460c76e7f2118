package txcore

import (
	"fmt"

	"github.com/ccoin/shield/internal/planner"
	"github.com/ccoin/shield/internal/shielderr"
)

// maxDelayMinutes is the withdrawal delay ceiling: one week (spec §4.9
// step 1).
const maxDelayMinutes = 10080

// validate implements the Idle → Selecting transition's input checks
// (spec §4.9 step 1): amount positive, delay minutes in range, a
// well-formed recipient for withdrawals, and a signing callback for
// deposits.
func validate(req *Request) error {
	if req.Owner == nil {
		return fmt.Errorf("%w: missing owner keypair", shielderr.ErrInvalidAmount)
	}
	if req.Amount == 0 {
		return fmt.Errorf("%w: amount must be positive", shielderr.ErrInvalidAmount)
	}
	if req.DelayMinutes != nil && *req.DelayMinutes > maxDelayMinutes {
		return fmt.Errorf("%w: delay minutes %d exceeds %d", shielderr.ErrInvalidAmount, *req.DelayMinutes, maxDelayMinutes)
	}
	if req.Action == planner.ActionWithdraw && req.Recipient == [32]byte{} {
		return fmt.Errorf("%w: missing recipient address", shielderr.ErrInvalidAddress)
	}
	if req.Action == planner.ActionDeposit && req.SignDeposit == nil {
		return fmt.Errorf("%w", shielderr.ErrMissingSignCallback)
	}
	return nil
}
