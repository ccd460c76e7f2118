package txcore

import (
	"errors"

	"github.com/ccoin/shield/internal/shielderr"
)

// classify maps an error from one attempt of the pipeline to its
// shielderr.Kind (spec §7). Errors already carrying one of our own
// sentinels are classified directly; anything else — relayer/chain error
// text reaching us through an httpx.StatusError or similar — falls back
// to shielderr.ClassifyServerError's string sniffing.
func classify(err error) shielderr.Kind {
	switch {
	case errors.Is(err, shielderr.ErrRootMismatch):
		return shielderr.KindRootMismatch
	case errors.Is(err, shielderr.ErrNullifierAlreadyUsed):
		return shielderr.KindNullifierAlreadyUsed
	case errors.Is(err, shielderr.ErrExtDataHashMismatch):
		return shielderr.KindExtDataHashMismatch
	case errors.Is(err, shielderr.ErrProofRejected):
		return shielderr.KindProofRejected
	case errors.Is(err, shielderr.ErrSignatureFailure):
		return shielderr.KindSignatureFailure
	case errors.Is(err, shielderr.ErrWitnessGeneration), errors.Is(err, shielderr.ErrBalanceEquation):
		return shielderr.KindProof
	case errors.Is(err, shielderr.ErrInvalidAmount),
		errors.Is(err, shielderr.ErrInvalidAddress),
		errors.Is(err, shielderr.ErrInvalidAssetTag),
		errors.Is(err, shielderr.ErrInsufficientBalance),
		errors.Is(err, shielderr.ErrMissingSignCallback):
		return shielderr.KindValidation
	case errors.Is(err, shielderr.ErrNoSpendableNotes):
		// The relayer may simply be mid-index; spec §7 treats this as
		// retriable even though, within one Execute call, the spendable
		// set is fixed and a restart cannot change the outcome. Callers
		// that want this retry to do real work must re-scan between
		// Execute calls.
		return shielderr.KindUnknown
	default:
		return shielderr.ClassifyServerError(err.Error())
	}
}
