// Package shielderr defines the shielded-transaction engine's error
// taxonomy (spec §7) and the string-sniffing classifier used to interpret
// relayer and on-chain program error messages.
package shielderr

import (
	"errors"
	"strings"
)

// Kind categorizes an error for the purposes of the transaction state
// machine's retry/terminal decision (spec §7 Propagation).
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindNetwork
	KindRootMismatch
	KindNullifierAlreadyUsed
	KindExtDataHashMismatch
	KindProofRejected
	KindSignatureFailure
	KindEncryption
	KindConfiguration
	KindProof
	KindInvalidState
)

// Validation errors.
var (
	ErrInvalidAmount      = errors.New("shielderr: invalid amount")
	ErrInsufficientBalance = errors.New("shielderr: insufficient balance")
	ErrInvalidAddress     = errors.New("shielderr: invalid address")
	ErrInvalidAssetTag    = errors.New("shielderr: invalid asset tag")
	ErrNoSpendableNotes   = errors.New("shielderr: no spendable notes")
	ErrMissingSignCallback = errors.New("shielderr: missing signing callback")
)

// Network errors.
var (
	ErrRelayerUnreachable  = errors.New("shielderr: relayer unreachable")
	ErrMalformedResponse   = errors.New("shielderr: malformed relayer response")
	ErrTokenAccountMissing = errors.New("shielderr: token account missing")
)

// Transaction errors.
var (
	ErrRootMismatch         = errors.New("shielderr: merkle root mismatch")
	ErrNullifierAlreadyUsed = errors.New("shielderr: nullifier already used")
	ErrExtDataHashMismatch  = errors.New("shielderr: ext-data hash mismatch")
	ErrProofRejected        = errors.New("shielderr: proof rejected")
	ErrSignatureFailure     = errors.New("shielderr: signature failure")
)

// Encryption errors.
var (
	ErrKeyNotSet = errors.New("shielderr: encryption key not set")
)

// Configuration errors.
var (
	ErrEngineNotInitialized    = errors.New("shielderr: engine not initialized")
	ErrCircuitArtifactsMissing = errors.New("shielderr: circuit artifacts missing")
)

// Proof errors.
var (
	ErrWitnessGeneration  = errors.New("shielderr: witness generation failed")
	ErrBalanceEquation    = errors.New("shielderr: balance equation failed")
)

// State-machine errors.
var (
	ErrInvalidState = errors.New("shielderr: invalid state")
)

// ClassifyServerError inspects a relayer/chain error message and returns
// the Kind it most likely represents, per spec §7's Classification
// policy. Unrecognized messages classify as KindUnknown, which the state
// machine treats as a generic retriable error.
func ClassifyServerError(msg string) Kind {
	lower := strings.ToLower(msg)

	switch {
	case isRootMismatch(lower):
		return KindRootMismatch
	case isNullifierAlreadyUsed(lower):
		return KindNullifierAlreadyUsed
	case isInsufficientFunds(lower):
		return KindValidation
	default:
		return KindUnknown
	}
}

func isRootMismatch(lower string) bool {
	for _, s := range []string{"invalid root", "root mismatch", "merkle root"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func isNullifierAlreadyUsed(lower string) bool {
	if !strings.Contains(lower, "nullifier") {
		return false
	}
	for _, s := range []string{"already", "used", "exists"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func isInsufficientFunds(lower string) bool {
	for _, s := range []string{"insufficient funds", "insufficient lamports", "account not found"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// IsRetriable reports whether the state machine should restart the
// pipeline for this Kind (spec §7 Propagation): root mismatch, no
// spendable notes (the relayer may be mid-index), and generic/unknown
// errors are retriable up to max_retries; everything else is terminal.
func IsRetriable(k Kind) bool {
	switch k {
	case KindRootMismatch, KindUnknown:
		return true
	default:
		return false
	}
}
