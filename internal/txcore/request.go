package txcore

import (
	"context"

	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/planner"
	"github.com/ccoin/shield/pkg/types"
)

// SignDepositFunc signs the raw deposit instruction payload into a
// submittable, base64-encoded transaction. Building and signing the
// wrapping blockchain transaction is outside this engine's scope (the
// blockchain RPC layer and wallet signing are external collaborators);
// callers bridge that gap with this callback. Required when Action is
// ActionDeposit; a withdrawal needs no callback because the relayer
// builds and signs that transaction itself from WithdrawAccounts and the
// proof.
type SignDepositFunc func(ctx context.Context, payload []byte) (signedTransactionBase64 string, err error)

// WithdrawAccounts carries the on-chain account addresses a withdrawal
// needs that this engine has no way to derive — the caller's wallet/RPC
// layer is the source of truth for the program's PDAs and token accounts
// (spec §6 withdraw-params).
type WithdrawAccounts struct {
	TreeAccount           string
	TreeTokenAccount      string
	Nullifier0PDA         string
	Nullifier1PDA         string
	GlobalConfigAccount   string
	FeeRecipientAccount   string
	MintAddress           string
	SignerTokenAccount    string
	RecipientTokenAccount string
	TreeAta               string
	FeeRecipientAta       string
	LookupTableAddress    string
}

// Request is one transaction's full set of engine inputs.
type Request struct {
	Action   planner.Action
	Owner    *keypair.Keypair
	Amount   uint64
	AssetTag types.AssetTag
	SPL      bool

	// EncryptionKey encrypts the transaction's two output notes for Owner
	// (spec §4.3); it is the same 31-byte key internal/scanner uses to
	// decrypt Owner's notes.
	EncryptionKey [31]byte

	// Spendable is the caller's already-scanned candidate note set for
	// Owner and AssetTag (internal/scanner.Scan's result). It is held
	// fixed across this Execute call's internal retry loop; a caller
	// retrying at a higher level after a terminal "no spendable notes"
	// error should re-scan before calling Execute again.
	Spendable []types.Note

	// Recipient is the 32-byte withdrawal destination; ignored for deposits.
	Recipient [32]byte
	// FeeRecipient is the 32-byte address credited with the protocol fee.
	FeeRecipient [32]byte

	// DelayMinutes, if non-nil, routes a withdrawal through the delayed
	// endpoint with this schedule; must be in [0, 10080] (spec §4.9 step 1).
	// Ignored for deposits.
	DelayMinutes *uint32

	// Accounts supplies the withdrawal's on-chain account addresses.
	// Ignored for deposits.
	Accounts WithdrawAccounts

	// SignDeposit signs the deposit instruction payload. Required when
	// Action is planner.ActionDeposit.
	SignDeposit SignDepositFunc

	// DummyKeypairs supplies a fresh or batch-seeded keypair for each
	// dummy input slot (spec §4.7); defaults to keypair.Generate when nil.
	DummyKeypairs func() (*keypair.Keypair, error)
}

// Result is the outcome of an Execute call, whether it reached Done or
// Failed.
type Result struct {
	State     State
	Signature string

	// DelayedWithdrawalID and ExecuteAt are set only for a scheduled
	// (delayed) withdrawal, in place of Signature.
	DelayedWithdrawalID uint64
	ExecuteAt           string

	// RetryCount is how many Selecting restarts this call needed before
	// reaching Submitting (spec §4.9 step 3).
	RetryCount int

	// ObservedNextIndex is the tree's next_index as last seen while
	// polling.
	ObservedNextIndex uint32
	// Warning is set when polling ended without observing the
	// transaction land (attempts exhausted, context cancelled, or a
	// tree-state fetch failed; spec §4.9 step 5): a soft signal that does
	// not make the result a failure.
	Warning string

	// Plan is the final plan that was proved and submitted.
	Plan *planner.Plan
}
