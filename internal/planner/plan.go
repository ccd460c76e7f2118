// Package planner selects spendable notes and builds the two-input,
// two-output UTXO plan for a deposit or withdrawal, including dummy-input
// construction and batch planning when a single transaction cannot cover
// the request (spec §4.7).
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/note"
	"github.com/ccoin/shield/pkg/types"
)

// Action selects which side of the pool a plan moves value into.
type Action uint8

const (
	ActionDeposit Action = iota
	ActionWithdraw
)

// ProofFetcher fetches a commitment's Merkle inclusion proof. Satisfied
// by *treeclient.Client; accepted as an interface so the planner does not
// import the transport layer.
type ProofFetcher interface {
	InclusionProof(ctx context.Context, commitment types.FieldElement) (types.InclusionProof, error)
}

// PlanInput is one spend side of a plan: a note, the keypair that owns
// it, and its Merkle inclusion proof (zero-valued for a dummy).
type PlanInput struct {
	Note       types.Note
	Keypair    *keypair.Keypair
	Commitment types.FieldElement
	Nullifier  types.FieldElement
	Proof      types.InclusionProof
	IsDummy    bool
}

// PlanOutput is one newly-created note of a plan, with a predicted tree
// index (spec §4.7's "tree-output index prediction" — authoritative only
// after the scanner later observes it).
type PlanOutput struct {
	Note          types.Note
	PredictedIndex uint32
}

// Plan is a fully-selected, fee-accounted two-input/two-output spend,
// ready for witness assembly.
type Plan struct {
	Action       Action
	Inputs       [2]PlanInput
	Outputs      [2]PlanOutput
	ExtAmount    int64
	Fee          uint64
	PublicAmount types.FieldElement
	AssetTag     types.AssetTag
}

// Config holds the fee schedule applied to every plan.
type Config struct {
	FeeRateBps uint64
}

// computeFee returns floor(amount * feeRateBps / 10000).
func (c Config) computeFee(amount uint64) uint64 {
	return amount * c.FeeRateBps / 10000
}

// publicAmount reduces (extAmount - fee) into [0, FieldSize), the
// circuit's public-input encoding of the net externally-visible amount
// (spec §4.7).
func publicAmount(extAmount int64, fee uint64) types.FieldElement {
	net := extAmount - int64(fee)
	return types.FieldFromBigInt(bigIntFromInt64(net))
}

// SelectSpendable returns the one or two largest spendable notes by
// amount, largest first. Exported so callers that must know which
// commitments a plan will spend before the plan itself is built (for
// example, to acquire locks ahead of selection) can reuse the same
// selection rule the planner applies internally.
func SelectSpendable(spendable []types.Note) []types.Note {
	sorted := make([]types.Note, len(spendable))
	copy(sorted, spendable)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	return sorted
}

// buildDummyInput constructs a zero-amount input with a note keypair
// bound for uniqueness. dummyKeypair supplies the keypair: fresh random
// for a single unbatched transaction, or a deterministic batch-seeded one
// when this plan is one slice of a signed batch (spec §4.7).
func buildDummyInput(dummyKeypair *keypair.Keypair) (PlanInput, error) {
	n := types.Note{
		Amount:      0,
		Blinding:    types.BlindingFromInt(0),
		OwnerPubKey: dummyKeypair.PublicKey,
		AssetTag:    types.NativeAssetTag(),
		Index:       0,
	}
	commitment, nullifier, err := note.Derive(n, ptr(dummyKeypair.PrivateKeyField()))
	if err != nil {
		return PlanInput{}, fmt.Errorf("planner: derive dummy input: %w", err)
	}
	return PlanInput{
		Note:       n,
		Keypair:    dummyKeypair,
		Commitment: commitment,
		Nullifier:  nullifier,
		IsDummy:    true,
	}, nil
}

// buildRealInput wraps a spendable note as a plan input. The commitment
// is index-independent and computed first; the inclusion-proof fetch
// must precede nullifier derivation, since the proof's index is the only
// authoritative one and the nullifier binds to it (spec §4.5 step 5, §4.7:
// deriving the nullifier from any other index silently produces a wrong
// nullifier and an unsigned-but-invalid transaction).
func buildRealInput(ctx context.Context, n types.Note, kp *keypair.Keypair, fetcher ProofFetcher) (PlanInput, error) {
	commitment, err := note.Commitment(n)
	if err != nil {
		return PlanInput{}, fmt.Errorf("planner: compute commitment: %w", err)
	}
	proof, err := fetcher.InclusionProof(ctx, commitment)
	if err != nil {
		return PlanInput{}, fmt.Errorf("planner: fetch inclusion proof: %w", err)
	}
	n.Index = proof.Index

	nullifier, err := note.Nullifier(commitment, n.Index, kp.PrivateKeyField())
	if err != nil {
		return PlanInput{}, fmt.Errorf("planner: derive nullifier: %w", err)
	}
	return PlanInput{
		Note:       n,
		Keypair:    kp,
		Commitment: commitment,
		Nullifier:  nullifier,
		Proof:      proof,
	}, nil
}

func ptr(f types.FieldElement) *types.FieldElement { return &f }

// buildOutput constructs one plan output note, owned by the given
// keypair's public key, with the predicted tree index.
func buildOutput(amount uint64, ownerPubKey types.FieldElement, assetTag types.AssetTag, blinding types.FieldElement, predictedIndex uint32) PlanOutput {
	return PlanOutput{
		Note: types.Note{
			Amount:      amount,
			Blinding:    blinding,
			OwnerPubKey: ownerPubKey,
			AssetTag:    assetTag,
			Index:       predictedIndex,
		},
		PredictedIndex: predictedIndex,
	}
}
