package planner

import (
	"context"
	"fmt"

	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/shielderr"
	"github.com/ccoin/shield/pkg/types"
)

// PlanDeposit builds a single deposit transaction plan for amount of
// assetTag. With no spendable notes it builds the fresh-deposit shape
// (two zero-amount dummy inputs); with one or more spendable notes it
// consolidates the largest one or two into the deposit (spec §4.7).
//
// dummyKeypairs supplies the keypair(s) to use for any dummy input slot.
// For a standalone transaction, pass freshly-generated random keypairs
// (keypair.Generate); for one slice of a signed batch, pass the
// batch-seeded deterministic keypairs so dummy nullifiers stay distinct
// across the batch.
func PlanDeposit(ctx context.Context, cfg Config, spendable []types.Note, owner *keypair.Keypair, amount uint64, assetTag types.AssetTag, nextIndex uint32, fetcher ProofFetcher, dummyKeypairs func() (*keypair.Keypair, error)) (*Plan, error) {
	selected := SelectSpendable(spendable)

	fee := cfg.computeFee(amount)
	extAmount := int64(amount)

	var inputs [2]PlanInput
	var outputAmount uint64

	switch len(selected) {
	case 0:
		d0, err := dummyKeypairs()
		if err != nil {
			return nil, err
		}
		d1, err := dummyKeypairs()
		if err != nil {
			return nil, err
		}
		in0, err := buildDummyInput(d0)
		if err != nil {
			return nil, err
		}
		in1, err := buildDummyInput(d1)
		if err != nil {
			return nil, err
		}
		inputs = [2]PlanInput{in0, in1}
		if amount < fee {
			return nil, fmt.Errorf("planner: deposit amount %d smaller than fee %d", amount, fee)
		}
		outputAmount = amount - fee

	case 1:
		in0, err := buildRealInput(ctx, selected[0], owner, fetcher)
		if err != nil {
			return nil, err
		}
		dk, err := dummyKeypairs()
		if err != nil {
			return nil, err
		}
		in1, err := buildDummyInput(dk)
		if err != nil {
			return nil, err
		}
		inputs = [2]PlanInput{in0, in1}
		outputAmount = selected[0].Amount + amount - fee

	default:
		in0, err := buildRealInput(ctx, selected[0], owner, fetcher)
		if err != nil {
			return nil, err
		}
		in1, err := buildRealInput(ctx, selected[1], owner, fetcher)
		if err != nil {
			return nil, err
		}
		inputs = [2]PlanInput{in0, in1}
		outputAmount = selected[0].Amount + selected[1].Amount + amount - fee
	}

	changeBlinding, err := types.RandomBlinding()
	if err != nil {
		return nil, err
	}
	zeroBlinding, err := types.RandomBlinding()
	if err != nil {
		return nil, err
	}

	outputs := [2]PlanOutput{
		buildOutput(outputAmount, owner.PublicKey, assetTag, changeBlinding, nextIndex),
		buildOutput(0, owner.PublicKey, assetTag, zeroBlinding, nextIndex+1),
	}

	return &Plan{
		Action:       ActionDeposit,
		Inputs:       inputs,
		Outputs:      outputs,
		ExtAmount:    extAmount,
		Fee:          fee,
		PublicAmount: publicAmount(extAmount, fee),
		AssetTag:     assetTag,
	}, nil
}

// PlanWithdraw builds a single withdrawal transaction plan, spending the
// one or two largest spendable notes and returning change to owner (spec
// §4.7). At least one spendable note matching assetTag is required.
func PlanWithdraw(ctx context.Context, cfg Config, spendable []types.Note, owner *keypair.Keypair, amount uint64, assetTag types.AssetTag, nextIndex uint32, fetcher ProofFetcher, dummyKeypairs func() (*keypair.Keypair, error)) (*Plan, error) {
	selected := SelectSpendable(spendable)
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: withdrawal", shielderr.ErrNoSpendableNotes)
	}

	fee := cfg.computeFee(amount)
	extAmount := -int64(amount)

	var inputs [2]PlanInput
	var total uint64

	if len(selected) == 1 {
		in0, err := buildRealInput(ctx, selected[0], owner, fetcher)
		if err != nil {
			return nil, err
		}
		dk, err := dummyKeypairs()
		if err != nil {
			return nil, err
		}
		in1, err := buildDummyInput(dk)
		if err != nil {
			return nil, err
		}
		inputs = [2]PlanInput{in0, in1}
		total = selected[0].Amount
	} else {
		in0, err := buildRealInput(ctx, selected[0], owner, fetcher)
		if err != nil {
			return nil, err
		}
		in1, err := buildRealInput(ctx, selected[1], owner, fetcher)
		if err != nil {
			return nil, err
		}
		inputs = [2]PlanInput{in0, in1}
		total = selected[0].Amount + selected[1].Amount
	}

	if total < amount+fee {
		return nil, fmt.Errorf("%w: selected inputs %d insufficient for withdrawal %d plus fee %d", shielderr.ErrInsufficientBalance, total, amount, fee)
	}
	change := total - amount - fee

	changeBlinding, err := types.RandomBlinding()
	if err != nil {
		return nil, err
	}
	zeroBlinding, err := types.RandomBlinding()
	if err != nil {
		return nil, err
	}

	outputs := [2]PlanOutput{
		buildOutput(change, owner.PublicKey, assetTag, changeBlinding, nextIndex),
		buildOutput(0, owner.PublicKey, assetTag, zeroBlinding, nextIndex+1),
	}

	return &Plan{
		Action:       ActionWithdraw,
		Inputs:       inputs,
		Outputs:      outputs,
		ExtAmount:    extAmount,
		Fee:          fee,
		PublicAmount: publicAmount(extAmount, fee),
		AssetTag:     assetTag,
	}, nil
}
