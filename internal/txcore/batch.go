package txcore

import (
	"context"
	"fmt"
	"time"

	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/planner"
)

// BatchResult aggregates one Execute call per slice of a multi-transaction
// batch (spec §4.7's batch planning, §7's partial-withdrawal reporting).
type BatchResult struct {
	Results   []*Result
	Signatures []string
	Requested uint64
	Covered   uint64
	// IsPartial is true when the sum of executed slices fell short of
	// Requested — either because batch planning itself could not cover
	// the full amount, or a slice failed.
	IsPartial bool
}

// ExecuteBatchWithdraw covers a withdrawal request that exceeds what a
// single two-input transaction can spend by slicing it into sequential
// withdrawals (spec §4.7's greedy largest-first pairing) and executing
// each slice through Execute in turn. A slice failure stops the batch: the
// error is returned together with a BatchResult, IsPartial set, holding
// the slices already executed, whose signatures remain valid and spent.
//
// req.Amount and req.Spendable seed the batch plan; req is otherwise
// reused unmodified for every slice (each slice substitutes its own
// sliced amount).
func (e *Engine) ExecuteBatchWithdraw(ctx context.Context, req Request) (*BatchResult, error) {
	batchPlan, err := planner.BatchWithdraw(ctx, e.cfg.Planner, req.Spendable, req.Owner, req.Amount, req.AssetTag, 0, e.tree, req.DummyKeypairs)
	if err != nil {
		return nil, fmt.Errorf("txcore: batch withdraw planning: %w", err)
	}

	out := &BatchResult{Requested: batchPlan.Requested, IsPartial: batchPlan.Partial}

	// Each slice's pre-fetched inputs/proof are discarded here: Execute
	// re-derives its own plan per slice against a freshly-read root
	// (spec §4.9 step 2), so only the slice's amount is reused.
	for _, slice := range batchPlan.Slices {
		sliceAmount := uint64(-slice.ExtAmount)
		sliceReq := req
		sliceReq.Amount = sliceAmount

		result, err := e.Execute(ctx, sliceReq)
		if err != nil {
			out.IsPartial = true
			return out, fmt.Errorf("txcore: batch withdraw slice of %d: %w", sliceAmount, err)
		}

		out.Results = append(out.Results, result)
		out.Signatures = append(out.Signatures, result.Signature)
		out.Covered += sliceAmount
	}

	if out.Covered < out.Requested {
		out.IsPartial = true
	}
	return out, nil
}

// ExecuteBatchDeposit covers a batch deposit decomposed into fixed
// denominations (spec §4.7), executing one fresh-deposit transaction per
// denomination slice and aggregating the resulting signatures.
func (e *Engine) ExecuteBatchDeposit(ctx context.Context, req Request, baseUnitsPerWhole uint64) (*BatchResult, error) {
	slices := planner.BatchDepositDenominations(req.Amount, baseUnitsPerWhole)

	out := &BatchResult{Requested: req.Amount}
	clock := time.Now().Unix()
	for sliceIdx, sliceAmount := range slices {
		sliceReq := req
		sliceReq.Amount = sliceAmount
		// A batch deposit's dummy inputs must use distinct keypairs per
		// sibling slice (spec §4.7): each slice derives its dummies from
		// (timestamp, slice index, slot) instead of keypair.Generate, so a
		// batch signed together cannot collide two dummy nullifiers.
		sliceReq.DummyKeypairs = batchDummyKeypairs(clock, sliceIdx)

		result, err := e.Execute(ctx, sliceReq)
		if err != nil {
			out.IsPartial = true
			return out, fmt.Errorf("txcore: batch deposit slice of %d: %w", sliceAmount, err)
		}

		out.Results = append(out.Results, result)
		out.Signatures = append(out.Signatures, result.Signature)
		out.Covered += sliceAmount
	}

	if out.Covered < out.Requested {
		out.IsPartial = true
	}
	return out, nil
}

// batchDummyKeypairs returns a DummyKeypairs callback seeded on (clock,
// sliceIdx, slot), where slot counts up from 0 across every call made for
// this one slice: 0 and 1 on the first attempt of a fresh deposit with no
// real input, continuing with 2, 3, ... when Execute retries the slice, so
// each draw stays distinct — the deterministic (timestamp,
// transaction_index, slot) dummy-derivation rule of spec §4.7.
func batchDummyKeypairs(clock int64, sliceIdx int) func() (*keypair.Keypair, error) {
	var slot uint8
	return func() (*keypair.Keypair, error) {
		kp, err := keypair.DeriveBatchDummy(clock, sliceIdx, slot)
		slot++
		return kp, err
	}
}
