package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/pkg/types"
)

// denominationMultipliers are the fixed splits a batch deposit greedily decomposes
// amount into, largest first, expressed as multiples of the asset's
// natural unit scaled by baseUnitsPerWhole (spec §4.7).
var denominationMultipliers = []float64{100, 10, 1, 0.1, 0.01, 0.001}

// BatchResult is the outcome of a multi-slice batch plan: one Plan per
// slice plus whether the full requested amount was covered.
type BatchResult struct {
	CorrelationID string
	Slices        []*Plan
	Covered       uint64
	Requested     uint64
	Partial       bool
}

// BatchWithdraw greedily pairs spendable UTXOs largest-first into
// sequential withdrawal slices when a single transaction's two input
// slots cannot cover the requested amount (spec §4.7). Each slice
// consumes its inputs from the running spendable pool so no note is
// spent twice across slices.
func BatchWithdraw(ctx context.Context, cfg Config, spendable []types.Note, owner *keypair.Keypair, amount uint64, assetTag types.AssetTag, nextIndex uint32, fetcher ProofFetcher, dummyKeypairs func() (*keypair.Keypair, error)) (*BatchResult, error) {
	pool := make([]types.Note, len(spendable))
	copy(pool, spendable)
	sort.Slice(pool, func(i, j int) bool { return pool[i].Amount > pool[j].Amount })

	result := &BatchResult{
		CorrelationID: uuid.NewString(),
		Requested:     amount,
	}

	remaining := amount
	idx := nextIndex

	for remaining > 0 && len(pool) > 0 {
		slice := pool
		if len(slice) > 2 {
			slice = slice[:2]
		}
		pool = pool[len(slice):]

		sliceTotal := uint64(0)
		for _, n := range slice {
			sliceTotal += n.Amount
		}
		feeSlice := cfg.computeFee(sliceTotal)
		if feeSlice >= sliceTotal {
			continue
		}
		withdrawSlice := sliceTotal - feeSlice
		if withdrawSlice > remaining {
			withdrawSlice = remaining
		}

		plan, err := PlanWithdraw(ctx, cfg, slice, owner, withdrawSlice, assetTag, idx, fetcher, dummyKeypairs)
		if err != nil {
			return nil, fmt.Errorf("planner: batch withdraw slice: %w", err)
		}

		result.Slices = append(result.Slices, plan)
		result.Covered += withdrawSlice
		remaining -= withdrawSlice
		idx += 2
	}

	result.Partial = result.Covered < amount
	return result, nil
}

// BatchDepositDenominations greedily decomposes amount (in base units)
// into the fixed denomination ladder {100, 10, 1, 0.1, 0.01, 0.001} of the
// asset's natural unit, returning one slice per unit of each denomination
// used, largest first, plus a final slice holding any remainder smaller
// than the smallest unit (spec §4.7). baseUnitsPerWhole converts "1.0" of the asset into base
// units (e.g. 10^9 for a 9-decimal token).
func BatchDepositDenominations(amount uint64, baseUnitsPerWhole uint64) []uint64 {
	var slices []uint64
	remaining := amount

	for _, mult := range denominationMultipliers {
		unit := uint64(mult * float64(baseUnitsPerWhole))
		if unit == 0 {
			continue
		}
		for remaining >= unit {
			slices = append(slices, unit)
			remaining -= unit
		}
	}

	if remaining > 0 {
		slices = append(slices, remaining)
	}

	return slices
}

// BatchDeposit plans one fresh-deposit transaction per denomination slice
// of amount, each an independent transaction sharing a correlation id
// (spec §4.7 supplemented with batch correlation tracking).
func BatchDeposit(ctx context.Context, cfg Config, owner *keypair.Keypair, amount uint64, assetTag types.AssetTag, baseUnitsPerWhole uint64, nextIndex uint32, dummyKeypairs func() (*keypair.Keypair, error)) (*BatchResult, error) {
	slices := BatchDepositDenominations(amount, baseUnitsPerWhole)

	result := &BatchResult{
		CorrelationID: uuid.NewString(),
		Requested:     amount,
	}

	idx := nextIndex
	for _, sliceAmount := range slices {
		plan, err := PlanDeposit(ctx, cfg, nil, owner, sliceAmount, assetTag, idx, nil, dummyKeypairs)
		if err != nil {
			return nil, fmt.Errorf("planner: batch deposit slice: %w", err)
		}
		result.Slices = append(result.Slices, plan)
		result.Covered += sliceAmount
		idx += 2
	}

	result.Partial = result.Covered < amount
	return result, nil
}
