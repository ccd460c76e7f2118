package planner

import (
	"context"
	"testing"

	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/pkg/types"
)

type fakeFetcher struct {
	nextIndex uint32
}

func (f *fakeFetcher) InclusionProof(ctx context.Context, commitment types.FieldElement) (types.InclusionProof, error) {
	idx := f.nextIndex
	f.nextIndex++
	return types.InclusionProof{Index: idx}, nil
}

func freshKeypair(t *testing.T) *keypair.Keypair {
	t.Helper()
	kp, err := keypair.Generate()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	return kp
}

func dummySource(t *testing.T) func() (*keypair.Keypair, error) {
	return func() (*keypair.Keypair, error) { return keypair.Generate() }
}

func TestPlanDepositFreshUsesDummyInputs(t *testing.T) {
	owner := freshKeypair(t)
	cfg := Config{FeeRateBps: 50} // 0.5%

	plan, err := PlanDeposit(context.Background(), cfg, nil, owner, 100_000, types.NativeAssetTag(), 10, nil, dummySource(t))
	if err != nil {
		t.Fatalf("plan deposit: %v", err)
	}

	if !plan.Inputs[0].IsDummy || !plan.Inputs[1].IsDummy {
		t.Error("fresh deposit must use two dummy inputs")
	}
	if plan.Inputs[0].Keypair.PublicKey == plan.Inputs[1].Keypair.PublicKey {
		t.Error("dummy inputs must use distinct keypairs")
	}
	if plan.ExtAmount != 100_000 {
		t.Errorf("expected extAmount 100000, got %d", plan.ExtAmount)
	}
	wantFee := uint64(100_000) * 50 / 10000
	if plan.Fee != wantFee {
		t.Errorf("expected fee %d, got %d", wantFee, plan.Fee)
	}
	if plan.Outputs[0].Note.Amount != 100_000-wantFee {
		t.Errorf("expected output0 amount %d, got %d", 100_000-wantFee, plan.Outputs[0].Note.Amount)
	}
	if plan.Outputs[1].Note.Amount != 0 {
		t.Error("expected output1 to be zero-amount")
	}
}

func TestPlanDepositConsolidatesSpendableNotes(t *testing.T) {
	owner := freshKeypair(t)
	cfg := Config{FeeRateBps: 0}
	tag := types.NativeAssetTag()

	spendable := []types.Note{
		{Amount: 500, Blinding: types.BlindingFromInt(1), OwnerPubKey: owner.PublicKey, AssetTag: tag, Index: 3},
	}

	plan, err := PlanDeposit(context.Background(), cfg, spendable, owner, 200, tag, 10, &fakeFetcher{}, dummySource(t))
	if err != nil {
		t.Fatalf("plan deposit: %v", err)
	}

	if plan.Inputs[0].IsDummy {
		t.Error("expected real input0 for consolidating deposit")
	}
	if !plan.Inputs[1].IsDummy {
		t.Error("expected dummy input1 when only one spendable note")
	}
	if plan.Outputs[0].Note.Amount != 700 {
		t.Errorf("expected consolidated output amount 700, got %d", plan.Outputs[0].Note.Amount)
	}
}

func TestPlanWithdrawReturnsChange(t *testing.T) {
	owner := freshKeypair(t)
	cfg := Config{FeeRateBps: 100} // 1%
	tag := types.NativeAssetTag()

	spendable := []types.Note{
		{Amount: 1000, Blinding: types.BlindingFromInt(1), OwnerPubKey: owner.PublicKey, AssetTag: tag, Index: 1},
	}

	plan, err := PlanWithdraw(context.Background(), cfg, spendable, owner, 400, tag, 20, &fakeFetcher{}, dummySource(t))
	if err != nil {
		t.Fatalf("plan withdraw: %v", err)
	}

	if plan.ExtAmount != -400 {
		t.Errorf("expected extAmount -400, got %d", plan.ExtAmount)
	}
	wantFee := uint64(400) * 100 / 10000
	wantChange := uint64(1000) - 400 - wantFee
	if plan.Outputs[0].Note.Amount != wantChange {
		t.Errorf("expected change %d, got %d", wantChange, plan.Outputs[0].Note.Amount)
	}
}

func TestPlanWithdrawFailsWithNoSpendableNotes(t *testing.T) {
	owner := freshKeypair(t)
	cfg := Config{FeeRateBps: 0}

	_, err := PlanWithdraw(context.Background(), cfg, nil, owner, 100, types.NativeAssetTag(), 0, &fakeFetcher{}, dummySource(t))
	if err == nil {
		t.Error("expected error when no spendable notes exist")
	}
}

func TestBatchDepositDenominationsGreedySplit(t *testing.T) {
	// baseUnitsPerWhole = 1000 (3 decimals): denominations become
	// 100000, 10000, 1000, 100, 10, 1.
	slices := BatchDepositDenominations(123_456, 1000)

	var sum uint64
	for _, s := range slices {
		sum += s
	}
	if sum != 123_456 {
		t.Errorf("expected slices to sum to 123456, got %d", sum)
	}
	if slices[0] != 100_000 {
		t.Errorf("expected largest-first split to start with 100000, got %d", slices[0])
	}
}

func TestBatchWithdrawCoversMultipleSlices(t *testing.T) {
	owner := freshKeypair(t)
	cfg := Config{FeeRateBps: 0}
	tag := types.NativeAssetTag()

	spendable := []types.Note{
		{Amount: 300, Blinding: types.BlindingFromInt(1), OwnerPubKey: owner.PublicKey, AssetTag: tag, Index: 1},
		{Amount: 300, Blinding: types.BlindingFromInt(2), OwnerPubKey: owner.PublicKey, AssetTag: tag, Index: 2},
		{Amount: 300, Blinding: types.BlindingFromInt(3), OwnerPubKey: owner.PublicKey, AssetTag: tag, Index: 3},
	}

	result, err := BatchWithdraw(context.Background(), cfg, spendable, owner, 700, tag, 10, &fakeFetcher{}, dummySource(t))
	if err != nil {
		t.Fatalf("batch withdraw: %v", err)
	}
	if result.Partial {
		t.Error("expected full coverage of 700 from 900 available")
	}
	if len(result.Slices) != 2 {
		t.Errorf("expected 2 slices (2+1 notes), got %d", len(result.Slices))
	}
	if result.CorrelationID == "" {
		t.Error("expected a non-empty correlation id")
	}
}

func TestBatchWithdrawReportsPartialWhenUndercovered(t *testing.T) {
	owner := freshKeypair(t)
	cfg := Config{FeeRateBps: 0}
	tag := types.NativeAssetTag()

	spendable := []types.Note{
		{Amount: 100, Blinding: types.BlindingFromInt(1), OwnerPubKey: owner.PublicKey, AssetTag: tag, Index: 1},
	}

	result, err := BatchWithdraw(context.Background(), cfg, spendable, owner, 1000, tag, 10, &fakeFetcher{}, dummySource(t))
	if err != nil {
		t.Fatalf("batch withdraw: %v", err)
	}
	if !result.Partial {
		t.Error("expected partial coverage")
	}
	if result.Covered != 100 {
		t.Errorf("expected covered 100, got %d", result.Covered)
	}
}
