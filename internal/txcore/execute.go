package txcore

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ccoin/shield/internal/extdata"
	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/planner"
	"github.com/ccoin/shield/internal/shielderr"
	"github.com/ccoin/shield/internal/witness"
	"github.com/ccoin/shield/pkg/types"
)

// Execute drives one transaction through Idle → Selecting → Proving →
// Submitting → Polling → Done | Failed (spec §4.9).
//
// Locks are acquired once, on the real-input commitments spec §4.9 step 1
// names, before the retry loop begins: those commitments depend only on
// req.Spendable's selected notes, not on tree state, so they are already
// known at this point even though formal "input selection" (§4.7) is
// itself part of the Selecting → Proving transition. Every restart inside
// the loop re-runs selection, inclusion-proof fetching, and witness
// assembly against a freshly-read root, but reuses the same held locks.
func (e *Engine) Execute(ctx context.Context, req Request) (*Result, error) {
	if req.DummyKeypairs == nil {
		req.DummyKeypairs = keypair.Generate
	}

	if err := validate(&req); err != nil {
		return &Result{State: StateFailed}, err
	}

	candidates := planner.SelectSpendable(req.Spendable)
	if req.Action == planner.ActionWithdraw && len(candidates) == 0 {
		return &Result{State: StateFailed}, fmt.Errorf("%w: withdrawal", shielderr.ErrNoSpendableNotes)
	}

	lockIDs, err := realInputCommitments(candidates)
	if err != nil {
		return &Result{State: StateFailed}, fmt.Errorf("txcore: %w", err)
	}

	if !e.acquireLocks(lockIDs) {
		return &Result{State: StateFailed}, shielderr.ErrInvalidState
	}
	defer e.locks.Unlock(lockIDs)

	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		result, err := e.attempt(ctx, req)
		if err == nil {
			result.RetryCount = attempt
			result.State = StateDone
			return result, nil
		}

		lastErr = err
		kind := classify(err)

		if attempt == e.cfg.MaxRetries || !shielderr.IsRetriable(kind) {
			e.log.WithFields(logrus.Fields{
				"attempt": attempt,
				"kind":    kind,
				"error":   err,
			}).Error("txcore: transaction failed")
			return &Result{State: StateFailed, RetryCount: attempt}, lastErr
		}

		e.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"kind":    kind,
			"error":   err,
		}).Warn("txcore: attempt failed, restarting from selecting")
	}

	return &Result{State: StateFailed, RetryCount: e.cfg.MaxRetries}, lastErr
}

// attempt runs one full Selecting → Proving → Submitting → Polling pass.
// Any error it returns is a candidate for the outer retry loop to
// classify and, if retriable, restart.
func (e *Engine) attempt(ctx context.Context, req Request) (*Result, error) {
	treeState, err := e.tree.TreeState(ctx)
	if err != nil {
		return nil, fmt.Errorf("txcore: fetch tree state: %w", err)
	}

	plan, err := e.buildPlan(ctx, req, treeState.NextIndex)
	if err != nil {
		return nil, err
	}

	if err := e.checkNotSpent(ctx, plan); err != nil {
		return nil, err
	}

	ed, err := buildExtData(req, plan)
	if err != nil {
		return nil, err
	}
	extHash := extdata.HashAsField(ed, e.cfg.AssetTagMode)

	w, err := witness.Build(plan, treeState.Root, extHash)
	if err != nil {
		return nil, fmt.Errorf("txcore: build witness: %w", err)
	}

	proof, err := e.prover.Prove(w)
	if err != nil {
		return nil, err
	}
	encoded, err := witness.EncodeProof(proof)
	if err != nil {
		return nil, fmt.Errorf("txcore: encode proof: %w", err)
	}

	// Proving → Submitting: the root must not have moved underneath the
	// witness we just proved (spec §4.9 step 3, §5 ordering guarantee).
	reState, err := e.tree.TreeState(ctx)
	if err != nil {
		return nil, fmt.Errorf("txcore: re-query tree root: %w", err)
	}
	if reState.Root != treeState.Root {
		return nil, fmt.Errorf("%w", shielderr.ErrRootMismatch)
	}

	commitments, err := outputCommitments(plan)
	if err != nil {
		return nil, err
	}
	signals := signalsFor(plan, treeState.Root, extHash, commitments)

	result, err := e.submit(ctx, req, plan, encoded, signals, ed)
	if err != nil {
		return nil, err
	}
	result.Plan = plan

	// Delayed withdrawals have no immediate tree effect to poll for.
	if req.Action == planner.ActionWithdraw && req.DelayMinutes != nil {
		return result, nil
	}

	observedNextIndex, observed, warning := e.poll(ctx, reState.NextIndex)
	result.ObservedNextIndex = observedNextIndex
	if !observed {
		result.Warning = warning
	}
	return result, nil
}

// buildPlan runs the planner's input selection for the requested action
// (spec §4.7), fetching inclusion proofs for any real input over e.tree.
func (e *Engine) buildPlan(ctx context.Context, req Request, nextIndex uint32) (*planner.Plan, error) {
	switch req.Action {
	case planner.ActionDeposit:
		return planner.PlanDeposit(ctx, e.cfg.Planner, req.Spendable, req.Owner, req.Amount, req.AssetTag, nextIndex, e.tree, req.DummyKeypairs)
	case planner.ActionWithdraw:
		return planner.PlanWithdraw(ctx, e.cfg.Planner, req.Spendable, req.Owner, req.Amount, req.AssetTag, nextIndex, e.tree, req.DummyKeypairs)
	default:
		return nil, fmt.Errorf("txcore: unknown action %d", req.Action)
	}
}

// checkNotSpent re-validates, immediately before proving, that neither of
// the plan's input nullifiers has landed on chain since the scanner last
// filtered them (spec §4.6): a narrowing race-reduction check, not the
// transaction's sole line of defense against replay.
func (e *Engine) checkNotSpent(ctx context.Context, plan *planner.Plan) error {
	spent, err := e.spent.CheckPairSpent(ctx, plan.Inputs[0].Nullifier, plan.Inputs[1].Nullifier)
	if err != nil {
		return fmt.Errorf("txcore: check nullifier spent status: %w", err)
	}
	if spent {
		return shielderr.ErrNullifierAlreadyUsed
	}
	return nil
}

// submit implements the Submitting step (spec §4.9 step 4): an immediate
// POST for deposits and immediate withdrawals, or a delayed POST carrying
// delay_minutes for a scheduled withdrawal.
func (e *Engine) submit(ctx context.Context, req Request, plan *planner.Plan, proof witness.EncodedProof, signals witness.PublicSignals, ed types.ExtData) (*Result, error) {
	switch req.Action {
	case planner.ActionDeposit:
		return e.submitDeposit(ctx, req, proof, signals, ed)
	case planner.ActionWithdraw:
		return e.submitWithdraw(ctx, req, plan, proof, signals, ed)
	default:
		return nil, fmt.Errorf("txcore: unknown action %d", req.Action)
	}
}

func (e *Engine) submitDeposit(ctx context.Context, req Request, proof witness.EncodedProof, signals witness.PublicSignals, ed types.ExtData) (*Result, error) {
	payload := witness.InstructionPayload(proof, signals, ed.ExtAmount, ed.Fee, ed.Ciphertext1, ed.Ciphertext2, req.SPL)

	signedTx, err := signDeposit(ctx, req, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shielderr.ErrSignatureFailure, err)
	}

	resp, err := e.relayer.SubmitDeposit(ctx, types.DepositRequest{SignedTransaction: signedTx}, req.SPL)
	if err != nil {
		return nil, fmt.Errorf("txcore: submit deposit: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: deposit not accepted", shielderr.ErrProofRejected)
	}
	return &Result{Signature: resp.Signature}, nil
}

func (e *Engine) submitWithdraw(ctx context.Context, req Request, plan *planner.Plan, proof witness.EncodedProof, signals witness.PublicSignals, ed types.ExtData) (*Result, error) {
	params := withdrawParams(req, plan, proof, signals, ed)

	if req.DelayMinutes != nil {
		out, err := e.relayer.SubmitDelayedWithdraw(ctx, params, req.SPL)
		if err != nil {
			return nil, fmt.Errorf("txcore: submit delayed withdrawal: %w", err)
		}
		if !out.Success {
			return nil, fmt.Errorf("%w: delayed withdrawal not accepted", shielderr.ErrProofRejected)
		}
		return &Result{DelayedWithdrawalID: out.DelayedWithdrawalID, ExecuteAt: out.ExecuteAt}, nil
	}

	out, err := e.relayer.SubmitWithdraw(ctx, params, req.SPL)
	if err != nil {
		return nil, fmt.Errorf("txcore: submit withdrawal: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("%w: withdrawal not accepted", shielderr.ErrProofRejected)
	}
	return &Result{Signature: out.Signature}, nil
}
