package witness

import (
	"fmt"

	"github.com/ccoin/shield/internal/note"
	"github.com/ccoin/shield/internal/planner"
	"github.com/ccoin/shield/pkg/types"
)

// Build assembles the full witness (public and private assignments) for a
// planned transaction. root and extDataHash are supplied by the caller:
// root from the tree state fetched at Proving-start, extDataHash from
// internal/extdata over the plan's ext-data payload (spec §4.8, §4.9).
func Build(plan *planner.Plan, root, extDataHash types.FieldElement) (*TransactionCircuit, error) {
	if plan == nil {
		return nil, fmt.Errorf("witness: nil plan")
	}

	w := &TransactionCircuit{
		Root:         root.BigInt().String(),
		PublicAmount: plan.PublicAmount.BigInt().String(),
		ExtDataHash:  extDataHash.BigInt().String(),
		AssetTag:     plan.AssetTag.BigInt().String(),
	}

	for i := 0; i < NumInputs; i++ {
		in := plan.Inputs[i]
		w.InputNullifier[i] = in.Nullifier.BigInt().String()
		w.InAmount[i] = fmt.Sprintf("%d", in.Note.Amount)
		w.InBlinding[i] = in.Note.Blinding.BigInt().String()

		if in.IsDummy {
			w.InPrivateKey[i] = in.Keypair.PrivateKeyField().BigInt().String()
			w.InPathIndices[i] = 0
			for j := 0; j < types.TreeDepth; j++ {
				w.InPathElements[i][j] = types.ZeroField.BigInt().String()
			}
			continue
		}

		w.InPrivateKey[i] = in.Keypair.PrivateKeyField().BigInt().String()
		w.InPathIndices[i] = fmt.Sprintf("%d", in.Note.Index)
		for j := 0; j < types.TreeDepth; j++ {
			w.InPathElements[i][j] = in.Proof.PathElements[j].BigInt().String()
		}
	}

	for i := 0; i < NumOutputs; i++ {
		out := plan.Outputs[i]
		commitment, err := note.Commitment(out.Note)
		if err != nil {
			return nil, fmt.Errorf("witness: output %d commitment: %w", i, err)
		}
		w.OutputCommitment[i] = commitment.BigInt().String()
		w.OutAmount[i] = fmt.Sprintf("%d", out.Note.Amount)
		w.OutBlinding[i] = out.Note.Blinding.BigInt().String()
		w.OutPubkey[i] = out.Note.OwnerPubKey.BigInt().String()
	}

	return w, nil
}

// PublicOnly strips the private fields, leaving a witness suitable for
// frontend.NewWitness(..., frontend.PublicOnly()) style verification.
func PublicOnly(full *TransactionCircuit) *TransactionCircuit {
	return &TransactionCircuit{
		Root:             full.Root,
		InputNullifier:   full.InputNullifier,
		OutputCommitment: full.OutputCommitment,
		PublicAmount:     full.PublicAmount,
		ExtDataHash:      full.ExtDataHash,
		AssetTag:         full.AssetTag,
	}
}
