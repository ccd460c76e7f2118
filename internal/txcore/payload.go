package txcore

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/ccoin/shield/internal/note"
	"github.com/ccoin/shield/internal/noteenc"
	"github.com/ccoin/shield/internal/planner"
	"github.com/ccoin/shield/internal/witness"
	"github.com/ccoin/shield/pkg/types"
)

// outputCommitments computes the plan's two output note commitments, in
// slot order.
func outputCommitments(plan *planner.Plan) ([2]types.FieldElement, error) {
	var out [2]types.FieldElement
	for i := 0; i < 2; i++ {
		c, err := note.Commitment(plan.Outputs[i].Note)
		if err != nil {
			return out, fmt.Errorf("txcore: compute output %d commitment: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// buildExtData encrypts the plan's two output notes under req's
// encryption key and assembles the public ext-data payload (spec §4.4)
// that both the ext-data hash and the on-wire submission bind to.
func buildExtData(req Request, plan *planner.Plan) (types.ExtData, error) {
	var ciphertexts [2][]byte
	for i := 0; i < 2; i++ {
		out := plan.Outputs[i].Note
		ct, err := noteenc.Encrypt(req.EncryptionKey, noteenc.Plaintext{
			Amount:   out.Amount,
			Blinding: out.Blinding,
			Index:    out.Index,
			AssetTag: out.AssetTag,
		})
		if err != nil {
			return types.ExtData{}, fmt.Errorf("txcore: encrypt output %d: %w", i, err)
		}
		ciphertexts[i] = ct
	}

	return types.ExtData{
		Recipient:    req.Recipient,
		ExtAmount:    plan.ExtAmount,
		Ciphertext1:  ciphertexts[0],
		Ciphertext2:  ciphertexts[1],
		Fee:          plan.Fee,
		FeeRecipient: req.FeeRecipient,
		AssetTag:     plan.AssetTag,
	}, nil
}

// signalsFor assembles the witness's public signals for payload encoding,
// once the plan, root, and ext-data hash are known.
func signalsFor(plan *planner.Plan, root, extDataHash types.FieldElement, commitments [2]types.FieldElement) witness.PublicSignals {
	return witness.PublicSignals{
		Root:             root,
		PublicAmount:     plan.PublicAmount,
		ExtDataHash:      extDataHash,
		InputNullifier:   [2]types.FieldElement{plan.Inputs[0].Nullifier, plan.Inputs[1].Nullifier},
		OutputCommitment: commitments,
	}
}

// withdrawParams assembles the /withdraw request body from the plan, the
// proof, and the caller-supplied account addresses.
func withdrawParams(req Request, plan *planner.Plan, proof witness.EncodedProof, signals witness.PublicSignals, ed types.ExtData) types.WithdrawParams {
	params := types.WithdrawParams{
		SerializedProof:       witness.ProofBlobBase64(proof, signals, plan.ExtAmount, plan.Fee, req.SPL),
		TreeAccount:           req.Accounts.TreeAccount,
		TreeTokenAccount:      req.Accounts.TreeTokenAccount,
		Nullifier0PDA:         req.Accounts.Nullifier0PDA,
		Nullifier1PDA:         req.Accounts.Nullifier1PDA,
		GlobalConfigAccount:   req.Accounts.GlobalConfigAccount,
		Recipient:             base58.Encode(req.Recipient[:]),
		FeeRecipientAccount:   req.Accounts.FeeRecipientAccount,
		MintAddress:           req.Accounts.MintAddress,
		SignerTokenAccount:    req.Accounts.SignerTokenAccount,
		RecipientTokenAccount: req.Accounts.RecipientTokenAccount,
		TreeAta:               req.Accounts.TreeAta,
		FeeRecipientAta:       req.Accounts.FeeRecipientAta,
		ExtAmount:             plan.ExtAmount,
		EncryptedOutput1:      encodeCiphertext(ed.Ciphertext1),
		EncryptedOutput2:      encodeCiphertext(ed.Ciphertext2),
		Fee:                   plan.Fee,
		LookupTableAddress:    req.Accounts.LookupTableAddress,
	}
	if req.DelayMinutes != nil {
		d := *req.DelayMinutes
		params.DelayMinutes = &d
	}
	return params
}

// signDeposit invokes the caller's callback to turn an instruction
// payload into a submittable signed transaction.
func signDeposit(ctx context.Context, req Request, payload []byte) (string, error) {
	return req.SignDeposit(ctx, payload)
}

// encodeCiphertext base64-encodes a note ciphertext for the withdraw
// params' encryptedOutput fields.
func encodeCiphertext(ct []byte) string {
	return base64.StdEncoding.EncodeToString(ct)
}
