package witness

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/ccoin/shield/internal/shielderr"
)

// Prove generates a Groth16 proof for the fully-assigned witness circuit.
// A failure here almost always means the witness violates the balance
// equation (spec §4.8's "balance-equation failure" signal); gnark does not
// distinguish that from other assignment errors, so callers that need to
// tell them apart should validate the balance equation themselves before
// calling Prove.
func Prove(compiled *CompiledCircuit, full *TransactionCircuit) (groth16.Proof, error) {
	w, err := frontend.NewWitness(full, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: assign witness: %v", shielderr.ErrWitnessGeneration, err)
	}

	proof, err := groth16.Prove(compiled.CCS, compiled.PK, w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shielderr.ErrBalanceEquation, err)
	}
	return proof, nil
}

// Prove is the method form of the package-level Prove, letting
// *CompiledCircuit satisfy a narrow Prover interface for callers (such as
// the transaction core) that want to depend on an interface rather than
// this concrete type.
func (c *CompiledCircuit) Prove(full *TransactionCircuit) (groth16.Proof, error) {
	return Prove(c, full)
}

// Verify checks a proof against the circuit's public signals. Used for
// local sanity checks before submission; the relayer/on-chain program
// performs the authoritative verification.
func Verify(vk groth16.VerifyingKey, proof groth16.Proof, public *TransactionCircuit) error {
	w, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("witness: assign public witness: %w", err)
	}
	if err := groth16.Verify(proof, vk, w); err != nil {
		return fmt.Errorf("%w: %v", shielderr.ErrProofRejected, err)
	}
	return nil
}
