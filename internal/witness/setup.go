package witness

import (
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// CompiledCircuit bundles the constraint system with its proving and
// verifying keys, mirroring the pool's own CircuitManager but scoped to
// the single fixed transaction circuit shape this engine uses.
type CompiledCircuit struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

// Setup compiles TransactionCircuit and runs the Groth16 trusted setup.
// InPathElements are witnessed but not constrained by Define's simplified
// balance check, so the circuit is compiled with unconstrained inputs
// allowed.
func Setup() (*CompiledCircuit, error) {
	circuit := &TransactionCircuit{}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit, frontend.IgnoreUnconstrainedInputs())
	if err != nil {
		return nil, fmt.Errorf("witness: compile circuit: %w", err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("witness: groth16 setup: %w", err)
	}

	return &CompiledCircuit{CCS: ccs, PK: pk, VK: vk}, nil
}

// SaveProvingKey and SaveVerifyingKey persist the Groth16 setup artifacts
// so a long-lived process does not re-run the trusted setup on restart.
func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	return writeTo(path, pk)
}

func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	return writeTo(path, vk)
}

// LoadProvingKey and LoadVerifyingKey read back artifacts saved with
// SaveProvingKey/SaveVerifyingKey.
func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readFrom(path, pk); err != nil {
		return nil, err
	}
	return pk, nil
}

func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFrom(path, vk); err != nil {
		return nil, err
	}
	return vk, nil
}

type writerTo interface {
	WriteTo(w io.Writer) (int64, error)
}

type readerFrom interface {
	ReadFrom(r io.Reader) (int64, error)
}

func writeTo(path string, v writerTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("witness: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := v.WriteTo(f); err != nil {
		return fmt.Errorf("witness: write %s: %w", path, err)
	}
	return nil
}

func readFrom(path string, v readerFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("witness: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := v.ReadFrom(f); err != nil {
		return fmt.Errorf("witness: read %s: %w", path, err)
	}
	return nil
}
