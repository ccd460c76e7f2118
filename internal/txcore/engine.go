package txcore

import (
	"io"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/sirupsen/logrus"

	"github.com/ccoin/shield/internal/lockmgr"
	"github.com/ccoin/shield/internal/planner"
	"github.com/ccoin/shield/internal/relayerclient"
	"github.com/ccoin/shield/internal/spentset"
	"github.com/ccoin/shield/internal/treeclient"
	"github.com/ccoin/shield/internal/witness"
	"github.com/ccoin/shield/pkg/types"
)

// Defaults for the tunables spec §4.9/§5 name explicitly.
const (
	DefaultMaxRetries     = 3
	DefaultLockRetries    = 3
	DefaultLockRetryDelay = 1 * time.Second
	DefaultPollAttempts   = 10
	DefaultPollInterval   = 1 * time.Second
)

// Prover proves an assembled circuit witness. Satisfied by
// *witness.CompiledCircuit; accepted as a narrow interface so tests can
// stub proof generation without a real Groth16 setup and key ceremony.
type Prover interface {
	Prove(full *witness.TransactionCircuit) (groth16.Proof, error)
}

// Config holds the engine's tunables.
type Config struct {
	Planner      planner.Config
	AssetTagMode types.AssetTagMode

	MaxRetries     int
	LockRetries    int
	LockRetryDelay time.Duration
	PollAttempts   int
	PollInterval   time.Duration
}

// DefaultConfig returns the spec's default tunables with a 0.3% fee rate
// (spec §6).
func DefaultConfig() Config {
	return Config{
		Planner:        planner.Config{FeeRateBps: 30},
		AssetTagMode:   types.AssetTagModeRaw,
		MaxRetries:     DefaultMaxRetries,
		LockRetries:    DefaultLockRetries,
		LockRetryDelay: DefaultLockRetryDelay,
		PollAttempts:   DefaultPollAttempts,
		PollInterval:   DefaultPollInterval,
	}
}

// Engine drives the transaction state machine, wiring together tree
// reads, nullifier checks, proving, submission, and the local lock
// service.
type Engine struct {
	tree    *treeclient.Client
	spent   *spentset.Client
	relayer *relayerclient.Client
	locks   *lockmgr.Manager
	prover  Prover
	cfg     Config
	log     *logrus.Logger
}

// New builds an Engine. log defaults to a discard-level logger when nil.
func New(tree *treeclient.Client, spent *spentset.Client, relayer *relayerclient.Client, locks *lockmgr.Manager, prover Prover, cfg Config, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Engine{
		tree:    tree,
		spent:   spent,
		relayer: relayer,
		locks:   locks,
		prover:  prover,
		cfg:     cfg,
		log:     log,
	}
}
