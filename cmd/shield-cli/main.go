// Shield CLI - command-line interface for the client-side shielded
// transaction engine: scanning notes, depositing, and withdrawing against
// a relayer.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/lockmgr"
	"github.com/ccoin/shield/internal/planner"
	"github.com/ccoin/shield/internal/relayerclient"
	"github.com/ccoin/shield/internal/scanner"
	"github.com/ccoin/shield/internal/spentset"
	"github.com/ccoin/shield/internal/treeclient"
	"github.com/ccoin/shield/internal/txcore"
	"github.com/ccoin/shield/internal/witness"
	"github.com/ccoin/shield/pkg/types"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "version":
		fmt.Printf("shield-cli v%s\n", version)

	case "help":
		printUsage()

	case "status":
		cmdStatus(args)

	case "wallet":
		if len(args) < 1 {
			fmt.Println("Usage: shield-cli wallet <subcommand>")
			fmt.Println("Subcommands: new, address")
			os.Exit(1)
		}
		cmdWallet(args)

	case "scan":
		cmdScan(args)

	case "deposit":
		cmdDeposit(args)

	case "withdraw":
		cmdWithdraw(args)

	case "batch-deposit":
		cmdBatchDeposit(args)

	case "batch-withdraw":
		cmdBatchWithdraw(args)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Shield CLI - command-line interface for the shielded transaction engine")
	fmt.Println()
	fmt.Println("Usage: shield-cli <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  version    Show version information")
	fmt.Println("  help       Show this help message")
	fmt.Println("  status     Show relayer status")
	fmt.Println("  wallet     Viewing-key operations (new, address)")
	fmt.Println("  scan       List spendable notes for a viewing key")
	fmt.Println("  deposit    Shield a deposit into the pool")
	fmt.Println("  withdraw   Withdraw a shielded note")
	fmt.Println("  batch-deposit  Shield a deposit too large for one transaction, as fixed denominations")
	fmt.Println("  batch-withdraw Withdraw an amount too large for one transaction, as sequential slices")
	fmt.Println()
	fmt.Println("Use 'shield-cli <command> -h' for a command's flags.")
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// newFlagSet builds a per-subcommand flag.FlagSet named "shield-cli <name>"
// so its usage message reads naturally alongside the top-level dispatch.
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet("shield-cli "+name, flag.ExitOnError)
}

// parseEncryptionKey decodes a 62-character hex string into the note
// encryption / viewing key (spec §4.2's 31-byte wallet-derived secret).
func parseEncryptionKey(s string) ([31]byte, error) {
	var key [31]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return key, fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) != 31 {
		return key, fmt.Errorf("expected 31 bytes, got %d", len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// parseAssetTag accepts "native" or the hex-encoded 32-byte mint
// identifier of an SPL token.
func parseAssetTag(s string) (types.AssetTag, bool, error) {
	if s == "" || s == "native" {
		return types.NativeAssetTag(), false, nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return types.AssetTag{}, false, fmt.Errorf("invalid mint hex: %w", err)
	}
	if len(raw) != 32 {
		return types.AssetTag{}, false, fmt.Errorf("expected 32-byte mint, got %d", len(raw))
	}
	var mint [32]byte
	copy(mint[:], raw)
	return types.AssetTagFromMint(mint), true, nil
}

// parseAddress decodes a base58 Solana address into its 32-byte form.
func parseAddress(label, s string) ([32]byte, error) {
	var out [32]byte
	if s == "" {
		return out, fmt.Errorf("%s is required", label)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("%s: invalid base58: %w", label, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("%s: expected 32 bytes, got %d", label, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func cmdStatus(args []string) {
	fs := newFlagSet("status")
	relayerURL := fs.String("relayer", "http://127.0.0.1:8080", "relayer base URL")
	fs.Parse(args)

	h := httpx.NewClient(*relayerURL)
	rc := relayerclient.New(h)

	info, err := rc.RelayerInfo(context.Background())
	if err != nil {
		fatalf("fetch relayer info: %v", err)
	}

	tree := treeclient.New(h)
	state, err := tree.TreeState(context.Background())
	if err != nil {
		fatalf("fetch tree state: %v", err)
	}

	fmt.Println("Relayer Status:")
	fmt.Printf("  Relayer public key: %s\n", info.Relayer.PublicKey)
	fmt.Printf("  Tree root:          %s\n", state.Root)
	fmt.Printf("  Tree next index:    %d\n", state.NextIndex)
}

func cmdWallet(args []string) {
	switch args[0] {
	case "new":
		seed, err := keypair.Generate()
		if err != nil {
			fatalf("generate keypair: %v", err)
		}
		kp, err := keypair.DeriveDeterministic(seed.PrivateKey)
		if err != nil {
			fatalf("derive keypair: %v", err)
		}
		fmt.Println("New viewing key (keep this secret):")
		fmt.Printf("  Encryption key: %x\n", seed.PrivateKey)
		fmt.Printf("  Owner pubkey:   %s\n", kp.PublicKey)
		fmt.Println()
		fmt.Println("A wallet in production derives this key deterministically")
		fmt.Println("from a signed message (spec §4.2); shield-cli's 'new' draws")
		fmt.Println("it from the system random source instead, as a convenience.")

	case "address":
		fs := newFlagSet("wallet address")
		keyHex := fs.String("key", "", "31-byte encryption key, hex")
		fs.Parse(args[1:])

		key, err := parseEncryptionKey(*keyHex)
		if err != nil {
			fatalf("--key: %v", err)
		}
		kp, err := keypair.DeriveDeterministic(key)
		if err != nil {
			fatalf("derive keypair: %v", err)
		}
		fmt.Printf("Owner pubkey: %s\n", kp.PublicKey)

	default:
		fmt.Printf("Unknown wallet command: %s\n", args[0])
	}
}

func cmdScan(args []string) {
	fs := newFlagSet("scan")
	relayerURL := fs.String("relayer", "http://127.0.0.1:8080", "relayer base URL")
	keyHex := fs.String("key", "", "31-byte encryption key, hex")
	asset := fs.String("asset", "native", "\"native\" or a hex-encoded SPL mint")
	refresh := fs.Bool("refresh", false, "force a full cache refresh instead of an incremental one")
	fs.Parse(args)

	key, err := parseEncryptionKey(*keyHex)
	if err != nil {
		fatalf("--key: %v", err)
	}
	assetTag, _, err := parseAssetTag(*asset)
	if err != nil {
		fatalf("--asset: %v", err)
	}

	h := httpx.NewClient(*relayerURL)
	sc := scanner.New(h, nil, logrus.New())

	notes, err := sc.Scan(context.Background(), key, assetTag, *refresh)
	if err != nil {
		fatalf("scan: %v", err)
	}

	if len(notes) == 0 {
		fmt.Println("No spendable notes.")
		return
	}

	var total uint64
	fmt.Println("Spendable notes:")
	for _, n := range notes {
		fmt.Printf("  index=%-8d amount=%d\n", n.Index, n.Amount)
		total += n.Amount
	}
	fmt.Printf("Total: %d\n", total)
}

// newEngine wires the shared client stack an Execute call needs. prover is
// recompiled fresh per invocation: a long-lived relayer process persists
// its Groth16 setup artifacts across calls, but a one-shot CLI has no
// reason to.
func newEngine(relayerURL string) (*txcore.Engine, error) {
	h := httpx.NewClient(relayerURL)

	fmt.Println("Running the Groth16 trusted setup for the transaction circuit...")
	compiled, err := witness.Setup()
	if err != nil {
		return nil, fmt.Errorf("circuit setup: %w", err)
	}

	return txcore.New(
		treeclient.New(h),
		spentset.New(h),
		relayerclient.New(h),
		lockmgr.NewDefault(),
		compiled,
		txcore.DefaultConfig(),
		logrus.New(),
	), nil
}

func cmdDeposit(args []string) {
	fs := newFlagSet("deposit")
	relayerURL := fs.String("relayer", "http://127.0.0.1:8080", "relayer base URL")
	keyHex := fs.String("key", "", "31-byte encryption key, hex")
	asset := fs.String("asset", "native", "\"native\" or a hex-encoded SPL mint")
	amount := fs.Uint64("amount", 0, "amount to deposit, in base units")
	signedTx := fs.String("signed-tx", "", "a pre-signed, base64-encoded transaction (skips the interactive signing prompt)")
	fs.Parse(args)

	key, err := parseEncryptionKey(*keyHex)
	if err != nil {
		fatalf("--key: %v", err)
	}
	assetTag, spl, err := parseAssetTag(*asset)
	if err != nil {
		fatalf("--asset: %v", err)
	}
	if *amount == 0 {
		fatalf("--amount must be positive")
	}

	owner, err := keypair.DeriveDeterministic(key)
	if err != nil {
		fatalf("derive owner keypair: %v", err)
	}

	engine, err := newEngine(*relayerURL)
	if err != nil {
		fatalf("%v", err)
	}

	req := txcore.Request{
		Action:        planner.ActionDeposit,
		Owner:         owner,
		Amount:        *amount,
		AssetTag:      assetTag,
		SPL:           spl,
		EncryptionKey: key,
		SignDeposit:   interactiveSign(*signedTx),
	}

	fmt.Println("Building proof and submitting deposit...")
	result, err := engine.Execute(context.Background(), req)
	if err != nil {
		fatalf("deposit failed: %v", err)
	}
	printResult(result)
}

func cmdWithdraw(args []string) {
	fs := newFlagSet("withdraw")
	relayerURL := fs.String("relayer", "http://127.0.0.1:8080", "relayer base URL")
	keyHex := fs.String("key", "", "31-byte encryption key, hex")
	asset := fs.String("asset", "native", "\"native\" or a hex-encoded SPL mint")
	amount := fs.Uint64("amount", 0, "amount to withdraw, in base units")
	recipient := fs.String("recipient", "", "base58 recipient address")
	feeRecipient := fs.String("fee-recipient", "", "base58 fee-recipient address")
	delayMinutes := fs.Int("delay-minutes", -1, "schedule a delayed withdrawal this many minutes out, instead of immediate")

	treeAccount := fs.String("tree-account", "", "tree account address")
	treeTokenAccount := fs.String("tree-token-account", "", "tree token account address (SPL only)")
	nullifier0PDA := fs.String("nullifier0-pda", "", "nullifier0 PDA address")
	nullifier1PDA := fs.String("nullifier1-pda", "", "nullifier1 PDA address")
	globalConfigAccount := fs.String("global-config-account", "", "global config account address")
	feeRecipientAccount := fs.String("fee-recipient-account", "", "fee recipient account address")
	mintAddress := fs.String("mint-address", "", "SPL mint address")
	signerTokenAccount := fs.String("signer-token-account", "", "signer token account address (SPL only)")
	recipientTokenAccount := fs.String("recipient-token-account", "", "recipient token account address (SPL only)")
	treeAta := fs.String("tree-ata", "", "tree associated token account (SPL only)")
	feeRecipientAta := fs.String("fee-recipient-ata", "", "fee recipient associated token account (SPL only)")
	lookupTable := fs.String("lookup-table", "", "address lookup table address")
	fs.Parse(args)

	key, err := parseEncryptionKey(*keyHex)
	if err != nil {
		fatalf("--key: %v", err)
	}
	assetTag, spl, err := parseAssetTag(*asset)
	if err != nil {
		fatalf("--asset: %v", err)
	}
	if *amount == 0 {
		fatalf("--amount must be positive")
	}
	recipientAddr, err := parseAddress("--recipient", *recipient)
	if err != nil {
		fatalf("%v", err)
	}
	feeRecipientAddr, err := parseAddress("--fee-recipient", *feeRecipient)
	if err != nil {
		fatalf("%v", err)
	}

	owner, err := keypair.DeriveDeterministic(key)
	if err != nil {
		fatalf("derive owner keypair: %v", err)
	}

	h := httpx.NewClient(*relayerURL)
	sc := scanner.New(h, nil, logrus.New())
	spendable, err := sc.Scan(context.Background(), key, assetTag, false)
	if err != nil {
		fatalf("scan for spendable notes: %v", err)
	}
	if len(spendable) == 0 {
		fatalf("no spendable notes for this key and asset")
	}

	engine, err := newEngine(*relayerURL)
	if err != nil {
		fatalf("%v", err)
	}

	req := txcore.Request{
		Action:       planner.ActionWithdraw,
		Owner:        owner,
		Amount:       *amount,
		AssetTag:     assetTag,
		SPL:          spl,
		Spendable:    spendable,
		Recipient:    recipientAddr,
		FeeRecipient: feeRecipientAddr,
		Accounts: txcore.WithdrawAccounts{
			TreeAccount:           *treeAccount,
			TreeTokenAccount:      *treeTokenAccount,
			Nullifier0PDA:         *nullifier0PDA,
			Nullifier1PDA:         *nullifier1PDA,
			GlobalConfigAccount:   *globalConfigAccount,
			FeeRecipientAccount:   *feeRecipientAccount,
			MintAddress:           *mintAddress,
			SignerTokenAccount:    *signerTokenAccount,
			RecipientTokenAccount: *recipientTokenAccount,
			TreeAta:               *treeAta,
			FeeRecipientAta:       *feeRecipientAta,
			LookupTableAddress:    *lookupTable,
		},
	}
	if *delayMinutes >= 0 {
		d := uint32(*delayMinutes)
		req.DelayMinutes = &d
	}

	fmt.Println("Building proof and submitting withdrawal...")
	result, err := engine.Execute(context.Background(), req)
	if err != nil {
		fatalf("withdrawal failed: %v", err)
	}
	printResult(result)
}

// cmdBatchDeposit shields a deposit too large for a single transaction by
// decomposing it into fixed denominations (spec §4.7) and executing one
// fresh-deposit transaction per slice.
func cmdBatchDeposit(args []string) {
	fs := newFlagSet("batch-deposit")
	relayerURL := fs.String("relayer", "http://127.0.0.1:8080", "relayer base URL")
	keyHex := fs.String("key", "", "31-byte encryption key, hex")
	asset := fs.String("asset", "native", "\"native\" or a hex-encoded SPL mint")
	amount := fs.Uint64("amount", 0, "total amount to deposit, in base units")
	denomination := fs.Uint64("denomination", 0, "base units in one whole unit of the asset (e.g. 1000000000 for 9 decimals); slices are 100, 10, 1, 0.1, 0.01 and 0.001 times this, plus one slice for any remainder")
	signedTx := fs.String("signed-tx", "", "a pre-signed, base64-encoded transaction reused for every slice's prompt (rarely useful; omit to sign each slice interactively)")
	fs.Parse(args)

	key, err := parseEncryptionKey(*keyHex)
	if err != nil {
		fatalf("--key: %v", err)
	}
	assetTag, spl, err := parseAssetTag(*asset)
	if err != nil {
		fatalf("--asset: %v", err)
	}
	if *amount == 0 {
		fatalf("--amount must be positive")
	}
	if *denomination == 0 {
		fatalf("--denomination must be positive")
	}

	owner, err := keypair.DeriveDeterministic(key)
	if err != nil {
		fatalf("derive owner keypair: %v", err)
	}

	engine, err := newEngine(*relayerURL)
	if err != nil {
		fatalf("%v", err)
	}

	req := txcore.Request{
		Action:        planner.ActionDeposit,
		Owner:         owner,
		Amount:        *amount,
		AssetTag:      assetTag,
		SPL:           spl,
		EncryptionKey: key,
		SignDeposit:   interactiveSign(*signedTx),
	}

	fmt.Println("Building proofs and submitting batch deposit...")
	result, err := engine.ExecuteBatchDeposit(context.Background(), req, *denomination)
	if err != nil {
		fatalf("batch deposit failed: %v", err)
	}
	printBatchResult(result)
}

// cmdBatchWithdraw covers a withdrawal too large for a single transaction
// by slicing it into sequential withdrawals (spec §4.7's greedy
// largest-first pairing).
func cmdBatchWithdraw(args []string) {
	fs := newFlagSet("batch-withdraw")
	relayerURL := fs.String("relayer", "http://127.0.0.1:8080", "relayer base URL")
	keyHex := fs.String("key", "", "31-byte encryption key, hex")
	asset := fs.String("asset", "native", "\"native\" or a hex-encoded SPL mint")
	amount := fs.Uint64("amount", 0, "total amount to withdraw, in base units")
	recipient := fs.String("recipient", "", "base58 recipient address")
	feeRecipient := fs.String("fee-recipient", "", "base58 fee-recipient address")

	treeAccount := fs.String("tree-account", "", "tree account address")
	treeTokenAccount := fs.String("tree-token-account", "", "tree token account address (SPL only)")
	nullifier0PDA := fs.String("nullifier0-pda", "", "nullifier0 PDA address")
	nullifier1PDA := fs.String("nullifier1-pda", "", "nullifier1 PDA address")
	globalConfigAccount := fs.String("global-config-account", "", "global config account address")
	feeRecipientAccount := fs.String("fee-recipient-account", "", "fee recipient account address")
	mintAddress := fs.String("mint-address", "", "SPL mint address")
	signerTokenAccount := fs.String("signer-token-account", "", "signer token account address (SPL only)")
	recipientTokenAccount := fs.String("recipient-token-account", "", "recipient token account address (SPL only)")
	treeAta := fs.String("tree-ata", "", "tree associated token account (SPL only)")
	feeRecipientAta := fs.String("fee-recipient-ata", "", "fee recipient associated token account (SPL only)")
	lookupTable := fs.String("lookup-table", "", "address lookup table address")
	fs.Parse(args)

	key, err := parseEncryptionKey(*keyHex)
	if err != nil {
		fatalf("--key: %v", err)
	}
	assetTag, spl, err := parseAssetTag(*asset)
	if err != nil {
		fatalf("--asset: %v", err)
	}
	if *amount == 0 {
		fatalf("--amount must be positive")
	}
	recipientAddr, err := parseAddress("--recipient", *recipient)
	if err != nil {
		fatalf("%v", err)
	}
	feeRecipientAddr, err := parseAddress("--fee-recipient", *feeRecipient)
	if err != nil {
		fatalf("%v", err)
	}

	owner, err := keypair.DeriveDeterministic(key)
	if err != nil {
		fatalf("derive owner keypair: %v", err)
	}

	h := httpx.NewClient(*relayerURL)
	sc := scanner.New(h, nil, logrus.New())
	spendable, err := sc.Scan(context.Background(), key, assetTag, false)
	if err != nil {
		fatalf("scan for spendable notes: %v", err)
	}
	if len(spendable) == 0 {
		fatalf("no spendable notes for this key and asset")
	}

	engine, err := newEngine(*relayerURL)
	if err != nil {
		fatalf("%v", err)
	}

	req := txcore.Request{
		Action:       planner.ActionWithdraw,
		Owner:        owner,
		Amount:       *amount,
		AssetTag:     assetTag,
		SPL:          spl,
		Spendable:    spendable,
		Recipient:    recipientAddr,
		FeeRecipient: feeRecipientAddr,
		Accounts: txcore.WithdrawAccounts{
			TreeAccount:           *treeAccount,
			TreeTokenAccount:      *treeTokenAccount,
			Nullifier0PDA:         *nullifier0PDA,
			Nullifier1PDA:         *nullifier1PDA,
			GlobalConfigAccount:   *globalConfigAccount,
			FeeRecipientAccount:   *feeRecipientAccount,
			MintAddress:           *mintAddress,
			SignerTokenAccount:    *signerTokenAccount,
			RecipientTokenAccount: *recipientTokenAccount,
			TreeAta:               *treeAta,
			FeeRecipientAta:       *feeRecipientAta,
			LookupTableAddress:    *lookupTable,
		},
	}

	fmt.Println("Building proofs and submitting batch withdrawal...")
	result, err := engine.ExecuteBatchWithdraw(context.Background(), req)
	if err != nil {
		fatalf("batch withdrawal failed: %v", err)
	}
	printBatchResult(result)
}

// interactiveSign builds a SignDepositFunc. When presigned is non-empty it
// is returned unconditionally; otherwise the deposit instruction payload
// is printed and the caller is prompted to paste back a signed,
// base64-encoded transaction built from it (spec: building and signing
// the wrapping blockchain transaction is an external wallet's job).
func interactiveSign(presigned string) txcore.SignDepositFunc {
	return func(ctx context.Context, payload []byte) (string, error) {
		if presigned != "" {
			return presigned, nil
		}

		fmt.Println()
		fmt.Println("Deposit instruction payload (base64), sign this with your wallet:")
		fmt.Println(base64.StdEncoding.EncodeToString(payload))
		fmt.Print("Paste the signed, base64-encoded transaction: ")

		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read signed transaction: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return "", fmt.Errorf("no signed transaction supplied")
		}
		return line, nil
	}
}

func printResult(r *txcore.Result) {
	fmt.Println()
	fmt.Printf("State: %s\n", r.State)
	if r.Signature != "" {
		fmt.Printf("Signature: %s\n", r.Signature)
	}
	if r.DelayedWithdrawalID != 0 {
		fmt.Printf("Delayed withdrawal ID: %d\n", r.DelayedWithdrawalID)
		fmt.Printf("Executes at: %s\n", r.ExecuteAt)
	}
	if r.RetryCount > 0 {
		fmt.Printf("Restarted %d time(s) before submitting.\n", r.RetryCount)
	}
	if r.Warning != "" {
		fmt.Printf("Warning: %s\n", r.Warning)
	}
}

func printBatchResult(r *txcore.BatchResult) {
	fmt.Println()
	fmt.Printf("Requested: %d\n", r.Requested)
	fmt.Printf("Covered:   %d\n", r.Covered)
	if r.IsPartial {
		fmt.Println("Partial: true (not all of the requested amount was covered)")
	}
	for i, sig := range r.Signatures {
		fmt.Printf("  slice %d signature: %s\n", i, sig)
	}
}

