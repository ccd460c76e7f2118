// Package scanner implements the note scanner of spec §4.5: it fetches
// the encrypted-output stream in ranges, trial-decrypts in parallel,
// corrects indices from Merkle inclusion proofs, filters spent notes, and
// caches the fetched ciphertext range across calls.
package scanner

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/note"
	"github.com/ccoin/shield/internal/noteenc"
	"github.com/ccoin/shield/internal/spentset"
	"github.com/ccoin/shield/internal/treeclient"
	"github.com/ccoin/shield/pkg/types"
)

// RangeWindow is the contiguous ciphertext-range fetch width (spec §4.5
// step 3, "implementation-tunable").
const RangeWindow = 1000

// DecryptBatch is the trial-decryption parallelism width (spec §4.5 step 4).
const DecryptBatch = 500

// Scanner fetches, caches, and filters note candidates for a single tree.
type Scanner struct {
	http     *httpx.Client
	tree     *treeclient.Client
	spent    *spentset.Client
	store    ScannerStore
	log      *logrus.Logger
	inflight singleflight.Group
}

// New builds a Scanner. store defaults to an in-memory cache when nil;
// log defaults to a discard logger when nil.
func New(h *httpx.Client, store ScannerStore, log *logrus.Logger) *Scanner {
	if store == nil {
		store = NewInMemoryStore()
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Scanner{
		http:  h,
		tree:  treeclient.New(h),
		spent: spentset.New(h),
		store: store,
		log:   log,
	}
}

// Scan returns every note decryptable under encryptionKey, with a
// positive amount and matching assetTag, whose commitment has a valid
// Merkle inclusion proof and whose nullifier markers are both absent on
// chain (spec §4.5). Concurrent callers share a single in-flight cache
// refresh; the shared ciphertext set is then filtered per caller key.
func (s *Scanner) Scan(ctx context.Context, encryptionKey [31]byte, assetTag types.AssetTag, forceRefresh bool) ([]types.Note, error) {
	key := "scan"
	if forceRefresh {
		key = "scan-force"
	}

	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		return s.refreshCache(ctx, forceRefresh)
	})
	if err != nil {
		return nil, err
	}

	entries := v.([]cacheEntry)

	kp, err := keypair.DeriveDeterministic(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("scanner: derive viewing keypair: %w", err)
	}

	candidates, err := s.trialDecrypt(entries, encryptionKey, kp.PublicKey, assetTag)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if err := s.correctIndices(ctx, candidates); err != nil {
		return nil, err
	}

	return s.filterSpent(ctx, candidates, kp)
}

// refreshCache applies spec §4.5 steps 1–3: fetch tree state, then either
// incrementally extend the cache or, on force-refresh, clear and refetch
// the full range in parallel windows.
func (s *Scanner) refreshCache(ctx context.Context, forceRefresh bool) ([]cacheEntry, error) {
	if forceRefresh {
		if err := s.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("scanner: clear cache: %w", err)
		}
	}

	state, err := s.tree.TreeState(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner: fetch tree state: %w", err)
	}

	cached, lastFetched, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner: load cache: %w", err)
	}

	var fresh []cacheEntry
	if len(cached) > 0 && !forceRefresh {
		fresh, err = s.fetchRange(ctx, lastFetched, state.NextIndex)
	} else {
		fresh, err = s.fetchRangeWindowed(ctx, 0, state.NextIndex)
	}
	if err != nil {
		return nil, err
	}

	if len(fresh) > 0 {
		if err := s.store.Append(ctx, fresh, state.NextIndex); err != nil {
			return nil, fmt.Errorf("scanner: append cache: %w", err)
		}
	}

	all, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner: reload cache: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"cached_ciphertexts": len(all),
		"next_index":         state.NextIndex,
	}).Debug("scanner: cache refreshed")

	return all, nil
}

// fetchRangeWindowed fetches [start, end) in contiguous RangeWindow-wide
// windows, issued in parallel.
func (s *Scanner) fetchRangeWindowed(ctx context.Context, start, end uint32) ([]cacheEntry, error) {
	if end <= start {
		return nil, nil
	}

	type window struct{ lo, hi uint32 }
	var windows []window
	for lo := start; lo < end; lo += RangeWindow {
		hi := lo + RangeWindow
		if hi > end {
			hi = end
		}
		windows = append(windows, window{lo, hi})
	}

	results := make([][]cacheEntry, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		i, w := i, w
		g.Go(func() error {
			entries, err := s.fetchRange(gctx, w.lo, w.hi)
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []cacheEntry
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// fetchRange fetches one [start, end) range of ciphertexts, accepting
// either known /utxos/range response shape (spec §6).
func (s *Scanner) fetchRange(ctx context.Context, start, end uint32) ([]cacheEntry, error) {
	path := fmt.Sprintf("/utxos/range?start=%d&end=%d", start, end)
	raw, err := s.http.GetRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("scanner: fetch range [%d,%d): %w", start, end, err)
	}

	parsed, err := types.ParseUTXORangeResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("scanner: parse range response: %w", err)
	}

	var entries []cacheEntry
	if parsed.Records != nil {
		for _, r := range parsed.Records {
			entries = append(entries, cacheEntry{Index: r.Index, Ciphertext: r.EncryptedOutput})
		}
		return entries, nil
	}

	// Flat ciphertext list: the response gives no per-entry index, so
	// entries are assigned sequential indices starting at the requested
	// range's lower bound (spec §6 note: ordering within a range is not
	// guaranteed across responses, only within one).
	for i, ct := range parsed.Ciphertexts {
		entries = append(entries, cacheEntry{Index: start + uint32(i), Ciphertext: ct})
	}
	return entries, nil
}

// candidate is a surviving decrypted note plus the ciphertext it came
// from, tracked for duplicate-identity filtering.
type candidate struct {
	note       types.Note
	ciphertext string
}

// trialDecrypt implements spec §4.5 step 4: attempt decryption of every
// cached ciphertext in parallel batches, discarding auth failures,
// zero-amount notes, asset-tag mismatches, and duplicate ciphertexts.
func (s *Scanner) trialDecrypt(entries []cacheEntry, encryptionKey [31]byte, ownerPubKey types.FieldElement, assetTag types.AssetTag) ([]candidate, error) {
	seen := make(map[string]bool, len(entries))
	var deduped []cacheEntry
	for _, e := range entries {
		if seen[e.Ciphertext] {
			continue
		}
		seen[e.Ciphertext] = true
		deduped = append(deduped, e)
	}

	results := make([]*candidate, len(deduped))

	for start := 0; start < len(deduped); start += DecryptBatch {
		end := start + DecryptBatch
		if end > len(deduped) {
			end = len(deduped)
		}
		batch := deduped[start:end]

		var g errgroup.Group
		for i, e := range batch {
			i, e := i, e
			g.Go(func() error {
				c, ok := s.decryptOne(e, encryptionKey, ownerPubKey, assetTag)
				if ok {
					results[start+i] = c
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var out []candidate
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *Scanner) decryptOne(e cacheEntry, encryptionKey [31]byte, ownerPubKey types.FieldElement, assetTag types.AssetTag) (*candidate, bool) {
	raw, err := decodeCiphertext(e.Ciphertext)
	if err != nil {
		return nil, false
	}

	pt, err := noteenc.Decrypt(encryptionKey, raw)
	if err != nil {
		return nil, false
	}
	if pt.Amount == 0 {
		return nil, false
	}
	if pt.AssetTag != assetTag {
		return nil, false
	}

	n := types.Note{
		Amount:      pt.Amount,
		Blinding:    pt.Blinding,
		OwnerPubKey: ownerPubKey,
		AssetTag:    pt.AssetTag,
		Index:       e.Index,
	}
	return &candidate{note: n, ciphertext: e.Ciphertext}, true
}

// correctIndices implements spec §4.5 step 5: overwrite each candidate's
// index with the authoritative value from its commitment's inclusion
// proof. This is fetched in parallel, grouped as a single errgroup batch
// since inclusion-proof lookups are embarrassingly parallel I/O.
func (s *Scanner) correctIndices(ctx context.Context, candidates []candidate) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range candidates {
		i := i
		g.Go(func() error {
			commitment, err := note.Commitment(candidates[i].note)
			if err != nil {
				return fmt.Errorf("scanner: compute commitment: %w", err)
			}
			proof, err := s.tree.InclusionProof(gctx, commitment)
			if err != nil {
				return fmt.Errorf("scanner: fetch inclusion proof: %w", err)
			}
			candidates[i].note.Index = proof.Index
			return nil
		})
	}
	return g.Wait()
}

// filterSpent implements spec §4.5 step 6: compute each candidate's
// nullifier and discard any for which either of its two marker
// identifiers already exists.
func (s *Scanner) filterSpent(ctx context.Context, candidates []candidate, kp *keypair.Keypair) ([]types.Note, error) {
	nullifiers := make([]types.FieldElement, len(candidates))
	for i, c := range candidates {
		commitment, err := note.Commitment(c.note)
		if err != nil {
			return nil, fmt.Errorf("scanner: compute commitment: %w", err)
		}
		n, err := note.Nullifier(commitment, c.note.Index, kp.PrivateKeyField())
		if err != nil {
			return nil, fmt.Errorf("scanner: compute nullifier: %w", err)
		}
		nullifiers[i] = n
	}

	spent, err := s.spent.CheckSpent(ctx, nullifiers)
	if err != nil {
		return nil, fmt.Errorf("scanner: check spent status: %w", err)
	}

	var out []types.Note
	for i, c := range candidates {
		if !spent[nullifiers[i]] {
			out = append(out, c.note)
		}
	}
	return out, nil
}
