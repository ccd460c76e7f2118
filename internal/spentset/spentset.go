// Package spentset checks whether nullifier markers already exist on
// chain, via the relayer's batched existence-check endpoint (spec §4.6).
package spentset

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/pkg/types"
)

// BatchSize caps how many marker identifiers are sent in a single
// /nullifiers/check request.
const BatchSize = 100

// DomainSeparator0 and DomainSeparator1 are the two fixed prefixes the
// on-chain program combines with a nullifier's byte-reversed encoding to
// derive its marker identifier.
const (
	DomainSeparator0 = "nullifier0"
	DomainSeparator1 = "nullifier1"
)

// Client queries nullifier marker existence in batches.
type Client struct {
	http *httpx.Client
}

// New wraps an httpx.Client for nullifier existence checks.
func New(h *httpx.Client) *Client {
	return &Client{http: h}
}

// identifier renders the marker identifier for a nullifier under one of
// the two domain separators: the prefix concatenated with the
// little-endian-reversed big-endian field encoding, hex-encoded.
func identifier(sep string, n types.FieldElement) string {
	b := n.Bytes()
	rev := make([]byte, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = v
	}
	return sep + ":" + hex.EncodeToString(rev)
}

// checkIdentifiers queries existence for a flat list of marker
// identifiers, chunked to BatchSize.
func (c *Client) checkIdentifiers(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))

	for start := 0; start < len(ids); start += BatchSize {
		end := start + BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		var resp types.NullifierCheckResponse
		req := types.NullifierCheckRequest{Nullifiers: chunk}
		if err := c.http.PostJSON(ctx, "/nullifiers/check", req, &resp); err != nil {
			return nil, fmt.Errorf("spentset: check nullifiers: %w", err)
		}
		for id, spent := range resp.Nullifiers {
			result[id] = spent
		}
	}

	return result, nil
}

// CheckSpent reports, for each candidate nullifier, whether either of its
// two domain-separated marker identifiers already exists on chain (spec
// §4.5 step 6): a nullifier may have been consumed from either input slot
// of some past transaction, so both must be checked.
func (c *Client) CheckSpent(ctx context.Context, nullifiers []types.FieldElement) (map[types.FieldElement]bool, error) {
	ids := make([]string, 0, len(nullifiers)*2)
	for _, n := range nullifiers {
		ids = append(ids, identifier(DomainSeparator0, n), identifier(DomainSeparator1, n))
	}

	existence, err := c.checkIdentifiers(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make(map[types.FieldElement]bool, len(nullifiers))
	for _, n := range nullifiers {
		result[n] = existence[identifier(DomainSeparator0, n)] || existence[identifier(DomainSeparator1, n)]
	}
	return result, nil
}

// CheckPairSpent performs the program's full four-way cross-check for a
// transaction's two input nullifiers (spec §4.6): each of n0 and n1 is
// checked under both domain separators, including the swapped
// combinations, so a nullifier cannot be replayed by reassigning it to
// the other input slot. It reports true if any of the four identifiers
// already exists.
func (c *Client) CheckPairSpent(ctx context.Context, n0, n1 types.FieldElement) (bool, error) {
	ids := []string{
		identifier(DomainSeparator0, n0),
		identifier(DomainSeparator1, n1),
		identifier(DomainSeparator0, n1),
		identifier(DomainSeparator1, n0),
	}

	existence, err := c.checkIdentifiers(ctx, ids)
	if err != nil {
		return false, err
	}

	for _, id := range ids {
		if existence[id] {
			return true, nil
		}
	}
	return false, nil
}
