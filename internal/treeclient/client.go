// Package treeclient fetches Merkle tree state and inclusion proofs from
// the relayer (spec §4.9, §6).
package treeclient

import (
	"context"
	"fmt"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/pkg/types"
)

// Client reads tree state from a relayer endpoint.
type Client struct {
	http *httpx.Client
}

// New wraps an httpx.Client for tree-state and inclusion-proof lookups.
func New(h *httpx.Client) *Client {
	return &Client{http: h}
}

// TreeState fetches the current Merkle root and next free leaf index.
func (c *Client) TreeState(ctx context.Context) (types.TreeState, error) {
	var out types.TreeState
	if err := c.http.Get(ctx, "/merkle/root", &out); err != nil {
		return types.TreeState{}, fmt.Errorf("treeclient: fetch tree state: %w", err)
	}
	return out, nil
}

// InclusionProof fetches the Merkle path for a commitment, addressed by
// its decimal field-element string. The relayer's reported Index is
// authoritative and must replace any candidate index the caller had
// assumed for this leaf.
func (c *Client) InclusionProof(ctx context.Context, commitment types.FieldElement) (types.InclusionProof, error) {
	var out types.InclusionProof
	path := fmt.Sprintf("/merkle/proof/%s", commitment.BigInt().String())
	if err := c.http.Get(ctx, path, &out); err != nil {
		return types.InclusionProof{}, fmt.Errorf("treeclient: fetch inclusion proof: %w", err)
	}
	return out, nil
}
