package spentset

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/pkg/types"
)

func TestCheckSpentUnspentWhenNeitherMarkerExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.NullifierCheckRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := types.NullifierCheckResponse{Nullifiers: map[string]bool{}}
		for _, id := range req.Nullifiers {
			resp.Nullifiers[id] = false
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	n1 := types.FieldFromBigInt(big.NewInt(1))

	out, err := c.CheckSpent(context.Background(), []types.FieldElement{n1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[n1] {
		t.Error("expected unspent when neither marker exists")
	}
}

func TestCheckSpentSpentWhenEitherMarkerExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.NullifierCheckRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := types.NullifierCheckResponse{Nullifiers: map[string]bool{}}
		for i, id := range req.Nullifiers {
			resp.Nullifiers[id] = i == 1 // only the nullifier1-prefixed identifier exists
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	n1 := types.FieldFromBigInt(big.NewInt(1))

	out, err := c.CheckSpent(context.Background(), []types.FieldElement{n1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out[n1] {
		t.Error("expected spent when either marker exists")
	}
}

func TestCheckSpentChunksLargeBatches(t *testing.T) {
	var callCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		var req types.NullifierCheckRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Nullifiers) > BatchSize {
			t.Errorf("batch too large: %d", len(req.Nullifiers))
		}
		resp := types.NullifierCheckResponse{Nullifiers: map[string]bool{}}
		for _, id := range req.Nullifiers {
			resp.Nullifiers[id] = false
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))

	// BatchSize*2+1 nullifiers, each producing 2 identifiers, forces
	// 5 chunked requests at BatchSize identifiers per request.
	nullifiers := make([]types.FieldElement, BatchSize*2+1)
	for i := range nullifiers {
		nullifiers[i] = types.FieldFromBigInt(big.NewInt(int64(i) + 1))
	}

	_, err := c.CheckSpent(context.Background(), nullifiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if callCount != 5 {
		t.Errorf("expected 5 batched requests, got %d", callCount)
	}
}

func TestCheckPairSpentDetectsSwappedCollision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.NullifierCheckRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := types.NullifierCheckResponse{Nullifiers: map[string]bool{}}
		for i, id := range req.Nullifiers {
			// Mark only the third (swapped) identifier as existing.
			resp.Nullifiers[id] = i == 2
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	n0 := types.FieldFromBigInt(big.NewInt(10))
	n1 := types.FieldFromBigInt(big.NewInt(20))

	spent, err := c.CheckPairSpent(context.Background(), n0, n1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spent {
		t.Error("expected swapped-collision to be detected")
	}
}
