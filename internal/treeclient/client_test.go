package treeclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/pkg/types"
)

func TestTreeState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/merkle/root" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"root":"0x01","nextIndex":7}`))
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	state, err := c.TreeState(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.NextIndex != 7 {
		t.Errorf("expected nextIndex 7, got %d", state.NextIndex)
	}
}

func TestInclusionProofUsesRelayerIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pathElements":[],"pathIndices":[],"index":42,"root":"0x0","nextIndex":43}`))
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	proof, err := c.InclusionProof(context.Background(), types.ZeroField)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proof.Index != 42 {
		t.Errorf("expected authoritative index 42, got %d", proof.Index)
	}
}
