package scanner

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/internal/note"
	"github.com/ccoin/shield/internal/noteenc"
	"github.com/ccoin/shield/pkg/types"
)

// buildEnvelope encrypts a note's fields under encKey for embedding in a
// fake relayer response.
func buildEnvelope(t *testing.T, encKey [31]byte, amount uint64, blinding types.FieldElement, index uint32, tag types.AssetTag) string {
	t.Helper()
	env, err := noteenc.Encrypt(encKey, noteenc.Plaintext{
		Amount:   amount,
		Blinding: blinding,
		Index:    index,
		AssetTag: tag,
	})
	if err != nil {
		t.Fatalf("encrypt fixture note: %v", err)
	}
	return hex.EncodeToString(env)
}

func newTestServer(t *testing.T, ciphertexts []string, nextIndex uint32, spentNullifiers map[string]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/merkle/root", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"root":"0x01","nextIndex":%d}`, nextIndex)
	})

	mux.HandleFunc("/utxos/range", func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		end, _ := strconv.Atoi(r.URL.Query().Get("end"))
		if end > len(ciphertexts) {
			end = len(ciphertexts)
		}
		var slice []string
		if start < end {
			slice = ciphertexts[start:end]
		}
		resp := struct {
			EncryptedOutputs []string `json:"encrypted_outputs"`
			Total            uint32   `json:"total"`
			HasMore          bool     `json:"hasMore"`
		}{EncryptedOutputs: slice, Total: uint32(len(ciphertexts)), HasMore: false}
		json.NewEncoder(w).Encode(resp)
	})

	var proofCalls int32
	mux.HandleFunc("/merkle/proof/", func(w http.ResponseWriter, r *http.Request) {
		idx := atomic.AddInt32(&proofCalls, 1) - 1
		fmt.Fprintf(w, `{"pathElements":[],"pathIndices":[],"index":%d,"root":"0x1","nextIndex":%d}`, idx, nextIndex)
	})

	mux.HandleFunc("/nullifiers/check", func(w http.ResponseWriter, r *http.Request) {
		var req types.NullifierCheckRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := types.NullifierCheckResponse{Nullifiers: map[string]bool{}}
		for _, id := range req.Nullifiers {
			resp.Nullifiers[id] = spentNullifiers[id]
		}
		json.NewEncoder(w).Encode(resp)
	})

	return httptest.NewServer(mux)
}

func TestScanFindsOwnedNote(t *testing.T) {
	var encKey [31]byte
	encKey[0] = 9

	kp, err := keypair.DeriveDeterministic(encKey)
	if err != nil {
		t.Fatalf("derive keypair: %v", err)
	}

	blinding := types.BlindingFromInt(555_000_000)
	tag := types.NativeAssetTag()

	ct := buildEnvelope(t, encKey, 1000, blinding, 0, tag)

	srv := newTestServer(t, []string{ct}, 1, nil)
	defer srv.Close()

	s := New(httpx.NewClient(srv.URL), nil, nil)
	notes, err := s.Scan(context.Background(), encKey, tag, false)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if notes[0].Amount != 1000 {
		t.Errorf("expected amount 1000, got %d", notes[0].Amount)
	}
	if notes[0].OwnerPubKey != kp.PublicKey {
		t.Errorf("note owner pubkey mismatch")
	}
}

func TestScanSkipsForeignCiphertext(t *testing.T) {
	var ownerKey, otherKey [31]byte
	ownerKey[0] = 1
	otherKey[0] = 2

	tag := types.NativeAssetTag()
	ct := buildEnvelope(t, otherKey, 500, types.BlindingFromInt(100_000_000), 0, tag)

	srv := newTestServer(t, []string{ct}, 1, nil)
	defer srv.Close()

	s := New(httpx.NewClient(srv.URL), nil, nil)
	notes, err := s.Scan(context.Background(), ownerKey, tag, false)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected 0 notes for foreign ciphertext, got %d", len(notes))
	}
}

func TestScanSkipsZeroAmount(t *testing.T) {
	var encKey [31]byte
	encKey[0] = 3
	tag := types.NativeAssetTag()
	ct := buildEnvelope(t, encKey, 0, types.BlindingFromInt(100_000_000), 0, tag)

	srv := newTestServer(t, []string{ct}, 1, nil)
	defer srv.Close()

	s := New(httpx.NewClient(srv.URL), nil, nil)
	notes, err := s.Scan(context.Background(), encKey, tag, false)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected zero-amount note to be discarded, got %d", len(notes))
	}
}

func TestScanExcludesSpentNote(t *testing.T) {
	var encKey [31]byte
	encKey[0] = 4
	tag := types.NativeAssetTag()
	blinding := types.BlindingFromInt(200_000_000)
	ct := buildEnvelope(t, encKey, 777, blinding, 0, tag)

	kp, _ := keypair.DeriveDeterministic(encKey)
	n := types.Note{Amount: 777, Blinding: blinding, OwnerPubKey: kp.PublicKey, AssetTag: tag, Index: 0}
	commitment, _ := note.Commitment(n)
	nullifier, _ := note.Nullifier(commitment, 0, kp.PrivateKeyField())

	nb := nullifier.Bytes()
	rev := make([]byte, len(nb))
	for i, b := range nb {
		rev[len(nb)-1-i] = b
	}
	id0 := "nullifier0:" + hex.EncodeToString(rev)

	srv := newTestServer(t, []string{ct}, 1, map[string]bool{id0: true})
	defer srv.Close()

	s := New(httpx.NewClient(srv.URL), nil, nil)
	notes, err := s.Scan(context.Background(), encKey, tag, false)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected spent note to be excluded, got %d", len(notes))
	}
}
