package relayerclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"context"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/pkg/types"
)

func TestSubmitDepositPostsToNativePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"signature":"sig1","success":true}`))
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	resp, err := c.SubmitDeposit(context.Background(), types.DepositRequest{SignedTransaction: "abc"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/deposit" {
		t.Errorf("expected /deposit, got %s", gotPath)
	}
	if !resp.Success || resp.Signature != "sig1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSubmitDepositSPLUsesSPLPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"signature":"sig2","success":true}`))
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	_, err := c.SubmitDeposit(context.Background(), types.DepositRequest{SignedTransaction: "abc"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/deposit/spl" {
		t.Errorf("expected /deposit/spl, got %s", gotPath)
	}
}

func TestSubmitDelayedWithdrawPostsDelayMinutes(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"success":true,"delayedWithdrawalId":5,"executeAt":"2026-08-01T00:00:00Z","delayMinutes":30}`))
	}))
	defer srv.Close()

	delay := uint32(30)
	c := New(httpx.NewClient(srv.URL))
	resp, err := c.SubmitDelayedWithdraw(context.Background(), types.WithdrawParams{DelayMinutes: &delay}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DelayedWithdrawalID != 5 {
		t.Errorf("expected delayedWithdrawalId 5, got %d", resp.DelayedWithdrawalID)
	}
	if gotBody["delayMinutes"] != float64(30) {
		t.Errorf("expected delayMinutes 30 in request body, got %v", gotBody["delayMinutes"])
	}
}

func TestRelayerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/relayer" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"relayer":{"publicKey":"abc123"}}`))
	}))
	defer srv.Close()

	c := New(httpx.NewClient(srv.URL))
	info, err := c.RelayerInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Relayer.PublicKey != "abc123" {
		t.Errorf("unexpected public key: %s", info.Relayer.PublicKey)
	}
}
