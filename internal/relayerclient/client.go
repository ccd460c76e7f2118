// Package relayerclient wraps the submission and relayer-info endpoints
// of the relayer HTTP API (spec §6): /deposit, /deposit/spl, /withdraw,
// /withdraw/spl, their delayed variants, and /relayer.
package relayerclient

import (
	"context"

	"github.com/ccoin/shield/internal/httpx"
	"github.com/ccoin/shield/pkg/types"
)

// Client issues transaction submissions against the relayer.
type Client struct {
	http *httpx.Client
}

// New wraps an httpx.Client.
func New(h *httpx.Client) *Client {
	return &Client{http: h}
}

// SubmitDeposit posts a signed deposit transaction to /deposit (native) or
// /deposit/spl (token), immediate submission only — deposits have no
// delayed variant (spec §6).
func (c *Client) SubmitDeposit(ctx context.Context, req types.DepositRequest, spl bool) (types.SubmitResponse, error) {
	path := "/deposit"
	if spl {
		path = "/deposit/spl"
	}
	var out types.SubmitResponse
	if err := c.http.PostJSON(ctx, path, req, &out); err != nil {
		return types.SubmitResponse{}, err
	}
	return out, nil
}

// SubmitWithdraw posts withdrawal params to /withdraw (native) or
// /withdraw/spl (token) for immediate submission. params.DelayMinutes
// must be nil; use SubmitDelayedWithdraw for a scheduled withdrawal.
func (c *Client) SubmitWithdraw(ctx context.Context, params types.WithdrawParams, spl bool) (types.SubmitResponse, error) {
	path := "/withdraw"
	if spl {
		path = "/withdraw/spl"
	}
	var out types.SubmitResponse
	if err := c.http.PostJSON(ctx, path, params, &out); err != nil {
		return types.SubmitResponse{}, err
	}
	return out, nil
}

// SubmitDelayedWithdraw posts withdrawal params with DelayMinutes set to
// /withdraw/delayed (native) or /withdraw/spl/delayed (token). The relayer
// response carries a scheduled identifier and execution timestamp rather
// than an on-chain signature; this call only confirms the schedule was
// accepted (spec §4.9 step 4: fire-and-forget for the network round trip).
func (c *Client) SubmitDelayedWithdraw(ctx context.Context, params types.WithdrawParams, spl bool) (types.DelayedSubmitResponse, error) {
	if params.DelayMinutes == nil {
		delay := uint32(0)
		params.DelayMinutes = &delay
	}
	path := "/withdraw/delayed"
	if spl {
		path = "/withdraw/spl/delayed"
	}
	var out types.DelayedSubmitResponse
	if err := c.http.PostJSON(ctx, path, params, &out); err != nil {
		return types.DelayedSubmitResponse{}, err
	}
	return out, nil
}

// RelayerInfo fetches the relayer's public key from GET /relayer.
func (c *Client) RelayerInfo(ctx context.Context) (types.RelayerInfoResponse, error) {
	var out types.RelayerInfoResponse
	if err := c.http.Get(ctx, "/relayer", &out); err != nil {
		return types.RelayerInfoResponse{}, err
	}
	return out, nil
}
