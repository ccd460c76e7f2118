package types

import "encoding/json"

// TreeState is the external indexer's view of the commitment tree: a
// current root and the next free leaf index. It is mutable and monotonic
// in NextIndex (spec §3).
type TreeState struct {
	Root      FieldElement `json:"root"`
	NextIndex uint32       `json:"nextIndex"`
}

// InclusionProof is the Merkle path for a single commitment, as reported by
// the relayer's /merkle/proof/{commitment} endpoint. Index is authoritative
// for the commitment's leaf position; callers must overwrite any candidate
// index with this value before deriving a nullifier (spec §4.5 step 5).
type InclusionProof struct {
	PathElements [TreeDepth]FieldElement `json:"pathElements"`
	PathIndices  [TreeDepth]uint8        `json:"pathIndices"`
	Index        uint32                  `json:"index"`
	Root         FieldElement            `json:"root"`
	NextIndex    uint32                  `json:"nextIndex"`
}

// EncryptedOutput is one entry of the relayer's encrypted-output stream,
// addressed by its leaf position.
type EncryptedOutput struct {
	Commitment      *FieldElement `json:"commitment,omitempty"`
	EncryptedOutput string        `json:"encrypted_output"`
	Index           uint32        `json:"index"`
	Nullifier       *FieldElement `json:"nullifier,omitempty"`
}

// UTXORangeResponse models the two known shapes of a /utxos/range response:
// either a flat array of records, or an object carrying a ciphertext-only
// list plus pagination metadata. Exactly one of Records or Ciphertexts is
// populated after ParseUTXORangeResponse.
type UTXORangeResponse struct {
	Records     []EncryptedOutput
	Ciphertexts []string
	Total       uint32
	HasMore     bool
}

// utxoRangeRecordShape is the array-of-records /utxos/range variant.
type utxoRangeRecordShape []EncryptedOutput

// utxoRangeCiphertextShape is the {encrypted_outputs, total, hasMore}
// /utxos/range variant.
type utxoRangeCiphertextShape struct {
	EncryptedOutputs []string `json:"encrypted_outputs"`
	Total            uint32   `json:"total"`
	HasMore          bool     `json:"hasMore"`
}

// ParseUTXORangeResponse accepts either known shape of a /utxos/range
// response body (spec §6): a bare array of {commitment, encrypted_output,
// index, nullifier?} records, or an object carrying a flat ciphertext
// list plus pagination metadata. Exactly one of the result's Records or
// Ciphertexts fields is populated.
func ParseUTXORangeResponse(body []byte) (UTXORangeResponse, error) {
	var asObject utxoRangeCiphertextShape
	if err := json.Unmarshal(body, &asObject); err == nil && asObject.EncryptedOutputs != nil {
		return UTXORangeResponse{
			Ciphertexts: asObject.EncryptedOutputs,
			Total:       asObject.Total,
			HasMore:     asObject.HasMore,
		}, nil
	}

	var asArray utxoRangeRecordShape
	if err := json.Unmarshal(body, &asArray); err != nil {
		return UTXORangeResponse{}, err
	}
	return UTXORangeResponse{Records: asArray, Total: uint32(len(asArray))}, nil
}

// WithdrawParams is the request body for /withdraw and /withdraw/spl
// (spec §6). Token-account fields are left zero-valued for the native
// variant.
type WithdrawParams struct {
	SerializedProof      string `json:"serializedProof"`
	TreeAccount          string `json:"treeAccount"`
	TreeTokenAccount     string `json:"treeTokenAccount,omitempty"`
	Nullifier0PDA        string `json:"nullifier0PDA"`
	Nullifier1PDA        string `json:"nullifier1PDA"`
	GlobalConfigAccount  string `json:"globalConfigAccount"`
	Recipient            string `json:"recipient"`
	FeeRecipientAccount  string `json:"feeRecipientAccount"`
	MintAddress          string `json:"mintAddress,omitempty"`
	SignerTokenAccount   string `json:"signerTokenAccount,omitempty"`
	RecipientTokenAccount string `json:"recipientTokenAccount,omitempty"`
	TreeAta              string `json:"treeAta,omitempty"`
	FeeRecipientAta      string `json:"feeRecipientAta,omitempty"`
	ExtAmount            int64  `json:"extAmount"`
	EncryptedOutput1     string `json:"encryptedOutput1"`
	EncryptedOutput2     string `json:"encryptedOutput2"`
	Fee                  uint64 `json:"fee"`
	LookupTableAddress   string `json:"lookupTableAddress"`

	// DelayMinutes is only set for the delayed-withdrawal endpoints.
	DelayMinutes *uint32 `json:"delayMinutes,omitempty"`
}

// DepositRequest is the request body for /deposit and /deposit/spl.
type DepositRequest struct {
	SignedTransaction string `json:"signedTransaction"`
}

// SubmitResponse is the common immediate-submission response shape.
type SubmitResponse struct {
	Signature string `json:"signature"`
	Success   bool   `json:"success"`
}

// DelayedSubmitResponse is returned by the delayed-withdrawal endpoints.
type DelayedSubmitResponse struct {
	Success             bool   `json:"success"`
	DelayedWithdrawalID  uint64 `json:"delayedWithdrawalId"`
	ExecuteAt            string `json:"executeAt"`
	DelayMinutes         uint32 `json:"delayMinutes"`
}

// NullifierCheckRequest is the request body for /nullifiers/check.
type NullifierCheckRequest struct {
	Nullifiers []string `json:"nullifiers"`
}

// NullifierCheckResponse maps each queried nullifier (hex string) to
// whether its marker exists on chain.
type NullifierCheckResponse struct {
	Nullifiers map[string]bool `json:"nullifiers"`
}

// RelayerInfoResponse is the response of GET /relayer.
type RelayerInfoResponse struct {
	Success bool `json:"success"`
	Relayer struct {
		PublicKey string `json:"publicKey"`
	} `json:"relayer"`
}
