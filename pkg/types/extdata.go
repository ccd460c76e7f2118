package types

// ExtData is the public, unshielded payload bound into a transaction's
// proof via the ext-data hash (spec §3, §4.4).
type ExtData struct {
	// Recipient is the 32-byte destination address for a withdrawal.
	Recipient [32]byte

	// ExtAmount is positive for a deposit, negative for a withdrawal.
	ExtAmount int64

	// Ciphertext1 and Ciphertext2 are the encrypted note envelopes for the
	// transaction's two outputs.
	Ciphertext1 []byte
	Ciphertext2 []byte

	// Fee is the relayer/protocol fee in base units.
	Fee uint64

	// FeeRecipient is the 32-byte address credited with Fee.
	FeeRecipient [32]byte

	// AssetTag is the 32-byte asset identifier, encoded per AssetTagMode.
	AssetTag AssetTag
}
