package note

import "math/big"

func bigIntFromUint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
