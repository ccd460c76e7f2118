package planner

import "math/big"

func bigIntFromInt64(v int64) *big.Int {
	return big.NewInt(v)
}
