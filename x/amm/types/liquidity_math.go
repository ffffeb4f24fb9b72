package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// LiquidityForAmounts computes the liquidity represented by a deposit. When
// both amounts are supplied the liquidity is their geometric mean; a
// single-sided deposit is credited at face value.
func LiquidityForAmounts(amount0, amount1 math.Int) (math.Int, error) {
	if amount0.IsNil() || amount1.IsNil() || amount0.IsNegative() || amount1.IsNegative() {
		return math.Int{}, ErrInvalidAmount.Wrap("deposit amounts cannot be negative")
	}
	if amount0.IsZero() && amount1.IsZero() {
		return math.Int{}, ErrInvalidAmount.Wrap("at least one deposit amount must be positive")
	}

	if amount0.IsPositive() && amount1.IsPositive() {
		product := new(big.Int).Mul(amount0.BigInt(), amount1.BigInt())
		return math.NewIntFromBigInt(new(big.Int).Sqrt(product)), nil
	}
	if amount0.IsPositive() {
		return amount0, nil
	}
	return amount1, nil
}

// ProportionalAmount returns total * part / whole, rounding down. Used to
// slice a range's token amounts when a fraction of its liquidity is removed.
func ProportionalAmount(total, part, whole math.Int) math.Int {
	if whole.IsZero() {
		return math.ZeroInt()
	}
	return total.Mul(part).Quo(whole)
}
