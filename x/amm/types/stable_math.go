package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// DefaultAmplification is the amplification coefficient used by stable pairs.
const DefaultAmplification = uint64(100)

const stableMaxIterations = 255

var (
	bigOne   = big.NewInt(1)
	bigTwo   = big.NewInt(2)
	bigThree = big.NewInt(3)
)

// StableInvariant solves the two-asset Stableswap constant D for balances
// (x, y) at the given amplification, by Newton iteration on
//
//	Ann*S + 2*D_P = (Ann-1)*D + 3*D_P, with D_P = D^3 / (4*x*y)
//
// in non-overflowing integer operations. Returns zero when both balances are
// zero.
func StableInvariant(x, y math.Int, amplification uint64) math.Int {
	xb, yb := x.BigInt(), y.BigInt()
	s := new(big.Int).Add(xb, yb)
	if s.Sign() == 0 {
		return math.ZeroInt()
	}

	// Ann = A * n^n with n = 2.
	ann := new(big.Int).SetUint64(amplification * 4)
	d := new(big.Int).Set(s)
	for i := 0; i < stableMaxIterations; i++ {
		dp := new(big.Int).Set(d)
		dp.Div(new(big.Int).Mul(dp, d), new(big.Int).Mul(xb, bigTwo))
		dp.Div(new(big.Int).Mul(dp, d), new(big.Int).Mul(yb, bigTwo))

		dPrev := new(big.Int).Set(d)
		num := new(big.Int).Mul(new(big.Int).Add(new(big.Int).Mul(ann, s), new(big.Int).Mul(dp, bigTwo)), d)
		den := new(big.Int).Add(
			new(big.Int).Mul(new(big.Int).Sub(ann, bigOne), d),
			new(big.Int).Mul(dp, bigThree),
		)
		d.Div(num, den)

		if new(big.Int).Sub(d, dPrev).CmpAbs(bigOne) <= 0 {
			break
		}
	}
	return math.NewIntFromBigInt(d)
}

// StableY solves for the counterpart balance y that keeps the Stableswap
// invariant constant after the other balance moved to x. Newton iteration on
//
//	y^2 + y*(x + D/Ann - D) = D^3 / (4*x*Ann)
func StableY(x, invariant math.Int, amplification uint64) math.Int {
	xb, d := x.BigInt(), invariant.BigInt()
	if xb.Sign() == 0 || d.Sign() == 0 {
		return math.ZeroInt()
	}

	ann := new(big.Int).SetUint64(amplification * 4)

	// c = D^3 / (4 * x * Ann)
	c := new(big.Int).Div(new(big.Int).Mul(d, d), new(big.Int).Mul(xb, bigTwo))
	c.Div(new(big.Int).Mul(c, d), new(big.Int).Mul(ann, bigTwo))
	// b = x + D/Ann
	b := new(big.Int).Add(xb, new(big.Int).Div(d, ann))

	y := new(big.Int).Set(d)
	for i := 0; i < stableMaxIterations; i++ {
		yPrev := new(big.Int).Set(y)
		num := new(big.Int).Add(new(big.Int).Mul(y, y), c)
		den := new(big.Int).Sub(new(big.Int).Add(new(big.Int).Mul(y, bigTwo), b), d)
		if den.Sign() <= 0 {
			return math.ZeroInt()
		}
		y.Div(num, den)

		if new(big.Int).Sub(y, yPrev).CmpAbs(bigOne) <= 0 {
			break
		}
	}
	return math.NewIntFromBigInt(y)
}
