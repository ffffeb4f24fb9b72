package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// Tick bounds of the representable price space.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	// MinSqrtRatio is SqrtPriceAtTick(MinTick).
	MinSqrtRatio = big.NewInt(4295128739)
	// MaxSqrtRatio is SqrtPriceAtTick(MaxTick).
	MaxSqrtRatio = mustBigInt("1461446703485210103287273052203988822378723970342")

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// sqrt(1/1.0001^(2^i)) in Q128.128 for each bit of the absolute tick.
	tickRatios = []*big.Int{
		mustBigHex("fffcb933bd6fad37aa2d162d1a594001"),
		mustBigHex("fff97272373d413259a46990580e213a"),
		mustBigHex("fff2e50f5f656932ef12357cf3c7fdcc"),
		mustBigHex("ffe5caca7e10e4e61c3624eaa0941cd0"),
		mustBigHex("ffcb9843d60f6159c9db58835c926644"),
		mustBigHex("ff973b41fa98c081472e6896dfb254c0"),
		mustBigHex("ff2ea16466c96a3843ec78b326b52861"),
		mustBigHex("fe5dee046a99a2a811c461f1969c3053"),
		mustBigHex("fcbe86c7900a88aedcffc83b479aa3a4"),
		mustBigHex("f987a7253ac413176f2b074cf7815e54"),
		mustBigHex("f3392b0822b70005940c7a398e4b70f3"),
		mustBigHex("e7159475a2c29b7443b29c7fa6e889d9"),
		mustBigHex("d097f3bdfd2022b8845ad8f792aa5825"),
		mustBigHex("a9f746462d870fdf8a65dc1f90e061e5"),
		mustBigHex("70d869a156d2a1b890bb3df62baf32f7"),
		mustBigHex("31be135f97d08fd981231505542fcfa6"),
		mustBigHex("9aa508b5b7a84e1c677de54f3e99bc9"),
		mustBigHex("5d6af8dedb81196699c329225ee604"),
		mustBigHex("2216e584f5fa1ea926041bedfe98"),
		mustBigHex("48a170391f7dc42444e8fa2"),
	}

	oneX128 = mustBigHex("100000000000000000000000000000000")

	// log(sqrt(1.0001)) scaling and error margins for the two-candidate
	// refinement in TickAtSqrtPrice.
	logSqrt10001Scale = mustBigInt("255738958999603826347141")
	tickLowMargin     = mustBigInt("3402992956809132418596140100660247210")
	tickHighMargin    = mustBigInt("291339464771989622907027621153398088495")
)

func mustBigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big int constant: " + s)
	}
	return n
}

func mustBigHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid big int constant: " + s)
	}
	return n
}

// mulShift returns (a * b) >> 128.
func mulShift(a, b *big.Int) *big.Int {
	return new(big.Int).Rsh(new(big.Int).Mul(a, b), 128)
}

// SqrtPriceAtTick computes sqrt(1.0001^tick) * 2^96 without floating point,
// via one conditional Q128.128 multiplication per set bit of |tick|.
func SqrtPriceAtTick(tick int32) (math.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return math.Int{}, ErrTickOutOfRange.Wrapf("tick %d outside [%d, %d]", tick, MinTick, MaxTick)
	}

	absTick := int64(tick)
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(big.Int).Set(oneX128)
	if absTick&0x1 != 0 {
		ratio.Set(tickRatios[0])
	}
	for i := 1; i < len(tickRatios); i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio = mulShift(ratio, tickRatios[i])
		}
	}

	// The bit constants encode negative ticks; positive ticks take the
	// reciprocal.
	if tick > 0 {
		ratio = new(big.Int).Div(maxUint256, ratio)
	}

	// Q128.128 -> Q64.96, rounding up.
	rem := new(big.Int).And(ratio, big.NewInt(0xffffffff))
	ratio.Rsh(ratio, 32)
	if rem.Sign() > 0 {
		ratio.Add(ratio, big.NewInt(1))
	}
	return math.NewIntFromBigInt(ratio), nil
}

// TickAtSqrtPrice returns the greatest tick whose sqrt price does not exceed
// sqrtPriceX96. The log2 of the price is located with a most-significant-bit
// search, then two candidate ticks derived from the error margins are resolved
// by re-evaluating SqrtPriceAtTick.
func TickAtSqrtPrice(sqrtPriceX96 math.Int) (int32, error) {
	if sqrtPriceX96.IsNil() {
		return 0, ErrSqrtPriceOutOfRange.Wrap("nil sqrt price")
	}
	price := sqrtPriceX96.BigInt()
	if price.Cmp(MinSqrtRatio) < 0 || price.Cmp(MaxSqrtRatio) > 0 {
		return 0, ErrSqrtPriceOutOfRange.Wrapf("sqrt price %s outside representable bounds", price)
	}

	ratio := new(big.Int).Lsh(price, 32)
	msb := ratio.BitLen() - 1

	var r *big.Int
	if msb >= 128 {
		r = new(big.Int).Rsh(ratio, uint(msb-127))
	} else {
		r = new(big.Int).Lsh(ratio, uint(127-msb))
	}

	// log2 of the Q128.128 ratio, in Q64.64.
	log2 := new(big.Int).Lsh(big.NewInt(int64(msb-128)), 64)
	for i := 0; i < 14; i++ {
		r = new(big.Int).Rsh(new(big.Int).Mul(r, r), 127)
		f := new(big.Int).Rsh(r, 128)
		log2.Add(log2, new(big.Int).Lsh(f, uint(63-i)))
		r.Rsh(r, uint(f.Int64()))
	}

	logSqrt10001 := new(big.Int).Mul(log2, logSqrt10001Scale)

	tickLow := new(big.Int).Rsh(new(big.Int).Sub(logSqrt10001, tickLowMargin), 128).Int64()
	tickHigh := new(big.Int).Rsh(new(big.Int).Add(logSqrt10001, tickHighMargin), 128).Int64()

	if tickLow == tickHigh {
		return int32(tickLow), nil
	}

	highPrice, err := SqrtPriceAtTick(int32(tickHigh))
	if err != nil {
		return 0, err
	}
	if highPrice.LTE(sqrtPriceX96) {
		return int32(tickHigh), nil
	}
	return int32(tickLow), nil
}
