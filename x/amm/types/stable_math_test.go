package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/coral-chain/coral/x/amm/types"
)

func TestStableInvariantBalanced(t *testing.T) {
	// For equal balances the invariant is exactly the sum.
	x := math.NewInt(1_000_000)
	d := types.StableInvariant(x, x, types.DefaultAmplification)
	require.Equal(t, math.NewInt(2_000_000), d)
}

func TestStableInvariantZero(t *testing.T) {
	require.True(t, types.StableInvariant(math.ZeroInt(), math.ZeroInt(), types.DefaultAmplification).IsZero())
}

func TestStableInvariantImbalanced(t *testing.T) {
	// The invariant sits between 2*sqrt(x*y) (constant product) and x+y.
	x := math.NewInt(1_000_000)
	y := math.NewInt(250_000)
	d := types.StableInvariant(x, y, types.DefaultAmplification)

	require.True(t, d.LT(x.Add(y)), "D %s must be below the sum %s", d, x.Add(y))
	require.True(t, d.GT(math.NewInt(1_000_000)), "D %s must exceed 2*sqrt(x*y)", d)
}

func TestStableYBalancedFixedPoint(t *testing.T) {
	x := math.NewInt(1_000_000)
	d := types.StableInvariant(x, x, types.DefaultAmplification)

	y := types.StableY(x, d, types.DefaultAmplification)
	diff := y.Sub(x).Abs()
	require.True(t, diff.LTE(math.NewInt(2)), "y %s should be within 2 of x %s", y, x)
}

func TestStableYTracksSwap(t *testing.T) {
	// Pushing x up must pull y down, and a stable pair near balance trades
	// close to 1:1, much tighter than constant product.
	reserve := math.NewInt(1_000_000)
	in := math.NewInt(10_000)

	d := types.StableInvariant(reserve, reserve, types.DefaultAmplification)
	newY := types.StableY(reserve.Add(in), d, types.DefaultAmplification)
	out := reserve.Sub(newY)

	require.True(t, out.IsPositive())
	require.True(t, out.LTE(in), "stable swap cannot pay out more than put in at balance")

	// Constant product would pay floor(1M*10k/1.01M) = 9900.
	cpOut := reserve.Mul(in).Quo(reserve.Add(in))
	require.True(t, out.GT(cpOut), "stable out %s should beat constant product %s", out, cpOut)
}

func TestStableYZeroInputs(t *testing.T) {
	require.True(t, types.StableY(math.ZeroInt(), math.NewInt(100), types.DefaultAmplification).IsZero())
	require.True(t, types.StableY(math.NewInt(100), math.ZeroInt(), types.DefaultAmplification).IsZero())
}
