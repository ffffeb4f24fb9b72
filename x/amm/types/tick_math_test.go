package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/coral-chain/coral/x/amm/types"
)

func TestSqrtPriceAtTickKnownValues(t *testing.T) {
	// tick 0 is exactly 2^96
	price, err := types.SqrtPriceAtTick(0)
	require.NoError(t, err)
	require.Equal(t, "79228162514264337593543950336", price.String())

	minPrice, err := types.SqrtPriceAtTick(types.MinTick)
	require.NoError(t, err)
	require.Equal(t, types.MinSqrtRatio.String(), minPrice.String())

	maxPrice, err := types.SqrtPriceAtTick(types.MaxTick)
	require.NoError(t, err)
	require.Equal(t, types.MaxSqrtRatio.String(), maxPrice.String())
}

func TestSqrtPriceAtTickOutOfRange(t *testing.T) {
	for _, tick := range []int32{types.MinTick - 1, types.MaxTick + 1, -1000000, 1000000} {
		_, err := types.SqrtPriceAtTick(tick)
		require.ErrorIs(t, err, types.ErrTickOutOfRange, "tick %d", tick)
	}
}

func TestSqrtPriceAtTickMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tick := rapid.Int32Range(types.MinTick, types.MaxTick-1).Draw(t, "tick")

		lo, err := types.SqrtPriceAtTick(tick)
		if err != nil {
			t.Fatal(err)
		}
		hi, err := types.SqrtPriceAtTick(tick + 1)
		if err != nil {
			t.Fatal(err)
		}
		if !lo.LT(hi) {
			t.Fatalf("price not increasing: tick %d -> %s, tick %d -> %s", tick, lo, tick+1, hi)
		}
	})
}

func TestTickAtSqrtPriceBounds(t *testing.T) {
	_, err := types.TickAtSqrtPrice(math.NewIntFromBigInt(types.MinSqrtRatio).SubRaw(1))
	require.ErrorIs(t, err, types.ErrSqrtPriceOutOfRange)

	_, err = types.TickAtSqrtPrice(math.NewIntFromBigInt(types.MaxSqrtRatio).AddRaw(1))
	require.ErrorIs(t, err, types.ErrSqrtPriceOutOfRange)

	tick, err := types.TickAtSqrtPrice(math.NewIntFromBigInt(types.MinSqrtRatio))
	require.NoError(t, err)
	require.Equal(t, types.MinTick, tick)

	// Both endpoints are representable prices.
	tick, err = types.TickAtSqrtPrice(math.NewIntFromBigInt(types.MaxSqrtRatio))
	require.NoError(t, err)
	require.Equal(t, types.MaxTick, tick)
}

func TestTickSqrtPriceRoundTrip(t *testing.T) {
	// Spot-check the exact boundary and a spread of fixed ticks, then
	// property-test the whole representable space.
	for _, tick := range []int32{types.MinTick, -887271, -100000, -1000, -1, 0, 1, 1000, 100000, 887271, types.MaxTick} {
		price, err := types.SqrtPriceAtTick(tick)
		require.NoError(t, err)
		got, err := types.TickAtSqrtPrice(price)
		require.NoError(t, err)
		require.Equal(t, tick, got, "tick %d", tick)
	}

	rapid.Check(t, func(t *rapid.T) {
		tick := rapid.Int32Range(types.MinTick, types.MaxTick).Draw(t, "tick")

		price, err := types.SqrtPriceAtTick(tick)
		if err != nil {
			t.Fatal(err)
		}
		got, err := types.TickAtSqrtPrice(price)
		if err != nil {
			t.Fatal(err)
		}
		if got != tick {
			t.Fatalf("round trip: tick %d -> price %s -> tick %d", tick, price, got)
		}
	})
}

func TestTickAtSqrtPriceGreatestTick(t *testing.T) {
	// For a price strictly between two tick prices the result is the lower
	// tick.
	lo, err := types.SqrtPriceAtTick(100)
	require.NoError(t, err)
	hi, err := types.SqrtPriceAtTick(101)
	require.NoError(t, err)

	mid := lo.Add(hi).QuoRaw(2)
	tick, err := types.TickAtSqrtPrice(mid)
	require.NoError(t, err)
	require.Equal(t, int32(100), tick)
}
