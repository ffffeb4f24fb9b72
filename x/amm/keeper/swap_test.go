package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/coral-chain/coral/testutil/keeper"
	"github.com/coral-chain/coral/x/amm/keeper"
	"github.com/coral-chain/coral/x/amm/types"
)

func setupSwapPool(t *testing.T, feeBps uint32, stable bool) (*keeper.Keeper, sdk.Context, *keepertest.Mocks, *types.Pool, func(tokenIn string, amountIn, minOut math.Int) (math.Int, math.Int, error)) {
	t.Helper()
	k, ctx, mocks := keepertest.AmmKeeper(t)
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", feeBps, stable)

	provider := keepertest.TestAddr("provider")
	mocks.Bank.Fund(provider, sdk.NewCoins(
		sdk.NewCoin("ucoral", math.NewInt(1_000_000)),
		sdk.NewCoin("uusdc", math.NewInt(1_000_000)),
	))
	_, err := k.AddLiquidity(ctx, pool.Id, provider, math.NewInt(1_000_000), math.NewInt(1_000_000), -1000, 1000)
	require.NoError(t, err)

	trader := keepertest.TestAddr("trader")
	mocks.Bank.Fund(trader, sdk.NewCoins(
		sdk.NewCoin("ucoral", math.NewInt(100_000)),
		sdk.NewCoin("uusdc", math.NewInt(100_000)),
	))

	swap := func(tokenIn string, amountIn, minOut math.Int) (math.Int, math.Int, error) {
		res, err := k.Swap(ctx, pool.Id, trader, tokenIn, amountIn, minOut)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		return res.AmountOut, res.Fee, nil
	}
	return k, ctx, mocks, pool, swap
}

func TestSwapConstantProduct(t *testing.T) {
	k, ctx, mocks, pool, swap := setupSwapPool(t, 4, false)

	// reserves 1M/1M, fee 4 bps, in 10_000:
	// fee = 4, in' = 9_996, out = 1_000_000*9_996/1_009_996 = 9_897
	out, fee, err := swap("ucoral", math.NewInt(10_000), math.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(4), fee)
	require.Equal(t, math.NewInt(9_897), out)
	require.True(t, out.LT(math.NewInt(1_000_000)))

	trader := keepertest.TestAddr("trader")
	require.Equal(t, math.NewInt(90_000), mocks.Bank.GetBalance(ctx, trader, "ucoral").Amount)
	require.Equal(t, math.NewInt(109_897), mocks.Bank.GetBalance(ctx, trader, "uusdc").Amount)

	// Fee routed to the recipient.
	require.Equal(t, math.NewInt(4), mocks.Bank.GetBalance(ctx, keepertest.TestAddr("fees"), "ucoral").Amount)

	// Reserves track the post-fee input and the paid output.
	got, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_009_996), got.Reserve0)
	require.Equal(t, math.NewInt(990_103), got.Reserve1)
}

func TestSwapSlippageExceeded(t *testing.T) {
	_, _, _, _, swap := setupSwapPool(t, 4, false)

	_, _, err := swap("ucoral", math.NewInt(10_000), math.NewInt(10_000))
	require.ErrorIs(t, err, types.ErrSlippageExceeded)
}

func TestSwapValidation(t *testing.T) {
	_, _, _, _, swap := setupSwapPool(t, 4, false)

	_, _, err := swap("uatom", math.NewInt(1000), math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInvalidDenom)

	_, _, err = swap("ucoral", math.ZeroInt(), math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestSwapInactivePool(t *testing.T) {
	k, ctx, mocks := keepertest.AmmKeeper(t)
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 4, false)
	_ = mocks

	require.NoError(t, k.DeactivatePool(ctx, keepertest.Authority, pool.Id))

	_, err := k.Swap(ctx, pool.Id, keepertest.TestAddr("trader"), "ucoral", math.NewInt(1000), math.NewInt(1))
	require.ErrorIs(t, err, types.ErrPoolInactive)
}

func TestSwapEmptyReserves(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 4, false)
	trader := keepertest.TestAddr("trader")

	_, err := k.Swap(ctx, pool.Id, trader, "ucoral", math.NewInt(1000), math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)
}

func TestSwapStablePair(t *testing.T) {
	_, _, _, _, stableSwap := setupSwapPool(t, 4, true)

	out, fee, err := stableSwap("ucoral", math.NewInt(10_000), math.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(4), fee)

	// Near balance a stable pair trades tighter than constant product.
	cpOut := math.NewInt(9_897)
	require.True(t, out.GT(cpOut), "stable out %s should beat constant product %s", out, cpOut)
	require.True(t, out.LTE(math.NewInt(9_996)), "stable out %s cannot exceed the post-fee input", out)
}

func TestSimulateSwapHasNoSideEffects(t *testing.T) {
	k, ctx, mocks := keepertest.AmmKeeper(t)
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 4, false)

	provider := keepertest.TestAddr("provider")
	mocks.Bank.Fund(provider, sdk.NewCoins(
		sdk.NewCoin("ucoral", math.NewInt(1_000_000)),
		sdk.NewCoin("uusdc", math.NewInt(1_000_000)),
	))
	_, err := k.AddLiquidity(ctx, pool.Id, provider, math.NewInt(1_000_000), math.NewInt(1_000_000), -1000, 1000)
	require.NoError(t, err)

	res, err := k.SimulateSwap(ctx, pool.Id, "ucoral", math.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(9_897), res.AmountOut)
	require.Equal(t, math.NewInt(4), res.Fee)
	require.True(t, res.PriceImpact.IsPositive())

	got, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), got.Reserve0)
	require.Equal(t, math.NewInt(1_000_000), got.Reserve1)
}

func TestSpotPrice(t *testing.T) {
	k, ctx, mocks := keepertest.AmmKeeper(t)
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 4, false)

	provider := keepertest.TestAddr("provider")
	mocks.Bank.Fund(provider, sdk.NewCoins(
		sdk.NewCoin("ucoral", math.NewInt(1_000_000)),
		sdk.NewCoin("uusdc", math.NewInt(2_000_000)),
	))
	_, err := k.AddLiquidity(ctx, pool.Id, provider, math.NewInt(1_000_000), math.NewInt(2_000_000), -1000, 1000)
	require.NoError(t, err)

	price, err := k.SpotPrice(ctx, pool.Id, "ucoral")
	require.NoError(t, err)
	require.Equal(t, math.LegacyNewDec(2), price)

	inverse, err := k.SpotPrice(ctx, pool.Id, "uusdc")
	require.NoError(t, err)
	require.Equal(t, math.LegacyNewDecWithPrec(5, 1), inverse)
}
