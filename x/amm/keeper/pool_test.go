package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/coral-chain/coral/testutil/keeper"
	"github.com/coral-chain/coral/x/amm/types"
)

func TestCreatePool(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)

	pool, err := k.CreatePool(ctx, keepertest.Authority, "ucoral", "uusdc", 30, keepertest.TestAddr("fees").String(), false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), pool.Id)
	require.Equal(t, "amm/pool/1", pool.ShareDenom)
	require.True(t, pool.Active)
	require.True(t, pool.Reserve0.IsZero())
	require.True(t, pool.TotalLiquidity.IsZero())
	require.Equal(t, int32(0), pool.CurrentTick)

	got, err := k.GetPool(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, pool, got)

	byPair, err := k.GetPoolByPair(ctx, "ucoral", "uusdc")
	require.NoError(t, err)
	require.Equal(t, pool.Id, byPair.Id)

	var found bool
	for _, ev := range ctx.EventManager().Events() {
		if ev.Type == types.EventTypePoolCreated {
			found = true
		}
	}
	require.True(t, found, "pool_created event not emitted")
}

func TestCreatePoolPairIsOrdered(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)
	keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 30, false)

	// The reverse pair is a different pool key.
	_, err := k.GetPoolByPair(ctx, "uusdc", "ucoral")
	require.ErrorIs(t, err, types.ErrPoolNotFound)

	reverse, err := k.CreatePool(ctx, keepertest.Authority, "uusdc", "ucoral", 30, keepertest.TestAddr("fees").String(), false)
	require.NoError(t, err)
	require.Equal(t, uint64(2), reverse.Id)
}

func TestCreatePoolValidation(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)
	feeAddr := keepertest.TestAddr("fees").String()

	_, err := k.CreatePool(ctx, keepertest.TestAddr("mallory").String(), "ucoral", "uusdc", 30, feeAddr, false)
	require.Error(t, err)

	_, err = k.CreatePool(ctx, keepertest.Authority, "", "uusdc", 30, feeAddr, false)
	require.ErrorIs(t, err, types.ErrInvalidDenom)

	_, err = k.CreatePool(ctx, keepertest.Authority, "ucoral", "ucoral", 30, feeAddr, false)
	require.ErrorIs(t, err, types.ErrInvalidDenom)

	_, err = k.CreatePool(ctx, keepertest.Authority, "ucoral", "uusdc", types.MaxFeeBps+1, feeAddr, false)
	require.ErrorIs(t, err, types.ErrFeeOutOfBounds)

	_, err = k.CreatePool(ctx, keepertest.Authority, "ucoral", "uusdc", 30, "not-an-address", false)
	require.Error(t, err)
}

func TestCreatePoolDuplicatePair(t *testing.T) {
	k, ctx, mocks := keepertest.AmmKeeper(t)
	keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 30, false)

	_, err := k.CreatePool(ctx, keepertest.Authority, "ucoral", "uusdc", 30, keepertest.TestAddr("fees").String(), false)
	require.ErrorIs(t, err, types.ErrPairAlreadyExists)

	// No second share ledger was touched.
	require.Empty(t, mocks.Shares.Shares)
}

func TestDeactivatePool(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 30, false)

	require.NoError(t, k.DeactivatePool(ctx, keepertest.Authority, pool.Id))

	got, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.False(t, got.Active)

	_, err = k.GetActivePool(ctx, pool.Id)
	require.ErrorIs(t, err, types.ErrPoolInactive)

	require.ErrorIs(t, k.DeactivatePool(ctx, keepertest.Authority, pool.Id), types.ErrPoolInactive)

	// A deactivated pair can be re-registered.
	fresh, err := k.CreatePool(ctx, keepertest.Authority, "ucoral", "uusdc", 50, keepertest.TestAddr("fees").String(), false)
	require.NoError(t, err)
	require.Equal(t, uint64(2), fresh.Id)
	require.True(t, k.HasPool(ctx, "ucoral", "uusdc"))
}

func TestSetFeeConfig(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 30, false)

	require.NoError(t, k.SetFeeBps(ctx, keepertest.Authority, pool.Id, 100))
	require.ErrorIs(t, k.SetFeeBps(ctx, keepertest.Authority, pool.Id, types.MaxFeeBps+1), types.ErrFeeOutOfBounds)

	newRecipient := keepertest.TestAddr("treasury").String()
	require.NoError(t, k.SetFeeRecipient(ctx, keepertest.Authority, pool.Id, newRecipient))

	got, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, uint32(100), got.FeeBps)
	require.Equal(t, newRecipient, got.FeeRecipient)

	require.Error(t, k.SetFeeBps(ctx, keepertest.TestAddr("mallory").String(), pool.Id, 10))
}

func TestGetAllPools(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)
	keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 30, false)
	keepertest.CreateTestPool(t, k, ctx, "ucoral", "uatom", 30, false)

	pools, err := k.GetAllPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	require.Equal(t, uint64(1), pools[0].Id)
	require.Equal(t, uint64(2), pools[1].Id)
}

func TestGetPoolNotFound(t *testing.T) {
	k, ctx, _ := keepertest.AmmKeeper(t)
	_, err := k.GetPool(ctx, 42)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}
