package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/coral-chain/coral/testutil/keeper"
	"github.com/coral-chain/coral/x/amm/types"
)

func TestGenesisRoundTrip(t *testing.T) {
	k, ctx, mocks := keepertest.AmmKeeper(t)

	// Build some state: two pools, liquidity, a processed inbound message.
	pool := keepertest.CreateTestPool(t, k, ctx, "ucoral", "uusdc", 30, false)
	keepertest.CreateTestPool(t, k, ctx, "ucoral", "uatom", 50, true)
	require.NoError(t, k.SetSupportedChain(ctx, keepertest.Authority, "coral-remote-1", true))

	provider := keepertest.TestAddr("provider")
	mocks.Bank.Fund(provider, sdk.NewCoins(
		sdk.NewCoin("ucoral", math.NewInt(10_000)),
		sdk.NewCoin("uusdc", math.NewInt(10_000)),
	))
	_, err := k.AddLiquidity(ctx, pool.Id, provider, math.NewInt(1000), math.NewInt(1000), -1000, 1000)
	require.NoError(t, err)

	remote := keepertest.TestAddr("remote-user")
	packet := types.LiquidityPacketData{
		Type:        types.LiquidityPacketType,
		Sender:      remote.String(),
		BaseDenom:   "ucoral",
		QuoteDenom:  "uusdc",
		Amount0:     math.NewInt(500),
		Amount1:     math.NewInt(500),
		LowerTick:   -500,
		UpperTick:   500,
		SourceChain: "coral-remote-1",
		IsAdd:       true,
	}
	bz, err := packet.GetBytes()
	require.NoError(t, err)
	ack, err := k.OnRecvLiquidityPacket(ctx, "coral-remote-1", "msg-1", bz)
	require.NoError(t, err)
	require.True(t, ack.Success)

	exported, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Len(t, exported.Pools, 2)
	require.Equal(t, uint64(3), exported.NextPoolId)
	require.Len(t, exported.Ranges, 2)
	require.NotEmpty(t, exported.Ticks)
	require.Contains(t, exported.ProcessedMessages, "coral-remote-1/msg-1")

	// Import into a fresh keeper and compare the re-export.
	k2, ctx2, _ := keepertest.AmmKeeper(t)
	require.NoError(t, k2.InitGenesis(ctx2, *exported))

	reexported, err := k2.ExportGenesis(ctx2)
	require.NoError(t, err)
	require.Equal(t, exported, reexported)

	// Replay protection survives the round trip.
	dup, err := k2.OnRecvLiquidityPacket(ctx2, "coral-remote-1", "msg-1", bz)
	require.NoError(t, err)
	require.False(t, dup.Success)
	require.Equal(t, "duplicate message", dup.Error)

	// Range IDs keep advancing past imported ones.
	restored, err := k2.GetPool(ctx2, pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1500), restored.TotalLiquidity)
}
