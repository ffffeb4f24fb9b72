package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/coral-chain/coral/x/amm/types"
)

func TestPairIDIsOrdered(t *testing.T) {
	require.Equal(t, "ucoral/uusdc", types.PairID("ucoral", "uusdc"))
	require.NotEqual(t, types.PairID("ucoral", "uusdc"), types.PairID("uusdc", "ucoral"))
}

func TestShareDenomForPool(t *testing.T) {
	require.Equal(t, "amm/pool/7", types.ShareDenomForPool(7))
}

func validPool() types.Pool {
	return types.Pool{
		Id:               1,
		BaseDenom:        "ucoral",
		QuoteDenom:       "uusdc",
		ShareDenom:       types.ShareDenomForPool(1),
		FeeBps:           30,
		FeeRecipient:     "cosmos1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v9ccrydpk8qarc0jqwzzr0c",
		Active:           true,
		Reserve0:         math.ZeroInt(),
		Reserve1:         math.ZeroInt(),
		TotalLiquidity:   math.ZeroInt(),
		CurrentSqrtPrice: math.NewInt(1),
	}
}

func TestPoolValidate(t *testing.T) {
	require.NoError(t, validPool().Validate())

	p := validPool()
	p.QuoteDenom = p.BaseDenom
	require.ErrorIs(t, p.Validate(), types.ErrInvalidDenom)

	p = validPool()
	p.FeeBps = types.MaxFeeBps + 1
	require.ErrorIs(t, p.Validate(), types.ErrFeeOutOfBounds)

	p = validPool()
	p.Reserve0 = math.NewInt(-1)
	require.ErrorIs(t, p.Validate(), types.ErrInvalidAmount)

	p = validPool()
	p.TotalLiquidity = math.Int{}
	require.ErrorIs(t, p.Validate(), types.ErrInvalidAmount)
}

func TestPoolDenomHelpers(t *testing.T) {
	p := validPool()
	require.True(t, p.HasDenom("ucoral"))
	require.True(t, p.HasDenom("uusdc"))
	require.False(t, p.HasDenom("uatom"))
	require.Equal(t, "uusdc", p.OtherDenom("ucoral"))
	require.Equal(t, "ucoral", p.OtherDenom("uusdc"))
}

func TestRangeValidate(t *testing.T) {
	rng := types.Range{
		Id:        1,
		Owner:     "cosmos1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v9ccrydpk8qarc0jqwzzr0c",
		LowerTick: -1000,
		UpperTick: 1000,
		Liquidity: math.NewInt(1000),
		Amount0:   math.NewInt(1000),
		Amount1:   math.NewInt(1000),
	}
	require.NoError(t, rng.Validate())

	bad := rng
	bad.LowerTick, bad.UpperTick = 1000, -1000
	require.ErrorIs(t, bad.Validate(), types.ErrInvalidTickRange)

	bad = rng
	bad.Liquidity = math.NewInt(-1)
	require.ErrorIs(t, bad.Validate(), types.ErrInvalidAmount)

	bad = rng
	bad.Owner = ""
	require.Error(t, bad.Validate())
}
