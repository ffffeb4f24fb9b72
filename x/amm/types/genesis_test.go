package types_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/coral-chain/coral/x/amm/types"
)

func TestDefaultGenesisIsValid(t *testing.T) {
	require.NoError(t, types.DefaultGenesis().Validate())
}

func TestGenesisValidate(t *testing.T) {
	owner := sdk.AccAddress([]byte("owner_______________")).String()

	base := func() types.GenesisState {
		pool := validPool()
		return types.GenesisState{
			Params:     types.DefaultParams(),
			NextPoolId: 2,
			Pools:      []types.Pool{pool},
			Ranges: []types.RangeRecord{{
				PoolId: 1,
				Range: types.Range{
					Id: 1, Owner: owner,
					LowerTick: -10, UpperTick: 10,
					Liquidity: math.NewInt(5),
					Amount0:   math.NewInt(5), Amount1: math.NewInt(5),
				},
			}},
		}
	}

	require.NoError(t, base().Validate())

	gs := base()
	gs.Pools = append(gs.Pools, gs.Pools[0])
	require.ErrorIs(t, gs.Validate(), types.ErrInvariantViolation)

	gs = base()
	second := validPool()
	second.Id = 3
	gs.Pools = append(gs.Pools, second)
	gs.NextPoolId = 4
	require.ErrorIs(t, gs.Validate(), types.ErrPairAlreadyExists)

	gs = base()
	gs.NextPoolId = 1
	require.ErrorIs(t, gs.Validate(), types.ErrInvariantViolation)

	gs = base()
	gs.Ranges[0].PoolId = 99
	require.ErrorIs(t, gs.Validate(), types.ErrPoolNotFound)

	gs = base()
	gs.Ticks = []types.TickRecord{{PoolId: 42}}
	require.ErrorIs(t, gs.Validate(), types.ErrPoolNotFound)
}
