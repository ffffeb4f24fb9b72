package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/coral-chain/coral/x/amm/types"
)

func TestLiquidityForAmounts(t *testing.T) {
	tests := []struct {
		name    string
		amount0 math.Int
		amount1 math.Int
		want    math.Int
		wantErr bool
	}{
		{"geometric mean equal", math.NewInt(1000), math.NewInt(1000), math.NewInt(1000), false},
		{"geometric mean", math.NewInt(4), math.NewInt(9), math.NewInt(6), false},
		{"geometric mean floors", math.NewInt(2), math.NewInt(4), math.NewInt(2), false},
		{"single sided base", math.NewInt(500), math.ZeroInt(), math.NewInt(500), false},
		{"single sided quote", math.ZeroInt(), math.NewInt(750), math.NewInt(750), false},
		{"both zero", math.ZeroInt(), math.ZeroInt(), math.Int{}, true},
		{"negative", math.NewInt(-1), math.NewInt(10), math.Int{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := types.LiquidityForAmounts(tc.amount0, tc.amount1)
			if tc.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestProportionalAmount(t *testing.T) {
	require.Equal(t, math.NewInt(250), types.ProportionalAmount(math.NewInt(1000), math.NewInt(1), math.NewInt(4)))
	require.Equal(t, math.NewInt(333), types.ProportionalAmount(math.NewInt(1000), math.NewInt(1), math.NewInt(3)))
	require.True(t, types.ProportionalAmount(math.NewInt(1000), math.NewInt(1), math.ZeroInt()).IsZero())
}
