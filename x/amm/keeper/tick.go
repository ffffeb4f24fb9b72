package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// GetTick retrieves a tick aggregate for a pool. The second return reports
// whether the record exists.
func (k Keeper) GetTick(ctx context.Context, poolID uint64, tickIndex int32) (types.Tick, bool) {
	bz := k.getStore(ctx).Get(TickKey(poolID, tickIndex))
	if bz == nil {
		return types.Tick{}, false
	}

	var tick types.Tick
	if err := unmarshal(bz, &tick); err != nil {
		return types.Tick{}, false
	}
	return tick, true
}

// SetTick saves a tick aggregate.
func (k Keeper) SetTick(ctx context.Context, poolID uint64, tick types.Tick) error {
	bz, err := marshal(tick)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(TickKey(poolID, tick.TickIndex), bz)
	return nil
}

// crossTickLiquidity adjusts the aggregates at both boundary ticks of a range.
// Gross liquidity changes in matched pairs at the lower and upper boundary;
// net liquidity carries the sign convention used when crossing a boundary
// left to right. delta is negative on removal. Records whose gross returns to
// zero are kept; they are inert, not invalid.
func (k Keeper) crossTickLiquidity(ctx context.Context, poolID uint64, lowerTick, upperTick int32, delta math.Int) error {
	if err := k.adjustTick(ctx, poolID, lowerTick, delta, delta); err != nil {
		return err
	}
	return k.adjustTick(ctx, poolID, upperTick, delta, delta.Neg())
}

func (k Keeper) adjustTick(ctx context.Context, poolID uint64, tickIndex int32, grossDelta, netDelta math.Int) error {
	tick, found := k.GetTick(ctx, poolID, tickIndex)
	if !found {
		sqrtPrice, err := types.SqrtPriceAtTick(tickIndex)
		if err != nil {
			return err
		}
		tick = types.NewTick(tickIndex, sqrtPrice)
	}

	tick.LiquidityGross = tick.LiquidityGross.Add(grossDelta)
	tick.LiquidityNet = tick.LiquidityNet.Add(netDelta)
	if tick.LiquidityGross.IsNegative() {
		return types.ErrInvariantViolation.Wrapf("tick %d gross liquidity went negative", tickIndex)
	}
	return k.SetTick(ctx, poolID, tick)
}

// IterateTicks iterates a pool's tick records in tick order.
func (k Keeper) IterateTicks(ctx context.Context, poolID uint64, cb func(tick types.Tick) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, TickKeyByPoolPrefix(poolID))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var tick types.Tick
		if err := unmarshal(iterator.Value(), &tick); err != nil {
			return fmt.Errorf("IterateTicks: %w", err)
		}
		if cb(tick) {
			break
		}
	}
	return nil
}
