package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// RegisterInvariants registers all amm module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "total-liquidity",
		TotalLiquidityInvariant(k))
	ir.RegisterRoute(types.ModuleName, "tick-consistency",
		TickConsistencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "reserves",
		ReservesInvariant(k))
	ir.RegisterRoute(types.ModuleName, "share-supply",
		ShareSupplyInvariant(k))
}

// AllInvariants runs all invariants of the amm module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := TotalLiquidityInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = TickConsistencyInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = ReservesInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return ShareSupplyInvariant(k)(ctx)
	}
}

// TotalLiquidityInvariant checks that each pool's total liquidity equals the
// sum of its live range liquidity
func TotalLiquidityInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		err := k.IteratePools(ctx, func(pool types.Pool) bool {
			sum, err := k.sumRangeLiquidity(ctx, pool.Id)
			if err != nil {
				broken = true
				msg = fmt.Sprintf("pool %d: error iterating ranges: %v", pool.Id, err)
				return true
			}
			if !pool.TotalLiquidity.Equal(sum) {
				broken = true
				msg = fmt.Sprintf("pool %d: total liquidity %s != range sum %s",
					pool.Id, pool.TotalLiquidity, sum)
				return true
			}
			return false
		})
		if err != nil {
			broken = true
			msg = fmt.Sprintf("error iterating pools: %v", err)
		}

		return sdk.FormatInvariant(
			types.ModuleName, "total-liquidity",
			msg,
		), broken
	}
}

// TickConsistencyInvariant checks that per-pool tick aggregates are consistent
// with the ranges referencing them: gross liquidity is non-negative and net
// liquidity sums to zero across each pool
func TickConsistencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		err := k.IteratePools(ctx, func(pool types.Pool) bool {
			netSum := math.ZeroInt()
			tickErr := k.IterateTicks(ctx, pool.Id, func(tick types.Tick) bool {
				if tick.LiquidityGross.IsNegative() {
					broken = true
					msg = fmt.Sprintf("pool %d tick %d: negative gross liquidity %s",
						pool.Id, tick.TickIndex, tick.LiquidityGross)
					return true
				}
				netSum = netSum.Add(tick.LiquidityNet)
				return false
			})
			if tickErr != nil {
				broken = true
				msg = fmt.Sprintf("pool %d: error iterating ticks: %v", pool.Id, tickErr)
				return true
			}
			if broken {
				return true
			}
			if !netSum.IsZero() {
				broken = true
				msg = fmt.Sprintf("pool %d: net liquidity sums to %s, want 0", pool.Id, netSum)
				return true
			}
			return false
		})
		if err != nil {
			broken = true
			msg = fmt.Sprintf("error iterating pools: %v", err)
		}

		return sdk.FormatInvariant(
			types.ModuleName, "tick-consistency",
			msg,
		), broken
	}
}

// ReservesInvariant checks that no pool carries negative reserves
func ReservesInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		err := k.IteratePools(ctx, func(pool types.Pool) bool {
			if pool.Reserve0.IsNegative() || pool.Reserve1.IsNegative() {
				broken = true
				msg = fmt.Sprintf("pool %d: negative reserves %s / %s",
					pool.Id, pool.Reserve0, pool.Reserve1)
				return true
			}
			return false
		})
		if err != nil {
			broken = true
			msg = fmt.Sprintf("error iterating pools: %v", err)
		}

		return sdk.FormatInvariant(
			types.ModuleName, "reserves",
			msg,
		), broken
	}
}

// ShareSupplyInvariant checks that each active pool's total liquidity matches
// the outstanding LP share supply for its share denom
func ShareSupplyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		err := k.IteratePools(ctx, func(pool types.Pool) bool {
			if !pool.Active {
				return false
			}
			supply := k.shareLedger.TotalSupply(ctx, pool.ShareDenom)
			if !pool.TotalLiquidity.Equal(supply) {
				broken = true
				msg = fmt.Sprintf("pool %d: total liquidity %s != share supply %s",
					pool.Id, pool.TotalLiquidity, supply)
				return true
			}
			return false
		})
		if err != nil {
			broken = true
			msg = fmt.Sprintf("error iterating pools: %v", err)
		}

		return sdk.FormatInvariant(
			types.ModuleName, "share-supply",
			msg,
		), broken
	}
}

func (k Keeper) sumRangeLiquidity(ctx context.Context, poolID uint64) (math.Int, error) {
	sum := math.ZeroInt()
	err := k.IterateRanges(ctx, poolID, func(rng types.Range) bool {
		sum = sum.Add(rng.Liquidity)
		return false
	})
	return sum, err
}

// checkLiquidityInvariant verifies pool.TotalLiquidity against the range sum
// after every liquidity mutation.
func (k Keeper) checkLiquidityInvariant(ctx context.Context, pool *types.Pool) error {
	sum, err := k.sumRangeLiquidity(ctx, pool.Id)
	if err != nil {
		return err
	}
	if !pool.TotalLiquidity.Equal(sum) {
		return types.ErrInvariantViolation.Wrapf(
			"pool %d total liquidity %s != range sum %s", pool.Id, pool.TotalLiquidity, sum)
	}
	return nil
}
