package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// AddLiquidity deposits amounts into a tick range and mints LP shares for the
// resulting liquidity. Token amounts are pulled from the provider before any
// share issuance, so a ledger failure aborts the whole operation.
func (k Keeper) AddLiquidity(ctx sdk.Context, poolID uint64, provider sdk.AccAddress, amount0, amount1 math.Int, lowerTick, upperTick int32) (*types.Range, error) {
	var result *types.Range
	err := k.withPoolLock(ctx, poolID, func() error {
		rng, err := k.addLiquidity(ctx, poolID, provider, amount0, amount1, lowerTick, upperTick)
		if err != nil {
			return err
		}
		result = rng
		return nil
	})
	return result, err
}

func (k Keeper) addLiquidity(ctx sdk.Context, poolID uint64, provider sdk.AccAddress, amount0, amount1 math.Int, lowerTick, upperTick int32) (*types.Range, error) {
	pool, err := k.GetActivePool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if err := validateTickRange(lowerTick, upperTick); err != nil {
		return nil, err
	}

	liquidity, err := types.LiquidityForAmounts(amount0, amount1)
	if err != nil {
		return nil, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	if liquidity.LT(params.MinLiquidity) {
		return nil, types.ErrInsufficientLiquidity.Wrapf("liquidity %s below minimum %s", liquidity, params.MinLiquidity)
	}

	if err := k.pullCoins(ctx, provider, pool, amount0, amount1); err != nil {
		return nil, err
	}
	if err := k.shareLedger.Mint(ctx, pool.ShareDenom, provider, liquidity); err != nil {
		return nil, types.ErrShareLedgerFailed.Wrapf("mint %s shares: %s", pool.ShareDenom, err)
	}

	if err := k.crossTickLiquidity(ctx, poolID, lowerTick, upperTick, liquidity); err != nil {
		return nil, err
	}

	rng, err := k.appendRange(ctx, poolID, provider, types.Range{
		Owner:     provider.String(),
		LowerTick: lowerTick,
		UpperTick: upperTick,
		Liquidity: liquidity,
		Amount0:   amount0,
		Amount1:   amount1,
	})
	if err != nil {
		return nil, err
	}

	pool.Reserve0 = pool.Reserve0.Add(amount0)
	pool.Reserve1 = pool.Reserve1.Add(amount1)
	pool.TotalLiquidity = pool.TotalLiquidity.Add(liquidity)
	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}

	if err := k.checkLiquidityInvariant(ctx, pool); err != nil {
		return nil, err
	}

	if k.metrics != nil {
		k.metrics.LiquidityAdded.WithLabelValues(fmt.Sprintf("%d", poolID)).Inc()
	}

	k.Logger(ctx).Info("liquidity added",
		"pool_id", poolID,
		"provider", provider.String(),
		"liquidity", liquidity.String(),
		"range_id", rng.Id,
	)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityAdded,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
			sdk.NewAttribute(types.AttributeKeyLowerTick, fmt.Sprintf("%d", lowerTick)),
			sdk.NewAttribute(types.AttributeKeyUpperTick, fmt.Sprintf("%d", upperTick)),
			sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
			sdk.NewAttribute(types.AttributeKeyRangeID, fmt.Sprintf("%d", rng.Id)),
		),
	)

	return &rng, nil
}

// RemoveLiquidity withdraws the requested liquidity from the first range in
// insertion order whose liquidity covers it, burns the LP shares and returns
// the proportional token amounts to the owner.
func (k Keeper) RemoveLiquidity(ctx sdk.Context, poolID uint64, owner sdk.AccAddress, liquidity math.Int) (amount0, amount1 math.Int, err error) {
	err = k.withPoolLock(ctx, poolID, func() error {
		amount0, amount1, err = k.removeLiquidity(ctx, poolID, owner, liquidity)
		return err
	})
	return amount0, amount1, err
}

func (k Keeper) removeLiquidity(ctx sdk.Context, poolID uint64, owner sdk.AccAddress, liquidity math.Int) (math.Int, math.Int, error) {
	if liquidity.IsNil() || !liquidity.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrInvalidAmount.Wrap("liquidity to remove must be positive")
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	var target *types.Range
	if err := k.IterateRangesByOwner(ctx, poolID, owner, func(rng types.Range) bool {
		if rng.Liquidity.GTE(liquidity) {
			target = &rng
			return true
		}
		return false
	}); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if target == nil {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidity.Wrapf(
			"no range of %s in pool %d covers liquidity %s", owner, poolID, liquidity)
	}

	amount0, amount1, err := k.removeFromRange(ctx, pool, owner, target, liquidity)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if err := k.checkLiquidityInvariant(ctx, pool); err != nil {
		return math.Int{}, math.Int{}, err
	}
	return amount0, amount1, nil
}

// removeFromRange withdraws liquidity from one range. It mutates pool
// aggregates in place; the caller persists the pool and re-checks invariants
// once all slices are applied.
func (k Keeper) removeFromRange(ctx sdk.Context, pool *types.Pool, owner sdk.AccAddress, rng *types.Range, liquidity math.Int) (math.Int, math.Int, error) {
	if liquidity.GT(rng.Liquidity) {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidity.Wrapf(
			"range %d holds %s, requested %s", rng.Id, rng.Liquidity, liquidity)
	}

	amount0 := types.ProportionalAmount(rng.Amount0, liquidity, rng.Liquidity)
	amount1 := types.ProportionalAmount(rng.Amount1, liquidity, rng.Liquidity)

	if err := k.shareLedger.Burn(ctx, pool.ShareDenom, owner, liquidity); err != nil {
		return math.Int{}, math.Int{}, types.ErrShareLedgerFailed.Wrapf("burn %s shares: %s", pool.ShareDenom, err)
	}
	if err := k.pushCoins(ctx, owner, pool, amount0, amount1); err != nil {
		return math.Int{}, math.Int{}, err
	}

	if err := k.crossTickLiquidity(ctx, pool.Id, rng.LowerTick, rng.UpperTick, liquidity.Neg()); err != nil {
		return math.Int{}, math.Int{}, err
	}

	rng.Liquidity = rng.Liquidity.Sub(liquidity)
	rng.Amount0 = rng.Amount0.Sub(amount0)
	rng.Amount1 = rng.Amount1.Sub(amount1)
	if rng.Liquidity.IsZero() {
		k.deleteRange(ctx, pool.Id, owner, rng.Id)
	} else {
		if err := k.SetRange(ctx, pool.Id, owner, *rng); err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	pool.Reserve0 = pool.Reserve0.Sub(amount0)
	pool.Reserve1 = pool.Reserve1.Sub(amount1)
	pool.TotalLiquidity = pool.TotalLiquidity.Sub(liquidity)
	if pool.Reserve0.IsNegative() || pool.Reserve1.IsNegative() || pool.TotalLiquidity.IsNegative() {
		return math.Int{}, math.Int{}, types.ErrInvariantViolation.Wrapf("pool %d aggregates went negative", pool.Id)
	}

	if k.metrics != nil {
		k.metrics.LiquidityRemoved.WithLabelValues(fmt.Sprintf("%d", pool.Id)).Inc()
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityRemoved,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", pool.Id)),
			sdk.NewAttribute(types.AttributeKeyProvider, owner.String()),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
			sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
			sdk.NewAttribute(types.AttributeKeyRangeID, fmt.Sprintf("%d", rng.Id)),
		),
	)

	return amount0, amount1, nil
}

// pullCoins moves the deposit amounts from addr into module custody.
func (k Keeper) pullCoins(ctx sdk.Context, addr sdk.AccAddress, pool *types.Pool, amount0, amount1 math.Int) error {
	coins := poolCoins(pool, amount0, amount1)
	if coins.IsZero() {
		return nil
	}
	if err := k.bankKeeper.SendCoins(ctx, addr, k.moduleAddressCache, coins); err != nil {
		return types.ErrTransferFailed.Wrapf("pull %s from %s: %s", coins, addr, err)
	}
	return nil
}

// pushCoins moves the withdrawal amounts from module custody to addr.
func (k Keeper) pushCoins(ctx sdk.Context, addr sdk.AccAddress, pool *types.Pool, amount0, amount1 math.Int) error {
	coins := poolCoins(pool, amount0, amount1)
	if coins.IsZero() {
		return nil
	}
	if err := k.bankKeeper.SendCoins(ctx, k.moduleAddressCache, addr, coins); err != nil {
		return types.ErrTransferFailed.Wrapf("push %s to %s: %s", coins, addr, err)
	}
	return nil
}

func poolCoins(pool *types.Pool, amount0, amount1 math.Int) sdk.Coins {
	coins := sdk.NewCoins()
	if amount0.IsPositive() {
		coins = coins.Add(sdk.NewCoin(pool.BaseDenom, amount0))
	}
	if amount1.IsPositive() {
		coins = coins.Add(sdk.NewCoin(pool.QuoteDenom, amount1))
	}
	return coins
}

func validateTickRange(lowerTick, upperTick int32) error {
	if lowerTick >= upperTick {
		return types.ErrInvalidTickRange.Wrapf("lower tick %d must be below upper tick %d", lowerTick, upperTick)
	}
	if lowerTick < types.MinTick || upperTick > types.MaxTick {
		return types.ErrTickOutOfRange.Wrapf("ticks [%d, %d] outside [%d, %d]", lowerTick, upperTick, types.MinTick, types.MaxTick)
	}
	return nil
}
