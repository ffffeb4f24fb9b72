package keeper

import (
	"fmt"
	"math/big"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// SwapResult reports the outcome of an executed or simulated swap. PriceImpact
// is observability data, not an enforced bound.
type SwapResult struct {
	AmountOut   math.Int
	Fee         math.Int
	PriceImpact math.LegacyDec
}

// Swap trades amountIn of tokenIn against the pool. The fee is taken from the
// input before invariant math and routed to the pool's fee recipient; the
// output is transferred to the trader. Fails with slippage protection if the
// output falls below minAmountOut.
func (k Keeper) Swap(ctx sdk.Context, poolID uint64, trader sdk.AccAddress, tokenIn string, amountIn, minAmountOut math.Int) (SwapResult, error) {
	var result SwapResult
	err := k.withPoolLock(ctx, poolID, func() error {
		res, err := k.executeSwap(ctx, poolID, trader, tokenIn, amountIn, minAmountOut)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}

func (k Keeper) executeSwap(ctx sdk.Context, poolID uint64, trader sdk.AccAddress, tokenIn string, amountIn, minAmountOut math.Int) (SwapResult, error) {
	start := time.Now()
	defer func() {
		if k.metrics != nil {
			k.metrics.SwapLatency.Observe(time.Since(start).Seconds())
		}
	}()
	poolLabel := fmt.Sprintf("%d", poolID)

	if amountIn.IsNil() || !amountIn.IsPositive() {
		return SwapResult{}, types.ErrInvalidAmount.Wrap("swap amount must be positive")
	}
	if minAmountOut.IsNil() || minAmountOut.IsNegative() {
		return SwapResult{}, types.ErrInvalidAmount.Wrap("minimum output cannot be negative")
	}

	pool, err := k.GetActivePool(ctx, poolID)
	if err != nil {
		return SwapResult{}, err
	}
	if !pool.HasDenom(tokenIn) {
		return SwapResult{}, types.ErrInvalidDenom.Wrapf("token %s not in pool %d (%s)", tokenIn, poolID, pool.PairID())
	}
	tokenOut := pool.OtherDenom(tokenIn)

	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	if tokenIn == pool.QuoteDenom {
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	}

	fee := amountIn.MulRaw(int64(pool.FeeBps)).QuoRaw(types.FeeBpsDenominator)
	amountInAfterFee := amountIn.Sub(fee)
	if !amountInAfterFee.IsPositive() {
		return SwapResult{}, types.ErrInvalidAmount.Wrap("swap amount too small after fee")
	}

	amountOut, err := k.computeSwapOutput(ctx, pool, reserveIn, reserveOut, amountInAfterFee)
	if err != nil {
		if k.metrics != nil {
			k.metrics.SwapsTotal.WithLabelValues(poolLabel, tokenIn, "failed").Inc()
		}
		return SwapResult{}, err
	}

	if amountOut.LT(minAmountOut) {
		if k.metrics != nil {
			k.metrics.SwapsTotal.WithLabelValues(poolLabel, tokenIn, "failed").Inc()
		}
		return SwapResult{}, types.ErrSlippageExceeded.Wrapf("expected at least %s, got %s", minAmountOut, amountOut)
	}

	priceImpact := priceImpactPercent(reserveIn, reserveOut, amountInAfterFee, amountOut)

	// Transfers before state updates, so a ledger refusal leaves the pool
	// untouched.
	moduleAddr := k.GetModuleAddress()
	if err := k.bankKeeper.SendCoins(ctx, trader, moduleAddr, sdk.NewCoins(sdk.NewCoin(tokenIn, amountIn))); err != nil {
		return SwapResult{}, types.ErrTransferFailed.Wrapf("pull input: %s", err)
	}
	if fee.IsPositive() {
		feeRecipient, err := sdk.AccAddressFromBech32(pool.FeeRecipient)
		if err != nil {
			return SwapResult{}, types.ErrTransferFailed.Wrapf("fee recipient: %s", err)
		}
		if err := k.bankKeeper.SendCoins(ctx, moduleAddr, feeRecipient, sdk.NewCoins(sdk.NewCoin(tokenIn, fee))); err != nil {
			return SwapResult{}, types.ErrTransferFailed.Wrapf("route fee: %s", err)
		}
	}
	if err := k.bankKeeper.SendCoins(ctx, moduleAddr, trader, sdk.NewCoins(sdk.NewCoin(tokenOut, amountOut))); err != nil {
		return SwapResult{}, types.ErrTransferFailed.Wrapf("push output: %s", err)
	}

	if tokenIn == pool.BaseDenom {
		pool.Reserve0 = pool.Reserve0.Add(amountInAfterFee)
		pool.Reserve1 = pool.Reserve1.Sub(amountOut)
	} else {
		pool.Reserve1 = pool.Reserve1.Add(amountInAfterFee)
		pool.Reserve0 = pool.Reserve0.Sub(amountOut)
	}
	if err := k.updateCurrentPrice(pool); err != nil {
		return SwapResult{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return SwapResult{}, err
	}

	if k.metrics != nil {
		k.metrics.SwapsTotal.WithLabelValues(poolLabel, tokenIn, "success").Inc()
		if amountIn.IsInt64() {
			k.metrics.SwapVolume.WithLabelValues(poolLabel, tokenIn).Add(float64(amountIn.Int64()))
		}
		if f, err := priceImpact.Float64(); err == nil {
			k.metrics.PriceImpact.Observe(f)
		}
	}

	k.Logger(ctx).Info("swap executed",
		"pool_id", poolID,
		"trader", trader.String(),
		"token_in", tokenIn,
		"amount_in", amountIn.String(),
		"amount_out", amountOut.String(),
		"fee", fee.String(),
	)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwapExecuted,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
			sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
			sdk.NewAttribute(types.AttributeKeyTokenIn, tokenIn),
			sdk.NewAttribute(types.AttributeKeyTokenOut, tokenOut),
			sdk.NewAttribute(types.AttributeKeyAmountIn, amountIn.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, amountOut.String()),
			sdk.NewAttribute(types.AttributeKeyFee, fee.String()),
			sdk.NewAttribute(types.AttributeKeyPriceImpact, priceImpact.String()),
		),
	)

	return SwapResult{AmountOut: amountOut, Fee: fee, PriceImpact: priceImpact}, nil
}

// SimulateSwap quotes a swap without side effects.
func (k Keeper) SimulateSwap(ctx sdk.Context, poolID uint64, tokenIn string, amountIn math.Int) (SwapResult, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return SwapResult{}, types.ErrInvalidAmount.Wrap("swap amount must be positive")
	}

	pool, err := k.GetActivePool(ctx, poolID)
	if err != nil {
		return SwapResult{}, err
	}
	if !pool.HasDenom(tokenIn) {
		return SwapResult{}, types.ErrInvalidDenom.Wrapf("token %s not in pool %d (%s)", tokenIn, poolID, pool.PairID())
	}

	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	if tokenIn == pool.QuoteDenom {
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	}

	fee := amountIn.MulRaw(int64(pool.FeeBps)).QuoRaw(types.FeeBpsDenominator)
	amountInAfterFee := amountIn.Sub(fee)
	if !amountInAfterFee.IsPositive() {
		return SwapResult{}, types.ErrInvalidAmount.Wrap("swap amount too small after fee")
	}

	amountOut, err := k.computeSwapOutput(ctx, pool, reserveIn, reserveOut, amountInAfterFee)
	if err != nil {
		return SwapResult{}, err
	}

	return SwapResult{
		AmountOut:   amountOut,
		Fee:         fee,
		PriceImpact: priceImpactPercent(reserveIn, reserveOut, amountInAfterFee, amountOut),
	}, nil
}

// SpotPrice returns reserveOut/reserveIn for quoting tokenIn into the pool's
// other asset.
func (k Keeper) SpotPrice(ctx sdk.Context, poolID uint64, tokenIn string) (math.LegacyDec, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.LegacyDec{}, err
	}
	if !pool.HasDenom(tokenIn) {
		return math.LegacyDec{}, types.ErrInvalidDenom.Wrapf("token %s not in pool %d", tokenIn, poolID)
	}

	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	if tokenIn == pool.QuoteDenom {
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	}
	if reserveIn.IsZero() {
		return math.LegacyDec{}, types.ErrInsufficientLiquidity.Wrapf("pool %d has no %s reserves", poolID, tokenIn)
	}
	return math.LegacyNewDecFromInt(reserveOut).Quo(math.LegacyNewDecFromInt(reserveIn)), nil
}

func (k Keeper) computeSwapOutput(ctx sdk.Context, pool *types.Pool, reserveIn, reserveOut, amountInAfterFee math.Int) (math.Int, error) {
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf("pool %d has empty reserves", pool.Id)
	}

	var amountOut math.Int
	if pool.StablePair {
		params, err := k.GetParams(ctx)
		if err != nil {
			return math.Int{}, err
		}
		amountOut, err = stableSwapOutput(reserveIn, reserveOut, amountInAfterFee, params.Amplification)
		if err != nil {
			return math.Int{}, err
		}
	} else {
		// amountOut = reserveOut * amountIn' / (reserveIn + amountIn')
		amountOut = reserveOut.Mul(amountInAfterFee).Quo(reserveIn.Add(amountInAfterFee))
	}

	if !amountOut.IsPositive() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrap("swap output rounds to zero")
	}
	if amountOut.GTE(reserveOut) {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf("output %s would drain reserves %s", amountOut, reserveOut)
	}
	return amountOut, nil
}

// stableSwapOutput re-solves the Stableswap invariant after adding the input
// to one side and returns the implied reserve delta on the other.
func stableSwapOutput(reserveIn, reserveOut, amountIn math.Int, amplification uint64) (math.Int, error) {
	invariant := types.StableInvariant(reserveIn, reserveOut, amplification)
	if !invariant.IsPositive() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrap("stable invariant is zero")
	}
	newOut := types.StableY(reserveIn.Add(amountIn), invariant, amplification)
	if newOut.GTE(reserveOut) {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrap("stable invariant yields no output")
	}
	return reserveOut.Sub(newOut), nil
}

// priceImpactPercent reports the percentage change in reserveOut/reserveIn
// caused by the trade.
func priceImpactPercent(reserveIn, reserveOut, amountInAfterFee, amountOut math.Int) math.LegacyDec {
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return math.LegacyZeroDec()
	}
	before := math.LegacyNewDecFromInt(reserveOut).Quo(math.LegacyNewDecFromInt(reserveIn))
	newIn := reserveIn.Add(amountInAfterFee)
	newOut := reserveOut.Sub(amountOut)
	if newIn.IsZero() || before.IsZero() {
		return math.LegacyZeroDec()
	}
	after := math.LegacyNewDecFromInt(newOut).Quo(math.LegacyNewDecFromInt(newIn))
	return before.Sub(after).Abs().Quo(before).MulInt64(100)
}

// updateCurrentPrice refreshes the pool's cached tick and sqrt price from the
// post-trade reserve ratio. Empty pools keep their previous price.
func (k Keeper) updateCurrentPrice(pool *types.Pool) error {
	if pool.Reserve0.IsZero() || pool.Reserve1.IsZero() {
		return nil
	}

	price := math.LegacyNewDecFromInt(pool.Reserve1).Quo(math.LegacyNewDecFromInt(pool.Reserve0))
	sqrtPrice, err := price.ApproxSqrt()
	if err != nil {
		return types.ErrSqrtPriceOutOfRange.Wrapf("sqrt of reserve ratio: %s", err)
	}

	// LegacyDec sqrt -> X96 fixed point
	q96 := new(big.Int).Lsh(big.NewInt(1), 96)
	sqrtPriceX96 := sqrtPrice.MulInt(math.NewIntFromBigInt(q96)).TruncateInt()
	if sqrtPriceX96.BigInt().Cmp(types.MinSqrtRatio) < 0 || sqrtPriceX96.BigInt().Cmp(types.MaxSqrtRatio) > 0 {
		// Reserve ratio outside the representable tick space; keep the old
		// cached price rather than failing the trade.
		return nil
	}

	tick, err := types.TickAtSqrtPrice(sqrtPriceX96)
	if err != nil {
		return err
	}
	pool.CurrentTick = tick
	pool.CurrentSqrtPrice = sqrtPriceX96
	return nil
}
