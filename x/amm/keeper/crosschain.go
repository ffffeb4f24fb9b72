package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"

	"github.com/coral-chain/coral/x/shared/replay"

	"github.com/coral-chain/coral/x/amm/types"
)

// replayErrors adapts amm errors to the shared replay manager.
type replayErrors struct{}

func (replayErrors) DuplicateMessageError(msg string) error {
	return types.ErrDuplicateMessage.Wrap(msg)
}

func (replayErrors) InvalidMessageError(msg string) error {
	return types.ErrInvalidPacket.Wrap(msg)
}

func (k Keeper) replayManager() *replay.Manager {
	return replay.NewManager(k.storeKey, replayErrors{}, types.ModuleName)
}

// SendLiquidityIntent builds a liquidity-change intent and hands it to the
// transport. For an add, the token amounts are pulled into module custody
// before the send, so the sender is debited even if the remote application
// later fails. Returns the assigned message identifier.
func (k Keeper) SendLiquidityIntent(ctx sdk.Context, sender sdk.AccAddress, destChainID, baseDenom, quoteDenom string, amount0, amount1 math.Int, lowerTick, upperTick int32, isAdd bool) (string, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return "", err
	}
	if !params.IsChainSupported(destChainID) {
		return "", types.ErrUnsupportedChain.Wrapf("chain %s not on the allowlist", destChainID)
	}

	packet := types.LiquidityPacketData{
		Type:        types.LiquidityPacketType,
		Sender:      sender.String(),
		BaseDenom:   baseDenom,
		QuoteDenom:  quoteDenom,
		Amount0:     amount0,
		Amount1:     amount1,
		LowerTick:   lowerTick,
		UpperTick:   upperTick,
		SourceChain: ctx.ChainID(),
		IsAdd:       isAdd,
	}
	if err := packet.ValidateBasic(); err != nil {
		return "", err
	}
	payload, err := packet.GetBytes()
	if err != nil {
		return "", types.ErrInvalidPacket.Wrapf("encode intent: %s", err)
	}

	if isAdd {
		coins := sdk.NewCoins()
		if amount0.IsPositive() {
			coins = coins.Add(sdk.NewCoin(baseDenom, amount0))
		}
		if amount1.IsPositive() {
			coins = coins.Add(sdk.NewCoin(quoteDenom, amount1))
		}
		if err := k.bankKeeper.SendCoins(ctx, sender, k.moduleAddressCache, coins); err != nil {
			return "", types.ErrTransferFailed.Wrapf("custody %s from %s: %s", coins, sender, err)
		}
	}

	seq := k.replayManager().NextOutboundSequence(ctx, destChainID)
	messageID := fmt.Sprintf("%s-%d-%s", ctx.ChainID(), seq, uuid.NewString())

	fee, err := k.transport.QuoteFee(ctx, destChainID, payload)
	if err != nil {
		return "", types.ErrTransportFailed.Wrapf("quote transport fee: %s", err)
	}
	if err := k.transport.Send(ctx, destChainID, messageID, payload, fee, sender.String()); err != nil {
		return "", types.ErrTransportFailed.Wrapf("send intent: %s", err)
	}

	if k.metrics != nil {
		k.metrics.CrossChainSent.WithLabelValues(destChainID).Inc()
	}

	k.Logger(ctx).Info("cross-chain liquidity intent sent",
		"dest_chain", destChainID,
		"message_id", messageID,
		"sender", sender.String(),
		"is_add", isAdd,
	)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCrossChainLiquidityRequested,
			sdk.NewAttribute(types.AttributeKeyDestChain, destChainID),
			sdk.NewAttribute(types.AttributeKeyMessageID, messageID),
			sdk.NewAttribute(types.AttributeKeyProvider, sender.String()),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
			sdk.NewAttribute(types.AttributeKeyLowerTick, fmt.Sprintf("%d", lowerTick)),
			sdk.NewAttribute(types.AttributeKeyUpperTick, fmt.Sprintf("%d", upperTick)),
			sdk.NewAttribute(types.AttributeKeyIsAdd, fmt.Sprintf("%t", isAdd)),
		),
	)

	return messageID, nil
}

// OnRecvLiquidityPacket applies an inbound liquidity intent. Application is
// idempotent per (origin, message id): a redelivery is acknowledged without
// effect. Failures during application cannot reach the original caller and
// are converted into a terminal failure record carried in the ack and the
// event stream.
func (k Keeper) OnRecvLiquidityPacket(ctx sdk.Context, origin, messageID string, payload []byte) (types.LiquidityPacketAck, error) {
	packet, err := types.ParseLiquidityPacket(payload)
	if err != nil {
		return types.LiquidityPacketAck{}, err
	}

	mgr := k.replayManager()
	if mgr.IsProcessed(ctx, origin, messageID) {
		k.Logger(ctx).Info("duplicate cross-chain intent ignored",
			"source_chain", origin,
			"message_id", messageID,
		)
		return types.LiquidityPacketAck{Success: false, Error: "duplicate message"}, nil
	}
	if err := mgr.MarkProcessed(ctx, origin, messageID); err != nil {
		return types.LiquidityPacketAck{}, err
	}

	// Apply on a cache context so a failure anywhere leaves no partial state.
	// Only the idempotency record above survives a failed intent.
	cacheCtx, writeFn := ctx.CacheContext()
	var ack types.LiquidityPacketAck
	if packet.IsAdd {
		ack = k.applyInboundAdd(cacheCtx, origin, messageID, packet)
	} else {
		ack = k.applyInboundRemove(cacheCtx, origin, messageID, packet)
	}
	if ack.Success {
		writeFn()
	} else {
		ack = k.failInbound(ctx, origin, messageID, packet, ack.Error)
	}

	if k.metrics != nil {
		status := "applied"
		if !ack.Success {
			status = "failed"
		}
		k.metrics.CrossChainReceived.WithLabelValues(origin, status).Inc()
	}
	return ack, nil
}

// applyInboundAdd mints a liquidity range for the originating user against the
// local pool. The tokens themselves were escrowed on the source replica; only
// share and range bookkeeping happens here.
func (k Keeper) applyInboundAdd(ctx sdk.Context, origin, messageID string, packet types.LiquidityPacketData) types.LiquidityPacketAck {
	pool, err := k.GetPoolByPair(ctx, packet.BaseDenom, packet.QuoteDenom)
	if err != nil || !pool.Active {
		return inboundFailure("Pool not found")
	}

	if err := validateTickRange(packet.LowerTick, packet.UpperTick); err != nil {
		return inboundFailure(err.Error())
	}

	liquidity, err := types.LiquidityForAmounts(packet.Amount0, packet.Amount1)
	if err != nil {
		return inboundFailure(err.Error())
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return inboundFailure(err.Error())
	}
	if liquidity.LT(params.MinLiquidity) {
		return inboundFailure("liquidity below minimum")
	}

	sender := sdk.MustAccAddressFromBech32(packet.Sender)
	if err := k.shareLedger.Mint(ctx, pool.ShareDenom, sender, liquidity); err != nil {
		return inboundFailure(fmt.Sprintf("share mint: %s", err))
	}
	if err := k.crossTickLiquidity(ctx, pool.Id, packet.LowerTick, packet.UpperTick, liquidity); err != nil {
		return inboundFailure(err.Error())
	}
	if _, err := k.appendRange(ctx, pool.Id, sender, types.Range{
		Owner:     packet.Sender,
		LowerTick: packet.LowerTick,
		UpperTick: packet.UpperTick,
		Liquidity: liquidity,
		Amount0:   packet.Amount0,
		Amount1:   packet.Amount1,
	}); err != nil {
		return inboundFailure(err.Error())
	}

	pool.Reserve0 = pool.Reserve0.Add(packet.Amount0)
	pool.Reserve1 = pool.Reserve1.Add(packet.Amount1)
	pool.TotalLiquidity = pool.TotalLiquidity.Add(liquidity)
	if err := k.SetPool(ctx, pool); err != nil {
		return inboundFailure(err.Error())
	}
	if err := k.checkLiquidityInvariant(ctx, pool); err != nil {
		return inboundFailure(err.Error())
	}

	k.emitCrossChainCompleted(ctx, origin, messageID, packet, liquidity, packet.Amount0, packet.Amount1)

	return types.LiquidityPacketAck{
		Success:   true,
		Liquidity: liquidity,
		Amount0:   packet.Amount0,
		Amount1:   packet.Amount1,
	}
}

// applyInboundRemove resolves the removal strategy from the payload shape:
// zero amounts and ticks remove everything, explicit tick bounds remove the
// matching range, and bare amounts remove a proportional slice of every range.
func (k Keeper) applyInboundRemove(ctx sdk.Context, origin, messageID string, packet types.LiquidityPacketData) types.LiquidityPacketAck {
	pool, err := k.GetPoolByPair(ctx, packet.BaseDenom, packet.QuoteDenom)
	if err != nil || !pool.Active {
		return inboundFailure("Pool not found")
	}

	owner := sdk.MustAccAddressFromBech32(packet.Sender)
	ranges, err := k.GetRangesByOwner(ctx, pool.Id, owner)
	if err != nil {
		return inboundFailure(err.Error())
	}

	hasTicks := packet.LowerTick != 0 || packet.UpperTick != 0
	hasAmounts := packet.Amount0.IsPositive() || packet.Amount1.IsPositive()

	var targets []removeSlice
	switch {
	case !hasTicks && !hasAmounts:
		// Strategy 1: remove all of the user's liquidity.
		for _, rng := range ranges {
			targets = append(targets, removeSlice{rng: rng, liquidity: rng.Liquidity})
		}
	case hasTicks:
		// Strategy 2: remove only the range with these exact bounds.
		for _, rng := range ranges {
			if rng.LowerTick == packet.LowerTick && rng.UpperTick == packet.UpperTick {
				targets = append(targets, removeSlice{rng: rng, liquidity: rng.Liquidity})
				break
			}
		}
	default:
		// Strategy 3: remove a proportional slice of every range, bounded by
		// the smaller of the two per-token ratios so neither axis over-removes.
		for _, rng := range ranges {
			liquidity := proportionalRemoveLiquidity(rng, packet.Amount0, packet.Amount1)
			if liquidity.IsPositive() {
				targets = append(targets, removeSlice{rng: rng, liquidity: liquidity})
			}
		}
	}

	if len(targets) == 0 {
		return inboundFailure("No liquidity found")
	}

	totalLiquidity := math.ZeroInt()
	total0, total1 := math.ZeroInt(), math.ZeroInt()
	for _, target := range targets {
		rng := target.rng
		amount0, amount1, err := k.removeFromRange(ctx, pool, owner, &rng, target.liquidity)
		if err != nil {
			return inboundFailure(err.Error())
		}
		totalLiquidity = totalLiquidity.Add(target.liquidity)
		total0 = total0.Add(amount0)
		total1 = total1.Add(amount1)
	}

	if err := k.SetPool(ctx, pool); err != nil {
		return inboundFailure(err.Error())
	}
	if err := k.checkLiquidityInvariant(ctx, pool); err != nil {
		return inboundFailure(err.Error())
	}

	k.emitCrossChainCompleted(ctx, origin, messageID, packet, totalLiquidity, total0, total1)

	return types.LiquidityPacketAck{
		Success:   true,
		Liquidity: totalLiquidity,
		Amount0:   total0,
		Amount1:   total1,
	}
}

type removeSlice struct {
	rng       types.Range
	liquidity math.Int
}

// proportionalRemoveLiquidity returns the liquidity slice implied by the
// requested token amounts, min over the axes the range actually holds.
func proportionalRemoveLiquidity(rng types.Range, requested0, requested1 math.Int) math.Int {
	ratio := math.LegacyDec{}
	if requested0.IsPositive() && rng.Amount0.IsPositive() {
		ratio = math.LegacyNewDecFromInt(requested0).Quo(math.LegacyNewDecFromInt(rng.Amount0))
	}
	if requested1.IsPositive() && rng.Amount1.IsPositive() {
		r1 := math.LegacyNewDecFromInt(requested1).Quo(math.LegacyNewDecFromInt(rng.Amount1))
		if ratio.IsNil() || r1.LT(ratio) {
			ratio = r1
		}
	}
	if ratio.IsNil() || !ratio.IsPositive() {
		return math.ZeroInt()
	}
	if ratio.GT(math.LegacyOneDec()) {
		ratio = math.LegacyOneDec()
	}
	return ratio.MulInt(rng.Liquidity).TruncateInt()
}

// inboundFailure builds the ack for a handler failure. The caller discards
// the cache context and records the failure through failInbound.
func inboundFailure(reason string) types.LiquidityPacketAck {
	return types.LiquidityPacketAck{Success: false, Error: reason}
}

func (k Keeper) failInbound(ctx sdk.Context, origin, messageID string, packet types.LiquidityPacketData, reason string) types.LiquidityPacketAck {
	if k.metrics != nil {
		k.metrics.CrossChainFailed.WithLabelValues(origin, reason).Inc()
	}

	k.Logger(ctx).Error("cross-chain liquidity intent failed",
		"source_chain", origin,
		"message_id", messageID,
		"sender", packet.Sender,
		"reason", reason,
	)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCrossChainLiquidityFailed,
			sdk.NewAttribute(types.AttributeKeySourceChain, origin),
			sdk.NewAttribute(types.AttributeKeyMessageID, messageID),
			sdk.NewAttribute(types.AttributeKeyProvider, packet.Sender),
			sdk.NewAttribute(types.AttributeKeyIsAdd, fmt.Sprintf("%t", packet.IsAdd)),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)

	return types.LiquidityPacketAck{Success: false, Error: reason}
}

func (k Keeper) emitCrossChainCompleted(ctx sdk.Context, origin, messageID string, packet types.LiquidityPacketData, liquidity, amount0, amount1 math.Int) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCrossChainLiquidityCompleted,
			sdk.NewAttribute(types.AttributeKeySourceChain, origin),
			sdk.NewAttribute(types.AttributeKeyMessageID, messageID),
			sdk.NewAttribute(types.AttributeKeyProvider, packet.Sender),
			sdk.NewAttribute(types.AttributeKeyIsAdd, fmt.Sprintf("%t", packet.IsAdd)),
			sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
		),
	)
}
