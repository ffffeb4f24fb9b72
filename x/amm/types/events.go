package types

// Event types emitted by the amm module. The cross-chain events are the only
// durable record of a failed inbound intent; there is no queryable failure table.
const (
	EventTypePoolCreated     = "pool_created"
	EventTypePoolDeactivated = "pool_deactivated"
	EventTypeLiquidityAdded  = "liquidity_added"
	EventTypeLiquidityRemoved = "liquidity_removed"
	EventTypeSwapExecuted    = "swap_executed"

	EventTypeCrossChainLiquidityRequested = "cross_chain_liquidity_requested"
	EventTypeCrossChainLiquidityCompleted = "cross_chain_liquidity_completed"
	EventTypeCrossChainLiquidityFailed    = "cross_chain_liquidity_failed"
)

// Event attribute keys
const (
	AttributeKeyPoolID       = "pool_id"
	AttributeKeyBaseDenom    = "base_denom"
	AttributeKeyQuoteDenom   = "quote_denom"
	AttributeKeyShareDenom   = "share_denom"
	AttributeKeyFeeBps       = "fee_bps"
	AttributeKeyFeeRecipient = "fee_recipient"
	AttributeKeyStablePair   = "stable_pair"
	AttributeKeyProvider     = "provider"
	AttributeKeyTrader       = "trader"
	AttributeKeyAmount0      = "amount0"
	AttributeKeyAmount1      = "amount1"
	AttributeKeyLowerTick    = "lower_tick"
	AttributeKeyUpperTick    = "upper_tick"
	AttributeKeyLiquidity    = "liquidity"
	AttributeKeyRangeID      = "range_id"
	AttributeKeyTokenIn      = "token_in"
	AttributeKeyTokenOut     = "token_out"
	AttributeKeyAmountIn     = "amount_in"
	AttributeKeyAmountOut    = "amount_out"
	AttributeKeyFee          = "fee"
	AttributeKeyPriceImpact  = "price_impact_percent"
	AttributeKeySourceChain  = "source_chain"
	AttributeKeyDestChain    = "dest_chain"
	AttributeKeyMessageID    = "message_id"
	AttributeKeyIsAdd        = "is_add"
	AttributeKeyReason       = "reason"
)
