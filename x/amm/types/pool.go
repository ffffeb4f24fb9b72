package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// MaxFeeBps is the upper bound for a pool's swap fee (10%).
const MaxFeeBps = uint32(1000)

// FeeBpsDenominator converts basis points into a fraction.
const FeeBpsDenominator = int64(10000)

// PairID returns the stable lookup key for an ordered asset pair. The pair is
// ordered: (base, quote) and (quote, base) identify different pools.
func PairID(baseDenom, quoteDenom string) string {
	return baseDenom + "/" + quoteDenom
}

// ShareDenomForPool returns the LP share ledger identifier scoped to a pool.
func ShareDenomForPool(poolID uint64) string {
	return fmt.Sprintf("%s/pool/%d", ModuleName, poolID)
}

// Pool is the per-pair AMM state. Pools are never deleted, only deactivated.
type Pool struct {
	Id              uint64   `json:"id"`
	BaseDenom       string   `json:"base_denom"`
	QuoteDenom      string   `json:"quote_denom"`
	ShareDenom      string   `json:"share_denom"`
	FeeBps          uint32   `json:"fee_bps"`
	FeeRecipient    string   `json:"fee_recipient"`
	StablePair      bool     `json:"stable_pair"`
	Active          bool     `json:"active"`
	Reserve0        math.Int `json:"reserve0"`
	Reserve1        math.Int `json:"reserve1"`
	TotalLiquidity  math.Int `json:"total_liquidity"`
	CurrentTick     int32    `json:"current_tick"`
	CurrentSqrtPrice math.Int `json:"current_sqrt_price"`
}

// PairID returns the pool's pair lookup key.
func (p Pool) PairID() string {
	return PairID(p.BaseDenom, p.QuoteDenom)
}

// HasDenom reports whether denom is one of the pool's two assets.
func (p Pool) HasDenom(denom string) bool {
	return denom == p.BaseDenom || denom == p.QuoteDenom
}

// OtherDenom returns the counterpart asset for denom. Callers must have
// validated denom with HasDenom.
func (p Pool) OtherDenom(denom string) string {
	if denom == p.BaseDenom {
		return p.QuoteDenom
	}
	return p.BaseDenom
}

// Validate checks structural pool invariants.
func (p Pool) Validate() error {
	if p.BaseDenom == "" || p.QuoteDenom == "" {
		return ErrInvalidDenom.Wrap("pool denoms cannot be empty")
	}
	if p.BaseDenom == p.QuoteDenom {
		return ErrInvalidDenom.Wrap("pool denoms must differ")
	}
	if p.FeeBps > MaxFeeBps {
		return ErrFeeOutOfBounds.Wrapf("fee %d bps exceeds maximum %d", p.FeeBps, MaxFeeBps)
	}
	if p.Reserve0.IsNil() || p.Reserve1.IsNil() || p.TotalLiquidity.IsNil() {
		return ErrInvalidAmount.Wrap("pool amounts cannot be nil")
	}
	if p.Reserve0.IsNegative() || p.Reserve1.IsNegative() || p.TotalLiquidity.IsNegative() {
		return ErrInvalidAmount.Wrap("pool amounts cannot be negative")
	}
	return nil
}

// Tick aggregates the liquidity referencing one price boundary. The record may
// outlive the ranges that created it; LiquidityGross returns to zero when the
// last referencing range is removed.
type Tick struct {
	TickIndex      int32    `json:"tick_index"`
	LiquidityGross math.Int `json:"liquidity_gross"`
	LiquidityNet   math.Int `json:"liquidity_net"`
	SqrtPrice      math.Int `json:"sqrt_price"`
}

// NewTick returns an empty tick record with its cached sqrt price.
func NewTick(tickIndex int32, sqrtPrice math.Int) Tick {
	return Tick{
		TickIndex:      tickIndex,
		LiquidityGross: math.ZeroInt(),
		LiquidityNet:   math.ZeroInt(),
		SqrtPrice:      sqrtPrice,
	}
}

// Range is one user's liquidity contribution to a tick interval. A range whose
// liquidity reaches zero is inert and removed from the owner's arena.
type Range struct {
	Id        uint64   `json:"id"`
	Owner     string   `json:"owner"`
	LowerTick int32    `json:"lower_tick"`
	UpperTick int32    `json:"upper_tick"`
	Liquidity math.Int `json:"liquidity"`
	Amount0   math.Int `json:"amount0"`
	Amount1   math.Int `json:"amount1"`
}

// Validate checks structural range invariants.
func (r Range) Validate() error {
	if r.Owner == "" {
		return ErrInvalidAmount.Wrap("range owner cannot be empty")
	}
	if r.LowerTick >= r.UpperTick {
		return ErrInvalidTickRange.Wrapf("lower tick %d must be below upper tick %d", r.LowerTick, r.UpperTick)
	}
	if r.Liquidity.IsNil() || r.Liquidity.IsNegative() {
		return ErrInvalidAmount.Wrap("range liquidity cannot be negative")
	}
	if r.Amount0.IsNil() || r.Amount1.IsNil() || r.Amount0.IsNegative() || r.Amount1.IsNegative() {
		return ErrInvalidAmount.Wrap("range amounts cannot be negative")
	}
	return nil
}
