package types

import (
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Cross-chain packet types for the amm module. Packets are serialized as JSON
// for transport.
const (
	// TransportVersion identifies the liquidity-sync wire protocol.
	TransportVersion = "coral-amm-1"

	// LiquidityPacketType marks a cross-chain liquidity-change intent.
	LiquidityPacketType = "liquidity_sync"
)

// LiquidityPacketData is a cross-chain liquidity-change intent. It is built on
// the sending replica, consumed at most once per (source chain, message id) on
// the receiving replica, and never persisted beyond the single application
// attempt.
type LiquidityPacketData struct {
	Type        string   `json:"type"`
	Sender      string   `json:"sender"`
	BaseDenom   string   `json:"base_denom"`
	QuoteDenom  string   `json:"quote_denom"`
	Amount0     math.Int `json:"amount0"`
	Amount1     math.Int `json:"amount1"`
	LowerTick   int32    `json:"lower_tick"`
	UpperTick   int32    `json:"upper_tick"`
	SourceChain string   `json:"source_chain"`
	IsAdd       bool     `json:"is_add"`
}

// ValidateBasic performs stateless validation of the packet payload.
func (p LiquidityPacketData) ValidateBasic() error {
	if p.Type != LiquidityPacketType {
		return errors.Wrapf(ErrInvalidPacket, "invalid packet type: %s", p.Type)
	}
	if _, err := sdk.AccAddressFromBech32(p.Sender); err != nil {
		return errors.Wrapf(ErrInvalidPacket, "invalid sender address: %s", err)
	}
	if p.BaseDenom == "" || p.QuoteDenom == "" {
		return errors.Wrap(ErrInvalidPacket, "denoms cannot be empty")
	}
	if p.BaseDenom == p.QuoteDenom {
		return errors.Wrap(ErrInvalidPacket, "denoms must differ")
	}
	if p.Amount0.IsNil() || p.Amount0.IsNegative() {
		return errors.Wrap(ErrInvalidPacket, "amount0 cannot be nil or negative")
	}
	if p.Amount1.IsNil() || p.Amount1.IsNegative() {
		return errors.Wrap(ErrInvalidPacket, "amount1 cannot be nil or negative")
	}
	if p.SourceChain == "" {
		return errors.Wrap(ErrInvalidPacket, "source chain cannot be empty")
	}
	if p.IsAdd {
		if !p.Amount0.IsPositive() && !p.Amount1.IsPositive() {
			return errors.Wrap(ErrInvalidPacket, "add intent requires a positive amount")
		}
		if p.LowerTick >= p.UpperTick {
			return errors.Wrapf(ErrInvalidPacket, "lower tick %d must be below upper tick %d", p.LowerTick, p.UpperTick)
		}
	} else if p.LowerTick != 0 || p.UpperTick != 0 {
		// A targeted removal must name a well-formed interval.
		if p.LowerTick >= p.UpperTick {
			return errors.Wrapf(ErrInvalidPacket, "lower tick %d must be below upper tick %d", p.LowerTick, p.UpperTick)
		}
	}
	return nil
}

// GetType returns the packet type identifier.
func (p LiquidityPacketData) GetType() string {
	return p.Type
}

// GetBytes returns the JSON wire form of the packet.
func (p LiquidityPacketData) GetBytes() ([]byte, error) {
	return json.Marshal(p)
}

// ParseLiquidityPacket decodes and validates an inbound liquidity packet.
func ParseLiquidityPacket(bz []byte) (LiquidityPacketData, error) {
	var p LiquidityPacketData
	if err := json.Unmarshal(bz, &p); err != nil {
		return LiquidityPacketData{}, errors.Wrapf(ErrInvalidPacket, "malformed liquidity packet: %s", err)
	}
	if err := p.ValidateBasic(); err != nil {
		return LiquidityPacketData{}, err
	}
	return p, nil
}

// LiquidityPacketAck reports the terminal outcome of an inbound intent.
// Failures are terminal per attempt; resubmission is an external concern.
type LiquidityPacketAck struct {
	Success   bool     `json:"success"`
	Liquidity math.Int `json:"liquidity,omitempty"`
	Amount0   math.Int `json:"amount0,omitempty"`
	Amount1   math.Int `json:"amount1,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// GetBytes returns the JSON wire form of the acknowledgement.
func (a LiquidityPacketAck) GetBytes() ([]byte, error) {
	return json.Marshal(a)
}
