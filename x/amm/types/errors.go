package types

import (
	"cosmossdk.io/errors"
)

// AMM module sentinel errors
var (
	ErrInvalidDenom          = errors.Register(ModuleName, 2, "invalid token denomination")
	ErrPoolNotFound          = errors.Register(ModuleName, 3, "pool not found")
	ErrPairAlreadyExists     = errors.Register(ModuleName, 4, "pool already exists for pair")
	ErrFeeOutOfBounds        = errors.Register(ModuleName, 5, "fee basis points out of bounds")
	ErrInvalidTickRange      = errors.Register(ModuleName, 6, "invalid tick range")
	ErrTickOutOfRange        = errors.Register(ModuleName, 7, "tick out of range")
	ErrSqrtPriceOutOfRange   = errors.Register(ModuleName, 8, "sqrt price out of range")
	ErrInvalidAmount         = errors.Register(ModuleName, 9, "invalid amount")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 10, "insufficient liquidity")
	ErrSlippageExceeded      = errors.Register(ModuleName, 11, "output amount less than minimum required")
	ErrUnsupportedChain      = errors.Register(ModuleName, 12, "unsupported destination chain")
	ErrTransferFailed        = errors.Register(ModuleName, 13, "token transfer failed")
	ErrShareLedgerFailed     = errors.Register(ModuleName, 14, "share ledger operation failed")
	ErrRangeNotFound         = errors.Register(ModuleName, 15, "liquidity range not found")
	ErrUnauthorized          = errors.Register(ModuleName, 16, "unauthorized")
	ErrPoolInactive          = errors.Register(ModuleName, 17, "pool is inactive")
	ErrInvalidPacket         = errors.Register(ModuleName, 18, "invalid packet")
	ErrDuplicateMessage      = errors.Register(ModuleName, 19, "duplicate cross-chain message")
	ErrReentrantCall         = errors.Register(ModuleName, 20, "reentrant call")
	ErrInvariantViolation    = errors.Register(ModuleName, 21, "invariant violation")
	ErrTransportFailed       = errors.Register(ModuleName, 22, "message transport failed")
)
