package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper is the token ledger collaborator that holds balances and performs
// transfers. A failed transfer aborts the enclosing operation.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
}

// ShareLedger issues and redeems LP shares. Calls are restricted to the owning
// pool's module; the ledger is scoped per pool through the share denom.
type ShareLedger interface {
	Mint(ctx context.Context, shareDenom string, to sdk.AccAddress, amount math.Int) error
	Burn(ctx context.Context, shareDenom string, from sdk.AccAddress, amount math.Int) error
	TotalSupply(ctx context.Context, shareDenom string) math.Int
}

// MessageTransport delivers liquidity intents to remote replicas. Delivery is
// asynchronous, at-least-once and unordered; once a payload is handed to Send
// there is no cancellation.
type MessageTransport interface {
	QuoteFee(ctx context.Context, destChainID string, payload []byte) (math.Int, error)
	Send(ctx context.Context, destChainID, messageID string, payload []byte, fee math.Int, refundAddr string) error
}
