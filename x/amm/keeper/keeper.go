package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// Keeper of the amm store. State-mutating operations are strictly serial
// relative to the replica; the store-based reentrancy guard in guard.go is the
// only local locking primitive.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string

	bankKeeper  types.BankKeeper
	shareLedger types.ShareLedger
	transport   types.MessageTransport

	moduleAddressCache sdk.AccAddress
	metrics            *Metrics
}

// NewKeeper creates a new amm Keeper instance. The authority is the single
// administrator identity allowed to call privileged operations.
func NewKeeper(
	key storetypes.StoreKey,
	authority string,
	bankKeeper types.BankKeeper,
	shareLedger types.ShareLedger,
	transport types.MessageTransport,
) *Keeper {
	return &Keeper{
		storeKey:           key,
		authority:          authority,
		bankKeeper:         bankKeeper,
		shareLedger:        shareLedger,
		transport:          transport,
		moduleAddressCache: authtypes.NewModuleAddress(types.ModuleName),
		metrics:            NewMetrics(),
	}
}

// GetAuthority returns the module's configured administrator identity.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// GetModuleAddress returns the cached module account address holding pool
// custody balances.
func (k Keeper) GetModuleAddress() sdk.AccAddress {
	return k.moduleAddressCache
}

// getStore returns the KVStore for the amm module.
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// Logger returns a module-tagged logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// marshal encodes a state record to its stored JSON form. The module's wire
// payloads are JSON; state records share the encoding.
func marshal(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return bz, nil
}

func unmarshal(bz []byte, v any) error {
	if err := json.Unmarshal(bz, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}
