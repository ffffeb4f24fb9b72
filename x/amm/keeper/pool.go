package keeper

import (
	"context"
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedkeeper "github.com/coral-chain/coral/x/shared/keeper"

	"github.com/coral-chain/coral/x/amm/types"
)

// MaxIterationLimit bounds unbounded enumeration queries.
const MaxIterationLimit = 100

// GetNextPoolID returns the next pool ID and increments the counter.
func (k Keeper) GetNextPoolID(ctx context.Context) uint64 {
	store := k.getStore(ctx)

	poolID := uint64(1)
	if bz := store.Get(PoolCountKey); bz != nil {
		poolID = binary.BigEndian.Uint64(bz)
	}
	store.Set(PoolCountKey, uint64Bytes(poolID+1))
	return poolID
}

// SetNextPoolID sets the next pool ID counter, for genesis import.
func (k Keeper) SetNextPoolID(ctx context.Context, poolID uint64) {
	k.getStore(ctx).Set(PoolCountKey, uint64Bytes(poolID))
}

// CreatePool registers a new pool for an ordered asset pair. Restricted to the
// administrator identity; at most one active pool may exist per pair, and the
// pool's LP share ledger denom is allocated here exactly once.
func (k Keeper) CreatePool(ctx context.Context, authority, baseDenom, quoteDenom string, feeBps uint32, feeRecipient string, stablePair bool) (*types.Pool, error) {
	if err := sharedkeeper.ValidateAuthority(k.authority, authority); err != nil {
		return nil, err
	}

	if baseDenom == "" || quoteDenom == "" {
		return nil, types.ErrInvalidDenom.Wrap("denoms cannot be empty")
	}
	if baseDenom == quoteDenom {
		return nil, types.ErrInvalidDenom.Wrap("cannot create pool with identical denoms")
	}
	if feeBps > types.MaxFeeBps {
		return nil, types.ErrFeeOutOfBounds.Wrapf("fee %d bps exceeds maximum %d", feeBps, types.MaxFeeBps)
	}
	if _, err := sdk.AccAddressFromBech32(feeRecipient); err != nil {
		return nil, types.ErrInvalidDenom.Wrapf("invalid fee recipient: %s", err)
	}

	pairID := types.PairID(baseDenom, quoteDenom)
	if existing, err := k.GetPoolByPair(ctx, baseDenom, quoteDenom); err == nil && existing.Active {
		return nil, types.ErrPairAlreadyExists.Wrapf("active pool %d exists for pair %s", existing.Id, pairID)
	}

	poolID := k.GetNextPoolID(ctx)

	sqrtPrice, err := types.SqrtPriceAtTick(0)
	if err != nil {
		return nil, fmt.Errorf("CreatePool: seed sqrt price: %w", err)
	}

	pool := &types.Pool{
		Id:               poolID,
		BaseDenom:        baseDenom,
		QuoteDenom:       quoteDenom,
		ShareDenom:       types.ShareDenomForPool(poolID),
		FeeBps:           feeBps,
		FeeRecipient:     feeRecipient,
		StablePair:       stablePair,
		Active:           true,
		Reserve0:         math.ZeroInt(),
		Reserve1:         math.ZeroInt(),
		TotalLiquidity:   math.ZeroInt(),
		CurrentTick:      0,
		CurrentSqrtPrice: sqrtPrice,
	}
	if err := pool.Validate(); err != nil {
		return nil, err
	}

	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}
	k.getStore(ctx).Set(PoolByPairKey(pairID), uint64Bytes(poolID))

	if k.metrics != nil {
		k.metrics.PoolsTotal.Inc()
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolCreated,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyBaseDenom, baseDenom),
			sdk.NewAttribute(types.AttributeKeyQuoteDenom, quoteDenom),
			sdk.NewAttribute(types.AttributeKeyShareDenom, pool.ShareDenom),
			sdk.NewAttribute(types.AttributeKeyFeeBps, fmt.Sprintf("%d", feeBps)),
			sdk.NewAttribute(types.AttributeKeyFeeRecipient, feeRecipient),
			sdk.NewAttribute(types.AttributeKeyStablePair, fmt.Sprintf("%t", stablePair)),
		),
	)

	return pool, nil
}

// GetPool retrieves a pool by its numeric ID, active or not.
func (k Keeper) GetPool(ctx context.Context, poolID uint64) (*types.Pool, error) {
	bz := k.getStore(ctx).Get(PoolKey(poolID))
	if bz == nil {
		return nil, types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}

	var pool types.Pool
	if err := unmarshal(bz, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

// GetActivePool retrieves a pool by ID and requires it to be active.
func (k Keeper) GetActivePool(ctx context.Context, poolID uint64) (*types.Pool, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if !pool.Active {
		return nil, types.ErrPoolInactive.Wrapf("pool %d is deactivated", poolID)
	}
	return pool, nil
}

// SetPool saves a pool to the store.
func (k Keeper) SetPool(ctx context.Context, pool *types.Pool) error {
	bz, err := marshal(pool)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(PoolKey(pool.Id), bz)
	return nil
}

// GetPoolByPair retrieves the pool registered for the ordered (base, quote)
// pair.
func (k Keeper) GetPoolByPair(ctx context.Context, baseDenom, quoteDenom string) (*types.Pool, error) {
	pairID := types.PairID(baseDenom, quoteDenom)
	bz := k.getStore(ctx).Get(PoolByPairKey(pairID))
	if bz == nil {
		return nil, types.ErrPoolNotFound.Wrapf("no pool for pair %s", pairID)
	}
	return k.GetPool(ctx, binary.BigEndian.Uint64(bz))
}

// HasPool reports whether an active pool exists for the ordered pair.
func (k Keeper) HasPool(ctx context.Context, baseDenom, quoteDenom string) bool {
	pool, err := k.GetPoolByPair(ctx, baseDenom, quoteDenom)
	return err == nil && pool.Active
}

// DeactivatePool marks a pool inactive. Pools are never physically deleted.
// Restricted to the administrator identity.
func (k Keeper) DeactivatePool(ctx context.Context, authority string, poolID uint64) error {
	if err := sharedkeeper.ValidateAuthority(k.authority, authority); err != nil {
		return err
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if !pool.Active {
		return types.ErrPoolInactive.Wrapf("pool %d already deactivated", poolID)
	}

	pool.Active = false
	if err := k.SetPool(ctx, pool); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolDeactivated,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
		),
	)
	return nil
}

// SetFeeBps updates a pool's swap fee. Restricted to the administrator
// identity.
func (k Keeper) SetFeeBps(ctx context.Context, authority string, poolID uint64, feeBps uint32) error {
	if err := sharedkeeper.ValidateAuthority(k.authority, authority); err != nil {
		return err
	}
	if feeBps > types.MaxFeeBps {
		return types.ErrFeeOutOfBounds.Wrapf("fee %d bps exceeds maximum %d", feeBps, types.MaxFeeBps)
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	pool.FeeBps = feeBps
	return k.SetPool(ctx, pool)
}

// SetFeeRecipient updates a pool's fee recipient. Restricted to the
// administrator identity.
func (k Keeper) SetFeeRecipient(ctx context.Context, authority string, poolID uint64, feeRecipient string) error {
	if err := sharedkeeper.ValidateAuthority(k.authority, authority); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(feeRecipient); err != nil {
		return types.ErrInvalidDenom.Wrapf("invalid fee recipient: %s", err)
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	pool.FeeRecipient = feeRecipient
	return k.SetPool(ctx, pool)
}

// IteratePools iterates over all pools in ID order.
func (k Keeper) IteratePools(ctx context.Context, cb func(pool types.Pool) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := unmarshal(iterator.Value(), &pool); err != nil {
			return fmt.Errorf("IteratePools: %w", err)
		}
		if cb(pool) {
			break
		}
	}
	return nil
}

// GetAllPools returns all pools up to MaxIterationLimit.
func (k Keeper) GetAllPools(ctx context.Context) ([]types.Pool, error) {
	pools := make([]types.Pool, 0, MaxIterationLimit)
	err := k.IteratePools(ctx, func(pool types.Pool) bool {
		if len(pools) >= MaxIterationLimit {
			return true
		}
		pools = append(pools, pool)
		return false
	})
	return pools, err
}
