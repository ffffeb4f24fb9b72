package keeper

import (
	"context"
	"encoding/binary"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// nextRangeID returns the next range ID for a pool and increments the counter.
// Range IDs are monotone per pool, so iteration over an owner's prefix yields
// insertion order.
func (k Keeper) nextRangeID(ctx context.Context, poolID uint64) uint64 {
	store := k.getStore(ctx)

	rangeID := uint64(1)
	if bz := store.Get(RangeSeqKey(poolID)); bz != nil {
		rangeID = binary.BigEndian.Uint64(bz)
	}
	store.Set(RangeSeqKey(poolID), uint64Bytes(rangeID+1))
	return rangeID
}

// SetRangeSeq sets a pool's range ID counter, for genesis import.
func (k Keeper) SetRangeSeq(ctx context.Context, poolID, next uint64) {
	k.getStore(ctx).Set(RangeSeqKey(poolID), uint64Bytes(next))
}

// appendRange stores a new range for owner and assigns its ID.
func (k Keeper) appendRange(ctx context.Context, poolID uint64, owner sdk.AccAddress, rng types.Range) (types.Range, error) {
	rng.Id = k.nextRangeID(ctx, poolID)
	rng.Owner = owner.String()
	if err := rng.Validate(); err != nil {
		return types.Range{}, err
	}
	if err := k.SetRange(ctx, poolID, owner, rng); err != nil {
		return types.Range{}, err
	}
	return rng, nil
}

// SetRange saves a range record.
func (k Keeper) SetRange(ctx context.Context, poolID uint64, owner sdk.AccAddress, rng types.Range) error {
	bz, err := marshal(rng)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(RangeKey(poolID, owner, rng.Id), bz)
	return nil
}

// deleteRange removes a range record. Ranges whose liquidity reaches zero are
// deleted rather than kept inert.
func (k Keeper) deleteRange(ctx context.Context, poolID uint64, owner sdk.AccAddress, rangeID uint64) {
	k.getStore(ctx).Delete(RangeKey(poolID, owner, rangeID))
}

// IterateRangesByOwner iterates one owner's ranges in a pool in insertion
// order.
func (k Keeper) IterateRangesByOwner(ctx context.Context, poolID uint64, owner sdk.AccAddress, cb func(rng types.Range) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, RangeKeyByOwnerPrefix(poolID, owner))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var rng types.Range
		if err := unmarshal(iterator.Value(), &rng); err != nil {
			return fmt.Errorf("IterateRangesByOwner: %w", err)
		}
		if cb(rng) {
			break
		}
	}
	return nil
}

// IterateRanges iterates all ranges in a pool.
func (k Keeper) IterateRanges(ctx context.Context, poolID uint64, cb func(rng types.Range) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, RangeKeyByPoolPrefix(poolID))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var rng types.Range
		if err := unmarshal(iterator.Value(), &rng); err != nil {
			return fmt.Errorf("IterateRanges: %w", err)
		}
		if cb(rng) {
			break
		}
	}
	return nil
}

// GetRangesByOwner returns one owner's live ranges in a pool, insertion order.
func (k Keeper) GetRangesByOwner(ctx context.Context, poolID uint64, owner sdk.AccAddress) ([]types.Range, error) {
	var ranges []types.Range
	err := k.IterateRangesByOwner(ctx, poolID, owner, func(rng types.Range) bool {
		ranges = append(ranges, rng)
		return false
	})
	return ranges, err
}
