package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// The execution environment runs one operation to completion before the next
// begins, so a store-backed lock is only needed to reject re-entry of a
// state-mutating operation from within itself.

func poolLockKey(poolID uint64) string {
	return fmt.Sprintf("pool/%d", poolID)
}

// acquireLock takes the reentrancy lock for key, failing if it is held.
func (k Keeper) acquireLock(ctx sdk.Context, key string) error {
	store := ctx.KVStore(k.storeKey)
	lockKey := ReentrancyLockKey(key)
	if store.Has(lockKey) {
		return types.ErrReentrantCall.Wrapf("lock %s already held", key)
	}
	store.Set(lockKey, []byte{1})
	return nil
}

// releaseLock releases the reentrancy lock for key.
func (k Keeper) releaseLock(ctx sdk.Context, key string) {
	ctx.KVStore(k.storeKey).Delete(ReentrancyLockKey(key))
}

// withPoolLock runs fn under the pool's reentrancy lock.
func (k Keeper) withPoolLock(ctx sdk.Context, poolID uint64, fn func() error) error {
	key := poolLockKey(poolID)
	if err := k.acquireLock(ctx, key); err != nil {
		return err
	}
	defer k.releaseLock(ctx, key)
	return fn()
}
