package keeper

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

var (
	// PoolKeyPrefix is the prefix for pool records keyed by ID.
	PoolKeyPrefix = []byte{0x01}

	// PoolCountKey is the key for the next pool ID counter.
	PoolCountKey = []byte{0x02}

	// PoolByPairKeyPrefix indexes pool IDs by their ordered asset pair.
	PoolByPairKeyPrefix = []byte{0x03}

	// TickKeyPrefix is the prefix for per-pool tick aggregates.
	TickKeyPrefix = []byte{0x04}

	// RangeKeyPrefix is the prefix for the range arena, keyed
	// (poolID, owner, rangeID).
	RangeKeyPrefix = []byte{0x05}

	// RangeSeqKeyPrefix is the prefix for per-pool range ID counters.
	RangeSeqKeyPrefix = []byte{0x06}

	// ParamsKey is the key for module parameters.
	ParamsKey = []byte{0x07}

	// ReentrancyLockKeyPrefix is the prefix for reentrancy protection locks.
	ReentrancyLockKeyPrefix = []byte{0x08}
)

func uint64Bytes(n uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, n)
	return bz
}

// int32Bytes encodes a tick index order-preservingly by flipping the sign bit.
func int32Bytes(n int32) []byte {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, uint32(n)^0x80000000)
	return bz
}

// PoolKey returns the store key for a pool by ID.
func PoolKey(poolID uint64) []byte {
	return append(PoolKeyPrefix, uint64Bytes(poolID)...)
}

// PoolByPairKey returns the index key for a pool by its ordered pair.
func PoolByPairKey(pairID string) []byte {
	return append(PoolByPairKeyPrefix, []byte(pairID)...)
}

// TickKey returns the store key for a tick aggregate.
func TickKey(poolID uint64, tickIndex int32) []byte {
	key := append(TickKeyPrefix, uint64Bytes(poolID)...)
	return append(key, int32Bytes(tickIndex)...)
}

// TickKeyByPoolPrefix returns the prefix for all ticks of a pool.
func TickKeyByPoolPrefix(poolID uint64) []byte {
	return append(TickKeyPrefix, uint64Bytes(poolID)...)
}

// RangeKey returns the arena key for a range, ordered by creation within
// (poolID, owner).
func RangeKey(poolID uint64, owner sdk.AccAddress, rangeID uint64) []byte {
	key := append(RangeKeyPrefix, uint64Bytes(poolID)...)
	key = append(key, lengthPrefixed(owner)...)
	return append(key, uint64Bytes(rangeID)...)
}

// RangeKeyByOwnerPrefix returns the prefix for all ranges of one owner in a
// pool, iterated in insertion order.
func RangeKeyByOwnerPrefix(poolID uint64, owner sdk.AccAddress) []byte {
	key := append(RangeKeyPrefix, uint64Bytes(poolID)...)
	return append(key, lengthPrefixed(owner)...)
}

// RangeKeyByPoolPrefix returns the prefix for all ranges in a pool.
func RangeKeyByPoolPrefix(poolID uint64) []byte {
	return append(RangeKeyPrefix, uint64Bytes(poolID)...)
}

// RangeSeqKey returns the key for a pool's range ID counter.
func RangeSeqKey(poolID uint64) []byte {
	return append(RangeSeqKeyPrefix, uint64Bytes(poolID)...)
}

// ReentrancyLockKey returns the store key for a reentrancy lock.
func ReentrancyLockKey(lockKey string) []byte {
	return append(ReentrancyLockKeyPrefix, []byte(lockKey)...)
}

func lengthPrefixed(addr sdk.AccAddress) []byte {
	return append([]byte{byte(len(addr))}, addr.Bytes()...)
}
