// Package replay provides shared inbound-message replay protection for modules
// that apply cross-chain intents delivered over an at-least-once transport.
// Exactly-once application semantics are layered on top by recording every
// processed (origin, message id) idempotency key.
package replay

import (
	"encoding/binary"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ProcessedPrefix is the store prefix for processed idempotency keys.
	ProcessedPrefix = "replay"
	// OutboundSeqPrefix is the store prefix for outbound sequence counters.
	OutboundSeqPrefix = "replay_seq"

	// DefaultRetentionSeconds is how long processed keys are retained before
	// pruning (7 days). Retention must exceed the transport's redelivery
	// horizon or a late duplicate could be applied twice.
	DefaultRetentionSeconds = int64(604800)
)

// ErrorProvider lets modules surface replay failures with their own error
// types while sharing the detection logic.
type ErrorProvider interface {
	// DuplicateMessageError returns an error for an already-processed message.
	DuplicateMessageError(msg string) error
	// InvalidMessageError returns an error for a malformed message identity.
	InvalidMessageError(msg string) error
}

// Manager records processed inbound message keys and hands out monotonically
// increasing outbound sequence numbers per destination.
type Manager struct {
	storeKey      storetypes.StoreKey
	errorProvider ErrorProvider
	moduleName    string
}

// NewManager creates a replay manager for a module.
func NewManager(storeKey storetypes.StoreKey, errorProvider ErrorProvider, moduleName string) *Manager {
	return &Manager{
		storeKey:      storeKey,
		errorProvider: errorProvider,
		moduleName:    moduleName,
	}
}

func (m *Manager) processedKey(origin, messageID string) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", ProcessedPrefix, origin, messageID))
}

func (m *Manager) outboundSeqKey(destination string) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", OutboundSeqPrefix, destination, m.moduleName))
}

func encodeInt64(n int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(n))
	return bz
}

func decodeInt64(bz []byte) int64 {
	if len(bz) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(bz))
}

// IsProcessed reports whether the (origin, messageID) idempotency key has
// already been applied.
func (m *Manager) IsProcessed(ctx sdk.Context, origin, messageID string) bool {
	if origin == "" || messageID == "" {
		return false
	}
	return ctx.KVStore(m.storeKey).Has(m.processedKey(origin, messageID))
}

// MarkProcessed records the idempotency key with the current block time.
// A second call for the same key fails with the module's duplicate error.
func (m *Manager) MarkProcessed(ctx sdk.Context, origin, messageID string) error {
	if origin == "" {
		return m.errorProvider.InvalidMessageError("origin cannot be empty")
	}
	if messageID == "" {
		return m.errorProvider.InvalidMessageError("message id cannot be empty")
	}

	store := ctx.KVStore(m.storeKey)
	key := m.processedKey(origin, messageID)
	if store.Has(key) {
		return m.errorProvider.DuplicateMessageError(
			fmt.Sprintf("message %s from %s already processed", messageID, origin))
	}
	store.Set(key, encodeInt64(ctx.BlockTime().Unix()))
	return nil
}

// ProcessedKeys returns all recorded idempotency keys as "origin/messageID"
// strings, for genesis export.
func (m *Manager) ProcessedKeys(ctx sdk.Context) []string {
	store := ctx.KVStore(m.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, []byte(ProcessedPrefix+"/"))
	defer iterator.Close()

	var keys []string
	for ; iterator.Valid(); iterator.Next() {
		keys = append(keys, string(iterator.Key()[len(ProcessedPrefix)+1:]))
	}
	return keys
}

// Restore re-records an idempotency key without duplicate checking, for
// genesis import. The key is "origin/messageID".
func (m *Manager) Restore(ctx sdk.Context, key string, timestamp int64) {
	ctx.KVStore(m.storeKey).Set([]byte(ProcessedPrefix+"/"+key), encodeInt64(timestamp))
}

// PruneProcessed removes processed keys older than the retention window and
// returns how many were dropped. Duplicates arriving after pruning are the
// transport's responsibility; retention must cover its redelivery horizon.
func (m *Manager) PruneProcessed(ctx sdk.Context, retentionSeconds int64) int {
	if retentionSeconds <= 0 {
		retentionSeconds = DefaultRetentionSeconds
	}
	cutoff := ctx.BlockTime().Unix() - retentionSeconds

	store := ctx.KVStore(m.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, []byte(ProcessedPrefix+"/"))
	defer iterator.Close()

	var stale [][]byte
	for ; iterator.Valid(); iterator.Next() {
		if decodeInt64(iterator.Value()) < cutoff {
			key := make([]byte, len(iterator.Key()))
			copy(key, iterator.Key())
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		store.Delete(key)
	}
	return len(stale)
}

// NextOutboundSequence atomically increments and returns the outbound sequence
// number for a destination chain. Sequences only disambiguate message ids from
// this replica; ordering across the transport is not implied.
func (m *Manager) NextOutboundSequence(ctx sdk.Context, destination string) uint64 {
	store := ctx.KVStore(m.storeKey)
	key := m.outboundSeqKey(destination)

	var seq uint64
	if bz := store.Get(key); len(bz) == 8 {
		seq = binary.BigEndian.Uint64(bz)
	}
	seq++

	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, seq)
	store.Set(key, bz)
	return seq
}
