package keeper

import (
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/coral-chain/coral/x/amm/types"
)

// InitGenesis initializes the amm module state from a genesis state.
func (k Keeper) InitGenesis(ctx sdk.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return err
	}
	k.SetNextPoolID(ctx, genState.NextPoolId)

	rangeSeqs := make(map[uint64]uint64)
	for i := range genState.Pools {
		pool := genState.Pools[i]
		if err := k.SetPool(ctx, &pool); err != nil {
			return err
		}
		if pool.Active {
			k.getStore(ctx).Set(PoolByPairKey(pool.PairID()), uint64Bytes(pool.Id))
		}
	}
	for _, rec := range genState.Ticks {
		if err := k.SetTick(ctx, rec.PoolId, rec.Tick); err != nil {
			return err
		}
	}
	for _, rec := range genState.Ranges {
		owner, err := sdk.AccAddressFromBech32(rec.Range.Owner)
		if err != nil {
			return types.ErrInvalidAmount.Wrapf("range %d owner: %s", rec.Range.Id, err)
		}
		if err := k.SetRange(ctx, rec.PoolId, owner, rec.Range); err != nil {
			return err
		}
		if rec.Range.Id >= rangeSeqs[rec.PoolId] {
			rangeSeqs[rec.PoolId] = rec.Range.Id + 1
		}
	}
	for poolID, next := range rangeSeqs {
		k.SetRangeSeq(ctx, poolID, next)
	}

	mgr := k.replayManager()
	blockTime := ctx.BlockTime().Unix()
	for _, key := range genState.ProcessedMessages {
		if !strings.Contains(key, "/") {
			return types.ErrInvalidPacket.Wrapf("malformed processed message key %q", key)
		}
		mgr.Restore(ctx, key, blockTime)
	}
	return nil
}

// ExportGenesis returns the amm module's exported genesis state.
func (k Keeper) ExportGenesis(ctx sdk.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}

	genState := types.GenesisState{
		Params:     params,
		NextPoolId: 1,
	}
	if bz := k.getStore(ctx).Get(PoolCountKey); bz != nil {
		genState.NextPoolId = sdk.BigEndianToUint64(bz)
	}

	if err := k.IteratePools(ctx, func(pool types.Pool) bool {
		genState.Pools = append(genState.Pools, pool)
		return false
	}); err != nil {
		return nil, err
	}

	for _, pool := range genState.Pools {
		if err := k.IterateTicks(ctx, pool.Id, func(tick types.Tick) bool {
			genState.Ticks = append(genState.Ticks, types.TickRecord{PoolId: pool.Id, Tick: tick})
			return false
		}); err != nil {
			return nil, err
		}
		if err := k.IterateRanges(ctx, pool.Id, func(rng types.Range) bool {
			genState.Ranges = append(genState.Ranges, types.RangeRecord{PoolId: pool.Id, Range: rng})
			return false
		}); err != nil {
			return nil, err
		}
	}

	genState.ProcessedMessages = k.replayManager().ProcessedKeys(ctx)

	if err := genState.Validate(); err != nil {
		return nil, fmt.Errorf("export produced invalid genesis: %w", err)
	}
	return &genState, nil
}
