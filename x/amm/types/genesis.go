package types

// TickRecord binds a tick aggregate to its pool for genesis transport.
type TickRecord struct {
	PoolId uint64 `json:"pool_id"`
	Tick   Tick   `json:"tick"`
}

// RangeRecord binds a liquidity range to its pool for genesis transport.
type RangeRecord struct {
	PoolId uint64 `json:"pool_id"`
	Range  Range  `json:"range"`
}

// GenesisState is the amm module's genesis state.
type GenesisState struct {
	Params            Params        `json:"params"`
	NextPoolId        uint64        `json:"next_pool_id"`
	Pools             []Pool        `json:"pools"`
	Ticks             []TickRecord  `json:"ticks"`
	Ranges            []RangeRecord `json:"ranges"`
	ProcessedMessages []string      `json:"processed_messages"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		NextPoolId: 1,
	}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	poolIDs := make(map[uint64]struct{}, len(gs.Pools))
	pairs := make(map[string]struct{}, len(gs.Pools))
	for _, pool := range gs.Pools {
		if err := pool.Validate(); err != nil {
			return err
		}
		if _, ok := poolIDs[pool.Id]; ok {
			return ErrInvariantViolation.Wrapf("duplicate pool id %d", pool.Id)
		}
		poolIDs[pool.Id] = struct{}{}
		if pool.Active {
			if _, ok := pairs[pool.PairID()]; ok {
				return ErrPairAlreadyExists.Wrapf("duplicate active pool for pair %s", pool.PairID())
			}
			pairs[pool.PairID()] = struct{}{}
		}
		if pool.Id >= gs.NextPoolId {
			return ErrInvariantViolation.Wrapf("pool id %d not below next pool id %d", pool.Id, gs.NextPoolId)
		}
	}

	for _, rec := range gs.Ticks {
		if _, ok := poolIDs[rec.PoolId]; !ok {
			return ErrPoolNotFound.Wrapf("tick record references unknown pool %d", rec.PoolId)
		}
	}
	for _, rec := range gs.Ranges {
		if _, ok := poolIDs[rec.PoolId]; !ok {
			return ErrPoolNotFound.Wrapf("range record references unknown pool %d", rec.PoolId)
		}
		if err := rec.Range.Validate(); err != nil {
			return err
		}
	}
	return nil
}
