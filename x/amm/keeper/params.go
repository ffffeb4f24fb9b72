package keeper

import (
	"context"

	sharedkeeper "github.com/coral-chain/coral/x/shared/keeper"

	"github.com/coral-chain/coral/x/amm/types"
)

// GetParams returns the current module parameters from the store.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	store := k.getStore(ctx)
	bz := store.Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams(), nil
	}

	var params types.Params
	if err := unmarshal(bz, &params); err != nil {
		return types.Params{}, err
	}
	return params, nil
}

// SetParams stores the module parameters.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := marshal(params)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(ParamsKey, bz)
	return nil
}

// SetSupportedChain adds or removes a chain from the cross-chain allowlist.
// Restricted to the administrator identity.
func (k Keeper) SetSupportedChain(ctx context.Context, authority, chainID string, supported bool) error {
	if err := sharedkeeper.ValidateAuthority(k.authority, authority); err != nil {
		return err
	}
	if chainID == "" {
		return types.ErrUnsupportedChain.Wrap("chain identifier cannot be empty")
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}

	chains := params.SupportedChains[:0:0]
	for _, chain := range params.SupportedChains {
		if chain != chainID {
			chains = append(chains, chain)
		}
	}
	if supported {
		chains = append(chains, chainID)
	}
	params.SupportedChains = chains
	return k.SetParams(ctx, params)
}
