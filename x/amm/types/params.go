package types

import (
	"cosmossdk.io/math"
)

// Params holds module configuration mutated only through the admin surface.
type Params struct {
	// MinLiquidity is the smallest liquidity figure a new range may carry.
	MinLiquidity math.Int `json:"min_liquidity"`
	// Amplification is the Stableswap amplification coefficient for stable pairs.
	Amplification uint64 `json:"amplification"`
	// SupportedChains is the allowlist of cross-chain replica identifiers.
	SupportedChains []string `json:"supported_chains"`
}

// DefaultParams returns default parameters for the amm module.
func DefaultParams() Params {
	return Params{
		MinLiquidity:    math.NewInt(1),
		Amplification:   DefaultAmplification,
		SupportedChains: []string{},
	}
}

// Validate performs basic validation of module parameters.
func (p Params) Validate() error {
	if p.MinLiquidity.IsNil() || p.MinLiquidity.IsNegative() {
		return ErrInvalidAmount.Wrap("min liquidity cannot be nil or negative")
	}
	if p.Amplification == 0 {
		return ErrInvalidAmount.Wrap("amplification cannot be zero")
	}
	seen := make(map[string]struct{}, len(p.SupportedChains))
	for _, chain := range p.SupportedChains {
		if chain == "" {
			return ErrUnsupportedChain.Wrap("chain identifier cannot be empty")
		}
		if _, ok := seen[chain]; ok {
			return ErrUnsupportedChain.Wrapf("duplicate chain identifier %s", chain)
		}
		seen[chain] = struct{}{}
	}
	return nil
}

// IsChainSupported reports whether chainID is on the allowlist.
func (p Params) IsChainSupported(chainID string) bool {
	for _, chain := range p.SupportedChains {
		if chain == chainID {
			return true
		}
	}
	return false
}
