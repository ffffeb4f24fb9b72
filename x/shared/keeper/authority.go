// Package keeper provides shared keeper utilities for cross-module use.
package keeper

import (
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
)

// ValidateAuthority checks that the provided authority matches the expected
// authority. Used for administrator-gated operations such as pool creation and
// parameter updates.
func ValidateAuthority(expected, actual string) error {
	if expected != actual {
		return govtypes.ErrInvalidSigner.Wrapf(
			"invalid authority; expected %s, got %s",
			expected,
			actual,
		)
	}
	return nil
}
