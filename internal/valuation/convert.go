/*

This file contains fixed-point unit conversion between the 18-decimal pool
token unit and a liquidity asset's native precision. All arithmetic is
unsigned and explicitly checked; a conversion that cannot be represented
aborts rather than wrapping or clamping.

*/

package valuation

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/enzymefinance/maple-position/internal/types"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
)

// scaleFactor returns 10^decimals as an Int.
func scaleFactor(decimals uint8) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(1, int(decimals))
}

// PoolTokensToLiquidityAsset converts an 18-decimal pool token amount into
// the liquidity asset's native precision, truncating any sub-unit remainder.
func PoolTokensToLiquidityAsset(poolTokens sdkmath.Int, assetDecimals uint8) (sdkmath.Int, error) {
	if err := validateAmount(poolTokens); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if assetDecimals > types.PoolTokenDecimals {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: asset decimals %d exceed pool token precision", ErrInvalidPrecision, assetDecimals)
	}

	scaled, err := poolTokens.SafeMul(scaleFactor(assetDecimals))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", types.ErrValuationOverflow, err)
	}
	return scaled.Quo(scaleFactor(types.PoolTokenDecimals)), nil
}

// LiquidityAssetToPoolTokens converts a liquidity asset amount into the
// 18-decimal pool token unit. The conversion is exact: pool token precision
// is never lower than any supported asset's.
func LiquidityAssetToPoolTokens(amount sdkmath.Int, assetDecimals uint8) (sdkmath.Int, error) {
	if err := validateAmount(amount); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if assetDecimals > types.PoolTokenDecimals {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: asset decimals %d exceed pool token precision", ErrInvalidPrecision, assetDecimals)
	}

	scaled, err := amount.SafeMul(scaleFactor(types.PoolTokenDecimals))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", types.ErrValuationOverflow, err)
	}
	return scaled.Quo(scaleFactor(assetDecimals)), nil
}

func validateAmount(amount sdkmath.Int) error {
	if amount.IsNil() {
		return ErrAmountNil
	}
	if amount.IsNegative() {
		return ErrAmountNegative
	}
	return nil
}
