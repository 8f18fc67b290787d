/*

This file contains the per-pool valuation computation: the liquidity-asset
value of a position's stake in one Maple pool at the current instant. The
result is owned by the caller and never cached; solvency passes regenerate
it on every query.

*/

package valuation

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/maple"
	"github.com/enzymefinance/maple-position/internal/token"
	"github.com/enzymefinance/maple-position/internal/types"
)

// NetPoolValue computes the holder's current value in one pool, denominated
// in the pool's liquidity asset:
//
//	value = poolTokenBalance (converted to asset precision)
//	      + withdrawable accrued interest
//	      - recognizable losses
//
// Losses exceeding balance plus interest abort the query. The pool reporting
// such a state is lying about one of the three figures, and a silently
// wrapped valuation would poison every downstream solvency computation.
func NetPoolValue(ctx context.Context, pool maple.Pool, assets token.Resolver, holder common.Address) (types.AssetBalance, error) {
	assetAddr, err := pool.LiquidityAsset(ctx)
	if err != nil {
		return types.AssetBalance{}, fmt.Errorf("failed to resolve liquidity asset of pool %s: %w", pool.Address().Hex(), err)
	}

	decimals, err := assets.Asset(assetAddr).Decimals(ctx)
	if err != nil {
		return types.AssetBalance{}, fmt.Errorf("failed to read decimals of asset %s: %w", assetAddr.Hex(), err)
	}

	poolTokens, err := pool.BalanceOf(ctx, holder)
	if err != nil {
		return types.AssetBalance{}, fmt.Errorf("failed to read pool token balance in %s: %w", pool.Address().Hex(), err)
	}

	equity, err := PoolTokensToLiquidityAsset(poolTokens, decimals)
	if err != nil {
		return types.AssetBalance{}, fmt.Errorf("pool %s: %w", pool.Address().Hex(), err)
	}

	interest, err := pool.WithdrawableFundsOf(ctx, holder)
	if err != nil {
		return types.AssetBalance{}, fmt.Errorf("failed to read withdrawable funds in %s: %w", pool.Address().Hex(), err)
	}

	losses, err := pool.RecognizableLossesOf(ctx, holder)
	if err != nil {
		return types.AssetBalance{}, fmt.Errorf("failed to read recognizable losses in %s: %w", pool.Address().Hex(), err)
	}

	gross, err := equity.SafeAdd(interest)
	if err != nil {
		return types.AssetBalance{}, fmt.Errorf("%w: pool %s: %w", types.ErrValuationOverflow, pool.Address().Hex(), err)
	}

	net, err := gross.SafeSub(losses)
	if err != nil || net.IsNegative() {
		return types.AssetBalance{}, fmt.Errorf("%w: pool %s reports losses %s against value %s",
			types.ErrValuationUnderflow, pool.Address().Hex(), losses, gross)
	}

	return types.AssetBalance{Asset: assetAddr, Amount: net}, nil
}
