/*

This file contains the safe-guarded approve/transfer primitives shared by all
command handlers. Allowances are only ever raised to exactly what the next
operation needs, so a compromised integration target can never drain more
than the in-flight amount.

*/

package token

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/types"
)

// ApproveAsNeeded ensures spender's allowance from owner is at least amount.
// An already-sufficient allowance is reused untouched; an insufficient one is
// raised to exactly amount. Allowances are never lowered and never unbounded.
func ApproveAsNeeded(ctx context.Context, asset ERC20, owner, spender common.Address, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%w: approval amount %s", types.ErrInvalidAmount, amount)
	}

	allowance, err := asset.Allowance(ctx, owner, spender)
	if err != nil {
		return fmt.Errorf("failed to read allowance of %s for %s: %w", asset.Address().Hex(), spender.Hex(), err)
	}
	if allowance.GTE(amount) {
		return nil
	}

	if err := asset.Approve(ctx, spender, amount); err != nil {
		return fmt.Errorf("failed to approve %s of %s for %s: %w", amount, asset.Address().Hex(), spender.Hex(), err)
	}
	return nil
}

// ForwardEntireBalance transfers the position's whole balance of asset to the
// recipient and returns the amount moved. A zero balance is a no-op, not an
// error, because claim flows legitimately produce nothing to forward.
func ForwardEntireBalance(ctx context.Context, asset ERC20, holder, to common.Address) (sdkmath.Int, error) {
	balance, err := asset.BalanceOf(ctx, holder)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read balance of %s: %w", asset.Address().Hex(), err)
	}
	if balance.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	if err := asset.Transfer(ctx, to, balance); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to forward %s of %s to %s: %w", balance, asset.Address().Hex(), to.Hex(), err)
	}
	return balance, nil
}
