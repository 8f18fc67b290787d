package token

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20 is the token surface the position engine needs. Write methods execute
// from the position's own account; implementations decide how (live client
// signs transactions, test fakes mutate in-memory ledgers).
type ERC20 interface {
	// Address returns the token contract address.
	Address() common.Address

	// Decimals returns the token's native fixed-point precision.
	Decimals(ctx context.Context) (uint8, error)

	// BalanceOf returns the holder's current balance.
	BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error)

	// Allowance returns the amount spender may currently move from owner.
	Allowance(ctx context.Context, owner, spender common.Address) (sdkmath.Int, error)

	// Approve sets spender's allowance from the position's account.
	Approve(ctx context.Context, spender common.Address, amount sdkmath.Int) error

	// Transfer moves amount from the position's account to the recipient.
	Transfer(ctx context.Context, to common.Address, amount sdkmath.Int) error
}

// Resolver maps a token contract address to a usable client.
// The position engine resolves assets lazily because pool and reward token
// addresses only become known from decoded action payloads.
type Resolver interface {
	Asset(addr common.Address) ERC20
}
