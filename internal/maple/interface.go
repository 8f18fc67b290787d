package maple

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Pool defines the surface of one Maple liquidity pool this engine speaks.
// Write methods execute from the position's account. All methods are fallible
// remote calls; a failure must unwind the whole enclosing operation.
type Pool interface {
	// Address returns the pool contract address.
	Address() common.Address

	// LiquidityAsset returns the pool's underlying deposit asset.
	LiquidityAsset(ctx context.Context) (common.Address, error)

	// BalanceOf returns the holder's pool token balance (18-decimal units).
	// Custodied (staked) tokens remain part of this balance.
	BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error)

	// WithdrawableFundsOf returns the holder's accrued, withdrawable interest
	// denominated in the liquidity asset.
	WithdrawableFundsOf(ctx context.Context, holder common.Address) (sdkmath.Int, error)

	// RecognizableLossesOf returns the holder's share of recognized defaults
	// denominated in the liquidity asset.
	RecognizableLossesOf(ctx context.Context, holder common.Address) (sdkmath.Int, error)

	// Deposit supplies liquidity asset to the pool, minting pool tokens.
	Deposit(ctx context.Context, liquidityAssetAmount sdkmath.Int) error

	// IntendToWithdraw starts the pool's withdrawal cooldown window.
	IntendToWithdraw(ctx context.Context) error

	// Withdraw burns pool tokens for liquidity asset and settles accrued
	// interest in the same call. The amount is denominated in the liquidity
	// asset's precision, per the pool's own withdraw convention.
	Withdraw(ctx context.Context, liquidityAssetAmount sdkmath.Int) error

	// WithdrawFunds pays out accrued interest without touching principal.
	WithdrawFunds(ctx context.Context) error

	// IncreaseCustodyAllowance lets custodian take custody of pool tokens
	// without transferring them off the position's balance.
	IncreaseCustodyAllowance(ctx context.Context, custodian common.Address, amount sdkmath.Int) error

	// CustodyAllowance returns the amount custodian may currently custody.
	CustodyAllowance(ctx context.Context, owner, custodian common.Address) (sdkmath.Int, error)
}

// Rewards defines the surface of a Maple staking rewards contract.
type Rewards interface {
	// Address returns the rewards contract address.
	Address() common.Address

	// RewardsToken returns the token rewards are paid in.
	RewardsToken(ctx context.Context) (common.Address, error)

	// Stake stakes custodied pool tokens.
	Stake(ctx context.Context, amount sdkmath.Int) error

	// Withdraw unstakes the given amount of pool tokens.
	Withdraw(ctx context.Context, amount sdkmath.Int) error

	// GetReward claims all accrued reward tokens to the position.
	GetReward(ctx context.Context) error
}

// Registry answers whether a target address is a genuine deployment of the
// expected factories. Handlers use it as their precondition check; it is a
// capability of the integration, not of this engine.
type Registry interface {
	// IsPool reports whether addr was deployed by the recognized pool factory.
	IsPool(ctx context.Context, addr common.Address) (bool, error)

	// IsRewardsContract reports whether addr was deployed by the recognized
	// rewards factory.
	IsRewardsContract(ctx context.Context, addr common.Address) (bool, error)
}

// Clients resolves pool and rewards contract addresses into usable clients.
// Addresses only become known from decoded action payloads, so resolution is
// lazy by design.
type Clients interface {
	Pool(addr common.Address) Pool
	Rewards(addr common.Address) Rewards
}
