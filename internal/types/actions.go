/*

This file contains the action protocol spoken between the owning vault and a
Maple external position: the closed set of action identifiers and the typed
argument tuples each identifier carries.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// ActionID is the discriminant of the vault-to-position command envelope.
// The numbering is part of the external protocol and must never be reordered.
type ActionID uint8

const (
	ActionLend ActionID = iota
	ActionIntendToRedeem
	ActionRedeem
	ActionStake
	ActionUnstake
	ActionClaimInterest
	ActionClaimRewards
)

// String returns the canonical name used in logs and audit rows.
func (a ActionID) String() string {
	switch a {
	case ActionLend:
		return "Lend"
	case ActionIntendToRedeem:
		return "IntendToRedeem"
	case ActionRedeem:
		return "Redeem"
	case ActionStake:
		return "Stake"
	case ActionUnstake:
		return "Unstake"
	case ActionClaimInterest:
		return "ClaimInterest"
	case ActionClaimRewards:
		return "ClaimRewards"
	default:
		return "Unknown"
	}
}

// Valid reports whether the identifier maps to a known action.
func (a ActionID) Valid() bool {
	return a <= ActionClaimRewards
}

// LendArgs deposits liquidity asset into a Maple pool.
type LendArgs struct {
	Pool                 common.Address
	LiquidityAssetAmount sdkmath.Int
}

// IntendToRedeemArgs signals withdrawal intent, starting the pool's cooldown.
type IntendToRedeemArgs struct {
	Pool common.Address
}

// RedeemArgs withdraws pool tokens (and settles accrued interest).
type RedeemArgs struct {
	Pool            common.Address
	PoolTokenAmount sdkmath.Int
}

// StakeArgs custodies pool tokens to a rewards contract and stakes them.
type StakeArgs struct {
	RewardsContract common.Address
	Pool            common.Address
	PoolTokenAmount sdkmath.Int
}

// UnstakeArgs withdraws staked pool tokens from a rewards contract.
type UnstakeArgs struct {
	RewardsContract common.Address
	PoolTokenAmount sdkmath.Int
}

// ClaimInterestArgs triggers an interest withdrawal from a pool.
type ClaimInterestArgs struct {
	Pool common.Address
}

// ClaimRewardsArgs claims accrued reward tokens from a rewards contract.
type ClaimRewardsArgs struct {
	RewardsContract common.Address
}
