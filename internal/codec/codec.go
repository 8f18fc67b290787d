/*

This file contains the pure encode/decode layer between opaque action payloads
and the typed argument tuples in internal/types. Payloads use the contract ABI
encoding of the integration's external protocol: flat tuples of addresses and
uint256 amounts. No validation happens here beyond structural decode; a
payload that does not parse is fatal for the enclosing call.

*/

package codec

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/types"
)

var (
	addressType = mustNewType("address")
	uint256Type = mustNewType("uint256")

	lendArgs           = abi.Arguments{{Type: addressType}, {Type: uint256Type}}
	intendToRedeemArgs = abi.Arguments{{Type: addressType}}
	redeemArgs         = abi.Arguments{{Type: addressType}, {Type: uint256Type}}
	stakeArgs          = abi.Arguments{{Type: addressType}, {Type: addressType}, {Type: uint256Type}}
	unstakeArgs        = abi.Arguments{{Type: addressType}, {Type: uint256Type}}
	claimInterestArgs  = abi.Arguments{{Type: addressType}}
	claimRewardsArgs   = abi.Arguments{{Type: addressType}}
)

// mustNewType builds an ABI type at init time. The type strings are constants,
// so a failure here is a programming error.
func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("codec: invalid ABI type %q: %v", t, err))
	}
	return typ
}

// EncodeLendArgs packs a Lend tuple: (pool, liquidityAssetAmount).
func EncodeLendArgs(a types.LendArgs) ([]byte, error) {
	amount, err := amountToBig(a.LiquidityAssetAmount)
	if err != nil {
		return nil, err
	}
	return lendArgs.Pack(a.Pool, amount)
}

// DecodeLendArgs unpacks a Lend tuple.
func DecodeLendArgs(data []byte) (types.LendArgs, error) {
	values, err := unpack(lendArgs, data)
	if err != nil {
		return types.LendArgs{}, err
	}
	return types.LendArgs{
		Pool:                 values[0].(common.Address),
		LiquidityAssetAmount: sdkmath.NewIntFromBigInt(values[1].(*big.Int)),
	}, nil
}

// EncodeIntendToRedeemArgs packs an IntendToRedeem tuple: (pool).
func EncodeIntendToRedeemArgs(a types.IntendToRedeemArgs) ([]byte, error) {
	return intendToRedeemArgs.Pack(a.Pool)
}

// DecodeIntendToRedeemArgs unpacks an IntendToRedeem tuple.
func DecodeIntendToRedeemArgs(data []byte) (types.IntendToRedeemArgs, error) {
	values, err := unpack(intendToRedeemArgs, data)
	if err != nil {
		return types.IntendToRedeemArgs{}, err
	}
	return types.IntendToRedeemArgs{Pool: values[0].(common.Address)}, nil
}

// EncodeRedeemArgs packs a Redeem tuple: (pool, poolTokenAmount).
func EncodeRedeemArgs(a types.RedeemArgs) ([]byte, error) {
	amount, err := amountToBig(a.PoolTokenAmount)
	if err != nil {
		return nil, err
	}
	return redeemArgs.Pack(a.Pool, amount)
}

// DecodeRedeemArgs unpacks a Redeem tuple.
func DecodeRedeemArgs(data []byte) (types.RedeemArgs, error) {
	values, err := unpack(redeemArgs, data)
	if err != nil {
		return types.RedeemArgs{}, err
	}
	return types.RedeemArgs{
		Pool:            values[0].(common.Address),
		PoolTokenAmount: sdkmath.NewIntFromBigInt(values[1].(*big.Int)),
	}, nil
}

// EncodeStakeArgs packs a Stake tuple: (rewardsContract, pool, poolTokenAmount).
func EncodeStakeArgs(a types.StakeArgs) ([]byte, error) {
	amount, err := amountToBig(a.PoolTokenAmount)
	if err != nil {
		return nil, err
	}
	return stakeArgs.Pack(a.RewardsContract, a.Pool, amount)
}

// DecodeStakeArgs unpacks a Stake tuple.
func DecodeStakeArgs(data []byte) (types.StakeArgs, error) {
	values, err := unpack(stakeArgs, data)
	if err != nil {
		return types.StakeArgs{}, err
	}
	return types.StakeArgs{
		RewardsContract: values[0].(common.Address),
		Pool:            values[1].(common.Address),
		PoolTokenAmount: sdkmath.NewIntFromBigInt(values[2].(*big.Int)),
	}, nil
}

// EncodeUnstakeArgs packs an Unstake tuple: (rewardsContract, poolTokenAmount).
func EncodeUnstakeArgs(a types.UnstakeArgs) ([]byte, error) {
	amount, err := amountToBig(a.PoolTokenAmount)
	if err != nil {
		return nil, err
	}
	return unstakeArgs.Pack(a.RewardsContract, amount)
}

// DecodeUnstakeArgs unpacks an Unstake tuple.
func DecodeUnstakeArgs(data []byte) (types.UnstakeArgs, error) {
	values, err := unpack(unstakeArgs, data)
	if err != nil {
		return types.UnstakeArgs{}, err
	}
	return types.UnstakeArgs{
		RewardsContract: values[0].(common.Address),
		PoolTokenAmount: sdkmath.NewIntFromBigInt(values[1].(*big.Int)),
	}, nil
}

// EncodeClaimInterestArgs packs a ClaimInterest tuple: (pool).
func EncodeClaimInterestArgs(a types.ClaimInterestArgs) ([]byte, error) {
	return claimInterestArgs.Pack(a.Pool)
}

// DecodeClaimInterestArgs unpacks a ClaimInterest tuple.
func DecodeClaimInterestArgs(data []byte) (types.ClaimInterestArgs, error) {
	values, err := unpack(claimInterestArgs, data)
	if err != nil {
		return types.ClaimInterestArgs{}, err
	}
	return types.ClaimInterestArgs{Pool: values[0].(common.Address)}, nil
}

// EncodeClaimRewardsArgs packs a ClaimRewards tuple: (rewardsContract).
func EncodeClaimRewardsArgs(a types.ClaimRewardsArgs) ([]byte, error) {
	return claimRewardsArgs.Pack(a.RewardsContract)
}

// DecodeClaimRewardsArgs unpacks a ClaimRewards tuple.
func DecodeClaimRewardsArgs(data []byte) (types.ClaimRewardsArgs, error) {
	values, err := unpack(claimRewardsArgs, data)
	if err != nil {
		return types.ClaimRewardsArgs{}, err
	}
	return types.ClaimRewardsArgs{RewardsContract: values[0].(common.Address)}, nil
}

// unpack decodes data against the given argument shape, mapping any structural
// failure onto the protocol-violation sentinel.
func unpack(args abi.Arguments, data []byte) ([]interface{}, error) {
	values, err := args.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformedArguments, err)
	}
	return values, nil
}

// amountToBig converts an SDK Int into the *big.Int the ABI packer expects.
// uint256 tuples cannot carry nil or negative amounts.
func amountToBig(amount sdkmath.Int) (*big.Int, error) {
	if amount.IsNil() || amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be a non-negative integer", types.ErrMalformedArguments)
	}
	return amount.BigInt(), nil
}
