package codec

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/enzymefinance/maple-position/internal/types"
)

var (
	testPool    = common.HexToAddress("0x6F6c8013f639979C84b756C7FC1500eB5aF18Dc4")
	testRewards = common.HexToAddress("0x7C57bF654Bc16B0C9080F4F75FF62876f50B8259")
)

func TestLendArgsRoundTrip(t *testing.T) {
	in := types.LendArgs{
		Pool:                 testPool,
		LiquidityAssetAmount: sdkmath.NewInt(2_500_000_000), // 2500 USDC at 6 decimals
	}

	data, err := EncodeLendArgs(in)
	require.NoError(t, err)
	// Two 32-byte words: address then uint256.
	require.Len(t, data, 64)

	out, err := DecodeLendArgs(data)
	require.NoError(t, err)
	require.Equal(t, in.Pool, out.Pool)
	require.True(t, in.LiquidityAssetAmount.Equal(out.LiquidityAssetAmount))
}

func TestStakeArgsRoundTrip(t *testing.T) {
	in := types.StakeArgs{
		RewardsContract: testRewards,
		Pool:            testPool,
		PoolTokenAmount: sdkmath.NewIntWithDecimal(123, 18),
	}

	data, err := EncodeStakeArgs(in)
	require.NoError(t, err)
	require.Len(t, data, 96)

	out, err := DecodeStakeArgs(data)
	require.NoError(t, err)
	require.Equal(t, in.RewardsContract, out.RewardsContract)
	require.Equal(t, in.Pool, out.Pool)
	require.True(t, in.PoolTokenAmount.Equal(out.PoolTokenAmount))
}

func TestSingleAddressArgsRoundTrip(t *testing.T) {
	intendData, err := EncodeIntendToRedeemArgs(types.IntendToRedeemArgs{Pool: testPool})
	require.NoError(t, err)
	intend, err := DecodeIntendToRedeemArgs(intendData)
	require.NoError(t, err)
	require.Equal(t, testPool, intend.Pool)

	claimData, err := EncodeClaimRewardsArgs(types.ClaimRewardsArgs{RewardsContract: testRewards})
	require.NoError(t, err)
	claim, err := DecodeClaimRewardsArgs(claimData)
	require.NoError(t, err)
	require.Equal(t, testRewards, claim.RewardsContract)
}

func TestRedeemArgsMaxUint256(t *testing.T) {
	// uint256 max must survive the round trip untruncated.
	max, ok := sdkmath.NewIntFromString("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.True(t, ok)

	in := types.RedeemArgs{Pool: testPool, PoolTokenAmount: max}
	data, err := EncodeRedeemArgs(in)
	require.NoError(t, err)

	out, err := DecodeRedeemArgs(data)
	require.NoError(t, err)
	require.True(t, max.Equal(out.PoolTokenAmount))
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	data, err := EncodeUnstakeArgs(types.UnstakeArgs{
		RewardsContract: testRewards,
		PoolTokenAmount: sdkmath.NewInt(1),
	})
	require.NoError(t, err)

	_, err = DecodeUnstakeArgs(data[:len(data)-1])
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrMalformedArguments)
}

func TestDecodeRejectsEmptyPayloadForTupleShape(t *testing.T) {
	_, err := DecodeLendArgs(nil)
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrMalformedArguments)
}

func TestEncodeRejectsNegativeAmount(t *testing.T) {
	_, err := EncodeLendArgs(types.LendArgs{
		Pool:                 testPool,
		LiquidityAssetAmount: sdkmath.NewInt(-1),
	})
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrMalformedArguments)
}

func TestEncodeRejectsNilAmount(t *testing.T) {
	_, err := EncodeRedeemArgs(types.RedeemArgs{Pool: testPool})
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrMalformedArguments)
}
