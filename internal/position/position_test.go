package position

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/enzymefinance/maple-position/internal/codec"
	"github.com/enzymefinance/maple-position/internal/types"
)

func newTestPosition(t *testing.T) (*ExternalPosition, *fakeEnv, *captureSink) {
	t.Helper()

	env := newFakeEnv()
	sink := &captureSink{}

	p, err := New(Config{
		Address:  testPosition,
		Vault:    testVault,
		Registry: env,
		Clients:  env,
		Assets:   env,
		Events:   sink,
	})
	require.NoError(t, err)
	return p, env, sink
}

func lend(t *testing.T, p *ExternalPosition, args types.LendArgs) error {
	t.Helper()
	data, err := codec.EncodeLendArgs(args)
	require.NoError(t, err)
	return p.ReceiveCallFromVault(context.Background(), testVault, types.ActionLend, data)
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	env := newFakeEnv()

	_, err := New(Config{Vault: testVault, Registry: env, Clients: env, Assets: env})
	require.Error(t, err)

	_, err = New(Config{Address: testPosition, Vault: testVault, Clients: env, Assets: env})
	require.Error(t, err)
}

func TestLendDepositsAndTracksPool(t *testing.T) {
	p, env, sink := newTestPosition(t)
	amount := sdkmath.NewInt(2_500_000_000) // 2500 USDC
	env.tokens[testUSDC].mint(testPosition, amount)

	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: amount}))

	// Allowance raised to exactly the deposit amount before the deposit.
	require.Len(t, env.tokens[testUSDC].approveCalls, 1)
	require.True(t, amount.Equal(env.tokens[testUSDC].approveCalls[0]))

	// 2500 six-decimal units mint 2500 eighteen-decimal shares.
	require.True(t, sdkmath.NewIntWithDecimal(2500, 18).Equal(env.pools[testPoolA].tokensOf(testPosition)))

	require.True(t, p.IsUsedPool(testPoolA))
	require.Equal(t, []common.Address{testPoolA}, p.UsedPools())
	require.Len(t, sink.receipts, 1)
	require.True(t, sink.receipts[0].Success)
	require.Equal(t, types.ActionLend, sink.receipts[0].Action)
}

func TestLendMembershipIsIdempotent(t *testing.T) {
	p, env, sink := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(3_000_000_000))

	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(2_000_000_000)}))

	require.True(t, p.IsUsedPool(testPoolA))
	require.Len(t, p.UsedPools(), 1)
	// Only the first lend changes membership.
	require.Len(t, sink.added, 1)
	require.Equal(t, testPoolA, sink.added[0])
}

func TestLendRejectsUnrecognizedPool(t *testing.T) {
	p, env, sink := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000))

	err := lend(t, p, types.LendArgs{Pool: testOutsider, LiquidityAssetAmount: sdkmath.NewInt(1_000_000)})
	require.ErrorIs(t, err, types.ErrInvalidPool)
	require.Empty(t, p.UsedPools())

	// Failure still produces a receipt.
	require.Len(t, sink.receipts, 1)
	require.False(t, sink.receipts[0].Success)
	require.NotEmpty(t, sink.receipts[0].Message)
}

func TestLendRejectsNonPositiveAmount(t *testing.T) {
	p, _, _ := newTestPosition(t)

	err := lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.ZeroInt()})
	require.ErrorIs(t, err, types.ErrInvalidAmount)
	require.Empty(t, p.UsedPools())
}

func TestDispatchRejectsNonVaultCaller(t *testing.T) {
	p, _, sink := newTestPosition(t)
	data, err := codec.EncodeLendArgs(types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1)})
	require.NoError(t, err)

	err = p.ReceiveCallFromVault(context.Background(), testOutsider, types.ActionLend, data)
	require.ErrorIs(t, err, types.ErrUnauthorizedCaller)
	require.Empty(t, p.UsedPools())
	// Rejected before dispatch, so no receipt is recorded.
	require.Empty(t, sink.receipts)
}

func TestDispatchRejectsUnknownAction(t *testing.T) {
	p, _, sink := newTestPosition(t)

	err := p.ReceiveCallFromVault(context.Background(), testVault, types.ActionID(99), []byte{0x01})
	require.ErrorIs(t, err, types.ErrUnknownAction)
	require.Empty(t, p.UsedPools())
	require.Len(t, sink.receipts, 1)
	require.False(t, sink.receipts[0].Success)
}

func TestDispatchRejectsMalformedArguments(t *testing.T) {
	p, _, _ := newTestPosition(t)
	data, err := codec.EncodeLendArgs(types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1)})
	require.NoError(t, err)

	err = p.ReceiveCallFromVault(context.Background(), testVault, types.ActionLend, data[:len(data)-1])
	require.ErrorIs(t, err, types.ErrMalformedArguments)
	require.Empty(t, p.UsedPools())
}

func TestIntendToRedeemSignalsPool(t *testing.T) {
	p, env, _ := newTestPosition(t)

	data, err := codec.EncodeIntendToRedeemArgs(types.IntendToRedeemArgs{Pool: testPoolA})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionIntendToRedeem, data))
	require.True(t, env.pools[testPoolA].intentSignaled)
}

func TestPartialRedeemKeepsMembership(t *testing.T) {
	p, env, sink := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	data, err := codec.EncodeRedeemArgs(types.RedeemArgs{
		Pool:            testPoolA,
		PoolTokenAmount: sdkmath.NewIntWithDecimal(400, 18),
	})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionRedeem, data))

	require.True(t, p.IsUsedPool(testPoolA))
	require.Empty(t, sink.removed)

	// Proceeds are forwarded to the vault, never held by the position.
	vaultBalance, err := env.tokens[testUSDC].BalanceOf(context.Background(), testVault)
	require.NoError(t, err)
	require.True(t, sdkmath.NewInt(400_000_000).Equal(vaultBalance))

	positionBalance, err := env.tokens[testUSDC].BalanceOf(context.Background(), testPosition)
	require.NoError(t, err)
	require.True(t, positionBalance.IsZero())
}

func TestFullRedeemRemovesMembership(t *testing.T) {
	p, env, sink := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	data, err := codec.EncodeRedeemArgs(types.RedeemArgs{
		Pool:            testPoolA,
		PoolTokenAmount: sdkmath.NewIntWithDecimal(1000, 18),
	})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionRedeem, data))

	require.False(t, p.IsUsedPool(testPoolA))
	require.Empty(t, p.UsedPools())
	require.Len(t, sink.removed, 1)
	require.Equal(t, testPoolA, sink.removed[0])
}

func TestStakeMovesCustodyNotBalance(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	stakeAmount := sdkmath.NewIntWithDecimal(123, 18)
	data, err := codec.EncodeStakeArgs(types.StakeArgs{
		RewardsContract: testRewards1,
		Pool:            testPoolA,
		PoolTokenAmount: stakeAmount,
	})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionStake, data))

	custody, err := env.Pool(testPoolA).CustodyAllowance(context.Background(), testPosition, testRewards1)
	require.NoError(t, err)
	require.True(t, stakeAmount.Equal(custody))
	require.True(t, stakeAmount.Equal(env.rewards[testRewards1].staked))

	// Pool tokens never leave the position's balance when staked.
	require.True(t, sdkmath.NewIntWithDecimal(1000, 18).Equal(env.pools[testPoolA].tokensOf(testPosition)))
}

func TestStakeRejectsUnrecognizedRewardsContract(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	data, err := codec.EncodeStakeArgs(types.StakeArgs{
		RewardsContract: testOutsider,
		Pool:            testPoolA,
		PoolTokenAmount: sdkmath.NewInt(1),
	})
	require.NoError(t, err)

	err = p.ReceiveCallFromVault(context.Background(), testVault, types.ActionStake, data)
	require.ErrorIs(t, err, types.ErrInvalidRewardsContract)
	require.True(t, env.rewards[testRewards1].staked.IsZero())
}

func TestUnstakeReturnsStakedTokens(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	stakeData, err := codec.EncodeStakeArgs(types.StakeArgs{
		RewardsContract: testRewards1,
		Pool:            testPoolA,
		PoolTokenAmount: sdkmath.NewIntWithDecimal(500, 18),
	})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionStake, stakeData))

	unstakeData, err := codec.EncodeUnstakeArgs(types.UnstakeArgs{
		RewardsContract: testRewards1,
		PoolTokenAmount: sdkmath.NewIntWithDecimal(200, 18),
	})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionUnstake, unstakeData))

	require.True(t, sdkmath.NewIntWithDecimal(300, 18).Equal(env.rewards[testRewards1].staked))
}

func TestClaimInterestForwardsToVault(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.pools[testPoolA].interest = sdkmath.NewInt(75_000_000) // 75 USDC accrued

	data, err := codec.EncodeClaimInterestArgs(types.ClaimInterestArgs{Pool: testPoolA})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionClaimInterest, data))

	vaultBalance, err := env.tokens[testUSDC].BalanceOf(context.Background(), testVault)
	require.NoError(t, err)
	require.True(t, sdkmath.NewInt(75_000_000).Equal(vaultBalance))
	require.True(t, env.pools[testPoolA].interest.IsZero())
}

func TestClaimRewardsForwardsToVault(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.rewards[testRewards1].pending = sdkmath.NewIntWithDecimal(12, 18)

	data, err := codec.EncodeClaimRewardsArgs(types.ClaimRewardsArgs{RewardsContract: testRewards1})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionClaimRewards, data))

	vaultBalance, err := env.tokens[testMPL].BalanceOf(context.Background(), testVault)
	require.NoError(t, err)
	require.True(t, sdkmath.NewIntWithDecimal(12, 18).Equal(vaultBalance))
}

func TestGetDebtAssetsIsAlwaysEmpty(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	debts, err := p.GetDebtAssets(context.Background())
	require.NoError(t, err)
	require.NotNil(t, debts)
	require.Empty(t, debts)
}

func TestGetManagedAssetsEmptyWithoutPools(t *testing.T) {
	p, _, _ := newTestPosition(t)

	assets, err := p.GetManagedAssets(context.Background())
	require.NoError(t, err)
	require.Empty(t, assets)
}

func TestGetManagedAssetsAggregatesPerPool(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))       // 1000 USDC
	env.tokens[testWETH].mint(testPosition, sdkmath.NewIntWithDecimal(5, 18))    // 5 WETH
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	wethData, err := codec.EncodeLendArgs(types.LendArgs{Pool: testPoolB, LiquidityAssetAmount: sdkmath.NewIntWithDecimal(5, 18)})
	require.NoError(t, err)
	require.NoError(t, p.ReceiveCallFromVault(context.Background(), testVault, types.ActionLend, wethData))

	env.pools[testPoolA].interest = sdkmath.NewInt(40_000_000) // 40 USDC
	env.pools[testPoolA].losses = sdkmath.NewInt(15_000_000)   // 15 USDC

	assets, err := p.GetManagedAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)

	// One entry per pool, in insertion order.
	require.Equal(t, testUSDC, assets[0].Asset)
	require.True(t, sdkmath.NewInt(1_025_000_000).Equal(assets[0].Amount))
	require.Equal(t, testWETH, assets[1].Asset)
	require.True(t, sdkmath.NewIntWithDecimal(5, 18).Equal(assets[1].Amount))
}

func TestGetManagedAssetsAbortsOnExcessLosses(t *testing.T) {
	p, env, _ := newTestPosition(t)
	env.tokens[testUSDC].mint(testPosition, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, lend(t, p, types.LendArgs{Pool: testPoolA, LiquidityAssetAmount: sdkmath.NewInt(1_000_000_000)}))

	env.pools[testPoolA].losses = sdkmath.NewInt(2_000_000_000)

	_, err := p.GetManagedAssets(context.Background())
	require.ErrorIs(t, err, types.ErrValuationUnderflow)
}
