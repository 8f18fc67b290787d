/*

This file contains the seven command handlers. Each one validates the
preconditions it specifically needs, performs at most one state-changing
call into the integration surface, forwards resulting balances back to the
owning vault, and maintains the used-pool set. Any failure aborts the whole
call; compensating actions are never attempted.

*/

package position

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/token"
	"github.com/enzymefinance/maple-position/internal/types"
	"github.com/enzymefinance/maple-position/internal/valuation"
)

// lend deposits liquidity asset into a pool, approving the pool for exactly
// the deposit amount. A first successful lend into a pool adds it to the
// used-pool set; lending into an already-used pool leaves the set unchanged.
func (p *ExternalPosition) lend(ctx context.Context, a types.LendArgs) error {
	if !a.LiquidityAssetAmount.IsPositive() {
		return fmt.Errorf("%w: lend amount %s", types.ErrInvalidAmount, a.LiquidityAssetAmount)
	}
	if err := p.validatePool(ctx, a.Pool); err != nil {
		return err
	}

	pool := p.clients.Pool(a.Pool)
	assetAddr, err := pool.LiquidityAsset(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve liquidity asset of pool %s: %w", a.Pool.Hex(), err)
	}

	asset := p.assets.Asset(assetAddr)
	if err := token.ApproveAsNeeded(ctx, asset, p.addr, a.Pool, a.LiquidityAssetAmount); err != nil {
		return err
	}

	if err := pool.Deposit(ctx, a.LiquidityAssetAmount); err != nil {
		return fmt.Errorf("deposit into pool %s failed: %w", a.Pool.Hex(), err)
	}

	if p.usedPools.add(a.Pool) {
		p.events.UsedPoolAdded(p.addr, a.Pool)
		p.logger.Info().Str("pool", a.Pool.Hex()).Msg("Pool added to used-pool set")
	}

	return nil
}

// intendToRedeem signals withdrawal intent, starting the pool's cooldown.
// The cooldown window itself is owned and enforced by the pool.
func (p *ExternalPosition) intendToRedeem(ctx context.Context, a types.IntendToRedeemArgs) error {
	if err := p.validatePool(ctx, a.Pool); err != nil {
		return err
	}

	if err := p.clients.Pool(a.Pool).IntendToWithdraw(ctx); err != nil {
		return fmt.Errorf("intend-to-withdraw on pool %s failed: %w", a.Pool.Hex(), err)
	}
	return nil
}

// redeem burns the given pool token amount for liquidity asset, which the
// pool pays out together with any settled interest, and forwards the
// position's entire resulting liquidity asset balance to the vault. A redeem
// that drains the pool token balance to exactly zero removes the pool from
// the used-pool set.
func (p *ExternalPosition) redeem(ctx context.Context, a types.RedeemArgs) error {
	if !a.PoolTokenAmount.IsPositive() {
		return fmt.Errorf("%w: redeem amount %s", types.ErrInvalidAmount, a.PoolTokenAmount)
	}
	if err := p.validatePool(ctx, a.Pool); err != nil {
		return err
	}

	pool := p.clients.Pool(a.Pool)
	assetAddr, err := pool.LiquidityAsset(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve liquidity asset of pool %s: %w", a.Pool.Hex(), err)
	}
	asset := p.assets.Asset(assetAddr)

	decimals, err := asset.Decimals(ctx)
	if err != nil {
		return fmt.Errorf("failed to read decimals of asset %s: %w", assetAddr.Hex(), err)
	}

	// The pool's withdraw is denominated in the liquidity asset.
	liquidityAssetAmount, err := valuation.PoolTokensToLiquidityAsset(a.PoolTokenAmount, decimals)
	if err != nil {
		return err
	}

	if err := pool.Withdraw(ctx, liquidityAssetAmount); err != nil {
		return fmt.Errorf("withdraw from pool %s failed: %w", a.Pool.Hex(), err)
	}

	if _, err := token.ForwardEntireBalance(ctx, asset, p.addr, p.vault); err != nil {
		return err
	}

	remaining, err := pool.BalanceOf(ctx, p.addr)
	if err != nil {
		return fmt.Errorf("failed to read pool token balance in %s: %w", a.Pool.Hex(), err)
	}
	if remaining.IsZero() && p.usedPools.remove(a.Pool) {
		p.events.UsedPoolRemoved(p.addr, a.Pool)
		p.logger.Info().Str("pool", a.Pool.Hex()).Msg("Pool removed from used-pool set")
	}

	return nil
}

// stake grants the rewards contract custody over the given pool token amount
// and stakes it. Pool tokens stay on the position's balance throughout; only
// custody moves.
func (p *ExternalPosition) stake(ctx context.Context, a types.StakeArgs) error {
	if !a.PoolTokenAmount.IsPositive() {
		return fmt.Errorf("%w: stake amount %s", types.ErrInvalidAmount, a.PoolTokenAmount)
	}
	if err := p.validatePool(ctx, a.Pool); err != nil {
		return err
	}
	if err := p.validateRewardsContract(ctx, a.RewardsContract); err != nil {
		return err
	}

	pool := p.clients.Pool(a.Pool)
	if err := pool.IncreaseCustodyAllowance(ctx, a.RewardsContract, a.PoolTokenAmount); err != nil {
		return fmt.Errorf("custody allowance increase on pool %s failed: %w", a.Pool.Hex(), err)
	}

	if err := p.clients.Rewards(a.RewardsContract).Stake(ctx, a.PoolTokenAmount); err != nil {
		return fmt.Errorf("stake to rewards contract %s failed: %w", a.RewardsContract.Hex(), err)
	}
	return nil
}

// unstake withdraws staked pool tokens from the rewards contract.
func (p *ExternalPosition) unstake(ctx context.Context, a types.UnstakeArgs) error {
	if !a.PoolTokenAmount.IsPositive() {
		return fmt.Errorf("%w: unstake amount %s", types.ErrInvalidAmount, a.PoolTokenAmount)
	}
	if err := p.validateRewardsContract(ctx, a.RewardsContract); err != nil {
		return err
	}

	if err := p.clients.Rewards(a.RewardsContract).Withdraw(ctx, a.PoolTokenAmount); err != nil {
		return fmt.Errorf("unstake from rewards contract %s failed: %w", a.RewardsContract.Hex(), err)
	}
	return nil
}

// claimInterest triggers the pool's interest payout and forwards the
// position's entire resulting liquidity asset balance to the vault.
func (p *ExternalPosition) claimInterest(ctx context.Context, a types.ClaimInterestArgs) error {
	if err := p.validatePool(ctx, a.Pool); err != nil {
		return err
	}

	pool := p.clients.Pool(a.Pool)
	if err := pool.WithdrawFunds(ctx); err != nil {
		return fmt.Errorf("interest withdrawal from pool %s failed: %w", a.Pool.Hex(), err)
	}

	assetAddr, err := pool.LiquidityAsset(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve liquidity asset of pool %s: %w", a.Pool.Hex(), err)
	}

	_, err = token.ForwardEntireBalance(ctx, p.assets.Asset(assetAddr), p.addr, p.vault)
	return err
}

// claimRewards claims accrued reward tokens and forwards the position's
// entire reward token balance to the vault.
func (p *ExternalPosition) claimRewards(ctx context.Context, a types.ClaimRewardsArgs) error {
	if err := p.validateRewardsContract(ctx, a.RewardsContract); err != nil {
		return err
	}

	rewards := p.clients.Rewards(a.RewardsContract)
	if err := rewards.GetReward(ctx); err != nil {
		return fmt.Errorf("reward claim from %s failed: %w", a.RewardsContract.Hex(), err)
	}

	rewardsToken, err := rewards.RewardsToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve rewards token of %s: %w", a.RewardsContract.Hex(), err)
	}

	_, err = token.ForwardEntireBalance(ctx, p.assets.Asset(rewardsToken), p.addr, p.vault)
	return err
}

// validatePool checks the pool against the recognized pool factory.
func (p *ExternalPosition) validatePool(ctx context.Context, pool common.Address) error {
	ok, err := p.registry.IsPool(ctx, pool)
	if err != nil {
		return fmt.Errorf("pool registry check for %s failed: %w", pool.Hex(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrInvalidPool, pool.Hex())
	}
	return nil
}

// validateRewardsContract checks the target against the recognized rewards
// factory.
func (p *ExternalPosition) validateRewardsContract(ctx context.Context, rewards common.Address) error {
	ok, err := p.registry.IsRewardsContract(ctx, rewards)
	if err != nil {
		return fmt.Errorf("rewards registry check for %s failed: %w", rewards.Hex(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrInvalidRewardsContract, rewards.Hex())
	}
	return nil
}
