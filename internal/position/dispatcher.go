/*

This file contains the command dispatcher: the sole mutating entry point of a
position. It authenticates the caller against the owning vault, decodes the
action envelope, routes to exactly one handler, and emits an audit receipt
for every dispatched call. Decoding precedes all handler logic, so an unknown
identifier or malformed payload can never leave partial side effects.

*/

package position

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/enzymefinance/maple-position/internal/codec"
	"github.com/enzymefinance/maple-position/internal/types"
)

// ReceiveCallFromVault dispatches one vault action against the position.
// Only the owning vault may call; everything else is an authorization
// violation. The call is all-or-nothing: any handler failure propagates
// unchanged and leaves no partial state, and the caller decides whether to
// retry as a fresh action.
func (p *ExternalPosition) ReceiveCallFromVault(ctx context.Context, caller common.Address, action types.ActionID, args []byte) error {
	traceID := uuid.New().String()
	callLogger := p.logger.With().
		Str("trace_id", traceID).
		Str("action", action.String()).
		Logger()

	if caller != p.vault {
		callLogger.Warn().Str("caller", caller.Hex()).Msg("Rejected call from non-vault caller")
		return fmt.Errorf("%w: %s", types.ErrUnauthorizedCaller, caller.Hex())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		target common.Address
		amount = sdkmath.ZeroInt()
		err    error
	)

	switch action {
	case types.ActionLend:
		var a types.LendArgs
		if a, err = codec.DecodeLendArgs(args); err == nil {
			target, amount = a.Pool, a.LiquidityAssetAmount
			err = p.lend(ctx, a)
		}
	case types.ActionIntendToRedeem:
		var a types.IntendToRedeemArgs
		if a, err = codec.DecodeIntendToRedeemArgs(args); err == nil {
			target = a.Pool
			err = p.intendToRedeem(ctx, a)
		}
	case types.ActionRedeem:
		var a types.RedeemArgs
		if a, err = codec.DecodeRedeemArgs(args); err == nil {
			target, amount = a.Pool, a.PoolTokenAmount
			err = p.redeem(ctx, a)
		}
	case types.ActionStake:
		var a types.StakeArgs
		if a, err = codec.DecodeStakeArgs(args); err == nil {
			target, amount = a.RewardsContract, a.PoolTokenAmount
			err = p.stake(ctx, a)
		}
	case types.ActionUnstake:
		var a types.UnstakeArgs
		if a, err = codec.DecodeUnstakeArgs(args); err == nil {
			target, amount = a.RewardsContract, a.PoolTokenAmount
			err = p.unstake(ctx, a)
		}
	case types.ActionClaimInterest:
		var a types.ClaimInterestArgs
		if a, err = codec.DecodeClaimInterestArgs(args); err == nil {
			target = a.Pool
			err = p.claimInterest(ctx, a)
		}
	case types.ActionClaimRewards:
		var a types.ClaimRewardsArgs
		if a, err = codec.DecodeClaimRewardsArgs(args); err == nil {
			target = a.RewardsContract
			err = p.claimRewards(ctx, a)
		}
	default:
		err = fmt.Errorf("%w: %d", types.ErrUnknownAction, action)
	}

	receipt := types.ActionReceipt{
		TraceID:   traceID,
		Position:  p.addr,
		Action:    action,
		Target:    target,
		Amount:    amount,
		Success:   err == nil,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		receipt.Message = err.Error()
		callLogger.Error().Err(err).Str("target", target.Hex()).Msg("Action failed")
	} else {
		callLogger.Info().Str("target", target.Hex()).Str("amount", amount.String()).Msg("Action executed")
	}
	p.events.ActionExecuted(receipt)

	return err
}
