/*

This file contains the live clients for the Maple pool, rewards, and factory
contracts, built on packed ABI calls through the signing client. The embedded
ABI fragments cover exactly the methods this engine uses; the full contract
surfaces belong to the integration, not to us.

*/

package maple

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/logger"
	"github.com/enzymefinance/maple-position/internal/wallet"
)

var mapleLogger = logger.GetForComponent("maple_client")

const poolABIJSON = `[
	{"name":"liquidityAsset","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"uint256"}]},
	{"name":"withdrawableFundsOf","type":"function","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"uint256"}]},
	{"name":"recognizableLossesOf","type":"function","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"uint256"}]},
	{"name":"deposit","type":"function","stateMutability":"nonpayable","inputs":[{"type":"uint256"}],"outputs":[]},
	{"name":"intendToWithdraw","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"type":"uint256"}],"outputs":[]},
	{"name":"withdrawFunds","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"name":"increaseCustodyAllowance","type":"function","stateMutability":"nonpayable","inputs":[{"type":"address"},{"type":"uint256"}],"outputs":[]},
	{"name":"custodyAllowance","type":"function","stateMutability":"view","inputs":[{"type":"address"},{"type":"address"}],"outputs":[{"type":"uint256"}]}
]`

const rewardsABIJSON = `[
	{"name":"rewardsToken","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]},
	{"name":"stake","type":"function","stateMutability":"nonpayable","inputs":[{"type":"uint256"}],"outputs":[]},
	{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"type":"uint256"}],"outputs":[]},
	{"name":"getReward","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

const poolFactoryABIJSON = `[
	{"name":"isPool","type":"function","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"bool"}]}
]`

const rewardsFactoryABIJSON = `[
	{"name":"isMplRewards","type":"function","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"bool"}]}
]`

var (
	poolABI           = mustParseABI(poolABIJSON)
	rewardsABI        = mustParseABI(rewardsABIJSON)
	poolFactoryABI    = mustParseABI(poolFactoryABIJSON)
	rewardsFactoryABI = mustParseABI(rewardsFactoryABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("maple: invalid embedded ABI: %v", err))
	}
	return parsed
}

// LiveClients resolves live pool and rewards clients over one shared signer.
type LiveClients struct {
	signer *wallet.SigningClient
}

// NewLiveClients creates a resolver for live Maple contract clients.
func NewLiveClients(signer *wallet.SigningClient) (*LiveClients, error) {
	if signer == nil {
		return nil, errors.New("signing client cannot be nil")
	}
	return &LiveClients{signer: signer}, nil
}

// Pool returns a live client for the pool at addr.
func (c *LiveClients) Pool(addr common.Address) Pool {
	return &LivePool{addr: addr, signer: c.signer}
}

// Rewards returns a live client for the rewards contract at addr.
func (c *LiveClients) Rewards(addr common.Address) Rewards {
	return &LiveRewards{addr: addr, signer: c.signer}
}

// LivePool speaks to a deployed Maple pool contract.
type LivePool struct {
	addr   common.Address
	signer *wallet.SigningClient
}

func (p *LivePool) Address() common.Address {
	return p.addr
}

func (p *LivePool) LiquidityAsset(ctx context.Context) (common.Address, error) {
	var out common.Address
	if err := viewAt(ctx, p.signer, poolABI, p.addr, "liquidityAsset", &out); err != nil {
		return common.Address{}, err
	}
	return out, nil
}

func (p *LivePool) BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	return viewInt(ctx, p.signer, poolABI, p.addr, "balanceOf", holder)
}

func (p *LivePool) WithdrawableFundsOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	return viewInt(ctx, p.signer, poolABI, p.addr, "withdrawableFundsOf", holder)
}

func (p *LivePool) RecognizableLossesOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	return viewInt(ctx, p.signer, poolABI, p.addr, "recognizableLossesOf", holder)
}

func (p *LivePool) Deposit(ctx context.Context, liquidityAssetAmount sdkmath.Int) error {
	return execute(ctx, p.signer, poolABI, p.addr, "deposit", liquidityAssetAmount.BigInt())
}

func (p *LivePool) IntendToWithdraw(ctx context.Context) error {
	return execute(ctx, p.signer, poolABI, p.addr, "intendToWithdraw")
}

func (p *LivePool) Withdraw(ctx context.Context, liquidityAssetAmount sdkmath.Int) error {
	return execute(ctx, p.signer, poolABI, p.addr, "withdraw", liquidityAssetAmount.BigInt())
}

func (p *LivePool) WithdrawFunds(ctx context.Context) error {
	return execute(ctx, p.signer, poolABI, p.addr, "withdrawFunds")
}

func (p *LivePool) IncreaseCustodyAllowance(ctx context.Context, custodian common.Address, amount sdkmath.Int) error {
	return execute(ctx, p.signer, poolABI, p.addr, "increaseCustodyAllowance", custodian, amount.BigInt())
}

func (p *LivePool) CustodyAllowance(ctx context.Context, owner, custodian common.Address) (sdkmath.Int, error) {
	return viewInt(ctx, p.signer, poolABI, p.addr, "custodyAllowance", owner, custodian)
}

// LiveRewards speaks to a deployed Maple staking rewards contract.
type LiveRewards struct {
	addr   common.Address
	signer *wallet.SigningClient
}

func (r *LiveRewards) Address() common.Address {
	return r.addr
}

func (r *LiveRewards) RewardsToken(ctx context.Context) (common.Address, error) {
	var out common.Address
	if err := viewAt(ctx, r.signer, rewardsABI, r.addr, "rewardsToken", &out); err != nil {
		return common.Address{}, err
	}
	return out, nil
}

func (r *LiveRewards) Stake(ctx context.Context, amount sdkmath.Int) error {
	return execute(ctx, r.signer, rewardsABI, r.addr, "stake", amount.BigInt())
}

func (r *LiveRewards) Withdraw(ctx context.Context, amount sdkmath.Int) error {
	return execute(ctx, r.signer, rewardsABI, r.addr, "withdraw", amount.BigInt())
}

func (r *LiveRewards) GetReward(ctx context.Context) error {
	return execute(ctx, r.signer, rewardsABI, r.addr, "getReward")
}

// LiveRegistry validates targets against the deployed pool and rewards
// factories.
type LiveRegistry struct {
	poolFactory    common.Address
	rewardsFactory common.Address
	signer         *wallet.SigningClient
}

// NewLiveRegistry creates a registry bound to the two factory deployments.
func NewLiveRegistry(signer *wallet.SigningClient, poolFactory, rewardsFactory common.Address) (*LiveRegistry, error) {
	if signer == nil {
		return nil, errors.New("signing client cannot be nil")
	}
	if poolFactory == (common.Address{}) {
		return nil, errors.New("pool factory address cannot be zero")
	}
	if rewardsFactory == (common.Address{}) {
		return nil, errors.New("rewards factory address cannot be zero")
	}

	mapleLogger.Info().
		Str("poolFactory", poolFactory.Hex()).
		Str("rewardsFactory", rewardsFactory.Hex()).
		Msg("LiveRegistry initialized")

	return &LiveRegistry{poolFactory: poolFactory, rewardsFactory: rewardsFactory, signer: signer}, nil
}

func (g *LiveRegistry) IsPool(ctx context.Context, addr common.Address) (bool, error) {
	var out bool
	if err := viewAt(ctx, g.signer, poolFactoryABI, g.poolFactory, "isPool", &out, addr); err != nil {
		return false, err
	}
	return out, nil
}

func (g *LiveRegistry) IsRewardsContract(ctx context.Context, addr common.Address) (bool, error) {
	var out bool
	if err := viewAt(ctx, g.signer, rewardsFactoryABI, g.rewardsFactory, "isMplRewards", &out, addr); err != nil {
		return false, err
	}
	return out, nil
}

// Shared packed-call helpers.

func viewAt(ctx context.Context, signer *wallet.SigningClient, contractABI abi.ABI, at common.Address, method string, out interface{}, args ...interface{}) error {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	raw, err := signer.Call(ctx, at, data)
	if err != nil {
		return fmt.Errorf("%s(%s): %w", method, at.Hex(), err)
	}

	if err := contractABI.UnpackIntoInterface(out, method, raw); err != nil {
		return fmt.Errorf("failed to unpack %s result from %s: %w", method, at.Hex(), err)
	}
	return nil
}

func viewInt(ctx context.Context, signer *wallet.SigningClient, contractABI abi.ABI, at common.Address, method string, args ...interface{}) (sdkmath.Int, error) {
	var out *big.Int
	if err := viewAt(ctx, signer, contractABI, at, method, &out, args...); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return sdkmath.NewIntFromBigInt(out), nil
}

func execute(ctx context.Context, signer *wallet.SigningClient, contractABI abi.ABI, at common.Address, method string, args ...interface{}) error {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	if _, err := signer.Send(ctx, at, data); err != nil {
		return fmt.Errorf("%s(%s): %w", method, at.Hex(), err)
	}
	return nil
}
