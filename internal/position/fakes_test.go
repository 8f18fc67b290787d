package position

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/maple"
	"github.com/enzymefinance/maple-position/internal/token"
	"github.com/enzymefinance/maple-position/internal/types"
)

// The fakes below model just enough Maple and ERC-20 behavior to exercise the
// dispatch, membership, and valuation paths: pool tokens mint and burn at a
// fixed exchange rate of one, custody moves without transfers, and every
// ledger lives in memory.

var (
	testPosition = common.HexToAddress("0x1924600fB1Ebc4C3aC5AF31e27Ab85D0E3e8b153")
	testVault    = common.HexToAddress("0x86FB22c5EB24eD52cCd4332c1b4EE40d1A3BA1A4")
	testPoolA    = common.HexToAddress("0x6F6c8013f639979C84b756C7FC1500eB5aF18Dc4")
	testPoolB    = common.HexToAddress("0xFeBd6F15Df3B73DC4307B1d7E65D46413e710C27")
	testRewards1 = common.HexToAddress("0x7C57bF654Bc16B0C9080F4F75FF62876f50B8259")
	testUSDC     = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	testWETH     = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	testMPL      = common.HexToAddress("0x33349B282065b0284d756F0577FB39c158F935e6")
	testOutsider = common.HexToAddress("0x8888888888888888888888888888888888888888")
)

// fakeToken is an in-memory ERC-20 ledger.
type fakeToken struct {
	addr     common.Address
	decimals uint8

	mu         sync.Mutex
	balances   map[common.Address]sdkmath.Int
	allowances map[[2]common.Address]sdkmath.Int

	approveCalls []sdkmath.Int
}

func newFakeToken(addr common.Address, decimals uint8) *fakeToken {
	return &fakeToken{
		addr:       addr,
		decimals:   decimals,
		balances:   make(map[common.Address]sdkmath.Int),
		allowances: make(map[[2]common.Address]sdkmath.Int),
	}
}

func (t *fakeToken) Address() common.Address                 { return t.addr }
func (t *fakeToken) Decimals(context.Context) (uint8, error) { return t.decimals, nil }

func (t *fakeToken) BalanceOf(_ context.Context, holder common.Address) (sdkmath.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balanceOf(holder), nil
}

func (t *fakeToken) balanceOf(holder common.Address) sdkmath.Int {
	if b, ok := t.balances[holder]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (t *fakeToken) Allowance(_ context.Context, owner, spender common.Address) (sdkmath.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.allowances[[2]common.Address{owner, spender}]; ok {
		return a, nil
	}
	return sdkmath.ZeroInt(), nil
}

// Approve acts from the position's account, mirroring the live client.
func (t *fakeToken) Approve(_ context.Context, spender common.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.approveCalls = append(t.approveCalls, amount)
	t.allowances[[2]common.Address{testPosition, spender}] = amount
	return nil
}

func (t *fakeToken) Transfer(_ context.Context, to common.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	from := t.balanceOf(testPosition)
	if from.LT(amount) {
		return fmt.Errorf("insufficient balance: have %s, need %s", from, amount)
	}
	t.balances[testPosition] = from.Sub(amount)
	t.balances[to] = t.balanceOf(to).Add(amount)
	return nil
}

// mint credits a holder outside any transfer flow.
func (t *fakeToken) mint(holder common.Address, amount sdkmath.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[holder] = t.balanceOf(holder).Add(amount)
}

// fakePool models one Maple pool against the shared liquidity asset ledger.
// Pool tokens exchange one-to-one with the liquidity asset, scaled between
// the asset's precision and the fixed 18-decimal share precision.
type fakePool struct {
	addr  common.Address
	asset *fakeToken

	poolTokens map[common.Address]sdkmath.Int
	custody    map[common.Address]sdkmath.Int
	interest   sdkmath.Int
	losses     sdkmath.Int

	intentSignaled bool
}

func newFakePool(addr common.Address, asset *fakeToken) *fakePool {
	return &fakePool{
		addr:       addr,
		asset:      asset,
		poolTokens: make(map[common.Address]sdkmath.Int),
		custody:    make(map[common.Address]sdkmath.Int),
		interest:   sdkmath.ZeroInt(),
		losses:     sdkmath.ZeroInt(),
	}
}

// shareScale converts between asset precision and pool token precision.
func (p *fakePool) shareScale() sdkmath.Int {
	return sdkmath.NewIntWithDecimal(1, types.PoolTokenDecimals-int(p.asset.decimals))
}

func (p *fakePool) tokensOf(holder common.Address) sdkmath.Int {
	if b, ok := p.poolTokens[holder]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (p *fakePool) Address() common.Address { return p.addr }

func (p *fakePool) LiquidityAsset(context.Context) (common.Address, error) {
	return p.asset.addr, nil
}

func (p *fakePool) BalanceOf(_ context.Context, holder common.Address) (sdkmath.Int, error) {
	return p.tokensOf(holder), nil
}

func (p *fakePool) WithdrawableFundsOf(_ context.Context, holder common.Address) (sdkmath.Int, error) {
	return p.interest, nil
}

func (p *fakePool) RecognizableLossesOf(_ context.Context, holder common.Address) (sdkmath.Int, error) {
	return p.losses, nil
}

// Deposit consumes the position's allowance like the real pool's
// transferFrom and mints shares.
func (p *fakePool) Deposit(ctx context.Context, amount sdkmath.Int) error {
	key := [2]common.Address{testPosition, p.addr}
	p.asset.mu.Lock()
	allowance, ok := p.asset.allowances[key]
	if !ok || allowance.LT(amount) {
		p.asset.mu.Unlock()
		return fmt.Errorf("pool %s: transfer amount exceeds allowance", p.addr.Hex())
	}
	p.asset.allowances[key] = allowance.Sub(amount)
	p.asset.balances[testPosition] = p.asset.balanceOf(testPosition).Sub(amount)
	p.asset.balances[p.addr] = p.asset.balanceOf(p.addr).Add(amount)
	p.asset.mu.Unlock()

	p.poolTokens[testPosition] = p.tokensOf(testPosition).Add(amount.Mul(p.shareScale()))
	return nil
}

func (p *fakePool) IntendToWithdraw(context.Context) error {
	p.intentSignaled = true
	return nil
}

func (p *fakePool) Withdraw(_ context.Context, liquidityAssetAmount sdkmath.Int) error {
	burned := liquidityAssetAmount.Mul(p.shareScale())
	held := p.tokensOf(testPosition)
	if held.LT(burned) {
		return fmt.Errorf("pool %s: withdraw exceeds balance", p.addr.Hex())
	}
	p.poolTokens[testPosition] = held.Sub(burned)

	// Principal plus any settled interest pays out in the same call.
	payout := liquidityAssetAmount.Add(p.interest)
	p.interest = sdkmath.ZeroInt()
	p.asset.mint(testPosition, payout)
	return nil
}

func (p *fakePool) WithdrawFunds(context.Context) error {
	p.asset.mint(testPosition, p.interest)
	p.interest = sdkmath.ZeroInt()
	return nil
}

func (p *fakePool) IncreaseCustodyAllowance(_ context.Context, custodian common.Address, amount sdkmath.Int) error {
	existing := sdkmath.ZeroInt()
	if c, ok := p.custody[custodian]; ok {
		existing = c
	}
	p.custody[custodian] = existing.Add(amount)
	return nil
}

func (p *fakePool) CustodyAllowance(_ context.Context, owner, custodian common.Address) (sdkmath.Int, error) {
	if c, ok := p.custody[custodian]; ok {
		return c, nil
	}
	return sdkmath.ZeroInt(), nil
}

// fakeRewards models one MplRewards contract paying out a fixed pending
// reward on claim.
type fakeRewards struct {
	addr        common.Address
	rewardToken *fakeToken

	staked  sdkmath.Int
	pending sdkmath.Int
}

func newFakeRewards(addr common.Address, rewardToken *fakeToken) *fakeRewards {
	return &fakeRewards{
		addr:        addr,
		rewardToken: rewardToken,
		staked:      sdkmath.ZeroInt(),
		pending:     sdkmath.ZeroInt(),
	}
}

func (r *fakeRewards) Address() common.Address { return r.addr }

func (r *fakeRewards) RewardsToken(context.Context) (common.Address, error) {
	return r.rewardToken.addr, nil
}

func (r *fakeRewards) Stake(_ context.Context, amount sdkmath.Int) error {
	r.staked = r.staked.Add(amount)
	return nil
}

func (r *fakeRewards) Withdraw(_ context.Context, amount sdkmath.Int) error {
	if r.staked.LT(amount) {
		return fmt.Errorf("rewards %s: withdraw exceeds staked balance", r.addr.Hex())
	}
	r.staked = r.staked.Sub(amount)
	return nil
}

func (r *fakeRewards) GetReward(context.Context) error {
	r.rewardToken.mint(testPosition, r.pending)
	r.pending = sdkmath.ZeroInt()
	return nil
}

// fakeEnv bundles the fakes behind the maple and token interfaces.
type fakeEnv struct {
	pools   map[common.Address]*fakePool
	rewards map[common.Address]*fakeRewards
	tokens  map[common.Address]*fakeToken
}

func newFakeEnv() *fakeEnv {
	usdc := newFakeToken(testUSDC, 6)
	weth := newFakeToken(testWETH, 18)
	mpl := newFakeToken(testMPL, 18)

	env := &fakeEnv{
		pools:   make(map[common.Address]*fakePool),
		rewards: make(map[common.Address]*fakeRewards),
		tokens: map[common.Address]*fakeToken{
			testUSDC: usdc,
			testWETH: weth,
			testMPL:  mpl,
		},
	}
	env.pools[testPoolA] = newFakePool(testPoolA, usdc)
	env.pools[testPoolB] = newFakePool(testPoolB, weth)
	env.rewards[testRewards1] = newFakeRewards(testRewards1, mpl)
	return env
}

func (e *fakeEnv) Pool(addr common.Address) maple.Pool {
	return mapPool{env: e, addr: addr}
}

func (e *fakeEnv) Rewards(addr common.Address) maple.Rewards {
	return mapRewards{env: e, addr: addr}
}

func (e *fakeEnv) IsPool(_ context.Context, addr common.Address) (bool, error) {
	_, ok := e.pools[addr]
	return ok, nil
}

func (e *fakeEnv) IsRewardsContract(_ context.Context, addr common.Address) (bool, error) {
	_, ok := e.rewards[addr]
	return ok, nil
}

func (e *fakeEnv) Asset(addr common.Address) token.ERC20 {
	return e.tokens[addr]
}

// mapPool and mapRewards delegate to the env maps so clients resolved before
// the fakes mutate still see current state.
type mapPool struct {
	env  *fakeEnv
	addr common.Address
}

func (m mapPool) get() *fakePool            { return m.env.pools[m.addr] }
func (m mapPool) Address() common.Address   { return m.addr }
func (m mapPool) LiquidityAsset(ctx context.Context) (common.Address, error) {
	return m.get().LiquidityAsset(ctx)
}
func (m mapPool) BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	return m.get().BalanceOf(ctx, holder)
}
func (m mapPool) WithdrawableFundsOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	return m.get().WithdrawableFundsOf(ctx, holder)
}
func (m mapPool) RecognizableLossesOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	return m.get().RecognizableLossesOf(ctx, holder)
}
func (m mapPool) Deposit(ctx context.Context, amount sdkmath.Int) error {
	return m.get().Deposit(ctx, amount)
}
func (m mapPool) IntendToWithdraw(ctx context.Context) error { return m.get().IntendToWithdraw(ctx) }
func (m mapPool) Withdraw(ctx context.Context, amount sdkmath.Int) error {
	return m.get().Withdraw(ctx, amount)
}
func (m mapPool) WithdrawFunds(ctx context.Context) error { return m.get().WithdrawFunds(ctx) }
func (m mapPool) IncreaseCustodyAllowance(ctx context.Context, custodian common.Address, amount sdkmath.Int) error {
	return m.get().IncreaseCustodyAllowance(ctx, custodian, amount)
}
func (m mapPool) CustodyAllowance(ctx context.Context, owner, custodian common.Address) (sdkmath.Int, error) {
	return m.get().CustodyAllowance(ctx, owner, custodian)
}

type mapRewards struct {
	env  *fakeEnv
	addr common.Address
}

func (m mapRewards) get() *fakeRewards        { return m.env.rewards[m.addr] }
func (m mapRewards) Address() common.Address  { return m.addr }
func (m mapRewards) RewardsToken(ctx context.Context) (common.Address, error) {
	return m.get().RewardsToken(ctx)
}
func (m mapRewards) Stake(ctx context.Context, amount sdkmath.Int) error {
	return m.get().Stake(ctx, amount)
}
func (m mapRewards) Withdraw(ctx context.Context, amount sdkmath.Int) error {
	return m.get().Withdraw(ctx, amount)
}
func (m mapRewards) GetReward(ctx context.Context) error { return m.get().GetReward(ctx) }

// captureSink records events for assertions.
type captureSink struct {
	added    []common.Address
	removed  []common.Address
	receipts []types.ActionReceipt
}

func (c *captureSink) UsedPoolAdded(_, pool common.Address)   { c.added = append(c.added, pool) }
func (c *captureSink) UsedPoolRemoved(_, pool common.Address) { c.removed = append(c.removed, pool) }
func (c *captureSink) ActionExecuted(r types.ActionReceipt)   { c.receipts = append(c.receipts, r) }
