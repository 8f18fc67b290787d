/*

This file contains the live ERC-20 client backed by the signing client.
Reads go through eth_call with packed calldata; writes are signed and
broadcast from the position's account.

*/

package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/wallet"
)

const erc20ABIJSON = `[
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint8"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"type":"address"}],"outputs":[{"type":"uint256"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"type":"address"},{"type":"address"}],"outputs":[{"type":"uint256"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"type":"address"},{"type":"uint256"}],"outputs":[{"type":"bool"}]},
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"type":"address"},{"type":"uint256"}],"outputs":[{"type":"bool"}]}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("token: invalid embedded ABI: %v", err))
	}
	return parsed
}

// LiveERC20 speaks the ERC-20 surface of a deployed token contract.
type LiveERC20 struct {
	addr   common.Address
	signer *wallet.SigningClient
}

// LiveResolver builds LiveERC20 clients on demand over one shared signer.
type LiveResolver struct {
	signer *wallet.SigningClient
}

// NewLiveResolver creates a resolver for live token clients.
func NewLiveResolver(signer *wallet.SigningClient) (*LiveResolver, error) {
	if signer == nil {
		return nil, errors.New("signing client cannot be nil")
	}
	return &LiveResolver{signer: signer}, nil
}

// Asset returns a live client for the token at addr.
func (r *LiveResolver) Asset(addr common.Address) ERC20 {
	return &LiveERC20{addr: addr, signer: r.signer}
}

// Address returns the token contract address.
func (t *LiveERC20) Address() common.Address {
	return t.addr
}

// Decimals returns the token's native precision.
func (t *LiveERC20) Decimals(ctx context.Context) (uint8, error) {
	var out uint8
	if err := t.view(ctx, "decimals", []interface{}{&out}); err != nil {
		return 0, err
	}
	return out, nil
}

// BalanceOf returns the holder's current balance.
func (t *LiveERC20) BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	var out *big.Int
	if err := t.view(ctx, "balanceOf", []interface{}{&out}, holder); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return sdkmath.NewIntFromBigInt(out), nil
}

// Allowance returns spender's current allowance from owner.
func (t *LiveERC20) Allowance(ctx context.Context, owner, spender common.Address) (sdkmath.Int, error) {
	var out *big.Int
	if err := t.view(ctx, "allowance", []interface{}{&out}, owner, spender); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return sdkmath.NewIntFromBigInt(out), nil
}

// Approve sets spender's allowance from the position's account.
func (t *LiveERC20) Approve(ctx context.Context, spender common.Address, amount sdkmath.Int) error {
	return t.execute(ctx, "approve", spender, amount.BigInt())
}

// Transfer moves amount from the position's account to the recipient.
func (t *LiveERC20) Transfer(ctx context.Context, to common.Address, amount sdkmath.Int) error {
	return t.execute(ctx, "transfer", to, amount.BigInt())
}

// view packs a read-only call, executes it, and unpacks the single result.
func (t *LiveERC20) view(ctx context.Context, method string, out []interface{}, args ...interface{}) error {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	raw, err := t.signer.Call(ctx, t.addr, data)
	if err != nil {
		return fmt.Errorf("%s(%s): %w", method, t.addr.Hex(), err)
	}

	if err := erc20ABI.UnpackIntoInterface(out[0], method, raw); err != nil {
		return fmt.Errorf("failed to unpack %s result from %s: %w", method, t.addr.Hex(), err)
	}
	return nil
}

// execute packs a state-changing call and broadcasts it from the position.
func (t *LiveERC20) execute(ctx context.Context, method string, args ...interface{}) error {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	if _, err := t.signer.Send(ctx, t.addr, data); err != nil {
		return fmt.Errorf("%s(%s): %w", method, t.addr.Hex(), err)
	}
	return nil
}
