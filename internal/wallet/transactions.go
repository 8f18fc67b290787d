/*

This file contains transaction execution: read-only contract calls and the
sign/broadcast/wait path for state-changing calls. A failed or reverted
transaction surfaces as an error to the caller; nothing here retries.

*/

package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Call performs a read-only contract call and returns the raw return data.
func (c *SigningClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		From: c.fromAddress,
		To:   &to,
		Data: data,
	}

	out, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("contract call to %s failed: %w", to.Hex(), err)
	}
	return out, nil
}

// Send signs, broadcasts, and waits for a state-changing call. It returns the
// mined receipt only when the transaction succeeded; a reverted transaction is
// an error, matching the all-or-nothing semantics of the action protocol.
func (c *SigningClient) Send(ctx context.Context, to common.Address, data []byte) (*ethtypes.Receipt, error) {
	nonce, err := c.client.PendingNonceAt(ctx, c.fromAddress)
	if err != nil {
		return nil, errors.Join(ErrTxBuildFailed, err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Join(ErrTxBuildFailed, err)
	}

	gasLimit, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From:     c.fromAddress,
		To:       &to,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		// Estimation failure usually means the call would revert.
		return nil, errors.Join(ErrGasEstimationFailed, err)
	}

	tx, err := ethtypes.SignNewTx(c.privateKey, ethtypes.LatestSignerForChainID(c.chainID), &ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		return nil, errors.Join(ErrTxSignFailed, err)
	}

	if err := c.client.SendTransaction(ctx, tx); err != nil {
		return nil, errors.Join(ErrTxBroadcastFailed, err)
	}

	walletLogger.Debug().
		Str("txHash", tx.Hash().Hex()).
		Str("to", to.Hex()).
		Uint64("nonce", nonce).
		Uint64("gasLimit", gasLimit).
		Msg("Transaction broadcast, waiting for inclusion")

	waitCtx, cancel := context.WithTimeout(ctx, receiptPollTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s", ErrTxReverted, tx.Hash().Hex())
	}

	walletLogger.Info().
		Str("txHash", tx.Hash().Hex()).
		Str("to", to.Hex()).
		Uint64("gasUsed", receipt.GasUsed).
		Msg("Transaction mined successfully")

	return receipt, nil
}
