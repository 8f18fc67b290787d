/*

This file contains the signing client used for all state-changing calls into
the integration surface. It owns the position's key, derives its address, and
validates the RPC connection once at startup so every later failure is a real
downstream failure rather than a wiring mistake.

*/

package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/enzymefinance/maple-position/internal/logger"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInvalidKey          = errors.New("signing key is invalid")
	ErrInvalidConnection   = errors.New("RPC connection is invalid")
	ErrTxBuildFailed       = errors.New("transaction build failed")
	ErrTxSignFailed        = errors.New("transaction signing failed")
	ErrTxBroadcastFailed   = errors.New("transaction broadcast failed")
	ErrTxReverted          = errors.New("transaction reverted on-chain")
	ErrGasEstimationFailed = errors.New("gas estimation failed")
)

var walletLogger = logger.GetForComponent("wallet_client")

const receiptPollTimeout = 2 * time.Minute

// SigningClient signs and broadcasts transactions from the position's account
// and serves read-only contract calls over the same connection.
type SigningClient struct {
	client      *ethclient.Client
	privateKey  *ecdsa.PrivateKey
	chainID     *big.Int
	fromAddress common.Address
}

// NewSigningClient creates a new signing client with comprehensive validation.
func NewSigningClient(client *ethclient.Client, privateKeyHex string, chainID int64) (*SigningClient, error) {
	if client == nil {
		return nil, errors.Join(ErrInvalidConnection, errors.New("eth client cannot be nil"))
	}
	if chainID <= 0 {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("chain ID must be positive, got %d", chainID))
	}

	keyHex := strings.TrimPrefix(privateKeyHex, "0x")
	privateKey, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}

	c := &SigningClient{
		client:      client,
		privateKey:  privateKey,
		chainID:     big.NewInt(chainID),
		fromAddress: ethcrypto.PubkeyToAddress(privateKey.PublicKey),
	}

	// Confirm the endpoint actually serves the configured chain.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	remoteChainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, errors.Join(ErrInvalidConnection, err)
	}
	if remoteChainID.Cmp(c.chainID) != 0 {
		return nil, errors.Join(ErrInvalidConfig,
			fmt.Errorf("endpoint serves chain %s, configured chain is %s", remoteChainID, c.chainID))
	}

	walletLogger.Info().
		Str("fromAddress", c.fromAddress.Hex()).
		Int64("chainId", chainID).
		Msg("SigningClient initialized successfully")

	return c, nil
}

// From returns the account address transactions are sent from.
func (c *SigningClient) From() common.Address {
	return c.fromAddress
}

// ChainID returns the chain the client is configured for.
func (c *SigningClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}
