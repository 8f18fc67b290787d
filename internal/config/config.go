package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// RPCEndpoint is the Ethereum JSON-RPC endpoint of the target network.
	RPCEndpoint string
	// ChainID is the chain ID of the target network.
	ChainID uint64

	// SignerKey is the hex-encoded private key of the position's account.
	SignerKey string

	// PositionAddress is the external position's own account address.
	PositionAddress common.Address
	// VaultAddress is the owning vault; the only caller the dispatcher accepts.
	VaultAddress common.Address

	// PoolFactoryAddress is the canonical Maple pool factory used to validate
	// pool targets.
	PoolFactoryAddress common.Address
	// RewardsFactoryAddress is the canonical MplRewards factory used to
	// validate rewards contract targets.
	RewardsFactoryAddress common.Address

	// SnapshotInterval is the period between valuation monitor cycles.
	SnapshotInterval time.Duration

	// WebServerPort is the port the read-only API listens on.
	WebServerPort string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	RPCEndpoint, err = getEnv("ETH_RPC_ENDPOINT")
	if err != nil {
		return err
	}

	ChainID, err = getEnvAsUint64("CHAIN_ID")
	if err != nil {
		return err
	}

	SignerKey, err = getEnv("SIGNER_PRIVATE_KEY")
	if err != nil {
		return err
	}

	PositionAddress, err = getEnvAsAddress("POSITION_ADDRESS")
	if err != nil {
		return err
	}

	VaultAddress, err = getEnvAsAddress("VAULT_ADDRESS")
	if err != nil {
		return err
	}

	PoolFactoryAddress, err = getEnvAsAddress("MAPLE_POOL_FACTORY_ADDRESS")
	if err != nil {
		return err
	}

	RewardsFactoryAddress, err = getEnvAsAddress("MAPLE_REWARDS_FACTORY_ADDRESS")
	if err != nil {
		return err
	}

	intervalSeconds, err := getEnvAsUint64("SNAPSHOT_INTERVAL_SECONDS")
	if err != nil {
		return err
	}
	SnapshotInterval = time.Duration(intervalSeconds) * time.Second

	WebServerPort, err = getEnv("WEB_SERVER_PORT")
	if err != nil {
		return err
	}

	// Load database configuration.
	if err := loadDBConfig(); err != nil {
		return err
	}

	log.Debug().
		Uint64("ChainID", ChainID).
		Str("Position", PositionAddress.Hex()).
		Str("Vault", VaultAddress.Hex()).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsAddress retrieves an environment variable as a checksummed Ethereum
// address. Returns error if not set, malformed, or zero.
func getEnvAsAddress(key string) (common.Address, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(valueStr) {
		return common.Address{}, errors.New("environment variable " + key + " must be a valid hex address, got: " + valueStr)
	}
	addr := common.HexToAddress(valueStr)
	if addr == (common.Address{}) {
		return common.Address{}, errors.New("environment variable " + key + " cannot be the zero address")
	}
	return addr, nil
}
