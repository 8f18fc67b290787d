/*

This file contains the external position itself: one instance per
(vault, integration) pair, holding the used-pool set and exposing the
valuation queries the fund accounting core consumes. Mutation happens only
through the dispatcher in dispatcher.go; a position is never destroyed, it
merely becomes economically inert once its pool set empties.

*/

package position

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/enzymefinance/maple-position/internal/logger"
	"github.com/enzymefinance/maple-position/internal/maple"
	"github.com/enzymefinance/maple-position/internal/token"
	"github.com/enzymefinance/maple-position/internal/types"
	"github.com/enzymefinance/maple-position/internal/valuation"
)

// Config holds the dependencies for creating an ExternalPosition.
type Config struct {
	// Address is the position's own account, the holder of all pool tokens.
	Address common.Address
	// Vault is the owning fund; the only caller the dispatcher accepts.
	Vault common.Address

	Registry maple.Registry
	Clients  maple.Clients
	Assets   token.Resolver
	Events   EventSink // optional; defaults to NopSink
}

// ExternalPosition is a Maple liquidity position owned by one vault.
type ExternalPosition struct {
	addr  common.Address
	vault common.Address

	registry maple.Registry
	clients  maple.Clients
	assets   token.Resolver
	events   EventSink

	// mu serializes dispatched actions against each other and against
	// valuation reads, standing in for the host ledger's transaction order.
	mu        sync.RWMutex
	usedPools *poolSet

	logger zerolog.Logger
}

// New creates an ExternalPosition with dependency validation.
func New(cfg Config) (*ExternalPosition, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("position configuration validation failed: %w", err)
	}

	events := cfg.Events
	if events == nil {
		events = NopSink{}
	}

	p := &ExternalPosition{
		addr:      cfg.Address,
		vault:     cfg.Vault,
		registry:  cfg.Registry,
		clients:   cfg.Clients,
		assets:    cfg.Assets,
		events:    events,
		usedPools: newPoolSet(),
		logger: logger.GetForComponent("external_position").With().
			Str("position", cfg.Address.Hex()).
			Str("vault", cfg.Vault.Hex()).
			Logger(),
	}

	p.logger.Info().Msg("External position created")
	return p, nil
}

func validateConfig(cfg Config) error {
	if cfg.Address == (common.Address{}) {
		return errors.New("position address cannot be zero")
	}
	if cfg.Vault == (common.Address{}) {
		return errors.New("vault address cannot be zero")
	}
	if cfg.Registry == nil {
		return errors.New("registry cannot be nil")
	}
	if cfg.Clients == nil {
		return errors.New("maple clients cannot be nil")
	}
	if cfg.Assets == nil {
		return errors.New("asset resolver cannot be nil")
	}
	return nil
}

// Address returns the position's own account address.
func (p *ExternalPosition) Address() common.Address {
	return p.addr
}

// Vault returns the owning fund's address.
func (p *ExternalPosition) Vault() common.Address {
	return p.vault
}

// Init is the one-time setup hook of the external position interface. This
// integration needs no initialization; the hook exists for uniformity across
// position kinds and accepts any payload.
func (p *ExternalPosition) Init(configBytes []byte) error {
	p.logger.Debug().Int("configLen", len(configBytes)).Msg("Init called (no-op for this integration)")
	return nil
}

// IsUsedPool reports whether the position currently tracks pool.
func (p *ExternalPosition) IsUsedPool(pool common.Address) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.usedPools.contains(pool)
}

// UsedPools returns the tracked pools in insertion order.
func (p *ExternalPosition) UsedPools() []common.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.usedPools.list()
}

// GetDebtAssets returns the position's negative exposures. This integration
// produces none, so the result is always empty.
func (p *ExternalPosition) GetDebtAssets(ctx context.Context) ([]types.AssetBalance, error) {
	return []types.AssetBalance{}, nil
}

// GetManagedAssets computes the position's current positive exposures: one
// entry per used pool, in insertion order, each the pool's net liquidity
// asset value (principal plus accrued interest minus recognizable losses).
// The result is regenerated on every call and never cached. An empty pool
// set values the position at exactly nothing.
func (p *ExternalPosition) GetManagedAssets(ctx context.Context) ([]types.AssetBalance, error) {
	p.mu.RLock()
	pools := p.usedPools.list()
	p.mu.RUnlock()

	assets := make([]types.AssetBalance, 0, len(pools))
	for _, poolAddr := range pools {
		balance, err := valuation.NetPoolValue(ctx, p.clients.Pool(poolAddr), p.assets, p.addr)
		if err != nil {
			return nil, err
		}
		assets = append(assets, balance)
	}

	return assets, nil
}
