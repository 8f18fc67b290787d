/*

This file contains the valuation monitor: a periodic loop that regenerates
each tracked position's managed-asset valuation and persists the observation
as a snapshot. The monitor is a pure observer; it never dispatches actions
and a failed cycle only skips one observation.

*/

package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/enzymefinance/maple-position/internal/logger"
	"github.com/enzymefinance/maple-position/internal/position"
	"github.com/enzymefinance/maple-position/internal/state"
	"github.com/enzymefinance/maple-position/internal/types"
)

// Monitor periodically values a set of positions and persists snapshots.
type Monitor struct {
	logger    zerolog.Logger
	positions *position.Registry

	// Runtime state
	cycleCount int
}

// Config holds the configuration for creating a new Monitor instance.
type Config struct {
	Positions *position.Registry
}

// New creates a Monitor with dependency validation.
func New(cfg Config) (*Monitor, error) {
	if cfg.Positions == nil {
		return nil, fmt.Errorf("monitor configuration validation failed: position registry cannot be nil")
	}

	m := &Monitor{
		logger:    logger.GetForComponent("valuation_monitor"),
		positions: cfg.Positions,
	}

	m.logger.Info().Msg("Valuation monitor created")
	return m, nil
}

// RunLoop starts the monitor loop with the specified interval. It blocks
// until the context is cancelled.
func (m *Monitor) RunLoop(ctx context.Context, interval time.Duration) {
	m.logger.Info().
		Dur("interval", interval).
		Msg("Starting valuation monitor loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	m.cycleCount++
	m.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Valuation monitor stopped due to context cancellation")
			return
		case <-ticker.C:
			m.cycleCount++
			m.RunCycle(ctx)
		}
	}
}

// RunCycle values every registered position once. Each position is valued
// independently so one failing pool read does not starve the others of
// observations.
func (m *Monitor) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()
	cycleID := uuid.New().String()
	cycleLogger := m.logger.With().
		Str("cycle_id", cycleID).
		Int("cycle", m.cycleCount).
		Logger()

	positions := m.positions.List()
	cycleLogger.Info().Int("positions", len(positions)).Msg("Initiating valuation cycle")

	for _, p := range positions {
		assets, err := p.GetManagedAssets(ctx)
		if err != nil {
			cycleLogger.Error().Err(err).
				Str("position", p.Address().Hex()).
				Msg("Failed to value position; skipping snapshot")
			continue
		}

		snapshot := types.ValuationSnapshot{
			CycleID:   cycleID,
			Position:  p.Address(),
			Assets:    assets,
			Timestamp: time.Now().UTC(),
		}
		if _, err := state.SaveValuationSnapshot(snapshot); err != nil {
			cycleLogger.Error().Err(err).
				Str("position", p.Address().Hex()).
				Msg("Failed to persist valuation snapshot")
		}
	}

	cycleLogger.Info().
		Dur("duration", time.Since(cycleStartTime)).
		Msg("Valuation cycle completed")
}
