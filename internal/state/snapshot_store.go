// ./internal/state/snapshot_store.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/enzymefinance/maple-position/internal/types"
)

// SaveValuationSnapshot saves one managed-asset observation to the database.
func SaveValuationSnapshot(snapshot types.ValuationSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	assetsJSON, err := json.Marshal(snapshot.Assets)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal snapshot assets: %w", err)
	}

	query := `
		INSERT INTO valuation_snapshots (cycle_id, position, assets, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.CycleID, snapshot.Position.Hex(), assetsJSON, snapshot.Timestamp,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save valuation snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Str("cycle_id", snapshot.CycleID).
		Int("asset_count", len(snapshot.Assets)).
		Msg("Valuation snapshot saved to database")

	return snapshotID, nil
}

// GetRecentSnapshots retrieves recent valuation snapshots for a position,
// newest first.
func GetRecentSnapshots(position common.Address, limit int) ([]types.ValuationSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT snapshot_id, cycle_id, position, assets, created_at
		FROM valuation_snapshots
		WHERE position = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`

	rows, err := DB.Query(query, position.Hex(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent snapshots")
		return nil, fmt.Errorf("failed to query recent snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.ValuationSnapshot
	for rows.Next() {
		var (
			snapshot    types.ValuationSnapshot
			positionHex string
			assetsJSON  []byte
		)

		err := rows.Scan(&snapshot.SnapshotID, &snapshot.CycleID, &positionHex, &assetsJSON, &snapshot.Timestamp)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan snapshot row")
			continue // Skip this row and continue with others
		}

		if err := json.Unmarshal(assetsJSON, &snapshot.Assets); err != nil {
			log.Error().Err(err).Int64("snapshot_id", snapshot.SnapshotID).Msg("Failed to unmarshal snapshot assets")
			continue
		}

		snapshot.Position = common.HexToAddress(positionHex)
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during snapshot row iteration")
		return nil, fmt.Errorf("snapshot row iteration failed: %w", err)
	}

	return snapshots, nil
}
