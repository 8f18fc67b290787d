// ./internal/state/receipt_store.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/enzymefinance/maple-position/internal/types"
)

// SaveActionReceipt persists one dispatched-action receipt and returns its
// database ID. Amounts are stored as NUMERIC text to survive uint256 range.
func SaveActionReceipt(receipt types.ActionReceipt) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO action_receipts (
			trace_id, position, action, target, amount, success, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING receipt_id;
	`

	var receiptID int64
	err := DB.QueryRow(
		query,
		receipt.TraceID, receipt.Position.Hex(), receipt.Action.String(), receipt.Target.Hex(),
		receipt.Amount.String(), receipt.Success, receipt.Message, receipt.Timestamp,
	).Scan(&receiptID)

	if err != nil {
		return 0, fmt.Errorf("failed to save action receipt: %w", err)
	}

	log.Debug().
		Int64("receipt_id", receiptID).
		Str("trace_id", receipt.TraceID).
		Str("action", receipt.Action.String()).
		Bool("success", receipt.Success).
		Msg("Action receipt saved to database")

	return receiptID, nil
}

// SavePoolMembershipEvent persists one used-pool set change.
func SavePoolMembershipEvent(position, pool common.Address, eventType string) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO pool_membership_events (position, pool, event_type)
		VALUES ($1, $2, $3);
	`

	if _, err := DB.Exec(query, position.Hex(), pool.Hex(), eventType); err != nil {
		return fmt.Errorf("failed to save pool membership event: %w", err)
	}
	return nil
}

// GetRecentReceipts retrieves recent action receipts for a position,
// newest first.
func GetRecentReceipts(position common.Address, limit int) ([]types.ActionReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT receipt_id, trace_id, position, action, target, amount, success, message, created_at
		FROM action_receipts
		WHERE position = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`

	rows, err := DB.Query(query, position.Hex(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent receipts")
		return nil, fmt.Errorf("failed to query recent receipts: %w", err)
	}
	defer rows.Close()

	var receipts []types.ActionReceipt
	for rows.Next() {
		var (
			receipt             types.ActionReceipt
			positionHex, target string
			actionName          string
			amountStr           string
		)

		err := rows.Scan(
			&receipt.ReceiptID, &receipt.TraceID, &positionHex, &actionName,
			&target, &amountStr, &receipt.Success, &receipt.Message, &receipt.Timestamp,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan receipt row")
			continue // Skip this row and continue with others
		}

		receipt.Position = common.HexToAddress(positionHex)
		receipt.Target = common.HexToAddress(target)
		receipt.Action = actionFromName(actionName)

		amount, ok := sdkmath.NewIntFromString(amountStr)
		if !ok {
			log.Error().Str("amount", amountStr).Msg("Failed to parse receipt amount")
			continue
		}
		receipt.Amount = amount

		receipts = append(receipts, receipt)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during receipt row iteration")
		return nil, fmt.Errorf("receipt row iteration failed: %w", err)
	}

	return receipts, nil
}

// actionFromName reverses ActionID.String for rows read back from the store.
func actionFromName(name string) types.ActionID {
	for a := types.ActionLend; a <= types.ActionClaimRewards; a++ {
		if a.String() == name {
			return a
		}
	}
	return types.ActionID(255)
}
