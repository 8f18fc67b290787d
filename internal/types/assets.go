/*

This file contains the valuation-facing types a position reports to the
fund accounting core, plus the audit receipt recorded per dispatched action.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// PoolTokenDecimals is the fixed-point precision of Maple pool share tokens,
// independent of the underlying liquidity asset's own precision.
const PoolTokenDecimals = 18

// AssetBalance is one (asset, amount) entry of a valuation snapshot.
// Amounts are always denominated in the asset's native precision.
type AssetBalance struct {
	Asset  common.Address `json:"asset"`
	Amount sdkmath.Int    `json:"amount"`
}

// ActionReceipt is the durable record of one dispatched vault action.
// Receipts are observability output only; they are written for failed calls
// as well and carry no transactional weight of their own.
type ActionReceipt struct {
	ReceiptID int64          `json:"receipt_id,omitempty"` // Auto-incremented by DB
	TraceID   string         `json:"trace_id"`
	Position  common.Address `json:"position"`
	Action    ActionID       `json:"action"`
	Target    common.Address `json:"target"` // pool or rewards contract the action addressed
	Amount    sdkmath.Int    `json:"amount"`
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ValuationSnapshot is one persisted managed-asset observation for a position.
type ValuationSnapshot struct {
	SnapshotID int64          `json:"snapshot_id,omitempty"`
	CycleID    string         `json:"cycle_id"`
	Position   common.Address `json:"position"`
	Assets     []AssetBalance `json:"assets"`
	Timestamp  time.Time      `json:"timestamp"`
}
