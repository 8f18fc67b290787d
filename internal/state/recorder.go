// ./internal/state/recorder.go
package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/logger"
	"github.com/enzymefinance/maple-position/internal/types"
)

// Recorder persists position events into the audit tables. It satisfies the
// position package's EventSink. Persistence failures are logged and dropped:
// the audit trail is observability output and must never veto or unwind the
// action that produced it.
type Recorder struct{}

// NewRecorder returns a Recorder backed by the global connection pool.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) UsedPoolAdded(position, pool common.Address) {
	if err := SavePoolMembershipEvent(position, pool, "added"); err != nil {
		lg := logger.GetForComponent("state_recorder")
		lg.Error().Err(err).
			Str("pool", pool.Hex()).
			Msg("Failed to persist pool-added event")
	}
}

func (r *Recorder) UsedPoolRemoved(position, pool common.Address) {
	if err := SavePoolMembershipEvent(position, pool, "removed"); err != nil {
		lg := logger.GetForComponent("state_recorder")
		lg.Error().Err(err).
			Str("pool", pool.Hex()).
			Msg("Failed to persist pool-removed event")
	}
}

func (r *Recorder) ActionExecuted(receipt types.ActionReceipt) {
	if _, err := SaveActionReceipt(receipt); err != nil {
		lg := logger.GetForComponent("state_recorder")
		lg.Error().Err(err).
			Str("trace_id", receipt.TraceID).
			Msg("Failed to persist action receipt")
	}
}
