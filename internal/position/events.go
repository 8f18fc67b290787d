package position

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/enzymefinance/maple-position/internal/types"
)

// EventSink receives the structured notifications a position emits. The two
// membership events are the durable audit trail external indexers rely on;
// action receipts record every dispatched call, failed ones included.
type EventSink interface {
	UsedPoolAdded(position, pool common.Address)
	UsedPoolRemoved(position, pool common.Address)
	ActionExecuted(receipt types.ActionReceipt)
}

// NopSink discards all notifications. Used when no audit store is wired.
type NopSink struct{}

func (NopSink) UsedPoolAdded(common.Address, common.Address)   {}
func (NopSink) UsedPoolRemoved(common.Address, common.Address) {}
func (NopSink) ActionExecuted(types.ActionReceipt)             {}

// MultiSink fans notifications out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) UsedPoolAdded(position, pool common.Address) {
	for _, s := range m {
		s.UsedPoolAdded(position, pool)
	}
}

func (m MultiSink) UsedPoolRemoved(position, pool common.Address) {
	for _, s := range m {
		s.UsedPoolRemoved(position, pool)
	}
}

func (m MultiSink) ActionExecuted(receipt types.ActionReceipt) {
	for _, s := range m {
		s.ActionExecuted(receipt)
	}
}
