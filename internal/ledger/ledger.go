// Package ledger tracks one open trade per instrument slot and settles the
// realized return when a strategy closes it.
package ledger

import (
	"github.com/yanun0323/errors"

	"main/internal/model"
)

var (
	ErrDuplicateEntry      = errors.New("entry signal on a slot with an open position")
	ErrExitWithoutPosition = errors.New("exit signal on a slot with no open position")
	ErrIndexOutOfRange     = errors.New("instrument index out of range")
	ErrUnknownSignal       = errors.New("unknown signal kind")
)

// Ledger holds one trade slot per instrument index. Index 0 is a sentinel
// slot that never carries a real instrument.
type Ledger struct {
	exchange string
	slots    []model.Trade
}

// New builds a ledger with capacity instrument slots plus the sentinel.
func New(exchange string, capacity int) *Ledger {
	slots := make([]model.Trade, capacity+1)
	for i := range slots {
		slots[i] = model.NewTrade()
	}
	return &Ledger{exchange: exchange, slots: slots}
}

// Apply records a signal against the slot for the given instrument index.
//
// An entry fills the slot; a duplicate entry is rejected and the slot is left
// unchanged. An exit settles the slot, rotates the direction to its closing
// counterpart, computes the realized return and resets the slot, returning
// the settled trade. For an accepted entry the returned trade is a snapshot
// of the now-open slot.
func (l *Ledger) Apply(index int, k model.Kline, sig model.Signal) (model.Trade, error) {
	if index <= 0 || index >= len(l.slots) {
		return model.Trade{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, capacity %d", index, len(l.slots)-1)
	}
	slot := &l.slots[index]

	switch sig.Kind {
	case model.SignalEnter:
		if slot.EnterPosition != nil {
			return model.Trade{}, errors.Wrapf(ErrDuplicateEntry, "symbol %s", k.Symbol)
		}
		slot.Exchange = l.exchange
		slot.Symbol = k.Symbol
		slot.Direction = sig.Direction
		slot.EnterPosition = &model.Position{Price: sig.Price, Size: 1}
		slot.EnterTimeMs = k.CloseTimeMs
		return *slot, nil

	case model.SignalExit:
		if slot.EnterPosition == nil {
			return model.Trade{}, errors.Wrapf(ErrExitWithoutPosition, "symbol %s", k.Symbol)
		}
		slot.ExitPosition = &model.Position{Price: sig.Price, Size: 1}
		slot.ExitTimeMs = k.CloseTimeMs
		slot.ExitReason = sig.Reason
		slot.Direction = slot.Direction.Closing()
		slot.Calculate()

		closed := *slot
		*slot = model.NewTrade()
		return closed, nil

	default:
		return model.Trade{}, ErrUnknownSignal
	}
}

// Open reports whether the slot for index currently holds an open position.
func (l *Ledger) Open(index int) bool {
	if index <= 0 || index >= len(l.slots) {
		return false
	}
	return l.slots[index].EnterPosition != nil
}
