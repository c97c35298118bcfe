package model

// DefaultTradeFee is the round-trip trading cost as a fraction of notional.
const DefaultTradeFee = 0.06

// Position is a strategy-local open trade. The sign of Size encodes the
// direction for engines that trade both sides (positive long, negative short).
type Position struct {
	Price         float64 `json:"price"`
	EntryBarIndex int     `json:"entry_bar_index"`
	Size          float64 `json:"size"`
}

// Trade pairs an entry with an exit for one instrument slot. A slot holds at
// most one open entry at a time; it is reset to the default after the closed
// trade has been reported.
type Trade struct {
	Exchange      string     `json:"exchange"`
	Symbol        string     `json:"symbol"`
	Direction     Direction  `json:"direction"`
	EnterPosition *Position  `json:"enter_position"`
	ExitPosition  *Position  `json:"exit_position"`
	EnterTimeMs   uint64     `json:"enter_time"`
	ExitTimeMs    uint64     `json:"exit_time"`
	ExitReason    ExitReason `json:"exit_reason"`
	Roi           *float64   `json:"roi"`
	Fee           float64    `json:"fee"`
}

// NewTrade returns an empty slot with the default fee.
func NewTrade() Trade {
	return Trade{Fee: DefaultTradeFee}
}

// Calculate fills Roi from the entry/exit prices, net of the round-trip fee.
// It is a no-op until both positions are present.
func (t *Trade) Calculate() {
	if t.EnterPosition == nil || t.ExitPosition == nil {
		return
	}

	enter, exit := t.EnterPosition.Price, t.ExitPosition.Price
	var roi float64
	switch t.Direction {
	case DirectionLong, DirectionLongClose:
		roi = (exit-enter)/enter*100 - t.Fee*100
	case DirectionShort, DirectionShortClose:
		roi = (enter-exit)/enter*100 - t.Fee*100
	default:
		return
	}
	t.Roi = &roi
}
