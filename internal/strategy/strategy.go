// Package strategy contains the per-instrument trading state machines. Each
// engine consumes a sequence of closed bars and emits at most one signal per
// bar; position bookkeeping is engine-local, the ledger owns the trades.
package strategy

import (
	"github.com/montanaflynn/stats"
	"github.com/yanun0323/errors"

	"main/internal/model"
)

var (
	ErrInvalidTimeframe = errors.New("strategy timeframe is invalid")
	ErrInvalidTrigger   = errors.New("strategy band trigger is invalid")
)

// Engine turns one bar into at most one signal. A bar whose interval does not
// match the engine's configured timeframe leaves every piece of state
// untouched and produces no signal.
type Engine interface {
	Name() string
	Next(k model.Kline) (model.Signal, bool)
}

// priceWindowCap bounds the rolling close-price window used for trailing.
const priceWindowCap = 100

// priceWindow is a bounded FIFO of recent close prices.
type priceWindow struct {
	prices []float64
}

func newPriceWindow() priceWindow {
	return priceWindow{prices: make([]float64, 0, priceWindowCap)}
}

func (w *priceWindow) push(price float64) {
	if len(w.prices) == priceWindowCap {
		w.prices = append(w.prices[:0], w.prices[1:]...)
	}
	w.prices = append(w.prices, price)
}

// max returns the highest price currently in the window, or 0 when empty.
func (w *priceWindow) max() float64 {
	if len(w.prices) == 0 {
		return 0
	}
	v, err := stats.Max(w.prices)
	if err != nil {
		return 0
	}
	return v
}
