// Package indicator provides the streaming accumulators used by the strategy
// engines. Every accumulator is stateful and monotonic: values are fed once,
// in order, and never rewound. Constructors validate their periods so that a
// bad configuration fails at engine construction rather than mid-stream.
package indicator

import "github.com/yanun0323/errors"

var ErrInvalidPeriod = errors.New("indicator period must be >= 1")

// EMA is an exponential moving average seeded with the first sample.
type EMA struct {
	alpha  float64
	value  float64
	primed bool
}

// NewEMA creates an EMA with smoothing factor 2/(period+1).
func NewEMA(period int) (*EMA, error) {
	if period < 1 {
		return nil, ErrInvalidPeriod
	}
	return &EMA{alpha: 2 / float64(period+1)}, nil
}

// Next feeds one sample and returns the latest average.
func (e *EMA) Next(value float64) float64 {
	if !e.primed {
		e.value = value
		e.primed = true
		return e.value
	}
	e.value = e.alpha*value + (1-e.alpha)*e.value
	return e.value
}

// Value returns the latest average without feeding a sample.
func (e *EMA) Value() float64 {
	return e.value
}
