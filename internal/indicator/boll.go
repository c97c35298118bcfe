package indicator

import (
	"github.com/montanaflynn/stats"
)

// Bands is one Bollinger Bands reading.
type Bands struct {
	Upper float64
	Mid   float64
	Lower float64
}

// Bollinger computes mean +/- multiplier*stddev over a rolling window. The
// window fills from the first sample, so early readings use a short window.
type Bollinger struct {
	period     int
	multiplier float64
	window     []float64
}

// NewBollinger creates Bollinger bands with the given period and width.
func NewBollinger(period int, multiplier float64) (*Bollinger, error) {
	if period < 1 {
		return nil, ErrInvalidPeriod
	}
	return &Bollinger{
		period:     period,
		multiplier: multiplier,
		window:     make([]float64, 0, period),
	}, nil
}

// Next feeds one sample (typically the typical price) and returns the bands.
func (b *Bollinger) Next(value float64) Bands {
	if len(b.window) == b.period {
		b.window = append(b.window[:0], b.window[1:]...)
	}
	b.window = append(b.window, value)

	mean, err := stats.Mean(b.window)
	if err != nil {
		return Bands{}
	}
	sd, err := stats.StandardDeviationPopulation(b.window)
	if err != nil {
		return Bands{}
	}
	return Bands{
		Upper: mean + b.multiplier*sd,
		Mid:   mean,
		Lower: mean - b.multiplier*sd,
	}
}
