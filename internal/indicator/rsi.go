package indicator

// RSI is a Wilder-smoothed relative strength index over close-to-close
// changes. It yields a neutral 50 until the second sample arrives.
type RSI struct {
	period    int
	prevClose float64
	avgGain   float64
	avgLoss   float64
	samples   int
}

// NewRSI creates an RSI with the given smoothing period.
func NewRSI(period int) (*RSI, error) {
	if period < 1 {
		return nil, ErrInvalidPeriod
	}
	return &RSI{period: period}, nil
}

// Next feeds one close price and returns the latest RSI in [0, 100].
func (r *RSI) Next(close float64) float64 {
	r.samples++
	if r.samples == 1 {
		r.prevClose = close
		return 50
	}

	change := close - r.prevClose
	r.prevClose = close

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	n := float64(r.period)
	r.avgGain = (r.avgGain*(n-1) + gain) / n
	r.avgLoss = (r.avgLoss*(n-1) + loss) / n

	if r.avgLoss == 0 {
		if r.avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
