package indicator

// MACDOutput is one MACD reading.
type MACDOutput struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD is the moving average convergence/divergence accumulator: the spread
// of a fast and a slow EMA, with a signal EMA over the spread.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

// NewMACD creates a MACD with the given fast/slow/signal periods.
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) (*MACD, error) {
	fast, err := NewEMA(fastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := NewEMA(slowPeriod)
	if err != nil {
		return nil, err
	}
	signal, err := NewEMA(signalPeriod)
	if err != nil {
		return nil, err
	}
	return &MACD{fast: fast, slow: slow, signal: signal}, nil
}

// Next feeds one sample and returns the latest MACD/signal/histogram values.
func (m *MACD) Next(value float64) MACDOutput {
	macd := m.fast.Next(value) - m.slow.Next(value)
	sig := m.signal.Next(macd)
	return MACDOutput{
		MACD:      macd,
		Signal:    sig,
		Histogram: macd - sig,
	}
}
