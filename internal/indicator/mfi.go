package indicator

// MFI is the money flow index over a rolling window of typical-price money
// flows. It yields a neutral 50 until it has seen two samples.
type MFI struct {
	period  int
	prevTP  float64
	flows   []float64 // signed raw money flow per bar
	head    int
	size    int
	samples int
	posFlow float64
	negFlow float64
}

// NewMFI creates an MFI with the given window length.
func NewMFI(period int) (*MFI, error) {
	if period < 1 {
		return nil, ErrInvalidPeriod
	}
	return &MFI{period: period, flows: make([]float64, period)}, nil
}

// Next feeds one bar's high/low/close/volume and returns the latest MFI.
func (m *MFI) Next(high, low, close, volume float64) float64 {
	tp := (high + low + close) / 3
	m.samples++
	if m.samples == 1 {
		m.prevTP = tp
		return 50
	}

	flow := tp * volume
	if tp < m.prevTP {
		flow = -flow
	} else if tp == m.prevTP {
		flow = 0
	}
	m.prevTP = tp

	if m.size == m.period {
		old := m.flows[m.head]
		if old > 0 {
			m.posFlow -= old
		} else {
			m.negFlow -= -old
		}
	} else {
		m.size++
	}
	m.flows[m.head] = flow
	m.head = (m.head + 1) % m.period

	if flow > 0 {
		m.posFlow += flow
	} else {
		m.negFlow += -flow
	}

	if m.negFlow == 0 {
		if m.posFlow == 0 {
			return 50
		}
		return 100
	}
	ratio := m.posFlow / m.negFlow
	return 100 - 100/(1+ratio)
}
