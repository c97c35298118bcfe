package strategy

import (
	"github.com/yanun0323/logs"

	"main/internal/indicator"
	"main/internal/model"
)

// MultiTimeFrameMacdConfig carries the two-timeframe MACD engine parameters.
// StopLossPerc and TakeProfitPerc are declared for parity with the tuned
// parameter set but no exit path consumes them yet.
type MultiTimeFrameMacdConfig struct {
	FastLength   int
	SlowLength   int
	SignalLength int

	ShortTrendTime model.Interval
	LongTrendTime  model.Interval

	StopLossPerc       float64
	TakeProfitPerc     float64
	BreakevenThreshold float64
	TrailOffset        float64
}

// DefaultMultiTimeFrameMacdConfig returns the tuned 1h/4h parameter set.
func DefaultMultiTimeFrameMacdConfig() MultiTimeFrameMacdConfig {
	return MultiTimeFrameMacdConfig{
		FastLength:   12,
		SlowLength:   26,
		SignalLength: 9,

		ShortTrendTime: model.Interval1h,
		LongTrendTime:  model.Interval4h,

		StopLossPerc:       1.9,
		TakeProfitPerc:     5.4,
		BreakevenThreshold: 1.0,
		TrailOffset:        0.5,
	}
}

// MultiTimeFrameMacd trades the short timeframe in the direction of the long
// timeframe's MACD trend, with a breakeven stop that latches once price has
// moved favorably past a threshold.
type MultiTimeFrameMacd struct {
	cfg MultiTimeFrameMacdConfig

	longMACD  *indicator.MACD
	shortMACD *indicator.MACD

	longOut     indicator.MACDOutput
	longPrimed  bool
	shortOut    indicator.MACDOutput
	shortPrimed bool

	position           *model.Position
	entryPrice         float64
	breakevenActivated bool
	barIndex           int
}

func NewMultiTimeFrameMacd(cfg MultiTimeFrameMacdConfig) (*MultiTimeFrameMacd, error) {
	if !cfg.ShortTrendTime.IsAvailable() || !cfg.LongTrendTime.IsAvailable() {
		return nil, ErrInvalidTimeframe
	}
	longMACD, err := indicator.NewMACD(cfg.FastLength, cfg.SlowLength, cfg.SignalLength)
	if err != nil {
		return nil, err
	}
	shortMACD, err := indicator.NewMACD(cfg.FastLength, cfg.SlowLength, cfg.SignalLength)
	if err != nil {
		return nil, err
	}
	return &MultiTimeFrameMacd{
		cfg:       cfg,
		longMACD:  longMACD,
		shortMACD: shortMACD,
	}, nil
}

func (s *MultiTimeFrameMacd) Name() string {
	return "MultiTimeFrameMacd Strategy"
}

// Next feeds one bar of either timeframe. The long timeframe only steers the
// trend bias; entries and the bar counter advance on the short timeframe.
func (s *MultiTimeFrameMacd) Next(k model.Kline) (model.Signal, bool) {
	if k.Interval != s.cfg.ShortTrendTime && k.Interval != s.cfg.LongTrendTime {
		logs.Warnf("multi timeframe macd: dropping bar with interval %s, engine runs on %s and %s",
			k.Interval, s.cfg.ShortTrendTime, s.cfg.LongTrendTime)
		return model.Signal{}, false
	}

	close := k.Close
	shortBar := k.Interval == s.cfg.ShortTrendTime
	if shortBar {
		s.barIndex++
		s.shortOut = s.shortMACD.Next(close)
		s.shortPrimed = true
	} else {
		s.longOut = s.longMACD.Next(close)
		s.longPrimed = true
	}

	// Trend bias reads the latest long-timeframe state, so short-timeframe
	// bars can act on a trend established by an earlier 4h bar.
	longTrend := s.longPrimed && (s.longOut.MACD > s.longOut.Signal || s.longOut.Histogram > 0)
	shortTrend := s.longPrimed && (s.longOut.MACD < s.longOut.Signal || s.longOut.Histogram < 0)

	longEntry := shortBar && longTrend && s.shortPrimed &&
		s.shortOut.MACD > s.shortOut.Signal && s.shortOut.Histogram > 0
	shortEntry := shortBar && shortTrend && s.shortPrimed &&
		s.shortOut.MACD < s.shortOut.Signal && s.shortOut.Histogram < 0

	longExit := s.longPrimed && s.longOut.MACD < s.longOut.Signal
	shortExit := s.longPrimed && s.longOut.MACD > s.longOut.Signal

	if s.position != nil && !s.breakevenActivated {
		if s.position.Size > 0 && close >= s.entryPrice*(1+s.cfg.BreakevenThreshold/100) {
			s.breakevenActivated = true
		} else if s.position.Size < 0 && close <= s.entryPrice*(1-s.cfg.BreakevenThreshold/100) {
			s.breakevenActivated = true
		}
	}

	var (
		signal model.Signal
		fired  bool
	)

	if s.breakevenActivated && s.position != nil {
		// Same trail formula for both sides, crossed adversely relative to
		// the position sign.
		trailStopPrice := s.entryPrice * (1 + s.cfg.TrailOffset/100)
		if (s.position.Size > 0 && close <= trailStopPrice) ||
			(s.position.Size < 0 && close >= trailStopPrice) {
			signal = model.ExitSignal(model.ExitReason{Kind: model.ExitTrailingStop}, close)
			fired = true
		}
	}

	if s.position != nil {
		if (s.position.Size > 0 && longExit) || (s.position.Size < 0 && shortExit) {
			signal = model.ExitSignal(model.ExitReason{Kind: model.ExitSellSignal}, close)
			fired = true
		}
	}

	if s.position == nil {
		if longEntry {
			signal = model.EnterSignal(model.DirectionLong, close)
			fired = true
		} else if shortEntry {
			signal = model.EnterSignal(model.DirectionShort, close)
			fired = true
		}
	}

	if fired {
		switch signal.Kind {
		case model.SignalEnter:
			size := 1.0
			if signal.Direction == model.DirectionShort {
				size = -1
			}
			s.position = &model.Position{Price: signal.Price, EntryBarIndex: s.barIndex, Size: size}
			s.entryPrice = signal.Price
			s.breakevenActivated = false
		case model.SignalExit:
			s.position = nil
		}
	}

	return signal, fired
}
