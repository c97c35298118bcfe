package strategy

import (
	"github.com/yanun0323/logs"

	"main/internal/indicator"
	"main/internal/model"
)

// BandTrigger selects which Bollinger band width gates an entry or exit.
type BandTrigger uint8

const (
	BandLower1 BandTrigger = iota
	BandLower2
	BandLower3
	BandLower4
	BandUpper1
	BandUpper2
	BandUpper3
	BandUpper4
)

// ParseBuyTrigger maps the configured buy trigger name to a lower band.
func ParseBuyTrigger(name string) (BandTrigger, error) {
	switch name {
	case "bb_lower1":
		return BandLower1, nil
	case "bb_lower2":
		return BandLower2, nil
	case "bb_lower3":
		return BandLower3, nil
	case "bb_lower4":
		return BandLower4, nil
	}
	return 0, ErrInvalidTrigger
}

// ParseSellTrigger maps the configured sell trigger name to an upper band.
func ParseSellTrigger(name string) (BandTrigger, error) {
	switch name {
	case "sell-bb_upper1":
		return BandUpper1, nil
	case "sell-bb_upper2":
		return BandUpper2, nil
	case "sell-bb_upper3":
		return BandUpper3, nil
	case "sell-bb_upper4":
		return BandUpper4, nil
	}
	return 0, ErrInvalidTrigger
}

// RoiRung is one step of the minimal-ROI ladder: after Minutes in the trade,
// exit once the close has gained Pct over the entry price.
type RoiRung struct {
	Minutes int     `yaml:"minutes"`
	Pct     float64 `yaml:"pct"`
}

// BandtasticConfig carries the threshold-indicator engine parameters.
type BandtasticConfig struct {
	Timeframe model.Interval

	BuyFastEMAPeriod int
	BuySlowEMAPeriod int
	BuyRSIThreshold  float64
	BuyMFIThreshold  float64
	BuyRSIEnabled    bool
	BuyMFIEnabled    bool
	BuyEMAEnabled    bool
	BuyTrigger       string

	SellFastEMAPeriod int
	SellSlowEMAPeriod int
	SellRSIThreshold  float64
	SellMFIThreshold  float64
	SellRSIEnabled    bool
	SellMFIEnabled    bool
	SellEMAEnabled    bool
	SellTrigger       string

	MinRoi                      []RoiRung
	Stoploss                    float64
	TrailingStop                bool
	TrailingStopPositive        float64
	TrailingStopPositiveOffset  float64
	TrailingOnlyOffsetIsReached bool

	RSIPeriod  int
	MFIPeriod  int
	BollPeriod int
}

// DefaultBandtasticConfig returns the tuned 15m parameter set.
func DefaultBandtasticConfig() BandtasticConfig {
	return BandtasticConfig{
		Timeframe: model.Interval15m,

		BuyFastEMAPeriod: 20,
		BuySlowEMAPeriod: 40,
		BuyRSIThreshold:  50,
		BuyMFIThreshold:  30,
		BuyRSIEnabled:    true,
		BuyMFIEnabled:    true,
		BuyEMAEnabled:    true,
		BuyTrigger:       "bb_lower1",

		SellFastEMAPeriod: 7,
		SellSlowEMAPeriod: 6,
		SellRSIThreshold:  57,
		SellMFIThreshold:  46,
		SellRSIEnabled:    false,
		SellMFIEnabled:    true,
		SellEMAEnabled:    true,
		SellTrigger:       "sell-bb_upper2",

		MinRoi: []RoiRung{
			{Minutes: 0, Pct: 0.162},
			{Minutes: 69, Pct: 0.097},
			{Minutes: 229, Pct: 0.061},
			{Minutes: 566, Pct: 0},
		},
		Stoploss:                    -0.345,
		TrailingStop:                true,
		TrailingStopPositive:        0.01,
		TrailingStopPositiveOffset:  0.058,
		TrailingOnlyOffsetIsReached: false,

		RSIPeriod:  14,
		MFIPeriod:  14,
		BollPeriod: 20,
	}
}

// Bandtastic is the threshold-indicator engine: RSI/MFI/EMA gates plus a
// Bollinger band trigger on both sides, with an ROI ladder, fixed stop loss
// and optional trailing stop on the exit side.
type Bandtastic struct {
	cfg         BandtasticConfig
	barMinutes  int
	buyTrigger  BandTrigger
	sellTrigger BandTrigger

	rsi         *indicator.RSI
	mfi         *indicator.MFI
	bands       [4]*indicator.Bollinger
	buyFastEMA  *indicator.EMA
	buySlowEMA  *indicator.EMA
	sellFastEMA *indicator.EMA
	sellSlowEMA *indicator.EMA

	position *model.Position
	barIndex int
	window   priceWindow
}

// NewBandtastic validates the config and builds the engine. An invalid
// indicator period or trigger is a fatal configuration error here, never at
// evaluation time.
func NewBandtastic(cfg BandtasticConfig) (*Bandtastic, error) {
	if !cfg.Timeframe.IsAvailable() {
		return nil, ErrInvalidTimeframe
	}
	buyTrigger, err := ParseBuyTrigger(cfg.BuyTrigger)
	if err != nil {
		return nil, err
	}
	sellTrigger, err := ParseSellTrigger(cfg.SellTrigger)
	if err != nil {
		return nil, err
	}

	rsi, err := indicator.NewRSI(cfg.RSIPeriod)
	if err != nil {
		return nil, err
	}
	mfi, err := indicator.NewMFI(cfg.MFIPeriod)
	if err != nil {
		return nil, err
	}
	var bands [4]*indicator.Bollinger
	for i := range bands {
		bands[i], err = indicator.NewBollinger(cfg.BollPeriod, float64(i+1))
		if err != nil {
			return nil, err
		}
	}
	buyFast, err := indicator.NewEMA(cfg.BuyFastEMAPeriod)
	if err != nil {
		return nil, err
	}
	buySlow, err := indicator.NewEMA(cfg.BuySlowEMAPeriod)
	if err != nil {
		return nil, err
	}
	sellFast, err := indicator.NewEMA(cfg.SellFastEMAPeriod)
	if err != nil {
		return nil, err
	}
	sellSlow, err := indicator.NewEMA(cfg.SellSlowEMAPeriod)
	if err != nil {
		return nil, err
	}

	return &Bandtastic{
		cfg:         cfg,
		barMinutes:  cfg.Timeframe.Minutes(),
		buyTrigger:  buyTrigger,
		sellTrigger: sellTrigger,
		rsi:         rsi,
		mfi:         mfi,
		bands:       bands,
		buyFastEMA:  buyFast,
		buySlowEMA:  buySlow,
		sellFastEMA: sellFast,
		sellSlowEMA: sellSlow,
		window:      newPriceWindow(),
	}, nil
}

func (s *Bandtastic) Name() string {
	return "Bandtastic Strategy"
}

// Next feeds one bar. Exit checks run in a fixed order where a later check
// overwrites the signal chosen by an earlier one; an entry is only possible
// with no open position, so one bar never produces both.
func (s *Bandtastic) Next(k model.Kline) (model.Signal, bool) {
	if k.Interval != s.cfg.Timeframe {
		logs.Warnf("bandtastic: dropping bar with interval %s, engine runs on %s", k.Interval, s.cfg.Timeframe)
		return model.Signal{}, false
	}

	s.barIndex++
	close, volume := k.Close, k.Volume
	hlc3 := (k.High + k.Low + k.Close) / 3

	rsi := s.rsi.Next(close)
	mfi := s.mfi.Next(k.High, k.Low, k.Close, k.Volume)

	var bands [4]indicator.Bands
	for i, b := range s.bands {
		bands[i] = b.Next(hlc3)
	}

	buyFast := s.buyFastEMA.Next(close)
	buySlow := s.buySlowEMA.Next(close)
	sellFast := s.sellFastEMA.Next(close)
	sellSlow := s.sellSlowEMA.Next(close)

	s.window.push(close)

	barsSinceEntry := 0
	if s.position != nil {
		barsSinceEntry = s.barIndex - s.position.EntryBarIndex
	}

	buySignal := (!s.cfg.BuyRSIEnabled || rsi < s.cfg.BuyRSIThreshold) &&
		(!s.cfg.BuyMFIEnabled || mfi < s.cfg.BuyMFIThreshold) &&
		(!s.cfg.BuyEMAEnabled || buyFast > buySlow) &&
		close < bands[s.buyTrigger-BandLower1].Lower &&
		volume > 0

	sellSignal := (!s.cfg.SellRSIEnabled || rsi > s.cfg.SellRSIThreshold) &&
		(!s.cfg.SellMFIEnabled || mfi > s.cfg.SellMFIThreshold) &&
		(!s.cfg.SellEMAEnabled || sellFast < sellSlow) &&
		close > bands[s.sellTrigger-BandUpper1].Upper &&
		volume > 0

	var (
		signal model.Signal
		fired  bool
	)

	// ROI ladder: the first qualifying rung wins, scanned in list order.
	if s.position != nil {
		for _, rung := range s.cfg.MinRoi {
			if barsSinceEntry < rung.Minutes/s.barMinutes {
				continue
			}
			if close >= s.position.Price*(1+rung.Pct) {
				signal = model.ExitSignal(model.RoiReason(rung.Minutes, rung.Pct), close)
				fired = true
				break
			}
		}
	}

	if s.position != nil && close <= s.position.Price*(1+s.cfg.Stoploss) {
		signal = model.ExitSignal(model.ExitReason{Kind: model.ExitStopLoss}, close)
		fired = true
	}

	if s.cfg.TrailingStop && s.position != nil {
		trailOffset := s.position.Price * s.cfg.TrailingStopPositiveOffset
		trailActivation := s.position.Price * (1 + s.cfg.TrailingStopPositive)
		if !s.cfg.TrailingOnlyOffsetIsReached || close > trailActivation {
			if trailPrice := s.window.max() - trailOffset; close <= trailPrice {
				signal = model.ExitSignal(model.ExitReason{Kind: model.ExitTrailingStop}, close)
				fired = true
			}
		}
	}

	if s.position == nil && buySignal {
		signal = model.EnterSignal(model.DirectionLong, close)
		fired = true
	}

	if s.position != nil && sellSignal {
		signal = model.ExitSignal(model.ExitReason{Kind: model.ExitSellSignal}, close)
		fired = true
	}

	if fired {
		switch signal.Kind {
		case model.SignalEnter:
			s.position = &model.Position{Price: signal.Price, EntryBarIndex: s.barIndex, Size: 1}
		case model.SignalExit:
			s.position = nil
		}
	}

	return signal, fired
}
