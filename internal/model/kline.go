package model

import "time"

// klineTimeOffset is the fixed offset used for human-readable timestamps in
// persisted records and outbound notifications.
var klineTimeOffset = time.FixedZone("UTC+8", 8*3600)

// Interval is a kline aggregation window, e.g. "15m", "1h", "4h".
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// Minutes returns the interval length in minutes, or 0 if unknown.
func (i Interval) Minutes() int {
	switch i {
	case Interval1m:
		return 1
	case Interval5m:
		return 5
	case Interval15m:
		return 15
	case Interval30m:
		return 30
	case Interval1h, "60m":
		return 60
	case Interval4h, "240m":
		return 240
	case Interval1d:
		return 1440
	}
	return 0
}

// IsAvailable reports whether the interval is one the pipeline understands.
func (i Interval) IsAvailable() bool {
	return i.Minutes() != 0
}

// Kline is one closed OHLCV bar for an instrument. Immutable once built.
type Kline struct {
	Exchange    string   `json:"exchange"`
	Symbol      string   `json:"symbol"`
	OpenTimeMs  uint64   `json:"open_time_ms"`
	CloseTimeMs uint64   `json:"close_time_ms"`
	OpenTimeH   string   `json:"open_time_h"`
	Interval    Interval `json:"interval"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      float64  `json:"volume"`
	TradesCount uint64   `json:"trades_count"`
}

// NewKline builds a Kline and renders OpenTimeH in the fixed UTC+8 offset.
func NewKline(exchange, symbol string, openTimeMs, closeTimeMs uint64, interval Interval, open, high, low, close, volume float64, tradesCount uint64) Kline {
	return Kline{
		Exchange:    exchange,
		Symbol:      symbol,
		OpenTimeMs:  openTimeMs,
		CloseTimeMs: closeTimeMs,
		OpenTimeH:   FormatTimeH(int64(openTimeMs)),
		Interval:    interval,
		Open:        open,
		High:        high,
		Low:         low,
		Close:       close,
		Volume:      volume,
		TradesCount: tradesCount,
	}
}

// FormatTimeH renders a millisecond timestamp as "20060102-15:04" in UTC+8.
func FormatTimeH(ms int64) string {
	return time.UnixMilli(ms).In(klineTimeOffset).Format("20060102-15:04")
}

// FormatTimeHS is FormatTimeH with seconds, used on notification payloads.
func FormatTimeHS(ms int64) string {
	return time.UnixMilli(ms).In(klineTimeOffset).Format("20060102-15:04.05")
}
