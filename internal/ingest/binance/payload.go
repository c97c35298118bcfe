package binance

import (
	"strconv"

	"main/internal/model"
)

// SubscribeRequest is the combined-stream subscription frame.
type SubscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// StreamFrame is the multiplexed envelope of the combined stream endpoint.
type StreamFrame struct {
	Stream string    `json:"stream"`
	Data   KlineData `json:"data"`
}

// KlineData is one kline event. OHLCV fields arrive as decimal strings.
type KlineData struct {
	EventType string  `json:"e"`
	EventTime int64   `json:"E"`
	Symbol    string  `json:"s"`
	Kline     RawLine `json:"k"`
}

type RawLine struct {
	StartTime      int64  `json:"t"`
	EndTime        int64  `json:"T"`
	Symbol         string `json:"s"`
	Interval       string `json:"i"`
	Open           string `json:"o"`
	Close          string `json:"c"`
	High           string `json:"h"`
	Low            string `json:"l"`
	Volume         string `json:"v"`
	NumberOfTrades int64  `json:"n"`
	IsClosed       bool   `json:"x"`
}

// ToKline normalizes the event. Unparseable numeric fields become 0 rather
// than an error.
func (d KlineData) ToKline() model.Kline {
	k := d.Kline
	return model.NewKline(
		Exchange,
		d.Symbol,
		uint64(k.StartTime),
		uint64(k.EndTime),
		model.Interval(k.Interval),
		parseFloat(k.Open),
		parseFloat(k.High),
		parseFloat(k.Low),
		parseFloat(k.Close),
		parseFloat(k.Volume),
		uint64(k.NumberOfTrades),
	)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
