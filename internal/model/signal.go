package model

import "fmt"

// Direction is the side of a trade. Close variants mark a finished trade.
type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionLong
	DirectionShort
	DirectionLongClose
	DirectionShortClose
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "long"
	case DirectionShort:
		return "short"
	case DirectionLongClose:
		return "long_close"
	case DirectionShortClose:
		return "short_close"
	default:
		return "none"
	}
}

// Closing rotates an open direction to its closing counterpart.
func (d Direction) Closing() Direction {
	switch d {
	case DirectionLong:
		return DirectionLongClose
	case DirectionShort:
		return DirectionShortClose
	default:
		return d
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// ExitReasonKind tags why a position was closed.
type ExitReasonKind uint8

const (
	ExitNone ExitReasonKind = iota
	ExitSellSignal
	ExitStopLoss
	ExitTrailingStop
	ExitRoi
)

func (k ExitReasonKind) String() string {
	switch k {
	case ExitSellSignal:
		return "sell_signal"
	case ExitStopLoss:
		return "stop_loss"
	case ExitTrailingStop:
		return "trailing_stop"
	case ExitRoi:
		return "roi"
	default:
		return "none"
	}
}

// ExitReason carries the exit kind plus the matched ROI ladder rung when
// Kind == ExitRoi.
type ExitReason struct {
	Kind       ExitReasonKind `json:"kind"`
	RoiMinutes int            `json:"roi_minutes"`
	RoiPct     float64        `json:"roi_pct"`
}

func (r ExitReason) String() string {
	if r.Kind == ExitRoi {
		return fmt.Sprintf("roi(%dm,%.3f)", r.RoiMinutes, r.RoiPct)
	}
	return r.Kind.String()
}

func (k ExitReasonKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// RoiReason builds the exit reason for a matched ROI ladder rung.
func RoiReason(minutes int, pct float64) ExitReason {
	return ExitReason{Kind: ExitRoi, RoiMinutes: minutes, RoiPct: pct}
}

// SignalKind distinguishes entries from exits.
type SignalKind uint8

const (
	SignalEnter SignalKind = iota + 1
	SignalExit
)

func (k SignalKind) String() string {
	switch k {
	case SignalEnter:
		return "enter"
	case SignalExit:
		return "exit"
	default:
		return "unknown"
	}
}

func (k SignalKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Signal is one strategy decision for one bar. At most one is produced per
// accepted bar: an Enter with a direction, or an Exit with a reason.
type Signal struct {
	Kind      SignalKind `json:"kind"`
	Direction Direction  `json:"direction,omitempty"`
	Reason    ExitReason `json:"reason,omitempty"`
	Price     float64    `json:"price"`
}

// EnterSignal builds an entry signal at the given price.
func EnterSignal(direction Direction, price float64) Signal {
	return Signal{Kind: SignalEnter, Direction: direction, Price: price}
}

// ExitSignal builds an exit signal at the given price.
func ExitSignal(reason ExitReason, price float64) Signal {
	return Signal{Kind: SignalExit, Reason: reason, Price: price}
}
