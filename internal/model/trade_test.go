package model

import (
	"math"
	"testing"
)

func TestCalculateLongRoi(t *testing.T) {
	trade := NewTrade()
	trade.Direction = DirectionLongClose
	trade.EnterPosition = &Position{Price: 100, Size: 1}
	trade.ExitPosition = &Position{Price: 110, Size: 1}

	trade.Calculate()
	if trade.Roi == nil {
		t.Fatal("expected roi to be computed")
	}
	// 10% gross minus the 6% round-trip fee.
	if math.Abs(*trade.Roi-4) > 1e-9 {
		t.Fatalf("expected roi 4, got %v", *trade.Roi)
	}
}

func TestCalculateShortRoi(t *testing.T) {
	trade := NewTrade()
	trade.Direction = DirectionShortClose
	trade.EnterPosition = &Position{Price: 100, Size: -1}
	trade.ExitPosition = &Position{Price: 90, Size: -1}

	trade.Calculate()
	if trade.Roi == nil {
		t.Fatal("expected roi to be computed")
	}
	if math.Abs(*trade.Roi-4) > 1e-9 {
		t.Fatalf("expected roi 4, got %v", *trade.Roi)
	}
}

func TestCalculateOpenDirections(t *testing.T) {
	trade := NewTrade()
	trade.Direction = DirectionLong
	trade.EnterPosition = &Position{Price: 100, Size: 1}
	trade.ExitPosition = &Position{Price: 110, Size: 1}

	trade.Calculate()
	if trade.Roi == nil || math.Abs(*trade.Roi-4) > 1e-9 {
		t.Fatalf("expected roi 4 for an open long, got %v", trade.Roi)
	}
}

func TestCalculateRequiresBothPositions(t *testing.T) {
	trade := NewTrade()
	trade.Direction = DirectionLong
	trade.EnterPosition = &Position{Price: 100, Size: 1}

	trade.Calculate()
	if trade.Roi != nil {
		t.Fatalf("expected no roi without an exit, got %v", *trade.Roi)
	}
}

func TestDirectionClosing(t *testing.T) {
	if got := DirectionLong.Closing(); got != DirectionLongClose {
		t.Fatalf("expected long_close, got %v", got)
	}
	if got := DirectionShort.Closing(); got != DirectionShortClose {
		t.Fatalf("expected short_close, got %v", got)
	}
	if got := DirectionLongClose.Closing(); got != DirectionLongClose {
		t.Fatalf("expected closing to be idempotent, got %v", got)
	}
}
