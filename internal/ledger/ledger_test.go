package ledger

import (
	"math"
	"testing"

	"github.com/yanun0323/errors"

	"main/internal/model"
)

func testBar(symbol string, closeTime int64) model.Kline {
	return model.Kline{
		Exchange:    "binance",
		Symbol:      symbol,
		Interval:    model.Interval15m,
		CloseTimeMs: uint64(closeTime),
		Close:       100,
		Volume:      1,
	}
}

func TestApplyEnterThenExit(t *testing.T) {
	led := New("binance", 2)

	opened, err := led.Apply(1, testBar("BTCUSDT", 1000), model.EnterSignal(model.DirectionLong, 100))
	if err != nil {
		t.Fatalf("Apply enter: %v", err)
	}
	if opened.Direction != model.DirectionLong || opened.EnterPosition == nil || opened.EnterPosition.Price != 100 {
		t.Fatalf("unexpected open trade: %+v", opened)
	}
	if !led.Open(1) {
		t.Fatal("expected slot 1 to be open")
	}

	closed, err := led.Apply(1, testBar("BTCUSDT", 2000), model.ExitSignal(model.ExitReason{Kind: model.ExitStopLoss}, 110))
	if err != nil {
		t.Fatalf("Apply exit: %v", err)
	}
	if closed.Direction != model.DirectionLongClose {
		t.Fatalf("expected rotated direction long_close, got %v", closed.Direction)
	}
	if closed.Roi == nil || math.Abs(*closed.Roi-4) > 1e-9 {
		t.Fatalf("expected roi 4, got %v", closed.Roi)
	}
	if closed.EnterTimeMs != 1000 || closed.ExitTimeMs != 2000 {
		t.Fatalf("unexpected trade times: %+v", closed)
	}
	if led.Open(1) {
		t.Fatal("expected slot 1 to be reset after the exit")
	}
}

func TestApplyRejectsDuplicateEnter(t *testing.T) {
	led := New("binance", 2)

	if _, err := led.Apply(1, testBar("BTCUSDT", 1000), model.EnterSignal(model.DirectionLong, 100)); err != nil {
		t.Fatalf("Apply enter: %v", err)
	}
	_, err := led.Apply(1, testBar("BTCUSDT", 2000), model.EnterSignal(model.DirectionLong, 105))
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}

	// The slot must be untouched by the rejected entry.
	closed, err := led.Apply(1, testBar("BTCUSDT", 3000), model.ExitSignal(model.ExitReason{Kind: model.ExitSellSignal}, 110))
	if err != nil {
		t.Fatalf("Apply exit: %v", err)
	}
	if closed.EnterPosition.Price != 100 {
		t.Fatalf("expected the original entry at 100, got %+v", closed.EnterPosition)
	}
}

func TestApplyRejectsExitWithoutPosition(t *testing.T) {
	led := New("binance", 2)
	_, err := led.Apply(1, testBar("BTCUSDT", 1000), model.ExitSignal(model.ExitReason{Kind: model.ExitStopLoss}, 90))
	if !errors.Is(err, ErrExitWithoutPosition) {
		t.Fatalf("expected ErrExitWithoutPosition, got %v", err)
	}
}

func TestApplyRejectsBadIndex(t *testing.T) {
	led := New("binance", 2)
	for _, index := range []int{0, -1, 3} {
		if _, err := led.Apply(index, testBar("BTCUSDT", 1000), model.EnterSignal(model.DirectionLong, 100)); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("index %d: expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	led := New("binance", 2)

	if _, err := led.Apply(1, testBar("BTCUSDT", 1000), model.EnterSignal(model.DirectionLong, 100)); err != nil {
		t.Fatalf("Apply enter: %v", err)
	}
	if _, err := led.Apply(2, testBar("ETHUSDT", 1000), model.EnterSignal(model.DirectionShort, 50)); err != nil {
		t.Fatalf("Apply enter: %v", err)
	}

	closed, err := led.Apply(2, testBar("ETHUSDT", 2000), model.ExitSignal(model.ExitReason{Kind: model.ExitSellSignal}, 45))
	if err != nil {
		t.Fatalf("Apply exit: %v", err)
	}
	if closed.Direction != model.DirectionShortClose {
		t.Fatalf("expected short_close, got %v", closed.Direction)
	}
	if !led.Open(1) || led.Open(2) {
		t.Fatal("expected slot 1 open and slot 2 reset")
	}
}
