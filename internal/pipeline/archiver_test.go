package pipeline

import (
	"context"
	"errors"
	"testing"

	"main/internal/model"
	"main/internal/obs"
	"main/internal/sink"
)

var errDisk = errors.New("disk failure")

type countingBackend struct {
	writes  int
	flushes int
	failAt  int
}

func (b *countingBackend) Write(model.Kline) error {
	b.writes++
	if b.failAt > 0 && b.writes >= b.failAt {
		return errDisk
	}
	return nil
}

func (b *countingBackend) Flush() error {
	b.flushes++
	return nil
}

func (b *countingBackend) Close() error { return nil }

func TestArchiverFlushesEveryBar(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{}
	s := sink.New(backend, 4)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start sink: %v", err)
	}
	defer s.Close()

	arch := NewArchiver(s, obs.NewMetrics(), func(error) { t.Fatal("unexpected fatal") })
	handler := arch.Handler(ctx)

	bar := model.Kline{Symbol: "BTCUSDT", Interval: model.Interval15m}
	handler(model.KlineMsg(1, bar))
	handler(model.KlineMsg(1, bar))
	handler(model.HeartbeatMsg(model.Heartbeat{Exchange: "binance"}))

	if backend.writes != 2 || backend.flushes != 2 {
		t.Fatalf("expected 2 writes and 2 flushes, got %d and %d", backend.writes, backend.flushes)
	}
}

func TestArchiverFatalFiresOnceAndLatches(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{failAt: 2}
	s := sink.New(backend, 4)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start sink: %v", err)
	}
	defer s.Close()

	fatals := 0
	arch := NewArchiver(s, obs.NewMetrics(), func(err error) {
		fatals++
		if !errors.Is(err, errDisk) {
			t.Fatalf("expected the backend error, got %v", err)
		}
	})
	handler := arch.Handler(ctx)

	bar := model.Kline{Symbol: "BTCUSDT", Interval: model.Interval15m}
	handler(model.KlineMsg(1, bar))
	handler(model.KlineMsg(1, bar))
	handler(model.KlineMsg(1, bar))

	if fatals != 1 {
		t.Fatalf("expected exactly one fatal callback, got %d", fatals)
	}
	if backend.writes != 2 {
		t.Fatalf("expected the latch to stop further writes, got %d", backend.writes)
	}
}
