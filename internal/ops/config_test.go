package ops

import (
	"os"
	"path/filepath"
	"testing"

	"main/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadResolvesDefaults(t *testing.T) {
	path := writeConfig(t, `
symbols:
  - symbol: BTCUSDT
    interval: 15m
  - symbol: ETHUSDT
    interval: 15m
writer:
  type: file
  dir: /tmp/klines
`)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Binance.Pairs) != 2 || loaded.Binance.Pairs[0].Symbol != "BTCUSDT" {
		t.Fatalf("unexpected pairs: %+v", loaded.Binance.Pairs)
	}
	if loaded.QueueSize != defaultQueueSize {
		t.Fatalf("expected default queue size, got %d", loaded.QueueSize)
	}
	if loaded.Bandtastic.Timeframe != model.Interval15m || loaded.Bandtastic.Stoploss != -0.345 {
		t.Fatalf("expected tuned bandtastic defaults, got %+v", loaded.Bandtastic)
	}
	if loaded.Macd.ShortTrendTime != model.Interval1h || loaded.Macd.LongTrendTime != model.Interval4h {
		t.Fatalf("expected tuned macd defaults, got %+v", loaded.Macd)
	}
	if loaded.Database != nil {
		t.Fatal("expected no database by default")
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := writeConfig(t, `
symbols:
  - symbol: BTCUSDT
    interval: 15m
queue_size: 32
strategy:
  name: bandtastic
  bandtastic:
    buy_rsi_threshold: 42
    stoploss: -0.2
    trailing_stop: false
writer:
  type: shmem
  shmem_name: kline_ring
  shmem_size: 1048576
webhooks:
  - http://localhost:9000/hook
database:
  enabled: true
  host: db.local
  user: writer
  database: trades
`)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.QueueSize != 32 {
		t.Fatalf("expected queue size 32, got %d", loaded.QueueSize)
	}
	if loaded.Bandtastic.BuyRSIThreshold != 42 || loaded.Bandtastic.Stoploss != -0.2 || loaded.Bandtastic.TrailingStop {
		t.Fatalf("expected overrides applied, got %+v", loaded.Bandtastic)
	}
	// Untouched knobs keep their tuned values.
	if loaded.Bandtastic.SellRSIThreshold != 57 || loaded.Bandtastic.BuyTrigger != "bb_lower1" {
		t.Fatalf("expected untouched defaults, got %+v", loaded.Bandtastic)
	}
	if len(loaded.Webhooks) != 1 || loaded.Database == nil || loaded.Database.Host != "db.local" {
		t.Fatalf("unexpected loaded config: %+v", loaded)
	}
}

func TestLoadRejectsBadWriter(t *testing.T) {
	path := writeConfig(t, `
symbols:
  - symbol: BTCUSDT
    interval: 15m
writer:
  type: tape
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown writer type")
	}

	path = writeConfig(t, `
symbols:
  - symbol: BTCUSDT
    interval: 15m
writer:
  type: file
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a file writer without a directory")
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, `
symbols:
  - symbol: BTCUSDT
    interval: 15m
strategy:
  name: momentum
writer:
  type: file
  dir: /tmp/klines
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown strategy")
	}
}

func TestBuildEngineSelectsVariant(t *testing.T) {
	loaded := Loaded{StrategyName: "multi_timeframe_macd"}
	loaded.Bandtastic = resolveBandtastic(BandtasticFileConfig{})
	loaded.Macd = resolveMacd(MultiTimeFrameFileCfg{})

	engine, err := loaded.BuildEngine()
	if err != nil {
		t.Fatalf("BuildEngine: %v", err)
	}
	if engine.Name() != "MultiTimeFrameMacd Strategy" {
		t.Fatalf("unexpected engine: %s", engine.Name())
	}

	loaded.StrategyName = ""
	engine, err = loaded.BuildEngine()
	if err != nil {
		t.Fatalf("BuildEngine: %v", err)
	}
	if engine.Name() != "Bandtastic Strategy" {
		t.Fatalf("unexpected engine: %s", engine.Name())
	}
}
