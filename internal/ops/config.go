// Package ops loads and resolves the process configuration.
package ops

import (
	"os"
	"time"

	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"

	"main/internal/ingest/binance"
	"main/internal/model"
	"main/internal/sink"
	"main/internal/strategy"
	"main/pkg/conn"
)

const (
	defaultQueueSize     = 1024
	defaultStatsInterval = time.Minute
)

// FileConfig mirrors the YAML config layout. Optional strategy knobs are
// pointers so an absent key falls back to the tuned default.
type FileConfig struct {
	StreamURL string         `yaml:"stream_url"`
	Symbols   []SymbolConfig `yaml:"symbols"`
	QueueSize int            `yaml:"queue_size"`

	Strategy  StrategyConfig  `yaml:"strategy"`
	Writer    WriterConfig    `yaml:"writer"`
	Webhooks  []string        `yaml:"webhooks"`
	Database  DatabaseConfig  `yaml:"database"`
	Profiling ProfilingConfig `yaml:"profiling"`

	StatsIntervalSecs int `yaml:"stats_interval_secs"`
}

// SymbolConfig is one instrument subscription.
type SymbolConfig struct {
	Symbol   string `yaml:"symbol"`
	Interval string `yaml:"interval"`
}

// StrategyConfig selects the engine and carries its overrides.
type StrategyConfig struct {
	Name       string                `yaml:"name"`
	Bandtastic BandtasticFileConfig  `yaml:"bandtastic"`
	Macd       MultiTimeFrameFileCfg `yaml:"multi_timeframe_macd"`
}

// BandtasticFileConfig overrides a subset of the tuned parameter set.
type BandtasticFileConfig struct {
	Timeframe        *string  `yaml:"timeframe"`
	BuyRSIThreshold  *float64 `yaml:"buy_rsi_threshold"`
	BuyMFIThreshold  *float64 `yaml:"buy_mfi_threshold"`
	BuyTrigger       *string  `yaml:"buy_trigger"`
	SellRSIThreshold *float64 `yaml:"sell_rsi_threshold"`
	SellMFIThreshold *float64 `yaml:"sell_mfi_threshold"`
	SellTrigger      *string  `yaml:"sell_trigger"`
	Stoploss         *float64 `yaml:"stoploss"`
	TrailingStop     *bool    `yaml:"trailing_stop"`
}

// MultiTimeFrameFileCfg overrides a subset of the tuned parameter set.
type MultiTimeFrameFileCfg struct {
	ShortTrendTime     *string  `yaml:"short_trend_time"`
	LongTrendTime      *string  `yaml:"long_trend_time"`
	BreakevenThreshold *float64 `yaml:"breakeven_threshold"`
	TrailOffset        *float64 `yaml:"trail_offset"`
}

// WriterConfig selects and parameterizes the sink backend.
type WriterConfig struct {
	Type         string `yaml:"type"` // "file" or "shmem"
	Dir          string `yaml:"dir"`
	RotationSecs int    `yaml:"rotation_secs"`
	ShmemDir     string `yaml:"shmem_dir"`
	ShmemName    string `yaml:"shmem_name"`
	ShmemSize    int    `yaml:"shmem_size"`
}

// DatabaseConfig is the optional trade archive database.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// ProfilingConfig enables continuous profiling.
type ProfilingConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ServerAddress   string `yaml:"server_address"`
	ApplicationName string `yaml:"application_name"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Binance       binance.Config
	QueueSize     int
	StrategyName  string
	Bandtastic    strategy.BandtasticConfig
	Macd          strategy.MultiTimeFrameMacdConfig
	Writer        WriterConfig
	Webhooks      []string
	Database      *conn.Option
	Profiling     ProfilingConfig
	StatsInterval time.Duration
}

// Load reads a YAML config file and resolves it against the defaults.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	pairs := make([]binance.Pair, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		pairs = append(pairs, binance.Pair{
			Symbol:   s.Symbol,
			Interval: model.Interval(s.Interval),
		})
	}

	loaded := Loaded{
		Binance:       binance.Config{URL: cfg.StreamURL, Pairs: pairs},
		QueueSize:     cfg.QueueSize,
		StrategyName:  cfg.Strategy.Name,
		Bandtastic:    resolveBandtastic(cfg.Strategy.Bandtastic),
		Macd:          resolveMacd(cfg.Strategy.Macd),
		Writer:        cfg.Writer,
		Webhooks:      cfg.Webhooks,
		Profiling:     cfg.Profiling,
		StatsInterval: time.Duration(cfg.StatsIntervalSecs) * time.Second,
	}
	if loaded.QueueSize <= 0 {
		loaded.QueueSize = defaultQueueSize
	}
	if loaded.StatsInterval <= 0 {
		loaded.StatsInterval = defaultStatsInterval
	}

	if err := validateWriter(loaded.Writer); err != nil {
		return Loaded{}, err
	}

	switch loaded.StrategyName {
	case "", "bandtastic", "multi_timeframe_macd":
	default:
		return Loaded{}, errors.Errorf("unknown strategy %q", loaded.StrategyName)
	}

	if cfg.Database.Enabled {
		loaded.Database = &conn.Option{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
		}
	}

	return loaded, nil
}

func resolveBandtastic(file BandtasticFileConfig) strategy.BandtasticConfig {
	cfg := strategy.DefaultBandtasticConfig()
	if file.Timeframe != nil {
		cfg.Timeframe = model.Interval(*file.Timeframe)
	}
	if file.BuyRSIThreshold != nil {
		cfg.BuyRSIThreshold = *file.BuyRSIThreshold
	}
	if file.BuyMFIThreshold != nil {
		cfg.BuyMFIThreshold = *file.BuyMFIThreshold
	}
	if file.BuyTrigger != nil {
		cfg.BuyTrigger = *file.BuyTrigger
	}
	if file.SellRSIThreshold != nil {
		cfg.SellRSIThreshold = *file.SellRSIThreshold
	}
	if file.SellMFIThreshold != nil {
		cfg.SellMFIThreshold = *file.SellMFIThreshold
	}
	if file.SellTrigger != nil {
		cfg.SellTrigger = *file.SellTrigger
	}
	if file.Stoploss != nil {
		cfg.Stoploss = *file.Stoploss
	}
	if file.TrailingStop != nil {
		cfg.TrailingStop = *file.TrailingStop
	}
	return cfg
}

func resolveMacd(file MultiTimeFrameFileCfg) strategy.MultiTimeFrameMacdConfig {
	cfg := strategy.DefaultMultiTimeFrameMacdConfig()
	if file.ShortTrendTime != nil {
		cfg.ShortTrendTime = model.Interval(*file.ShortTrendTime)
	}
	if file.LongTrendTime != nil {
		cfg.LongTrendTime = model.Interval(*file.LongTrendTime)
	}
	if file.BreakevenThreshold != nil {
		cfg.BreakevenThreshold = *file.BreakevenThreshold
	}
	if file.TrailOffset != nil {
		cfg.TrailOffset = *file.TrailOffset
	}
	return cfg
}

func validateWriter(w WriterConfig) error {
	switch w.Type {
	case "", "file":
		if w.Dir == "" {
			return errors.New("writer.dir is required for the file backend")
		}
	case "shmem":
		if w.ShmemName == "" || w.ShmemSize <= 0 {
			return errors.New("writer.shmem_name and writer.shmem_size are required for the shmem backend")
		}
	default:
		return errors.Errorf("unknown writer type %q", w.Type)
	}
	return nil
}

// BuildBackend constructs the configured sink backend.
func (l Loaded) BuildBackend() (sink.Backend, error) {
	switch l.Writer.Type {
	case "", "file":
		return sink.NewFileBackend(sink.FileConfig{
			Dir:              l.Writer.Dir,
			RotationInterval: time.Duration(l.Writer.RotationSecs) * time.Second,
		})
	case "shmem":
		return sink.NewShmemBackend(sink.ShmemConfig{
			Dir:  l.Writer.ShmemDir,
			Name: l.Writer.ShmemName,
			Size: l.Writer.ShmemSize,
		})
	default:
		return nil, errors.Errorf("unknown writer type %q", l.Writer.Type)
	}
}

// BuildEngine constructs one strategy engine instance for one instrument.
func (l Loaded) BuildEngine() (strategy.Engine, error) {
	switch l.StrategyName {
	case "", "bandtastic":
		return strategy.NewBandtastic(l.Bandtastic)
	case "multi_timeframe_macd":
		return strategy.NewMultiTimeFrameMacd(l.Macd)
	default:
		return nil, errors.Errorf("unknown strategy %q", l.StrategyName)
	}
}
