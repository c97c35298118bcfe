// Package binance ingests kline streams from the Binance combined-stream
// websocket endpoint.
package binance

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/obs"
	"main/internal/registry"
)

const (
	// Exchange tags every bar produced by this package.
	Exchange = "binance"

	defaultStreamURL = "wss://stream.binance.com:9443/stream"
	writeWait        = 10 * time.Second
)

// Pair is one subscribed instrument and aggregation window.
type Pair struct {
	Symbol   string
	Interval model.Interval
}

// Config controls the connection supervisor.
type Config struct {
	URL   string
	Pairs []Pair
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = defaultStreamURL
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if len(c.Pairs) == 0 {
		return errors.New("invalid binance config: no pairs to subscribe")
	}
	for _, p := range c.Pairs {
		if p.Symbol == "" {
			return errors.New("invalid binance config: empty symbol")
		}
		if !p.Interval.IsAvailable() {
			return errors.Errorf("invalid binance config: unknown interval %q for %s", p.Interval, p.Symbol)
		}
	}
	return nil
}

// Supervisor owns one multiplexed websocket connection and fans closed bars
// into the pipeline queues. Bars are indexed through the registry on first
// sight; protocol pings are answered and surfaced as heartbeats.
type Supervisor struct {
	cfg      Config
	registry *registry.Registry
	metrics  *obs.Metrics
	queues   []*bus.Queue
}

// NewSupervisor wires the supervisor to its downstream queues. Every queue
// receives every message; publication is non-blocking, a full queue drops.
func NewSupervisor(cfg Config, reg *registry.Registry, metrics *obs.Metrics, queues ...*bus.Queue) (*Supervisor, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Supervisor{
		cfg:      cfg,
		registry: reg,
		metrics:  metrics,
		queues:   queues,
	}, nil
}

// Run connects, subscribes and receives until ctx is done. Any connection
// error tears the session down and the whole cycle restarts immediately.
// TODO: add reconnect backoff before this runs against production rate limits.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.connect(ctx); err != nil {
			logs.Errorf("binance session ended: %+v", err)
			s.metrics.IncReconnect()
			msg := model.ErrorMsg(err)
			for _, q := range s.queues {
				_ = q.TryPublish(msg)
			}
		}
	}
}

func (s *Supervisor) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return errors.Wrap(err, "dial")
	}
	defer conn.Close()
	logs.Infof("connected to %s", s.cfg.URL)

	// The watcher must not outlive its session, or reconnect churn
	// accumulates one parked goroutine per dropped connection.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if err != nil {
			return err
		}
		s.heartbeat()
		return nil
	})

	if err := s.subscribe(conn); err != nil {
		return err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "read")
		}
		s.handleFrame(raw)
	}
}

func (s *Supervisor) subscribe(conn *websocket.Conn) error {
	params := make([]string, 0, len(s.cfg.Pairs))
	for _, p := range s.cfg.Pairs {
		params = append(params, strings.ToLower(p.Symbol)+"@kline_"+string(p.Interval))
	}

	req := SubscribeRequest{Method: "SUBSCRIBE", Params: params, ID: 1}
	if err := conn.WriteJSON(req); err != nil {
		return errors.Wrap(err, "write subscribe payload")
	}
	logs.Infof("subscribed to %d kline streams", len(params))
	return nil
}

func (s *Supervisor) handleFrame(raw []byte) {
	var frame StreamFrame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Data.EventType != "kline" {
		logs.Warnf("ignore msg: %s", raw)
		s.metrics.IncDecodeError()
		return
	}

	// Open bars are dropped; only the final snapshot of each window moves on.
	if !frame.Data.Kline.IsClosed {
		return
	}

	index, err := s.registry.Assign(frame.Data.Symbol)
	if err != nil {
		logs.Errorf("index %s: %+v", frame.Data.Symbol, err)
		return
	}

	s.metrics.IncBarReceived()
	msg := model.KlineMsg(index, frame.Data.ToKline())
	for _, q := range s.queues {
		if err := q.TryPublish(msg); err != nil {
			logs.Errorf("drop bar %s %s: %+v", frame.Data.Symbol, frame.Data.Kline.Interval, err)
			s.metrics.IncBarDropped()
		}
	}
}

func (s *Supervisor) heartbeat() {
	s.metrics.IncHeartbeat()
	msg := model.HeartbeatMsg(model.Heartbeat{Exchange: Exchange, TimeMs: time.Now().UnixMilli()})
	for _, q := range s.queues {
		if err := q.TryPublish(msg); err != nil {
			logs.Warnf("drop heartbeat: %+v", err)
		}
	}
}
