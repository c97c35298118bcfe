// Package pipeline connects the ingest queues to the strategy, ledger,
// notification and persistence layers.
package pipeline

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/notify"
	"main/internal/obs"
	"main/internal/strategy"
)

// EngineBuilder constructs one fresh engine instance per instrument.
type EngineBuilder func() (strategy.Engine, error)

// Evaluator runs one strategy engine per instrument index and settles the
// resulting signals against the ledger. It is driven single-threaded by a
// queue, so the engines need no locking.
type Evaluator struct {
	build    EngineBuilder
	engines  map[int]strategy.Engine
	ledger   *ledger.Ledger
	notifier *notify.Notifier
	store    *ledger.Store
	metrics  *obs.Metrics
}

// NewEvaluator wires the evaluation path. store may be nil when no trade
// archive database is configured.
func NewEvaluator(build EngineBuilder, led *ledger.Ledger, notifier *notify.Notifier, store *ledger.Store, metrics *obs.Metrics) *Evaluator {
	return &Evaluator{
		build:    build,
		engines:  make(map[int]strategy.Engine),
		ledger:   led,
		notifier: notifier,
		store:    store,
		metrics:  metrics,
	}
}

// Handler returns the queue callback for the evaluation path.
func (e *Evaluator) Handler(ctx context.Context) func(model.Msg) {
	return func(msg model.Msg) {
		switch msg.Kind {
		case model.MsgKline:
			e.evaluate(ctx, msg.Index, msg.Kline)
		case model.MsgHeartbeat:
			logs.Infof("heartbeat from %s at %s", msg.Heartbeat.Exchange, model.FormatTimeHS(msg.Heartbeat.TimeMs))
			e.notifier.Text(ctx, msg.Heartbeat.Exchange, "heartbeat "+model.FormatTimeHS(msg.Heartbeat.TimeMs))
		case model.MsgError:
			logs.Errorf("transport: %+v", msg.Err)
		}
	}
}

func (e *Evaluator) evaluate(ctx context.Context, index int, k model.Kline) {
	engine, err := e.engine(index)
	if err != nil {
		logs.Errorf("build engine for %s: %+v", k.Symbol, err)
		return
	}

	sig, ok := engine.Next(k)
	if !ok {
		return
	}
	e.metrics.IncSignal()
	logs.Infof("%s %s signal: %s %s at %.8f", engine.Name(), k.Symbol, sig.Kind, sig.Direction, sig.Price)
	e.notifier.Signal(ctx, engine.Name(), k.Symbol, sig)

	trade, err := e.ledger.Apply(index, k, sig)
	if err != nil {
		logs.Errorf("ledger %s: %+v", k.Symbol, err)
		return
	}

	if sig.Kind == model.SignalExit {
		e.notifier.Trade(ctx, engine.Name(), trade)
		if err := e.store.SaveClosed(trade); err != nil {
			logs.Errorf("archive trade %s: %+v", k.Symbol, err)
		}
	}
}

func (e *Evaluator) engine(index int) (strategy.Engine, error) {
	if engine, ok := e.engines[index]; ok {
		return engine, nil
	}
	engine, err := e.build()
	if err != nil {
		return nil, errors.Wrap(err, "build engine")
	}
	e.engines[index] = engine
	return engine, nil
}
