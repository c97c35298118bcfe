package pipeline

import (
	"context"

	"github.com/yanun0323/logs"

	"main/internal/model"
	"main/internal/obs"
	"main/internal/sink"
)

// Archiver drains the raw bar stream into the durable sink, one write and
// one flush per closed bar. A persistence failure stops the process through
// the fatal callback: losing archive data silently is worse than stopping.
type Archiver struct {
	sink    *sink.Sink
	metrics *obs.Metrics
	fatal   func(error)
}

// NewArchiver wires the archive path. fatal is invoked at most once, on the
// first persistence error.
func NewArchiver(s *sink.Sink, metrics *obs.Metrics, fatal func(error)) *Archiver {
	return &Archiver{sink: s, metrics: metrics, fatal: fatal}
}

// Handler returns the queue callback for the archive path.
func (a *Archiver) Handler(ctx context.Context) func(model.Msg) {
	failed := false
	return func(msg model.Msg) {
		if msg.Kind != model.MsgKline || failed {
			return
		}
		if err := a.persist(ctx, msg.Kline); err != nil {
			a.metrics.IncSinkError()
			logs.Errorf("persist bar %s: %+v", msg.Kline.Symbol, err)
			failed = true
			a.fatal(err)
			return
		}
		a.metrics.IncSinkWrite()
	}
}

func (a *Archiver) persist(ctx context.Context, k model.Kline) error {
	if err := a.sink.Write(ctx, k); err != nil {
		return err
	}
	return a.sink.Flush(ctx)
}
