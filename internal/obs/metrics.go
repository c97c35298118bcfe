// Package obs collects lightweight pipeline counters.
package obs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"
)

// Metrics counts pipeline events. All methods are nil-safe so callers can
// skip wiring metrics entirely.
type Metrics struct {
	barsReceived uint64
	barsDropped  uint64
	decodeErrors uint64
	heartbeats   uint64
	reconnects   uint64
	signals      uint64
	sinkWrites   uint64
	sinkErrors   uint64
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	BarsReceived uint64
	BarsDropped  uint64
	DecodeErrors uint64
	Heartbeats   uint64
	Reconnects   uint64
	Signals      uint64
	SinkWrites   uint64
	SinkErrors   uint64
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncBarReceived() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.barsReceived, 1)
}

func (m *Metrics) IncBarDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.barsDropped, 1)
}

func (m *Metrics) IncDecodeError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.decodeErrors, 1)
}

func (m *Metrics) IncHeartbeat() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.heartbeats, 1)
}

func (m *Metrics) IncReconnect() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.reconnects, 1)
}

func (m *Metrics) IncSignal() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.signals, 1)
}

func (m *Metrics) IncSinkWrite() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sinkWrites, 1)
}

func (m *Metrics) IncSinkError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sinkErrors, 1)
}

// Snapshot captures the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		BarsReceived: atomic.LoadUint64(&m.barsReceived),
		BarsDropped:  atomic.LoadUint64(&m.barsDropped),
		DecodeErrors: atomic.LoadUint64(&m.decodeErrors),
		Heartbeats:   atomic.LoadUint64(&m.heartbeats),
		Reconnects:   atomic.LoadUint64(&m.reconnects),
		Signals:      atomic.LoadUint64(&m.signals),
		SinkWrites:   atomic.LoadUint64(&m.sinkWrites),
		SinkErrors:   atomic.LoadUint64(&m.sinkErrors),
	}
}

// Report logs a snapshot every interval until ctx is done.
func (m *Metrics) Report(ctx context.Context, interval time.Duration) {
	if m == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := m.Snapshot()
			logs.Infof("pipeline stats: bars=%d dropped=%d decode_errors=%d heartbeats=%d reconnects=%d signals=%d sink_writes=%d sink_errors=%d",
				s.BarsReceived, s.BarsDropped, s.DecodeErrors, s.Heartbeats, s.Reconnects, s.Signals, s.SinkWrites, s.SinkErrors)
		}
	}
}
