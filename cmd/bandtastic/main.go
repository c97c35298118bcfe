// Command bandtastic runs the live strategy pipeline: it subscribes to
// Binance kline streams, evaluates one strategy engine per instrument,
// settles signals in the position ledger, notifies webhooks and archives
// every closed bar to the configured sink.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/ingest/binance"
	"main/internal/ledger"
	"main/internal/notify"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/pipeline"
	"main/internal/registry"
	"main/internal/sink"
	"main/pkg/conn"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("bandtastic: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	loaded, err := ops.Load(*configFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if loaded.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: loaded.Profiling.ApplicationName,
			ServerAddress:   loaded.Profiling.ServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer profiler.Stop()
	}

	backend, err := loaded.BuildBackend()
	if err != nil {
		return err
	}
	dataSink := sink.New(backend, loaded.QueueSize)
	if err := dataSink.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := dataSink.Close(); err != nil {
			logs.Errorf("close sink: %+v", err)
		}
	}()

	var store *ledger.Store
	if loaded.Database != nil {
		client, err := conn.New(*loaded.Database)
		if err != nil {
			return err
		}
		defer client.Close()
		store, err = ledger.NewStore(client)
		if err != nil {
			return err
		}
	}

	instruments := len(loaded.Binance.Pairs)
	reg := registry.New(instruments)
	metrics := obs.NewMetrics()
	led := ledger.New(binance.Exchange, instruments)
	notifier := notify.New(loaded.Webhooks)

	evalQueue := bus.NewQueue(loaded.QueueSize)
	archiveQueue := bus.NewQueue(loaded.QueueSize)
	defer evalQueue.Close()
	defer archiveQueue.Close()

	supervisor, err := binance.NewSupervisor(loaded.Binance, reg, metrics, evalQueue, archiveQueue)
	if err != nil {
		return err
	}

	evaluator := pipeline.NewEvaluator(loaded.BuildEngine, led, notifier, store, metrics)
	archiver := pipeline.NewArchiver(dataSink, metrics, func(err error) {
		logs.Errorf("stopping on persistence failure: %+v", err)
		cancel()
	})

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		evalQueue.Run(ctx, evaluator.Handler(ctx))
	}()
	go func() {
		defer wg.Done()
		archiveQueue.Run(ctx, archiver.Handler(ctx))
	}()
	go func() {
		defer wg.Done()
		supervisor.Run(ctx)
	}()
	go metrics.Report(ctx, loaded.StatsInterval)

	notifier.Text(ctx, loaded.StrategyName, "strategy pipeline started")
	logs.Infof("pipeline running, %d instruments", instruments)

	<-ctx.Done()
	wg.Wait()
	return nil
}
