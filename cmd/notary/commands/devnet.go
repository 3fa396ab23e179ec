package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/notary/src/events"
	"github.com/mosaicnetworks/notary/src/ledger"
	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/mosaicnetworks/notary/src/processor/socket"
	"github.com/mosaicnetworks/notary/src/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewDevnetCmd returns the command that runs a single-node development ledger
func NewDevnetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devnet",
		Short:   "Run a single-node development ledger",
		PreRunE: loadConfig,
		RunE:    runDevnet,
	}
	AddDevnetFlags(cmd)
	return cmd
}

//AddDevnetFlags adds flags to the devnet command
func AddDevnetFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)

	// Network
	cmd.Flags().StringP("listen", "l", _config.Notary.ListenAddr, "Listen IP:Port for the REST API")
	cmd.Flags().StringP("processor-listen", "p", _config.Notary.ProcessorAddr, "Listen IP:Port for transaction processors")
	cmd.Flags().StringP("events-listen", "e", _config.Notary.EventsAddr, "Listen IP:Port for event subscribers")
	cmd.Flags().String("realm", _config.Notary.Realm, "WAMP realm of the event bus")
	cmd.Flags().DurationP("timeout", "t", _config.Notary.Timeout, "Timeout of calls to transaction processors")

	// Execution
	cmd.Flags().Int("queue-size", _config.Notary.QueueSize, "Batches queued before submissions are refused")
	cmd.Flags().Bool("external", _config.Notary.External, "Only apply transactions through registered processors")

	// Store
	cmd.Flags().Bool("store", _config.Notary.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.Notary.DatabaseDir, "Dabatabase directory")
}

func runDevnet(cmd *cobra.Command, args []string) error {
	logger := _config.Notary.Logger()

	logFields := logrus.Fields{
		"ListenAddr":    _config.Notary.ListenAddr,
		"ProcessorAddr": _config.Notary.ProcessorAddr,
		"EventsAddr":    _config.Notary.EventsAddr,
		"Realm":         _config.Notary.Realm,
		"QueueSize":     _config.Notary.QueueSize,
		"External":      _config.Notary.External,
		"Store":         _config.Notary.Store,
	}
	if _config.Notary.Store {
		logFields["DatabaseDir"] = _config.Notary.DatabaseDir
	}
	logger.WithFields(logFields).Debug("RUN")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	proc := processor.NewProcessor(processor.NewMetrics(reg), logger.WithField("component", "processor"))
	if !_config.Notary.External {
		proc.AddHandler(processor.NewNotaryHandler(logger.WithField("component", "notary")))
	}

	var store ledger.Store
	if _config.Notary.Store {
		bs, err := ledger.NewBadgerStore(_config.Notary.DatabaseDir, logger.WithField("component", "store"))
		if err != nil {
			logger.Error("Cannot open badger store:", err)
			return err
		}
		store = bs
	} else {
		store = ledger.NewInmemStore()
	}
	defer store.Close()

	bus, err := events.NewBus(_config.Notary.Realm, logger.WithField("component", "events"))
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.Serve(_config.Notary.EventsAddr); err != nil {
		return err
	}

	tracker := ledger.NewTracker()
	executor := ledger.NewExecutor(store,
		proc,
		tracker,
		bus,
		ledger.NewMetrics(reg),
		logger.WithField("component", "ledger"))
	queue := ledger.NewQueue(executor, _config.Notary.QueueSize, logger.WithField("component", "queue"))

	tpServer, err := socket.NewServer(_config.Notary.ProcessorAddr,
		_config.Notary.Timeout,
		proc.AddHandler,
		logger.WithField("component", "socket"))
	if err != nil {
		return err
	}
	defer tpServer.Close()
	go tpServer.Serve()

	svc := service.NewService(_config.Notary.ListenAddr,
		queue,
		tracker,
		executor,
		reg,
		logger.WithField("component", "service"))
	if err := svc.Listen(); err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go queue.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve()
	}()

	logger.WithFields(logrus.Fields{
		"api":        svc.Addr(),
		"processors": tpServer.Addr(),
		"events":     bus.Addr(),
	}).Info("Development ledger running")

	select {
	case <-ctx.Done():
		logger.Info("Stopping development ledger")
		return nil
	case err := <-errCh:
		return err
	}
}
