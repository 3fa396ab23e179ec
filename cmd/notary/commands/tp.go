package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/mosaicnetworks/notary/src/processor/socket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewTPCmd returns the command that runs the notary transaction processor
func NewTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tp",
		Short:   "Run the notary transaction processor",
		PreRunE: loadConfig,
		RunE:    runTP,
	}
	AddTPFlags(cmd)
	return cmd
}

//AddTPFlags adds flags to the tp command
func AddTPFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().StringP("processor-listen", "c", _config.Notary.ProcessorAddr, "IP:Port of the ledger to register with")
	cmd.Flags().StringP("tp-listen", "l", _config.Notary.TPAddr, "Listen IP:Port for calls from the ledger")
	cmd.Flags().DurationP("timeout", "t", _config.Notary.Timeout, "Timeout of calls to the ledger")
}

func runTP(cmd *cobra.Command, args []string) error {
	logger := _config.Notary.Logger()

	logger.WithFields(logrus.Fields{
		"ProcessorAddr": _config.Notary.ProcessorAddr,
		"TPAddr":        _config.Notary.TPAddr,
		"Timeout":       _config.Notary.Timeout,
	}).Debug("RUN")

	tp, err := socket.NewTransactionProcessor(
		_config.Notary.ProcessorAddr,
		_config.Notary.TPAddr,
		_config.Notary.Timeout,
		processor.NewMetrics(nil),
		logger.WithField("component", "tp"),
	)
	if err != nil {
		logger.Error("Cannot initialize transaction processor:", err)
		return err
	}
	defer tp.Close()

	tp.AddHandler(processor.NewNotaryHandler(logger.WithField("component", "notary")))

	if err := tp.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Stopping transaction processor")

	return nil
}
