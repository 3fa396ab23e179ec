package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/notary/src/events"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/spf13/cobra"
)

//NewListenCmd returns the command that prints ledger events
func NewListenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "listen",
		Short:   "Print ledger events as they are committed",
		PreRunE: loadConfig,
		RunE:    runListen,
	}
	AddListenFlags(cmd)
	return cmd
}

//AddListenFlags adds flags to the listen command
func AddListenFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().StringP("events-listen", "e", _config.Notary.EventsAddr, "IP:Port of the ledger's event bus")
	cmd.Flags().String("realm", _config.Notary.Realm, "WAMP realm of the event bus")
	cmd.Flags().StringSlice("event-types", _config.EventTypes, "Event types to subscribe to")
	cmd.Flags().String("address-filter", _config.AddressFilter, "Regex narrowing state-delta events by address")
}

// subscriptions narrows ledger/state-delta events to the address filter.
func subscriptions() []protocol.EventSubscription {
	subs := make([]protocol.EventSubscription, 0, len(_config.EventTypes))
	for _, t := range _config.EventTypes {
		s := protocol.EventSubscription{EventType: t}
		if t == "ledger/state-delta" && _config.AddressFilter != "" {
			s.Filters = []protocol.EventFilter{{
				Key:         "address",
				MatchString: _config.AddressFilter,
				FilterType:  protocol.RegexAny,
			}}
		}
		subs = append(subs, s)
	}
	return subs
}

func runListen(cmd *cobra.Command, args []string) error {
	logger := _config.Notary.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := events.Dial(ctx,
		"ws://"+_config.Notary.EventsAddr+"/",
		_config.Notary.Realm,
		logger.WithField("component", "listener"))
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.Subscribe(ctx, subscriptions()); err != nil {
		return err
	}
	defer func() {
		uctx, cancel := context.WithTimeout(context.Background(), _config.Notary.Timeout)
		defer cancel()
		if err := l.Unsubscribe(uctx); err != nil {
			logger.WithError(err).Warn("Unsubscribing")
		}
	}()

	logger.WithField("subscriber", l.ID()).Info("Listening for events")

	err = l.Listen(ctx, func(list protocol.EventList) {
		printEvents(cmd.OutOrStdout(), list)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printEvents(out io.Writer, list protocol.EventList) {
	for _, ev := range list.Events {
		fmt.Fprintf(out, "%s\n", ev.EventType)
		for _, a := range ev.Attributes {
			fmt.Fprintf(out, "  %s: %s\n", a.Key, a.Value)
		}
		if len(ev.Data) > 0 {
			fmt.Fprintf(out, "  data: %s\n", ev.Data)
		}
	}
}
