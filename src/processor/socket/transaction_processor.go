package socket

import (
	"fmt"
	"time"

	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/sirupsen/logrus"
)

// TransactionProcessor serves local handlers to a remote validator.
type TransactionProcessor struct {
	processor *processor.Processor
	handlers  []processor.TransactionHandler
	validator *rpcClient
	rpc       *rpcServer
	logger    *logrus.Entry
}

// NewTransactionProcessor listens on bindAddress for Apply calls from the
// validator at validatorAddress.
func NewTransactionProcessor(validatorAddress string,
	bindAddress string,
	timeout time.Duration,
	metrics *processor.Metrics,
	logger *logrus.Entry) (*TransactionProcessor, error) {

	tp := &TransactionProcessor{
		processor: processor.NewProcessor(metrics, logger),
		validator: newRPCClient(validatorAddress, timeout),
		logger:    logger,
	}

	rpcServer, err := newRPCServer(bindAddress, "Processor", &processorService{tp}, logger)
	if err != nil {
		return nil, err
	}
	tp.rpc = rpcServer

	return tp, nil
}

// AddHandler must be called before Start.
func (tp *TransactionProcessor) AddHandler(h processor.TransactionHandler) {
	tp.processor.AddHandler(h)
	tp.handlers = append(tp.handlers, h)
}

// Addr ...
func (tp *TransactionProcessor) Addr() string {
	return tp.rpc.addr()
}

// Start begins serving and registers every handler with the validator.
func (tp *TransactionProcessor) Start() error {
	go tp.rpc.listen()

	for _, h := range tp.handlers {
		info := HandlerInfo{
			Family:     h.FamilyName(),
			Versions:   h.FamilyVersions(),
			Namespaces: h.Namespaces(),
			Addr:       tp.Addr(),
		}

		var ack bool
		if err := tp.validator.call("Validator.Register", info, &ack); err != nil {
			return fmt.Errorf("registering %s with validator: %v", info.Family, err)
		}
	}

	tp.logger.WithField("addr", tp.Addr()).Info("Transaction processor started")

	return nil
}

// Close ...
func (tp *TransactionProcessor) Close() error {
	tp.validator.close()
	return tp.rpc.close()
}

type processorService struct {
	tp *TransactionProcessor
}

func (p *processorService) Apply(args ApplyArgs, resp *processor.Response) error {
	if args.Request == nil || args.Request.Header == nil {
		return fmt.Errorf("apply without a transaction")
	}

	ctx := &remoteContext{
		id:        args.ContextID,
		validator: p.tp.validator,
	}

	*resp = p.tp.processor.Process(args.Request, ctx)
	return nil
}

// remoteContext forwards context calls to the validator.
type remoteContext struct {
	id        string
	validator *rpcClient
}

func (c *remoteContext) GetState(addresses []string) (map[string][]byte, error) {
	var reply ContextReply
	if err := c.validator.call("Validator.GetState", GetStateArgs{c.id, addresses}, &reply); err != nil {
		return nil, err
	}
	return reply.Entries, reply.err()
}

func (c *remoteContext) SetState(entries map[string][]byte) ([]string, error) {
	var reply ContextReply
	if err := c.validator.call("Validator.SetState", SetStateArgs{c.id, entries}, &reply); err != nil {
		return nil, err
	}
	return reply.Written, reply.err()
}

func (c *remoteContext) AddEvent(eventType string, attributes []protocol.Attribute, data []byte) error {
	var reply ContextReply
	if err := c.validator.call("Validator.AddEvent", AddEventArgs{c.id, eventType, attributes, data}, &reply); err != nil {
		return err
	}
	return reply.err()
}
