package socket

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/sirupsen/logrus"
)

// Server is the validator end of the processor connection.
type Server struct {
	rpc        *rpcServer
	timeout    time.Duration
	onRegister func(processor.TransactionHandler)

	l        sync.Mutex
	contexts map[string]processor.Context
	remotes  []*remoteHandler

	logger *logrus.Entry
}

// NewServer listens on bindAddress. onRegister is called, from an RPC
// goroutine, with a handler for each family a processor registers.
func NewServer(bindAddress string,
	timeout time.Duration,
	onRegister func(processor.TransactionHandler),
	logger *logrus.Entry) (*Server, error) {

	s := &Server{
		timeout:    timeout,
		onRegister: onRegister,
		contexts:   make(map[string]processor.Context),
		logger:     logger,
	}

	rpcServer, err := newRPCServer(bindAddress, "Validator", &validatorService{s}, logger)
	if err != nil {
		return nil, err
	}
	s.rpc = rpcServer

	return s, nil
}

// Serve accepts processor connections until Close. It blocks.
func (s *Server) Serve() {
	s.logger.WithField("bind_address", s.rpc.addr()).Debug("Serving transaction processors")
	s.rpc.listen()
}

// Addr ...
func (s *Server) Addr() string {
	return s.rpc.addr()
}

// Close stops accepting connections and drops the connections to registered
// processors.
func (s *Server) Close() error {
	s.l.Lock()
	for _, r := range s.remotes {
		r.client.close()
	}
	s.l.Unlock()

	return s.rpc.close()
}

func (s *Server) openContext(ctx processor.Context) string {
	s.l.Lock()
	defer s.l.Unlock()

	id := uuid.NewString()
	s.contexts[id] = ctx
	return id
}

func (s *Server) closeContext(id string) {
	s.l.Lock()
	defer s.l.Unlock()

	delete(s.contexts, id)
}

func (s *Server) context(id string) (processor.Context, error) {
	s.l.Lock()
	defer s.l.Unlock()

	ctx, ok := s.contexts[id]
	if !ok {
		return nil, fmt.Errorf("unknown or expired context %s", id)
	}
	return ctx, nil
}

// validatorService holds the RPC methods processors call.
type validatorService struct {
	s *Server
}

func (v *validatorService) Register(info HandlerInfo, ack *bool) error {
	if info.Family == "" || len(info.Versions) == 0 {
		return fmt.Errorf("registration should name a family and at least one version")
	}

	r := &remoteHandler{
		info:   info,
		server: v.s,
		client: newRPCClient(info.Addr, v.s.timeout),
	}

	v.s.l.Lock()
	v.s.remotes = append(v.s.remotes, r)
	v.s.l.Unlock()

	v.s.logger.WithFields(logrus.Fields{
		"family":   info.Family,
		"versions": info.Versions,
		"addr":     info.Addr,
	}).Info("Transaction processor registered")

	if v.s.onRegister != nil {
		v.s.onRegister(r)
	}

	*ack = true
	return nil
}

func (v *validatorService) GetState(args GetStateArgs, reply *ContextReply) error {
	ctx, err := v.s.context(args.ContextID)
	if err != nil {
		return err
	}

	entries, err := ctx.GetState(args.Addresses)
	*reply = newContextReply(err)
	reply.Entries = entries
	return nil
}

func (v *validatorService) SetState(args SetStateArgs, reply *ContextReply) error {
	ctx, err := v.s.context(args.ContextID)
	if err != nil {
		return err
	}

	written, err := ctx.SetState(args.Entries)
	*reply = newContextReply(err)
	reply.Written = written
	return nil
}

func (v *validatorService) AddEvent(args AddEventArgs, reply *ContextReply) error {
	ctx, err := v.s.context(args.ContextID)
	if err != nil {
		return err
	}

	*reply = newContextReply(ctx.AddEvent(args.EventType, args.Attributes, args.Data))
	return nil
}

// remoteHandler is a processor.TransactionHandler whose Apply runs in a remote
// TransactionProcessor.
type remoteHandler struct {
	info   HandlerInfo
	server *Server
	client *rpcClient
}

func (r *remoteHandler) FamilyName() string {
	return r.info.Family
}

func (r *remoteHandler) FamilyVersions() []string {
	return r.info.Versions
}

func (r *remoteHandler) Namespaces() []string {
	return r.info.Namespaces
}

// Apply exposes context to the processor for the duration of the call. A
// processor that cannot be reached is an internal error: the transaction may
// well be valid.
func (r *remoteHandler) Apply(request *processor.Request, context processor.Context) error {
	id := r.server.openContext(context)
	defer r.server.closeContext(id)

	var resp processor.Response
	if err := r.client.call("Processor.Apply", ApplyArgs{ContextID: id, Request: request}, &resp); err != nil {
		return processor.NewInternalError(err, "transaction processor at %s", r.info.Addr)
	}

	return resp.Err()
}
