package socket

import (
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type rpcClient struct {
	l       sync.Mutex
	addr    string
	timeout time.Duration
	rpc     *rpc.Client
}

func newRPCClient(addr string, timeout time.Duration) *rpcClient {
	return &rpcClient{
		addr:    addr,
		timeout: timeout,
	}
}

func (c *rpcClient) getConnection() (*rpc.Client, error) {
	c.l.Lock()
	defer c.l.Unlock()

	if c.rpc == nil {
		conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
		if err != nil {
			return nil, err
		}

		c.rpc = jsonrpc.NewClient(conn)
	}

	return c.rpc, nil
}

func (c *rpcClient) reset(cli *rpc.Client) {
	c.l.Lock()
	defer c.l.Unlock()

	if c.rpc == cli {
		c.rpc.Close()
		c.rpc = nil
	}
}

// call drops the connection on any failure; the next call redials.
func (c *rpcClient) call(method string, args interface{}, reply interface{}) error {
	cli, err := c.getConnection()
	if err != nil {
		return err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	call := cli.Go(method, args, reply, make(chan *rpc.Call, 1))

	select {
	case <-call.Done:
		if call.Error != nil {
			c.reset(cli)
		}
		return call.Error
	case <-timer.C:
		c.reset(cli)
		return fmt.Errorf("%s: no response after %v", method, c.timeout)
	}
}

func (c *rpcClient) close() {
	c.l.Lock()
	defer c.l.Unlock()

	if c.rpc != nil {
		c.rpc.Close()
		c.rpc = nil
	}
}

type rpcServer struct {
	listener net.Listener
	server   *rpc.Server
	logger   *logrus.Entry
}

func newRPCServer(bindAddress string, name string, rcvr interface{}, logger *logrus.Entry) (*rpcServer, error) {
	server := rpc.NewServer()

	if err := server.RegisterName(name, rcvr); err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", bindAddress)
	if err != nil {
		logger.WithField("error", err).Error("Failed to listen")
		return nil, err
	}

	return &rpcServer{
		listener: l,
		server:   server,
		logger:   logger,
	}, nil
}

func (s *rpcServer) listen() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.logger.WithField("error", err).Debug("Stopped accepting connections")
			return
		}

		go s.server.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

func (s *rpcServer) addr() string {
	return s.listener.Addr().String()
}

func (s *rpcServer) close() error {
	return s.listener.Close()
}
