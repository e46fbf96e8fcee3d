package server

import (
	"context"

	"github.com/10gen/mongo-go-driver/conn"
)

// New creates a new server. Internally, it
// creates a new Monitor with which to monitor the
// state of the server. When the Server is closed,
// the monitor will be stopped.
func New(endpoint conn.Endpoint, opts ...Option) (Server, error) {
	monitor, err := StartMonitor(endpoint, opts...)
	if err != nil {
		return nil, err
	}

	return newServer(monitor, true), nil
}

// NewWithMonitor creates a new Server from
// an existing monitor. When the server is closed,
// the monitor will not be stopped.
func NewWithMonitor(monitor *Monitor) Server {
	return newServer(monitor, false)
}

func newServer(monitor *Monitor, ownsMonitor bool) *serverImpl {
	s := &serverImpl{monitor: monitor, ownsMonitor: ownsMonitor}

	factory := func(ctx context.Context) (conn.Connection, error) {
		return monitor.cfg.dialer(ctx, monitor.endpoint, monitor.cfg.connOpts...)
	}

	var p pool = &nonPool{factory: factory}
	if monitor.cfg.maxConns > 0 {
		p = newLimitedPool(monitor.cfg.maxConns, &nonPool{factory: factory})
	}
	s.pool = p

	return s
}

// Server represents a server.
type Server interface {
	// Closes closes the server.
	Close()
	// Connection gets a connection to the server.
	Connection(context.Context) (conn.Connection, error)
	// Desc gets the current description of the server.
	Desc() *Desc
}

type serverImpl struct {
	monitor     *Monitor
	ownsMonitor bool
	pool        pool
}

func (s *serverImpl) Close() {
	s.pool.Close()
	if s.ownsMonitor {
		s.monitor.Stop()
	}
}

func (s *serverImpl) Desc() *Desc {
	return s.monitor.Desc()
}

func (s *serverImpl) Connection(ctx context.Context) (conn.Connection, error) {
	c, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &serverConn{server: s, Connection: c}, nil
}

func (s *serverImpl) connClosed(c *serverConn) {
	c.Connection.Close()
}
