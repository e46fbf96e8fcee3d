package conn

import (
	"context"

	"github.com/10gen/mongo-go-driver/internal"
)

// Dialer dials a connection to an endpoint.
type Dialer func(ctx context.Context, endpoint Endpoint, opts ...Option) (Connection, error)

// Factory creates a connection.
type Factory func(context.Context) (Connection, error)

// DialerFactory returns a Factory that dials addr with dialer.
func DialerFactory(dialer Dialer, addr Endpoint, opts ...Option) Factory {
	return func(ctx context.Context) (Connection, error) {
		return dialer(ctx, addr, opts...)
	}
}

// LimitedFactory returns a Factory that is constrained by a resource
// limit: at most max connections may be open at once, blocking
// further calls to the returned Factory until one is Closed.
func LimitedFactory(max uint64, factory Factory) Factory {
	permits := internal.NewSemaphore(max)
	return func(ctx context.Context) (Connection, error) {
		if err := permits.Wait(ctx); err != nil {
			return nil, err
		}

		c, err := factory(ctx)
		if err != nil {
			permits.Release()
			return nil, err
		}
		return &limitedFactoryConn{c, permits}, nil
	}
}

type limitedFactoryConn struct {
	Connection
	permits *internal.Semaphore
}

func (c *limitedFactoryConn) Close() error {
	c.permits.Release()
	return c.Connection.Close()
}

// PoolFactory creates a Factory from a pool.
func PoolFactory(p *Pool) Factory {
	return func(ctx context.Context) (Connection, error) {
		return p.Get(ctx)
	}
}
