package conn

import (
	"time"

	"github.com/10gen/mongo-go-driver/msg"
)

func newConfig(opts ...Option) *config {
	cfg := &config{
		codec:  msg.NewWireProtocolCodec(),
		dialer: DialEndpoint,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option configures a connection.
type Option func(*config)

type config struct {
	appName     string
	codec       msg.Codec
	dialer      EndpointDialer
	idleTimeout time.Duration
}

// WithAppName sets the application name which gets
// sent to MongoDB on first connection.
func WithAppName(name string) Option {
	return func(c *config) {
		c.appName = name
	}
}

// WithIdleTimeout sets the duration after which an idle connection is
// considered expired and discarded instead of reused.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.idleTimeout = timeout
	}
}

// Codec sets the codec to use to encode and
// decode messages.
func Codec(codec msg.Codec) Option {
	return func(c *config) {
		c.codec = codec
	}
}

// EndpointDialerOpt defines the dialer for endpoints. Use this
// configuration option to enable things like TLS.
func EndpointDialerOpt(dialer EndpointDialer) Option {
	return func(c *config) {
		c.dialer = dialer
	}
}
