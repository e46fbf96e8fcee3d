package conn

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
)

var globalClientConnectionID int32

func nextClientConnectionID() int32 {
	return atomic.AddInt32(&globalClientConnectionID, 1)
}

// Connection is responsible for reading and writing messages on a
// single synchronous socket. It is the building block the server
// monitor's pinger dials directly; request multiplexing over one
// socket lives one layer up, in the session package.
type Connection interface {
	// Desc gets a description of the connection, populated during Dial.
	Desc() *Desc
	// Alive reports whether the connection believes itself usable.
	Alive() bool
	// Expired reports whether the connection should be discarded
	// instead of returned to a pool.
	Expired() bool
	// Read reads one message from the connection.
	Read(ctx context.Context) (msg.Response, error)
	// Write writes a number of messages to the connection.
	Write(ctx context.Context, reqs ...msg.Request) error
	// Close closes the connection.
	Close() error
}

// Dial opens a connection to endpoint, negotiating the connection
// description (ismaster/buildInfo) before returning.
func Dial(ctx context.Context, endpoint Endpoint, opts ...Option) (Connection, error) {
	cfg := newConfig(opts...)

	transport, err := cfg.dialer(endpoint.Canonicalize())
	if err != nil {
		return nil, err
	}

	c := &connectionImpl{
		id:          fmt.Sprintf("%s[-%d]", endpoint, nextClientConnectionID()),
		codec:       cfg.codec,
		ep:          endpoint,
		transport:   transport,
		alive:       true,
		idleTimeout: cfg.idleTimeout,
		lastUsed:    time.Now(),
	}

	if err := c.initialize(ctx, cfg.appName); err != nil {
		transport.Close()
		return nil, err
	}

	return c, nil
}

// ConnectionError reports a failure on a specific connection, keeping
// the connection id alongside the cause chain for diagnosability.
type ConnectionError struct {
	ConnectionID string

	message string
	inner   error
}

func (e *ConnectionError) Message() string { return e.message }
func (e *ConnectionError) Error() string   { return internal.RolledUpErrorMessage(e) }
func (e *ConnectionError) Inner() error     { return e.inner }

type connectionImpl struct {
	id          string
	codec       msg.Codec
	desc        *Desc
	ep          Endpoint
	transport   io.ReadWriteCloser
	alive       bool
	idleTimeout time.Duration
	lastUsed    time.Time
}

func (c *connectionImpl) Close() error {
	c.alive = false
	if err := c.transport.Close(); err != nil {
		return c.wrapError(err, "failed closing")
	}
	return nil
}

func (c *connectionImpl) Desc() *Desc { return c.desc }

func (c *connectionImpl) Alive() bool { return c.alive }

func (c *connectionImpl) Expired() bool {
	if !c.alive {
		return true
	}
	if c.idleTimeout == 0 {
		return false
	}
	return time.Since(c.lastUsed) > c.idleTimeout
}

func (c *connectionImpl) Read(ctx context.Context) (msg.Response, error) {
	message, err := c.codec.Decode(c.transport)
	if err != nil {
		c.alive = false
		return nil, c.wrapError(err, "failed reading")
	}
	c.lastUsed = time.Now()

	resp, ok := message.(msg.Response)
	if !ok {
		c.alive = false
		return nil, c.wrapError(nil, "failed reading: invalid message type received")
	}

	return resp, nil
}

func (c *connectionImpl) Write(ctx context.Context, requests ...msg.Request) error {
	messages := make([]msg.Message, len(requests))
	for i, req := range requests {
		messages[i] = req
	}

	if err := c.codec.Encode(c.transport, messages...); err != nil {
		c.alive = false
		return c.wrapError(err, "failed writing")
	}
	c.lastUsed = time.Now()
	return nil
}

func (c *connectionImpl) String() string { return c.id }

func (c *connectionImpl) initialize(ctx context.Context, appName string) error {
	isMasterResult, buildInfoResult, err := describeServer(ctx, c, createClientDoc(appName))
	if err != nil {
		return err
	}

	c.desc = &Desc{
		Endpoint:            c.ep,
		GitVersion:          buildInfoResult.GitVersion,
		Version:             Version{Desc: buildInfoResult.Version, Parts: buildInfoResult.VersionArray},
		MaxBSONObjectSize:   isMasterResult.MaxBSONObjectSize,
		MaxMessageSizeBytes: isMasterResult.MaxMessageSizeBytes,
		MaxWriteBatchSize:   isMasterResult.MaxWriteBatchSize,
		ReadOnly:            isMasterResult.ReadOnly,
		WireVersion:         Range{Min: uint8(isMasterResult.MinWireVersion), Max: uint8(isMasterResult.MaxWireVersion)},
	}

	getLastErrorReq := msg.NewCommand(
		msg.NextRequestID(),
		"admin",
		true,
		bson.NewDocument(bson.EInt32("getLastError", 1)),
	)

	// The connection id in getLastError's response only correlates our
	// client-side logs with the server's; a failure here doesn't affect
	// usability of the connection.
	if doc, err := ExecuteCommand(ctx, c, getLastErrorReq); err == nil {
		gle := internal.GetLastErrorResultFromDocument(doc)
		if gle.ConnectionID != 0 {
			c.id = fmt.Sprintf("%s[%d]", c.ep, gle.ConnectionID)
		}
	}

	return nil
}

func (c *connectionImpl) wrapError(inner error, message string) error {
	return &ConnectionError{
		ConnectionID: c.id,
		message:      fmt.Sprintf("connection(%s) error: %s", c.id, message),
		inner:        inner,
	}
}

func createClientDoc(appName string) *bson.Document {
	driverDoc := bson.NewDocument(
		bson.EString("name", "mongo-go-driver"),
		bson.EString("version", internal.Version),
	)
	osDoc := bson.NewDocument(
		bson.EString("type", "unknown"),
		bson.EString("name", runtime.GOOS),
		bson.EString("architecture", runtime.GOARCH),
		bson.EString("version", "unknown"),
	)

	b := bson.NewBuilder().
		Append(bson.EDocument("driver", driverDoc)).
		Append(bson.EDocument("os", osDoc))
	if appName != "" {
		b.Append(bson.EDocument("application", bson.NewDocument(bson.EString("name", appName))))
	}

	return b.Build()
}

func describeServer(ctx context.Context, c Connection, clientDoc *bson.Document) (internal.IsMasterResult, internal.BuildInfoResult, error) {
	isMasterCmd := bson.NewBuilder().Append(bson.EInt32("ismaster", 1))
	if clientDoc != nil {
		isMasterCmd.Append(bson.EDocument("client", clientDoc))
	}

	isMasterReq := msg.NewCommand(msg.NextRequestID(), "admin", true, isMasterCmd.Build())
	buildInfoReq := msg.NewCommand(msg.NextRequestID(), "admin", true, bson.NewDocument(bson.EInt32("buildInfo", 1)))

	docs, err := ExecuteCommands(ctx, c, []msg.Request{isMasterReq, buildInfoReq})
	if err != nil {
		return internal.IsMasterResult{}, internal.BuildInfoResult{}, err
	}

	return internal.IsMasterResultFromDocument(docs[0]), internal.BuildInfoResultFromDocument(docs[1]), nil
}
