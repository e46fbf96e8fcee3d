package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/cluster"
	"github.com/10gen/mongo-go-driver/conn"
	"github.com/10gen/mongo-go-driver/dispatch"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/server"
	"github.com/10gen/mongo-go-driver/session"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory conn.Connection: a write echoes the
// configured reply on a buffered channel Read drains.
type fakeConn struct {
	mu      sync.Mutex
	alive   bool
	desc    *conn.Desc
	replies chan msg.Response
	onWrite func(reqs []msg.Request) (msg.Response, error)
	closed  bool
}

func newFakeConn(endpoint conn.Endpoint) *fakeConn {
	return &fakeConn{
		alive:   true,
		desc:    &conn.Desc{Endpoint: endpoint},
		replies: make(chan msg.Response, 16),
	}
}

func (f *fakeConn) Desc() *conn.Desc { return f.desc }
func (f *fakeConn) Alive() bool      { f.mu.Lock(); defer f.mu.Unlock(); return f.alive }
func (f *fakeConn) Expired() bool    { return false }

func (f *fakeConn) Read(ctx context.Context) (msg.Response, error) {
	resp, ok := <-f.replies
	if !ok {
		return nil, errors.New("connection closed")
	}
	return resp, nil
}

func (f *fakeConn) Write(ctx context.Context, reqs ...msg.Request) error {
	if f.onWrite == nil {
		return nil
	}
	resp, err := f.onWrite(reqs)
	if err != nil {
		return err
	}
	if resp != nil {
		f.replies <- resp
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.alive = false
		close(f.replies)
	}
	return nil
}

// fakeServer is a server.Server backed by fakeConns, one dialed per
// Connection call, so a test can observe how many times the
// dispatcher actually checked out a fresh connection.
type fakeServer struct {
	mu       sync.Mutex
	desc     *server.Desc
	dialed   int
	fail     bool
	onDialed func(*fakeConn)
}

func newFakeServer(endpoint conn.Endpoint, t server.Type) *fakeServer {
	return &fakeServer{desc: &server.Desc{Endpoint: endpoint, Type: t}}
}

func (s *fakeServer) Close() {}
func (s *fakeServer) Desc() *server.Desc { return s.desc }

func (s *fakeServer) Connection(ctx context.Context) (conn.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("dial failed")
	}
	s.dialed++
	fc := newFakeConn(s.desc.Endpoint)
	fc.onWrite = echoOK
	if s.onDialed != nil {
		s.onDialed(fc)
	}
	return fc, nil
}

func replyWith(reqID int32, doc *bson.Document) *msg.Reply {
	return &msg.Reply{RespTo: reqID, NumberReturned: 1, DocumentsBytes: bson.EncodeBuffered(doc)}
}

func echoOK(reqs []msg.Request) (msg.Response, error) {
	doc := bson.NewDocument(bson.EInt32("ok", 1))
	return replyWith(reqs[len(reqs)-1].RequestID(), doc), nil
}

func TestExecute_SuccessReturnsValidatedDocument(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fc := newFakeConn(conn.Endpoint("localhost:27017"))
	fc.onWrite = echoOK

	sess := session.Open(fc)
	defer sess.Close()

	req := msg.NewCommand(msg.NextRequestID(), "admin", true, bson.NewDocument(bson.EInt32("ping", 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	doc, err := dispatch.Execute(ctx, sess, req)
	require.NoError(err)
	require.NotNil(doc)

	el, ok := doc.Lookup("ok")
	require.True(ok)
	require.Equal(int32(1), el.Value)
}

func TestExecute_CommandFailurePropagates(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fc := newFakeConn(conn.Endpoint("localhost:27017"))
	fc.onWrite = func(reqs []msg.Request) (msg.Response, error) {
		doc := bson.NewDocument(bson.EInt32("ok", 0), bson.EString("errmsg", "bang"))
		return replyWith(reqs[len(reqs)-1].RequestID(), doc), nil
	}

	sess := session.Open(fc)
	defer sess.Close()

	req := msg.NewCommand(msg.NextRequestID(), "admin", true, bson.NewDocument(bson.EInt32("ping", 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := dispatch.Execute(ctx, sess, req)
	require.Error(err)
}

func TestStandaloneDispatcher_SendReusesCachedSession(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	srv := newFakeServer(conn.Endpoint("standalone:27017"), server.Standalone)
	clus := newFakeCluster(cluster.Single, srv)

	d, err := dispatch.New(context.Background(), clus)
	require.NoError(err)
	defer d.Close()

	req := msg.NewCommand(msg.NextRequestID(), "admin", true, bson.NewDocument(bson.EInt32("ping", 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = d.Send(ctx, nil, "admin", req)
	require.NoError(err)
	_, err = d.Send(ctx, nil, "admin", req)
	require.NoError(err)

	require.Equal(1, srv.dialed, "second Send should reuse the cached session instead of dialing again")
}

// fakeCluster is a cluster.Cluster backed by a mutable server list, so
// a test can simulate topology changes (an election, a router dying)
// between Send calls without a live monitor.
type fakeCluster struct {
	mu          sync.Mutex
	kind        cluster.Type
	servers     []server.Server
	selectCalls int
}

func newFakeCluster(kind cluster.Type, servers ...server.Server) *fakeCluster {
	return &fakeCluster{kind: kind, servers: servers}
}

// setServers replaces the cluster's reported server list, simulating a
// topology change (e.g. a newly elected primary) observed on the next
// Candidates/SelectServer call.
func (c *fakeCluster) setServers(servers ...server.Server) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.servers = servers
}

func (c *fakeCluster) selectServerCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectCalls
}

func (c *fakeCluster) Close() {}

func (c *fakeCluster) Desc() *cluster.Desc {
	c.mu.Lock()
	defer c.mu.Unlock()
	descs := make([]*server.Desc, len(c.servers))
	for i, s := range c.servers {
		descs[i] = s.Desc()
	}
	return &cluster.Desc{Type: c.kind, Servers: descs}
}

func (c *fakeCluster) SelectServer(ctx context.Context, selector cluster.ServerSelector) (server.Server, error) {
	c.mu.Lock()
	c.selectCalls++
	c.mu.Unlock()

	candidates, err := c.Candidates(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("no suitable server")
	}
	return candidates[0], nil
}

func (c *fakeCluster) Candidates(ctx context.Context, selector cluster.ServerSelector) ([]server.Server, error) {
	c.mu.Lock()
	servers := append([]server.Server{}, c.servers...)
	c.mu.Unlock()

	descs := make([]*server.Desc, len(servers))
	for i, s := range servers {
		descs[i] = s.Desc()
	}

	suitable, err := selector(&cluster.Desc{Type: c.kind, Servers: descs}, descs)
	if err != nil {
		return nil, err
	}
	var result []server.Server
	for _, sd := range suitable {
		for _, s := range servers {
			if s.Desc().Endpoint == sd.Endpoint {
				result = append(result, s)
			}
		}
	}
	return result, nil
}
