package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/10gen/mongo-go-driver/conn"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
	. "github.com/10gen/mongo-go-driver/session"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory conn.Connection: writes echo a reply on a
// channel that Read drains, so a session can be driven without a real
// socket.
type fakeConn struct {
	mu      sync.Mutex
	alive   bool
	desc    *conn.Desc
	replies chan msg.Response
	onWrite func(reqs []msg.Request) (msg.Response, error)
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		alive:   true,
		desc:    &conn.Desc{Endpoint: conn.Endpoint("localhost:27017")},
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

func echoReply(reqs []msg.Request) (msg.Response, error) {
	return &msg.Reply{RespTo: reqs[len(reqs)-1].RequestID(), NumberReturned: 0}, nil
}

func TestSession_SendReceivesReply(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fc := newFakeConn()
	fc.onWrite = echoReply

	s := Open(fc)
	defer s.Close()

	req := msg.NewCommand(msg.NextRequestID(), "admin", true, nil)

	done := make(chan struct{})
	var gotResp msg.Response
	var gotErr error
	_, err := s.Send(req, func(resp msg.Response, err error) {
		gotResp, gotErr = resp, err
		close(done)
	})
	require.NoError(err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
	}

	require.NoError(gotErr)
	require.NotNil(gotResp)
	require.Equal(req.RequestID(), gotResp.ResponseTo())
	require.True(s.IsIdle())
}

func TestSession_SendPairTracksOnlySecondRequest(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fc := newFakeConn()
	fc.onWrite = echoReply

	s := Open(fc)
	defer s.Close()

	req1 := msg.NewCommand(msg.NextRequestID(), "admin", false, nil)
	req2 := msg.NewCommand(msg.NextRequestID(), "admin", false, nil)

	done := make(chan struct{})
	var gotResp msg.Response
	_, err := s.SendPair(req1, req2, func(resp msg.Response, err error) {
		gotResp = resp
		close(done)
	})
	require.NoError(err)

	<-done
	require.Equal(req2.RequestID(), gotResp.ResponseTo())
}

func TestSession_CloseFailsPendingSends(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fc := newFakeConn()
	// never reply, so the send stays pending until Close.

	s := Open(fc)

	req := msg.NewCommand(msg.NextRequestID(), "admin", true, nil)

	done := make(chan struct{})
	var gotErr error
	_, err := s.Send(req, func(resp msg.Response, err error) {
		gotErr = err
		close(done)
	})
	require.NoError(err)

	require.NoError(s.Close())

	<-done
	require.Error(gotErr)
	driverErr, ok := gotErr.(*internal.DriverError)
	require.True(ok)
	require.Equal(internal.KindConnectionLost, driverErr.Kind())
	require.Equal(Closed, s.State())
}

func TestSession_SendAfterCloseFails(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fc := newFakeConn()
	s := Open(fc)
	require.NoError(s.Close())

	req := msg.NewCommand(msg.NextRequestID(), "admin", true, nil)
	_, err := s.Send(req, func(msg.Response, error) {})
	require.Error(err)
}
