// Package session multiplexes any number of concurrent logical requests
// over one TCP connection, correlating replies with the request that
// caused them via a pending-reply table.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/10gen/mongo-go-driver/conn"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
)

// State is a session's position in its OPENING -> OPEN -> SHUTTING_DOWN
// -> CLOSED lifecycle. CLOSED is terminal.
type State int32

// States.
const (
	Opening State = iota
	SessionOpen
	ShuttingDown
	Closed
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case Opening:
		return "OPENING"
	case SessionOpen:
		return "OPEN"
	case ShuttingDown:
		return "SHUTTING_DOWN"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Sink receives the reply (or failure) for one send. It is called from
// the session's receiver goroutine, never concurrently with another
// call for the same send.
type Sink func(msg.Response, error)

// SessionOpenStateChanged is the second of the two typed observer event
// kinds a driver-wide listener reacts to (the other is
// cluster.MembershipEvent): it fires whenever a session transitions to
// OPEN or to CLOSED, collapsing the intermediate OPENING/SHUTTING_DOWN
// states a caller never needs to react to.
type SessionOpenStateChanged struct {
	ServerName string
	Open       bool
}

const defaultQueueSize = 64

// Session multiplexes requests over a single conn.Connection. The zero
// value is not usable; construct with Open.
type Session struct {
	conn       conn.Connection
	serverName string

	state int32 // atomic State

	outbound chan sendOp
	pending  sync.Map // int32 request id -> Sink
	inFlight int32    // atomic count of entries currently in the pending table

	flush chan chan struct{}
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error

	observersMu sync.Mutex
	observers   []func(SessionOpenStateChanged)
}

type sendOp struct {
	requests []msg.Request
	trackID  int32
	sink     Sink
}

// Open starts a session's sender and receiver goroutines over c and
// transitions it to OPEN. c is owned by the session from this point on;
// callers must not read, write, or close it directly.
func Open(c conn.Connection) *Session {
	s := &Session{
		conn:       c,
		serverName: string(c.Desc().Endpoint),
		outbound:   make(chan sendOp, defaultQueueSize),
		flush:      make(chan chan struct{}),
		done:       make(chan struct{}),
	}
	atomic.StoreInt32(&s.state, int32(Opening))

	go s.senderLoop()
	go s.receiverLoop()

	s.transition(SessionOpen)

	return s
}

// ServerName returns the canonical name of the server this session is
// connected to.
func (s *Session) ServerName() string { return s.serverName }

// State returns the session's current lifecycle state.
func (s *Session) State() State { return State(atomic.LoadInt32(&s.state)) }

// IsIdle reports whether the session has no outstanding replies pending.
func (s *Session) IsIdle() bool { return s.PendingCount() == 0 }

// PendingCount returns the number of replies currently awaited.
func (s *Session) PendingCount() int32 { return atomic.LoadInt32(&s.inFlight) }

// Observe registers a listener notified with SessionOpenStateChanged
// whenever the session opens or closes. A topology dispatcher uses this
// to evict the session from its per-server cache and, if it was serving
// the primary, to null the primary and invoke the reconnect strategy.
func (s *Session) Observe(fn func(SessionOpenStateChanged)) {
	s.observersMu.Lock()
	s.observers = append(s.observers, fn)
	s.observersMu.Unlock()
}

// Send enqueues request for the sender goroutine and registers sink to
// receive its reply. It returns the server name this session is bound
// to. Fails with KindConnectionNotAvailable if the session is not OPEN.
func (s *Session) Send(request msg.Request, sink Sink) (string, error) {
	return s.SendPair(request, nil, sink)
}

// SendPair enqueues one or two requests as a single atomic write (for
// INSERT+GET_LAST_ERROR style command pairs). Only the last request's id
// is registered in the pending table for reply correlation; pass a nil
// second request to send just one.
func (s *Session) SendPair(request1, request2 msg.Request, sink Sink) (string, error) {
	if s.State() != SessionOpen {
		return s.serverName, internal.NewErrorf(internal.KindConnectionNotAvailable,
			"session for %s is not open (state %s)", s.serverName, s.State())
	}

	requests := []msg.Request{request1}
	trackID := request1.RequestID()
	if request2 != nil {
		requests = append(requests, request2)
		trackID = request2.RequestID()
	}

	if sink != nil {
		atomic.AddInt32(&s.inFlight, 1)
		s.pending.Store(trackID, sink)
	}

	select {
	case s.outbound <- sendOp{requests: requests, trackID: trackID, sink: sink}:
		return s.serverName, nil
	case <-s.done:
		if sink != nil {
			s.pending.Delete(trackID)
			atomic.AddInt32(&s.inFlight, -1)
		}
		return s.serverName, internal.NewErrorf(internal.KindConnectionNotAvailable,
			"session for %s is not open", s.serverName)
	}
}

// Flush blocks until every currently queued outbound frame has been
// handed to the connection.
func (s *Session) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case s.flush <- ack:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close transitions the session to CLOSED, failing every pending entry
// with KindConnectionLost and releasing the underlying connection.
func (s *Session) Close() error {
	return s.shutdown(internal.NewError(internal.KindConnectionLost, "session closed"))
}

// Shutdown drains outstanding sends before closing when force is false;
// when force is true, queued and pending sends are failed immediately
// with KindShutdownInProgress.
func (s *Session) Shutdown(force bool) error {
	s.transition(ShuttingDown)

	if !force {
		// give the sender goroutine a chance to drain s.outbound before
		// we close and fail whatever remains in the pending table.
		_ = s.Flush(context.Background())
	}

	return s.shutdown(internal.NewError(internal.KindShutdownInProgress, "session shutting down"))
}

func (s *Session) shutdown(failWith error) error {
	s.closeOnce.Do(func() {
		s.transition(Closed)
		close(s.done)

		s.pending.Range(func(key, value interface{}) bool {
			sink := value.(Sink)
			s.pending.Delete(key)
			atomic.AddInt32(&s.inFlight, -1)
			sink(nil, failWith)
			return true
		})

		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Session) transition(to State) {
	atomic.StoreInt32(&s.state, int32(to))

	if to != SessionOpen && to != Closed {
		return
	}

	s.observersMu.Lock()
	observers := append([]func(SessionOpenStateChanged){}, s.observers...)
	s.observersMu.Unlock()

	event := SessionOpenStateChanged{ServerName: s.serverName, Open: to == SessionOpen}
	for _, fn := range observers {
		fn(event)
	}
}

// senderLoop is the single producer task that drains the outbound queue
// and writes each frame to the socket. Backpressure is expressed by the
// queue's blocking send in Send/SendPair.
func (s *Session) senderLoop() {
	for {
		select {
		case op := <-s.outbound:
			if !s.writeOp(op) {
				return
			}

		case ack := <-s.flush:
			s.drainOutbound(ack)

		case <-s.done:
			return
		}
	}
}

// drainOutbound writes every frame already queued, then closes ack.
func (s *Session) drainOutbound(ack chan struct{}) {
	defer close(ack)
	for {
		select {
		case op := <-s.outbound:
			if !s.writeOp(op) {
				return
			}
		default:
			return
		}
	}
}

// writeOp writes op to the connection, failing its sink and shutting
// the session down on error. It returns false if the session died.
func (s *Session) writeOp(op sendOp) bool {
	if err := s.conn.Write(context.Background(), op.requests...); err != nil {
		s.failPending(op.trackID, internal.WrapAs(internal.KindConnectionLost, err, "failed writing request"))
		s.shutdown(internal.NewError(internal.KindConnectionLost, "connection lost"))
		return false
	}
	return true
}

// receiverLoop reads framed replies and dispatches each to the sink
// registered for its response-to id. A read failure is fatal to the
// session: it transitions to CLOSED and fails every pending entry.
func (s *Session) receiverLoop() {
	for {
		resp, err := s.conn.Read(context.Background())
		if err != nil {
			s.shutdown(internal.WrapAs(internal.KindConnectionLost, err, "connection lost"))
			return
		}

		value, ok := s.pending.Load(resp.ResponseTo())
		if !ok {
			// no one is waiting for this reply (e.g. it already timed
			// out and was swept); drop it.
			continue
		}
		s.pending.Delete(resp.ResponseTo())
		atomic.AddInt32(&s.inFlight, -1)

		sink := value.(Sink)
		sink(resp, nil)
	}
}

func (s *Session) failPending(id int32, err error) {
	if value, ok := s.pending.Load(id); ok {
		s.pending.Delete(id)
		atomic.AddInt32(&s.inFlight, -1)
		value.(Sink)(nil, err)
	}
}
