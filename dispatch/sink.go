package dispatch

import (
	"context"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/conn"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/session"
)

// futureSink adapts a session.Sink to a synchronous wait, the
// future-sink layer of §4.8. conn.ReadCommandResponse is the
// validating + converting steps, run inline before the waiter wakes.
type futureSink struct {
	done chan struct{}
	doc  *bson.Document
	err  error
}

func newFutureSink() *futureSink {
	return &futureSink{done: make(chan struct{})}
}

func (f *futureSink) deliver(resp msg.Response, err error) {
	if err != nil {
		f.err = err
	} else {
		f.doc, f.err = conn.ReadCommandResponse(resp)
	}
	close(f.done)
}

func (f *futureSink) wait(ctx context.Context) (*bson.Document, error) {
	select {
	case <-f.done:
		return f.doc, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Execute sends request on sess and blocks for its validated response.
// It is the entry point cursors use to pin GET_MORE/KILL_CURSORS to the
// same underlying session that served the original request (§4.9),
// bypassing the dispatcher's candidate selection.
func Execute(ctx context.Context, sess *session.Session, request msg.Request) (*bson.Document, error) {
	fut := newFutureSink()
	if _, err := sess.Send(request, fut.deliver); err != nil {
		return nil, err
	}
	return fut.wait(ctx)
}
