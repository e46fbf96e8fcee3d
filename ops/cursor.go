package ops

import (
	"context"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/dispatch"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/session"
)

// NewExhaustedCursor creates a new cursor that never has a next document.
func NewExhaustedCursor() (Cursor, error) {
	return &exhaustedCursorImpl{}, nil
}

type exhaustedCursorImpl struct{}

func (e *exhaustedCursorImpl) Next(_ context.Context) (*bson.Document, bool) {
	return nil, false
}

func (e *exhaustedCursorImpl) Err() error {
	return nil
}

func (e *exhaustedCursorImpl) Close(_ context.Context) error {
	return nil
}

// NewCursor creates a new cursor from the given cursor result. result
// pins the cursor to the session that produced it (§4.9): every
// GET_MORE and the eventual KILL_CURSORS travel over that same
// session rather than through a fresh dispatcher selection, since the
// server-side cursor only lives on the server that opened it.
func NewCursor(cursorResult CursorResult, batchSize int32, result *dispatch.Result) (Cursor, error) {
	namespace := cursorResult.Namespace()
	if err := namespace.validate(); err != nil {
		return nil, err
	}

	return &cursorImpl{
		namespace:    namespace,
		batchSize:    batchSize,
		current:      0,
		currentBatch: cursorResult.InitialBatch(),
		cursorID:     cursorResult.CursorID(),
		session:      result.Session,
	}, nil
}

// Cursor lazily iterates a stream of documents, issuing GET_MORE commands
// to the originating server as the local batch is exhausted. A typical
// usage of the Cursor interface would be:
//
//	cursor := ...   // get a cursor from some operation
//	for {
//		doc, ok := cursor.Next(ctx)
//		if !ok {
//			break
//		}
//		fmt.Println(doc)
//	}
//	err := cursor.Close(ctx)
type Cursor interface {
	// Next returns the next document from the cursor and true, or a nil
	// document and false once the cursor is exhausted or has errored.
	Next(context.Context) (*bson.Document, bool)

	// Err returns the error status of the cursor.
	Err() error

	// Close closes the cursor, sending KILL_CURSORS if the server still
	// holds a live cursor. Ordinarily a no-op, since the server closes
	// the cursor itself once it is exhausted.
	Close(context.Context) error
}

type cursorImpl struct {
	namespace    Namespace
	batchSize    int32
	current      int
	currentBatch []*bson.Document
	cursorID     int64
	err          error
	session      *session.Session
}

func (c *cursorImpl) Next(ctx context.Context) (*bson.Document, bool) {
	if doc, ok := c.nextFromCurrentBatch(); ok {
		return doc, true
	}
	if c.err != nil {
		return nil, false
	}

	c.getMore(ctx)
	if c.err != nil {
		return nil, false
	}

	return c.nextFromCurrentBatch()
}

func (c *cursorImpl) Err() error {
	return c.err
}

func (c *cursorImpl) Close(ctx context.Context) error {
	c.currentBatch = nil

	if c.cursorID == 0 {
		return c.err
	}

	killCursorsRequest := msg.NewCommand(
		msg.NextRequestID(),
		c.namespace.DB,
		false,
		bson.NewDocument(
			bson.EString("killCursors", c.namespace.Collection),
			bson.EArray("cursors", bson.NewArray(bson.EInt64("", c.cursorID))),
		),
	)

	if _, err := dispatch.Execute(ctx, c.session, killCursorsRequest); err != nil {
		c.err = internal.MultiError(
			c.err,
			internal.WrapErrorf(err, "unable to kill cursor %d", c.cursorID),
		)
		return c.err
	}

	c.cursorID = 0
	return c.err
}

func (c *cursorImpl) nextFromCurrentBatch() (*bson.Document, bool) {
	if c.current < len(c.currentBatch) {
		doc := c.currentBatch[c.current]
		c.current++
		return doc, true
	}
	return nil, false
}

func (c *cursorImpl) getMore(ctx context.Context) {
	c.currentBatch = nil
	c.current = 0

	if c.cursorID == 0 {
		return
	}

	b := bson.NewBuilder().
		Append(bson.EInt64("getMore", c.cursorID)).
		Append(bson.EString("collection", c.namespace.Collection))
	if c.batchSize != 0 {
		b.Append(bson.EInt32("batchSize", c.batchSize))
	}

	getMoreRequest := msg.NewCommand(
		msg.NextRequestID(),
		c.namespace.DB,
		false,
		b.Build(),
	)

	doc, err := dispatch.Execute(ctx, c.session, getMoreRequest)
	if err != nil {
		c.err = internal.WrapErrorf(err, "unable get the next batch for cursor %d", c.cursorID)
		return
	}

	cursorEl, ok := doc.Lookup("cursor")
	if !ok {
		c.err = internal.NewErrorf(internal.KindReplyValidation, "getMore response missing 'cursor' field")
		return
	}
	cursorDoc, ok := cursorEl.Value.(*bson.Document)
	if !ok {
		c.err = internal.NewErrorf(internal.KindReplyValidation, "'cursor' field is not a document")
		return
	}

	if idEl, ok := cursorDoc.Lookup("id"); ok {
		if id, ok := idEl.Value.(int64); ok {
			c.cursorID = id
		}
	}
	if batchEl, ok := cursorDoc.Lookup("nextBatch"); ok {
		if batchArr, ok := batchEl.Value.(*bson.Document); ok {
			for _, e := range batchArr.Elements() {
				if d, ok := e.Value.(*bson.Document); ok {
					c.currentBatch = append(c.currentBatch, d)
				}
			}
		}
	}
}
