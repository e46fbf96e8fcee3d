package ops

import (
	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/internal"
)

// CursorResult describes the initial results of a command that returns a cursor.
type CursorResult interface {
	// Namespace is the namespace the cursor iterates.
	Namespace() Namespace
	// InitialBatch is the initial batch of results, which may be empty.
	InitialBatch() []*bson.Document
	// CursorID is the cursor id, which is zero if no cursor was established.
	CursorID() int64
}

type cursorRequest struct {
	batchSize int32
}

// toDocument builds the { batchSize: n } document that accompanies a
// "cursor" field in a cursor-returning command.
func (r cursorRequest) toDocument() *bson.Document {
	b := bson.NewBuilder()
	if r.batchSize != 0 {
		b.Append(bson.EInt32("batchSize", r.batchSize))
	}
	return b.Build()
}

// firstBatchCursorResult is the cursor portion of the reply to any
// command that returns a cursor (aggregate, listCollections, ...):
// { cursor: { firstBatch: [...], ns: "db.coll", id: NumberLong(n) } }
type firstBatchCursorResult struct {
	ns         Namespace
	firstBatch []*bson.Document
	id         int64
}

func newCursorReturningResult(doc *bson.Document) (*firstBatchCursorResult, error) {
	el, ok := doc.Lookup("cursor")
	if !ok {
		return nil, internal.NewErrorf(internal.KindReplyValidation, "command response missing 'cursor' field")
	}
	cursorDoc, ok := el.Value.(*bson.Document)
	if !ok {
		return nil, internal.NewErrorf(internal.KindReplyValidation, "'cursor' field is not a document")
	}

	result := &firstBatchCursorResult{}

	if nsEl, ok := cursorDoc.Lookup("ns"); ok {
		if ns, ok := nsEl.Value.(string); ok {
			result.ns = ParseNamespace(ns)
		}
	}
	if idEl, ok := cursorDoc.Lookup("id"); ok {
		if id, ok := idEl.Value.(int64); ok {
			result.id = id
		}
	}
	if batchEl, ok := cursorDoc.Lookup("firstBatch"); ok {
		if batchArr, ok := batchEl.Value.(*bson.Document); ok {
			for _, e := range batchArr.Elements() {
				if d, ok := e.Value.(*bson.Document); ok {
					result.firstBatch = append(result.firstBatch, d)
				}
			}
		}
	}

	return result, nil
}

func (r *firstBatchCursorResult) Namespace() Namespace {
	return r.ns
}

func (r *firstBatchCursorResult) InitialBatch() []*bson.Document {
	return r.firstBatch
}

func (r *firstBatchCursorResult) CursorID() int64 {
	return r.id
}
