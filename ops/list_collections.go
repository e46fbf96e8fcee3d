package ops

import (
	"context"
	"time"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/msg"
)

// ListCollectionsOptions are the options for listing collections.
type ListCollectionsOptions struct {
	// A query filter for the collections.
	Filter *bson.Document
	// The batch size for fetching results. A zero value indicates the server's default batch size.
	BatchSize int32
	// The maximum execution time. A zero value indicates no maximum.
	MaxTime time.Duration
}

// ListCollections lists the collections in the given database with the given options.
func ListCollections(ctx context.Context, s *SelectedServer, databaseName string, options ListCollectionsOptions) (Cursor, error) {
	b := bson.NewBuilder().
		Append(bson.EInt32("listCollections", 1)).
		Append(bson.EDocument("cursor", cursorRequest{batchSize: options.BatchSize}.toDocument()))
	if options.Filter != nil {
		b.Append(bson.EDocument("filter", options.Filter))
	}
	if options.MaxTime != 0 {
		b.Append(bson.EInt64("maxTimeMS", int64(options.MaxTime/time.Millisecond)))
	}

	request := msg.NewCommand(
		msg.NextRequestID(),
		databaseName,
		slaveOk(s.ReadPref),
		b.Build(),
	)

	result, err := s.Send(ctx, databaseName, request)
	if err != nil {
		return nil, err
	}

	cursorResult, err := newCursorReturningResult(result.Doc)
	if err != nil {
		return nil, err
	}

	return NewCursor(cursorResult, options.BatchSize, result)
}
