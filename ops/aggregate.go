package ops

import (
	"context"
	"time"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/msg"
)

// AggregationOptions are the options for the aggregate command.
type AggregationOptions struct {
	// Whether the server can use stable storage for sorting results.
	AllowDiskUse bool
	// The batch size for fetching results. A zero value indicates the server's default batch size.
	BatchSize int32
	// The maximum execution time. A zero value indicates no maximum.
	MaxTime time.Duration
}

// Aggregate executes the aggregate command with the given pipeline and options.
//
// The pipeline must already be a BSON array document of pipeline stages.
func Aggregate(ctx context.Context, s *SelectedServer, ns Namespace, pipeline *bson.Document, options AggregationOptions) (Cursor, error) {
	if err := ns.validate(); err != nil {
		return nil, err
	}

	b := bson.NewBuilder().
		Append(bson.EString("aggregate", ns.Collection)).
		Append(bson.EArray("pipeline", pipeline)).
		Append(bson.EDocument("cursor", cursorRequest{batchSize: options.BatchSize}.toDocument()))
	if options.AllowDiskUse {
		b.Append(bson.EBoolean("allowDiskUse", true))
	}
	if options.MaxTime != 0 {
		b.Append(bson.EInt64("maxTimeMS", int64(options.MaxTime/time.Millisecond)))
	}

	request := msg.NewCommand(
		msg.NextRequestID(),
		ns.DB,
		slaveOk(s.ReadPref),
		b.Build(),
	)

	result, err := s.Send(ctx, ns.DB, request)
	if err != nil {
		return nil, err
	}

	cursorResult, err := newCursorReturningResult(result.Doc)
	if err != nil {
		return nil, err
	}

	return NewCursor(cursorResult, options.BatchSize, result)
}
