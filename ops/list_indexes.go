package ops

import (
	"context"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/msg"
)

// ListIndexesOptions are the options for listing indexes.
type ListIndexesOptions struct {
	// The batch size for fetching results. A zero value indicates the server's default batch size.
	BatchSize int32
}

// ListIndexes lists the indexes on the given namespace.
func ListIndexes(ctx context.Context, s *SelectedServer, ns Namespace, options ListIndexesOptions) (Cursor, error) {
	request := msg.NewCommand(
		msg.NextRequestID(),
		ns.DB,
		slaveOk(s.ReadPref),
		bson.NewDocument(
			bson.EString("listIndexes", ns.Collection),
			bson.EDocument("cursor", cursorRequest{batchSize: options.BatchSize}.toDocument()),
		),
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
