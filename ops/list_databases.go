package ops

import (
	"context"
	"time"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/msg"
)

// ListDatabasesOptions are the options for listing databases.
type ListDatabasesOptions struct {
	// The maximum execution time. A zero value indicates no maximum.
	MaxTime time.Duration
}

// ListDatabases lists the databases with the given options.
func ListDatabases(ctx context.Context, s *SelectedServer, options ListDatabasesOptions) (Cursor, error) {
	b := bson.NewBuilder().Append(bson.EInt32("listDatabases", 1))
	if options.MaxTime != 0 {
		b.Append(bson.EInt64("maxTimeMS", int64(options.MaxTime/time.Millisecond)))
	}

	request := msg.NewCommand(
		msg.NextRequestID(),
		"admin",
		false,
		b.Build(),
	)

	result, err := s.Send(ctx, "admin", request)
	if err != nil {
		return nil, err
	}

	var databases []*bson.Document
	if el, ok := result.Doc.Lookup("databases"); ok {
		if arr, ok := el.Value.(*bson.Document); ok {
			for _, e := range arr.Elements() {
				if d, ok := e.Value.(*bson.Document); ok {
					databases = append(databases, d)
				}
			}
		}
	}

	return &listDatabasesCursor{databases: databases}, nil
}

type listDatabasesCursor struct {
	databases []*bson.Document
	current   int
}

func (cursor *listDatabasesCursor) Next(_ context.Context) (*bson.Document, bool) {
	if cursor.current < len(cursor.databases) {
		doc := cursor.databases[cursor.current]
		cursor.current++
		return doc, true
	}
	return nil, false
}

func (cursor *listDatabasesCursor) Err() error {
	return nil
}

func (cursor *listDatabasesCursor) Close(_ context.Context) error {
	return nil
}
