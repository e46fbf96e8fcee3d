package ops

import (
	"context"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/cluster"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/server"
)

// Run executes an arbitrary command against the given database.
func Run(ctx context.Context, s *SelectedServer, db string, command *bson.Document) (*bson.Document, error) {
	return runMayUseSecondary(ctx, s, db, command)
}

func runMustUsePrimary(ctx context.Context, s *SelectedServer, db string, command *bson.Document) (*bson.Document, error) {
	request := msg.NewCommand(
		msg.NextRequestID(),
		db,
		s.ClusterKind == cluster.Single, // slaveOk
		command,
	)

	result, err := s.Send(ctx, db, request)
	if err != nil {
		return nil, err
	}
	return result.Doc, nil
}

func runMayUseSecondary(ctx context.Context, s *SelectedServer, db string, command *bson.Document) (*bson.Document, error) {
	request := msg.NewCommand(
		msg.NextRequestID(),
		db,
		slaveOk(s.ReadPref),
		command,
	)

	// $readPreference metadata is only meaningful when the dispatcher may
	// route to a mongos router; a direct replica-set/standalone connection
	// communicates everything via slaveOk.
	if s.ClusterKind == cluster.Sharded {
		if rpMeta := readPrefMeta(s.ReadPref, server.Mongos); rpMeta != nil {
			msg.AddMeta(request, map[string]*bson.Document{"$readPreference": rpMeta})
		}
	}

	result, err := s.Send(ctx, db, request)
	if err != nil {
		return nil, err
	}
	return result.Doc, nil
}
