package ops

import (
	"context"

	"github.com/10gen/mongo-go-driver/cluster"
	"github.com/10gen/mongo-go-driver/dispatch"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/readpref"
)

// SelectedServer binds a topology dispatcher to the read preference
// and cluster topology an operation needs to shape its request the
// way the server expects (slaveOk, $readPreference metadata). Unlike
// the dispatcher itself, which is shared across every operation
// against a cluster, a SelectedServer is cheap and built fresh per
// call to carry that call's read preference.
type SelectedServer struct {
	Dispatcher dispatch.Dispatcher
	// ReadPref indicates the read preference that should
	// be passed to MongoS. This can be nil.
	ReadPref *readpref.ReadPref
	// ClusterKind is the kind of cluster the server was selected from,
	// used to decide whether slaveOk must be forced for a direct
	// connection to a single non-primary server.
	ClusterKind cluster.Type
}

// Send routes request through the dispatcher and returns its
// validated response together with the session and server that
// served it, so a caller needing affinity for follow-up requests (a
// cursor's GET_MORE/KILL_CURSORS, per §4.9) can hold onto the result.
func (s *SelectedServer) Send(ctx context.Context, db string, request msg.Request) (*dispatch.Result, error) {
	return s.Dispatcher.Send(ctx, s.ReadPref, db, request)
}
