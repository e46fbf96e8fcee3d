// Package dispatch implements the topology dispatcher (§4.6): routing
// a request to the right server for a cluster's topology, failing over
// across candidates, and reconnecting when a replica set loses its
// primary. It is the layer that actually drives session.Session, so
// requests flow through the multiplexing socket session instead of
// dialing a fresh connection per call.
package dispatch

import (
	"context"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/cluster"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/readpref"
	"github.com/10gen/mongo-go-driver/server"
	"github.com/10gen/mongo-go-driver/session"
)

// Result pairs a validated command response with the session and
// server that produced it. Callers that need affinity to the same
// server for follow-up requests (a cursor's GET_MORE/KILL_CURSORS,
// per §4.9) hold onto Session and call Execute directly, bypassing the
// dispatcher's candidate selection for those calls.
type Result struct {
	Doc     *bson.Document
	Session *session.Session
	Server  server.Server
}

// Dispatcher routes a request to a server, the per-topology variant
// selected once at bootstrap per §4.6.
type Dispatcher interface {
	// Send routes request according to rp (nil means primary-required)
	// and blocks for its validated response.
	Send(ctx context.Context, rp *readpref.ReadPref, db string, request msg.Request) (*Result, error)
	// Close closes every cached session.
	Close()
}

// New builds the dispatcher variant matching clus's topology, blocking
// until the first successful topology reply classifies it (§4.6:
// "selection of variant is determined at bootstrap").
func New(ctx context.Context, clus cluster.Cluster) (Dispatcher, error) {
	if _, err := clus.SelectServer(ctx, passThroughSelector); err != nil {
		return nil, internal.WrapAs(internal.KindNoSuitableServer, err, "no server available to classify topology")
	}

	switch clus.Desc().Type {
	case cluster.Single:
		return newStandalone(clus), nil
	case cluster.Sharded:
		return newSharded(clus), nil
	default:
		return newReplicaSet(clus), nil
	}
}

func passThroughSelector(_ *cluster.Desc, candidates []*server.Desc) ([]*server.Desc, error) {
	return candidates, nil
}

func isConnectionLost(err error) bool {
	de, ok := err.(*internal.DriverError)
	return ok && de.Kind() == internal.KindConnectionLost
}

func isShardConfigStale(err error) bool {
	de, ok := err.(*internal.DriverError)
	return ok && de.Kind() == internal.KindShardConfigStale
}
