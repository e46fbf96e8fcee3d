package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/cluster"
	"github.com/10gen/mongo-go-driver/conn"
	"github.com/10gen/mongo-go-driver/dispatch"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/readpref"
	"github.com/10gen/mongo-go-driver/server"
	"github.com/stretchr/testify/require"
)

// failOnWrite is a fakeConn write hook simulating a dropped socket: the
// session observes the write failure, classifies it KindConnectionLost,
// and closes itself, firing the SessionOpenStateChanged(open=false)
// observer the replica-set dispatcher relies on to null its primary.
func failOnWrite([]msg.Request) (msg.Response, error) {
	return nil, errors.New("connection reset by peer")
}

// TestReplicaSetDispatcher_FailoverThenReconnect exercises scenario S2:
// a request against the primary fails with CONNECTION_LOST and its
// session closes, and once the cluster reports a newly elected primary
// the next Send opens a fresh session to it.
func TestReplicaSetDispatcher_FailoverThenReconnect(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	deadPrimary := newFakeServer(conn.Endpoint("rs0:27017"), server.RSPrimary)
	deadPrimary.onDialed = func(fc *fakeConn) { fc.onWrite = failOnWrite }

	clus := newFakeCluster(cluster.ReplicaSetWithPrimary, deadPrimary)

	d, err := dispatch.New(context.Background(), clus)
	require.NoError(err)
	defer d.Close()

	req := msg.NewCommand(msg.NextRequestID(), "admin", false, bson.NewDocument(bson.EInt32("ping", 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = d.Send(ctx, nil, "admin", req)
	require.Error(err, "the dead primary should fail the first Send")

	// The replica set elects a new primary; the cluster now reports it
	// in place of the dead one.
	newPrimary := newFakeServer(conn.Endpoint("rs1:27017"), server.RSPrimary)
	clus.setServers(newPrimary)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()

	_, err = d.Send(ctx2, nil, "admin", req)
	require.NoError(err, "Send should reconnect to the newly elected primary")
	require.Equal(1, newPrimary.dialed)
}

// TestReplicaSetDispatcher_ReconnectPolls verifies the §4.7 reconnect
// strategy actually runs: when no candidate matches the read
// preference and no primary is remembered yet, Send polls the cluster
// via SelectServer for a primary before giving up.
func TestReplicaSetDispatcher_ReconnectPolls(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	primary := newFakeServer(conn.Endpoint("rs0:27017"), server.RSPrimary)
	clus := newFakeCluster(cluster.ReplicaSetWithPrimary, primary)

	d, err := dispatch.New(context.Background(), clus)
	require.NoError(err)
	defer d.Close()

	callsBeforeSend := clus.selectServerCalls()

	// A secondary-only read preference matches nothing (the cluster has
	// only a primary), forcing the "no candidates, no known primary"
	// branch to run its reconnect poll before reporting failure.
	rp := readpref.Secondary()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = d.Send(ctx, rp, "admin", msg.NewCommand(msg.NextRequestID(), "admin", true, bson.NewDocument(bson.EInt32("ping", 1))))
	require.Error(err, "no secondary exists, so the request itself still fails")
	require.Greater(clus.selectServerCalls(), callsBeforeSend, "Send should have polled the cluster for a primary via the reconnect strategy")
}
