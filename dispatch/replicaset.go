package dispatch

import (
	"context"
	"sync"

	"github.com/10gen/mongo-go-driver/cluster"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/readpref"
	"github.com/10gen/mongo-go-driver/server"
)

// replicaSetDispatcher is the §4.6 replica-set variant: candidates are
// ordered by latency and tried in turn, a CONNECTION_LOST on the
// server currently believed to be primary nulls it and triggers the
// §4.7 reconnect strategy (scenario S2).
type replicaSetDispatcher struct {
	clus  cluster.Cluster
	cache *sessionCache

	mu      sync.Mutex
	primary string
}

func newReplicaSet(clus cluster.Cluster) Dispatcher {
	return &replicaSetDispatcher{clus: clus, cache: newSessionCache()}
}

func primarySelector(_ *cluster.Desc, candidates []*server.Desc) ([]*server.Desc, error) {
	result := make([]*server.Desc, 0, 1)
	for _, c := range candidates {
		if c.Type == server.RSPrimary {
			result = append(result, c)
		}
	}
	return result, nil
}

func (d *replicaSetDispatcher) candidates(ctx context.Context, rp *readpref.ReadPref) ([]server.Server, error) {
	return d.clus.Candidates(ctx, cluster.CompositeSelector([]cluster.ServerSelector{cluster.ReadPrefSelector(rp)}))
}

func (d *replicaSetDispatcher) primaryIsNil() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.primary == ""
}

func (d *replicaSetDispatcher) observePrimary(srv server.Server) {
	if srv.Desc().Type != server.RSPrimary {
		return
	}
	d.mu.Lock()
	d.primary = string(srv.Desc().Endpoint)
	d.mu.Unlock()
}

// onSessionClosed returns a sessionCache close-callback that nulls the
// remembered primary when the session lost belonged to it, so the
// next Send call reconnects instead of reusing a dead endpoint.
func (d *replicaSetDispatcher) onSessionClosed(srv server.Server) func(string) {
	endpoint := string(srv.Desc().Endpoint)
	return func(closed string) {
		if closed != endpoint {
			return
		}
		d.mu.Lock()
		if d.primary == endpoint {
			d.primary = ""
		}
		d.mu.Unlock()
	}
}

// reconnect polls the replica set for a new primary, reusing
// cluster.Cluster.SelectServer's existing wait-for-update-or-deadline
// loop as the §4.7 polling mechanism.
func (d *replicaSetDispatcher) reconnect(ctx context.Context) error {
	srv, err := d.clus.SelectServer(ctx, primarySelector)
	if err != nil {
		return internal.WrapAs(internal.KindNoPrimary, err, "no primary available")
	}
	d.observePrimary(srv)
	return nil
}

func (d *replicaSetDispatcher) Send(ctx context.Context, rp *readpref.ReadPref, db string, request msg.Request) (*Result, error) {
	if rp == nil {
		rp = readpref.Primary()
	}

	candidates, err := d.candidates(ctx, rp)
	if err != nil {
		return nil, internal.WrapAs(internal.KindNoSuitableServer, err, "no suitable server found")
	}

	if len(candidates) == 0 && d.primaryIsNil() {
		if err := d.reconnect(ctx); err != nil {
			return nil, err
		}
		candidates, err = d.candidates(ctx, rp)
		if err != nil {
			return nil, internal.WrapAs(internal.KindNoSuitableServer, err, "no suitable server found")
		}
	}

	if len(candidates) == 0 {
		return nil, internal.NewError(internal.KindNoSuitableServer, "no server matches the given read preference")
	}

	var lastErr error
	for _, srv := range candidates {
		sess, err := d.cache.get(ctx, srv, d.onSessionClosed(srv))
		if err != nil {
			lastErr = err
			continue
		}

		doc, err := Execute(ctx, sess, request)
		if err != nil {
			if isConnectionLost(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		d.observePrimary(srv)
		return &Result{Doc: doc, Session: sess, Server: srv}, nil
	}

	return nil, internal.WrapAs(internal.KindConnectionLost, lastErr, "all candidate servers failed")
}

func (d *replicaSetDispatcher) Close() {
	d.cache.closeAll()
}
