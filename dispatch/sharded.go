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

// shardedDispatcher is the §4.6 sharded variant: requests go to any
// mongos, round-robin across the ones currently known, with no
// election — a dead router is simply dropped and the next one tried.
// A SHARD_CONFIG_STALE reply evicts that router's session so the next
// request against it opens fresh.
type shardedDispatcher struct {
	clus  cluster.Cluster
	cache *sessionCache

	mu   sync.Mutex
	next int
}

func newSharded(clus cluster.Cluster) Dispatcher {
	return &shardedDispatcher{clus: clus, cache: newSessionCache()}
}

func mongosSelector(_ *cluster.Desc, candidates []*server.Desc) ([]*server.Desc, error) {
	result := make([]*server.Desc, 0, len(candidates))
	for _, c := range candidates {
		if c.Type == server.Mongos {
			result = append(result, c)
		}
	}
	return result, nil
}

func (d *shardedDispatcher) rotate(n int) int {
	d.mu.Lock()
	start := d.next % n
	d.next++
	d.mu.Unlock()
	return start
}

func (d *shardedDispatcher) Send(ctx context.Context, rp *readpref.ReadPref, db string, request msg.Request) (*Result, error) {
	candidates, err := d.clus.Candidates(ctx, mongosSelector)
	if err != nil {
		return nil, internal.WrapAs(internal.KindNoSuitableServer, err, "no suitable server found")
	}
	if len(candidates) == 0 {
		return nil, internal.NewError(internal.KindNoSuitableServer, "no mongos routers available")
	}

	start := d.rotate(len(candidates))

	var lastErr error
	for i := 0; i < len(candidates); i++ {
		srv := candidates[(start+i)%len(candidates)]
		endpoint := string(srv.Desc().Endpoint)

		sess, err := d.cache.get(ctx, srv, nil)
		if err != nil {
			lastErr = err
			continue
		}

		doc, err := Execute(ctx, sess, request)
		if err != nil {
			if isShardConfigStale(err) {
				d.cache.evict(endpoint)
				lastErr = err
				continue
			}
			if isConnectionLost(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		return &Result{Doc: doc, Session: sess, Server: srv}, nil
	}

	return nil, internal.WrapAs(internal.KindConnectionLost, lastErr, "all mongos routers failed")
}

func (d *shardedDispatcher) Close() {
	d.cache.closeAll()
}
