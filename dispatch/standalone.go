package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/10gen/mongo-go-driver/cluster"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
	"github.com/10gen/mongo-go-driver/readpref"
)

const standaloneMaxBackoff = 30 * time.Second

// standaloneDispatcher is the §4.6 standalone variant: one underlying
// session, every request forwarded to it. Its reconnect strategy
// (§4.7) is exponential backoff against the single configured
// endpoint.
type standaloneDispatcher struct {
	clus  cluster.Cluster
	cache *sessionCache

	mu       sync.Mutex
	failures int
}

func newStandalone(clus cluster.Cluster) Dispatcher {
	return &standaloneDispatcher{clus: clus, cache: newSessionCache()}
}

func (d *standaloneDispatcher) Send(ctx context.Context, rp *readpref.ReadPref, db string, request msg.Request) (*Result, error) {
	srv, err := d.clus.SelectServer(ctx, passThroughSelector)
	if err != nil {
		return nil, internal.WrapAs(internal.KindNoSuitableServer, err, "no suitable server found")
	}

	sess, err := d.cache.get(ctx, srv, nil)
	if err != nil {
		d.backoff(ctx)
		return nil, internal.WrapAs(internal.KindConnectionNotAvailable, err, "unable to reconnect to standalone server")
	}
	d.reset()

	doc, err := Execute(ctx, sess, request)
	if err != nil {
		return nil, err
	}
	return &Result{Doc: doc, Session: sess, Server: srv}, nil
}

func (d *standaloneDispatcher) Close() {
	d.cache.closeAll()
}

// backoff waits an exponentially growing delay (capped at
// standaloneMaxBackoff), recording one more consecutive failure, so a
// caller that keeps retrying doesn't hammer a dead endpoint.
func (d *standaloneDispatcher) backoff(ctx context.Context) {
	d.mu.Lock()
	d.failures++
	n := d.failures
	d.mu.Unlock()

	delay := time.Duration(1<<uint(n-1)) * 100 * time.Millisecond
	if delay > standaloneMaxBackoff {
		delay = standaloneMaxBackoff
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

func (d *standaloneDispatcher) reset() {
	d.mu.Lock()
	d.failures = 0
	d.mu.Unlock()
}
