package dispatch

import (
	"context"
	"sync"

	"github.com/10gen/mongo-go-driver/server"
	"github.com/10gen/mongo-go-driver/session"
)

// sessionCache is the per-dispatcher session cache §4.6 gives each
// topology variant: one live session per server, opened lazily and
// evicted the moment it closes.
type sessionCache struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newSessionCache() *sessionCache {
	return &sessionCache{sessions: make(map[string]*session.Session)}
}

// get returns the cached, open session for srv, opening a fresh one
// over a newly checked-out connection if there is none or the cached
// one has closed. onClose, if non-nil, is invoked (after eviction) the
// next time this session closes, so a caller can react to losing a
// specific server (e.g. null the replica set's primary).
func (c *sessionCache) get(ctx context.Context, srv server.Server, onClose func(serverName string)) (*session.Session, error) {
	name := string(srv.Desc().Endpoint)

	c.mu.Lock()
	sess, ok := c.sessions[name]
	c.mu.Unlock()
	if ok && sess.State() == session.SessionOpen {
		return sess, nil
	}

	nc, err := srv.Connection(ctx)
	if err != nil {
		return nil, err
	}

	sess = session.Open(nc)

	c.mu.Lock()
	c.sessions[name] = sess
	c.mu.Unlock()

	sess.Observe(func(ev session.SessionOpenStateChanged) {
		if ev.Open {
			return
		}
		c.mu.Lock()
		if cur, ok := c.sessions[ev.ServerName]; ok && cur == sess {
			delete(c.sessions, ev.ServerName)
		}
		c.mu.Unlock()
		if onClose != nil {
			onClose(ev.ServerName)
		}
	})

	return sess, nil
}

// evict drops and closes the cached session for serverName, if any.
// Used to invalidate a sharded router's session on SHARD_CONFIG_STALE.
func (c *sessionCache) evict(serverName string) {
	c.mu.Lock()
	sess, ok := c.sessions[serverName]
	if ok {
		delete(c.sessions, serverName)
	}
	c.mu.Unlock()
	if ok {
		sess.Close()
	}
}

func (c *sessionCache) closeAll() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*session.Session)
	c.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
