// Package pool implements a keep-alive TLS connection pool specialized for
// Azure Storage's load balancer, which silently drops connections that have
// sat idle for 60 seconds (spec.md §4.4). Every free socket carries its own
// idle timer and a background error sink so a connection reset observed
// while nothing is using the socket never reaches application code.
package pool

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/contoso-cloud/azstore/internal/logging"
)

// defaultIdleTimeout is conservatively below the load balancer's 60s
// idle-drop window so a pooled socket is always evicted before the peer
// silently closes it.
const defaultIdleTimeout = 55 * time.Second

// Dialer opens a new connection to addr. Production code dials TLS; tests
// substitute an in-memory pipe.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// Options configures a Pool. Zero values take the package defaults.
type Options struct {
	MaxSockets     int
	MaxFreeSockets int
	Dial           Dialer
	Logger         *logging.Logger

	// IdleTimeout overrides the 55s default eviction window for free
	// sockets. Tests shrink this to make eviction deterministic on a
	// human timescale.
	IdleTimeout time.Duration
}

// Pool hands out and reclaims keep-alive sockets for a set of host:port
// targets, enforcing the 55s idle eviction and swallowing transport errors
// observed on idle sockets.
type Pool struct {
	dial           Dialer
	maxSockets     int
	maxFreeSockets int
	logger         *logging.Logger
	idleTimeout    time.Duration

	mu      sync.Mutex
	free    map[string][]*conn
	inUse   map[string]int
	waiters map[string][]chan acquireResult
}

type acquireResult struct {
	conn *conn
	err  error
}

// New constructs a Pool. A nil Dialer defaults to dialing TLS over TCP.
func New(opts Options) *Pool {
	if opts.MaxSockets == 0 {
		opts.MaxSockets = 100
	}
	if opts.MaxFreeSockets == 0 {
		opts.MaxFreeSockets = 100
	}
	if opts.Dial == nil {
		opts.Dial = defaultDial
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	return &Pool{
		dial:           opts.Dial,
		maxSockets:     opts.MaxSockets,
		maxFreeSockets: opts.MaxFreeSockets,
		logger:         opts.Logger,
		idleTimeout:    opts.IdleTimeout,
		free:           make(map[string][]*conn),
		inUse:          make(map[string]int),
		waiters:        make(map[string][]chan acquireResult),
	}
}

// Global is the single shared pool instance, matching the "one pool per
// process" contract of spec.md §4.4's defaults.
var Global = New(Options{MaxSockets: 100, MaxFreeSockets: 100})

func defaultDial(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &tls.Dialer{NetDialer: &net.Dialer{}}
	return d.DialContext(ctx, network, addr)
}

// Get returns a ready-to-use connection to addr, reusing a pooled idle
// socket when one is available and otherwise dialing a fresh one (queueing
// if the pool is already at maxSockets). The returned conn has its idle
// timer cleared, its error sink detached, and TCP_NODELAY set.
func (p *Pool) Get(ctx context.Context, network, addr string) (net.Conn, error) {
	key := network + "|" + addr

	p.mu.Lock()
	if free := p.free[key]; len(free) > 0 {
		c := free[len(free)-1]
		p.free[key] = free[:len(free)-1]
		p.inUse[key]++
		p.mu.Unlock()
		c.activate()
		return c, nil
	}
	if p.inUse[key] < p.maxSockets {
		p.inUse[key]++
		p.mu.Unlock()

		raw, err := p.dial(ctx, network, addr)
		if err != nil {
			p.mu.Lock()
			p.inUse[key]--
			p.mu.Unlock()
			return nil, fmt.Errorf("pool: dial %s: %w", addr, err)
		}
		c := &conn{Conn: raw, pool: p, key: key}
		c.setNoDelay(true)
		return c, nil
	}

	ch := make(chan acquireResult, 1)
	p.waiters[key] = append(p.waiters[key], ch)
	p.mu.Unlock()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		res.conn.activate()
		return res.conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// put returns c to the free pool, re-arming its idle timer and error sink,
// unless the pool is already at maxFreeSockets (or a waiter is handed the
// socket directly) or the connection is no longer usable.
func (p *Pool) put(c *conn, usable bool) {
	p.mu.Lock()
	p.inUse[c.key]--

	if waiters := p.waiters[c.key]; len(waiters) > 0 {
		ch := waiters[0]
		p.waiters[c.key] = waiters[1:]
		p.inUse[c.key]++
		p.mu.Unlock()
		if !usable {
			ch <- acquireResult{err: fmt.Errorf("pool: connection closed while a request was queued")}
			return
		}
		ch <- acquireResult{conn: c}
		return
	}

	if !usable || len(p.free[c.key]) >= p.maxFreeSockets {
		p.mu.Unlock()
		_ = c.Conn.Close()
		return
	}
	p.free[c.key] = append(p.free[c.key], c)
	p.mu.Unlock()

	c.idle()
}

// evict removes c from the free list outright, e.g. after its idle timer
// fires or its background error sink observes a reset.
func (p *Pool) evict(c *conn) {
	p.mu.Lock()
	list := p.free[c.key]
	for i, fc := range list {
		if fc == c {
			p.free[c.key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
	_ = c.Conn.Close()
}
