package pool

import (
	"crypto/tls"
	"net"
	"time"
)

// conn wraps a pooled net.Conn with the idle-socket bookkeeping the pool
// needs: a timer that destroys the socket after 55s of sitting free, and a
// background reader that treats any error observed while idle as
// informational (spec.md §4.4, Design Notes §9 "Pool-side error swallowing").
type conn struct {
	net.Conn
	pool *Pool
	key  string

	idleTimer *time.Timer
	wake      chan struct{}
}

// Close returns the connection to the pool as reusable instead of actually
// closing the socket — the standard net.Conn contract callers expect from a
// pooled connection (the caller calls Close when it's done with the request,
// not when it wants the TCP connection torn down). Close does not check
// whether the socket failed; a caller that knows it did calls Destroy.
func (c *conn) Close() error {
	c.pool.put(c, true)
	return nil
}

// Destroy closes the underlying socket unconditionally, for callers (the
// transport, on transport-level failures) that know the connection is no
// longer usable and must not be recycled.
func (c *conn) Destroy() error {
	if c.wake != nil {
		close(c.wake)
		c.wake = nil
	}
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.pool.put(c, false)
	return nil
}

// activate is called when a socket is handed out: clear the idle timer,
// detach the error sink, and ensure TCP_NODELAY is set.
func (c *conn) activate() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
	if c.wake != nil {
		close(c.wake)
		c.wake = nil
		// The sink goroutine is blocked in Read with no deadline set; force
		// it to return immediately so it can observe the closed wake
		// channel and exit, then clear the deadline before real traffic.
		_ = c.Conn.SetReadDeadline(time.Now())
		_ = c.Conn.SetReadDeadline(time.Time{})
	}
	c.setNoDelay(true)
}

// idle is called when a socket returns to the free pool: arm the pool's
// idle eviction timer (55s by default) and start the background error sink.
func (c *conn) idle() {
	c.idleTimer = time.AfterFunc(c.pool.idleTimeout, func() {
		c.pool.evict(c)
	})

	wake := make(chan struct{})
	c.wake = wake
	go c.sinkIdleErrors(wake)
}

// sinkIdleErrors blocks on a 1-byte read. A real peer never sends data on an
// idle keep-alive socket, so any wakeup is either the pool forcing a return
// (wake closed, in which case the read's error is discarded) or the load
// balancer having dropped the connection (in which case the error is logged
// and the socket evicted, never surfaced to a caller).
func (c *conn) sinkIdleErrors(wake chan struct{}) {
	buf := make([]byte, 1)
	_, err := c.Conn.Read(buf)

	select {
	case <-wake:
		return
	default:
	}

	if err != nil {
		c.pool.logger.Debug().Err(err).Str("key", c.key).Msg("pool: idle socket error swallowed")
	}
	c.pool.evict(c)
}

// setNoDelay disables Nagle's algorithm on the underlying TCP socket. For a
// TLS connection that means unwrapping to the raw *net.TCPConn via
// tls.Conn.NetConn, since TCP_NODELAY is a socket option below the TLS
// record layer.
func (c *conn) setNoDelay(on bool) {
	underlying := net.Conn(c.Conn)
	if tlsConn, ok := underlying.(*tls.Conn); ok {
		underlying = tlsConn.NetConn()
	}
	if tc, ok := underlying.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(on)
	}
}
