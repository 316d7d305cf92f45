package pool

import (
	"context"
	"net"
	"testing"
	"time"
)

// pipeDialer hands out in-memory net.Pipe connections so tests never touch
// the network. Each call returns a fresh pair; the "server" half is stashed
// so tests can simulate the peer resetting an idle connection.
func pipeDialer(t *testing.T) (Dialer, *[]net.Conn) {
	var serverSides []net.Conn
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		client, server := net.Pipe()
		serverSides = append(serverSides, server)
		return client, nil
	}
	return dial, &serverSides
}

func TestGetDialsFreshConnectionWhenPoolEmpty(t *testing.T) {
	dial, _ := pipeDialer(t)
	p := New(Options{MaxSockets: 2, MaxFreeSockets: 2, Dial: dial})

	c, err := p.Get(context.Background(), "tcp", "example:443")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if c == nil {
		t.Fatal("expected non-nil connection")
	}
}

func TestPutReusesConnectionFromFreePool(t *testing.T) {
	var dialCount int
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialCount++
		client, _ := net.Pipe()
		return client, nil
	}
	p := New(Options{MaxSockets: 2, MaxFreeSockets: 2, Dial: dial})

	c1, err := p.Get(context.Background(), "tcp", "example:443")
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := p.Get(context.Background(), "tcp", "example:443")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	_ = c2.Close()

	if dialCount != 1 {
		t.Errorf("dialCount = %d, want 1 (second Get should reuse the pooled connection)", dialCount)
	}
}

func TestGetQueuesWhenAtMaxSockets(t *testing.T) {
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		client, _ := net.Pipe()
		return client, nil
	}
	p := New(Options{MaxSockets: 1, MaxFreeSockets: 1, Dial: dial})

	c1, err := p.Get(context.Background(), "tcp", "example:443")
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		c2, err := p.Get(context.Background(), "tcp", "example:443")
		if err == nil {
			_ = c2.Close()
		}
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("second Get should have blocked while at maxSockets")
	case <-time.After(20 * time.Millisecond):
	}

	if err := c1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("queued Get returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("queued Get never completed after the in-use connection was released")
	}
}

func TestGetRespectsContextCancellationWhileQueued(t *testing.T) {
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		client, _ := net.Pipe()
		return client, nil
	}
	p := New(Options{MaxSockets: 1, MaxFreeSockets: 1, Dial: dial})

	c1, err := p.Get(context.Background(), "tcp", "example:443")
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	defer c1.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = p.Get(ctx, "tcp", "example:443")
	if err == nil {
		t.Fatal("expected context deadline error while queued at maxSockets")
	}
}

func TestIdleConnectionIsEvictedAfterTimeout(t *testing.T) {
	var dialCount int
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialCount++
		client, _ := net.Pipe()
		return client, nil
	}
	p := New(Options{MaxSockets: 1, MaxFreeSockets: 1, Dial: dial, IdleTimeout: 20 * time.Millisecond})

	c, err := p.Get(context.Background(), "tcp", "example:443")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p.mu.Lock()
	if len(p.free["tcp|example:443"]) != 1 {
		p.mu.Unlock()
		t.Fatal("expected the connection to sit in the free pool right after Close")
	}
	p.mu.Unlock()

	deadline := time.After(time.Second)
	for {
		p.mu.Lock()
		free := len(p.free["tcp|example:443"])
		p.mu.Unlock()
		if free == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("idle socket was never evicted after IdleTimeout elapsed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := p.Get(context.Background(), "tcp", "example:443"); err != nil {
		t.Fatalf("Get after eviction: %v", err)
	}
	if dialCount != 2 {
		t.Errorf("dialCount = %d, want 2 (eviction should force a fresh dial instead of reusing the evicted socket)", dialCount)
	}
}

func TestIdleSocketErrorIsSwallowed(t *testing.T) {
	dial, serverSides := pipeDialer(t)
	// A long IdleTimeout isolates this test to the error-sink eviction
	// path, since the ordinary idle timer would also evict eventually.
	p := New(Options{MaxSockets: 1, MaxFreeSockets: 1, Dial: dial, IdleTimeout: time.Hour})

	c, err := p.Get(context.Background(), "tcp", "example:443")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Simulate the load balancer dropping an idle connection: close the
	// peer side. This must wake the background error sink and evict the
	// socket, never surface a read error to any caller.
	(*serverSides)[0].Close()

	deadline := time.After(time.Second)
	for {
		p.mu.Lock()
		free := len(p.free["tcp|example:443"])
		p.mu.Unlock()
		if free == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("idle socket was never evicted after its peer closed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := p.Get(context.Background(), "tcp", "example:443"); err != nil {
		t.Fatalf("Get after peer-close eviction: %v", err)
	}
}
