// Package transport sends one signed HTTPS request at a time over the
// shared connection pool, enforcing a client-side timeout on how long it
// will wait for response headers to start arriving (spec.md §4.3).
package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/contoso-cloud/azstore/internal/pool"
)

// Request is the signed, ready-to-send request the authorizer produces.
type Request struct {
	Host    string
	Method  string
	Path    string // path + "?" + query, already URL-encoded
	Headers map[string]string
	Body    []byte
}

type destroyer interface {
	Destroy() error
}

// Transport sends signed requests over a Pool.
type Transport struct {
	Pool *pool.Pool
}

// New constructs a Transport backed by the global connection pool.
func New() *Transport {
	return &Transport{Pool: pool.Global}
}

// Send issues req and returns its response. If no response headers begin
// arriving within clientTimeout, the attempt is aborted and fails with
// RequestTimeoutError. clientTimeout <= 0 disables the deadline.
func (t *Transport) Send(ctx context.Context, req *Request, clientTimeout time.Duration) (*Response, error) {
	p := t.Pool
	if p == nil {
		p = pool.Global
	}

	conn, err := p.Get(ctx, "tcp", req.Host+":443")
	if err != nil {
		return nil, fmt.Errorf("transport: acquiring connection: %w", err)
	}

	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := httpReq.Write(conn); err != nil {
		destroy(conn)
		return nil, RequestAbortedError(err)
	}

	if clientTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(clientTimeout))
	}

	br := bufio.NewReader(conn)
	resp, err := readHeaders(br)
	if err != nil {
		destroy(conn)
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, RequestTimeoutError(clientTimeout)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) {
			return nil, RequestAbortedError(err)
		}
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	body, err := readBody(br, resp.Headers, req.Method == http.MethodHead)
	if err != nil {
		destroy(conn)
		return nil, err
	}
	resp.Body = body

	if err := conn.Close(); err != nil {
		_ = err // returning to the pool failed; the response was already read in full
	}

	return resp, nil
}

func destroy(conn net.Conn) {
	if d, ok := conn.(destroyer); ok {
		_ = d.Destroy()
		return
	}
	_ = conn.Close()
}

func buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	full := "https://" + req.Host + req.Path
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, full, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("transport: building request: %w", err)
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}
	httpReq.Host = req.Host
	if len(req.Body) > 0 {
		httpReq.ContentLength = int64(len(req.Body))
	}
	return httpReq, nil
}
