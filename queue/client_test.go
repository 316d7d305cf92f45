package queue

import (
	"bufio"
	"context"
	"net"
	"testing"

	"github.com/contoso-cloud/azstore"
	"github.com/contoso-cloud/azstore/internal/pool"
)

// serveResponses builds a Queue Client whose connections are served in
// process by handle, so façade methods can be exercised without a real
// network or TLS handshake.
func serveResponses(t *testing.T, handle func(req *bufio.Reader, server net.Conn)) *Client {
	t.Helper()
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		client, server := net.Pipe()
		go handle(bufio.NewReader(server), server)
		return client, nil
	}

	c, err := NewClient(azstore.Config{AccountID: "contoso", AccessKey: "a2V5"}, "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetPool(pool.New(pool.Options{MaxSockets: 4, MaxFreeSockets: 4, Dial: dial}))
	return c
}

func drainRequest(req *bufio.Reader) string {
	requestLine, _ := req.ReadString('\n')
	for {
		line, err := req.ReadString('\n')
		if err != nil || line == "\r\n" {
			break
		}
	}
	return requestLine
}

func writeResponse(server net.Conn, status, body string) {
	server.Write([]byte("HTTP/1.1 " + status + "\r\nContent-Length: " + itoa(len(body)) + "\r\n\r\n" + body))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestListQueuesParsesResult(t *testing.T) {
	body := `<?xml version="1.0"?><EnumerationResults><MaxResults>5</MaxResults>` +
		`<Queues><Queue><Name>orders</Name></Queue></Queues></EnumerationResults>`
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		drainRequest(req)
		writeResponse(server, "200 OK", body)
	})

	res, err := c.ListQueues(context.Background(), ListQueuesOptions{})
	if err != nil {
		t.Fatalf("ListQueues returned error: %v", err)
	}
	if len(res.Queues) != 1 || res.Queues[0].Name != "orders" {
		t.Errorf("unexpected queues: %+v", res.Queues)
	}
}

func TestCreateQueueAcceptsNewOrExisting(t *testing.T) {
	for _, status := range []string{"201 Created", "204 No Content"} {
		c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
			line := drainRequest(req)
			if line == "" {
				t.Errorf("request line was empty")
			}
			writeResponse(server, status, "")
		})
		if err := c.CreateQueue(context.Background(), "orders", map[string]string{"purpose": "testing"}); err != nil {
			t.Errorf("CreateQueue with status %q returned error: %v", status, err)
		}
	}
}

func TestCreateQueueRejectsUnexpectedStatus(t *testing.T) {
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		drainRequest(req)
		writeResponse(server, "200 OK", "")
	})
	if err := c.CreateQueue(context.Background(), "orders", nil); err == nil {
		t.Fatal("expected an UnexpectedStatusError for a 200 response")
	}
}

func TestGetMetadataParsesCountAndMetadata(t *testing.T) {
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		drainRequest(req)
		server.Write([]byte("HTTP/1.1 200 OK\r\nX-Ms-Approximate-Messages-Count: 3\r\nX-Ms-Meta-Owner: team-a\r\nContent-Length: 0\r\n\r\n"))
	})

	count, metadata, err := c.GetMetadata(context.Background(), "orders")
	if err != nil {
		t.Fatalf("GetMetadata returned error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if metadata["Owner"] != "team-a" {
		t.Errorf("metadata = %v, want key Owner to carry original case", metadata)
	}
}

func TestDeleteQueueSendsDelete(t *testing.T) {
	var method string
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		line := drainRequest(req)
		method = line
		writeResponse(server, "204 No Content", "")
	})
	if err := c.DeleteQueue(context.Background(), "orders"); err != nil {
		t.Fatalf("DeleteQueue returned error: %v", err)
	}
	if method[:6] != "DELETE" {
		t.Errorf("request line = %q, want DELETE ...", method)
	}
}
