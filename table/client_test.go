package table

import (
	"bufio"
	"context"
	"net"
	"testing"

	"github.com/contoso-cloud/azstore"
	"github.com/contoso-cloud/azstore/internal/pool"
)

// serveResponses builds a Table Client whose connections are served in
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

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestQueryTablesParsesResult(t *testing.T) {
	body := `{"value":[{"TableName":"orders"}]}`
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		drainRequest(req)
		writeResponse(server, "200 OK", body)
	})

	items, _, err := c.QueryTables(context.Background())
	if err != nil {
		t.Fatalf("QueryTables returned error: %v", err)
	}
	if len(items) != 1 || items[0].TableName != "orders" {
		t.Errorf("unexpected tables: %+v", items)
	}
}

func TestCreateTableSendsReturnNoContentAndExpects204(t *testing.T) {
	var sawPrefer string
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		requestLine, _ := req.ReadString('\n')
		_ = requestLine
		for {
			line, err := req.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
			if contains(line, "Prefer:") || contains(line, "prefer:") {
				sawPrefer = line
			}
		}
		writeResponse(server, "204 No Content", "")
	})

	if err := c.CreateTable(context.Background(), "orders"); err != nil {
		t.Fatalf("CreateTable returned error: %v", err)
	}
	if sawPrefer == "" {
		t.Error("expected a Prefer: return-no-content header")
	}
}

func TestCreateTableRejectsUnexpectedStatus(t *testing.T) {
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		drainRequest(req)
		writeResponse(server, "201 Created", "")
	})
	if err := c.CreateTable(context.Background(), "orders"); err == nil {
		t.Fatal("expected an error for a 201 response since only 204 is accepted")
	}
}

func TestDeleteTableSendsDelete(t *testing.T) {
	var method string
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		method = drainRequest(req)
		writeResponse(server, "204 No Content", "")
	})
	if err := c.DeleteTable(context.Background(), "orders"); err != nil {
		t.Fatalf("DeleteTable returned error: %v", err)
	}
	if !contains(method, "DELETE") {
		t.Errorf("request line = %q, want DELETE ...", method)
	}
}

func TestGetEntityParsesResult(t *testing.T) {
	body := `{"PartitionKey":"p1","RowKey":"r1","Amount":42}`
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		drainRequest(req)
		writeResponse(server, "200 OK", body)
	})

	entity, err := c.GetEntity(context.Background(), "orders", "p1", "r1")
	if err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if entity["RowKey"] != "r1" {
		t.Errorf("unexpected entity: %+v", entity)
	}
}

func TestGetEntityEncodesKeysWithQuotes(t *testing.T) {
	var sawLine string
	c := serveResponses(t, func(req *bufio.Reader, server net.Conn) {
		sawLine = drainRequest(req)
		writeResponse(server, "200 OK", `{"PartitionKey":"a","RowKey":"b"}`)
	})

	if _, err := c.GetEntity(context.Background(), "orders", "it's", "r1"); err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if !contains(sawLine, "it%27%27s") {
		t.Errorf("request line %q did not contain the doubled, escaped quote", sawLine)
	}
}
