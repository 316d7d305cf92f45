package decode

import (
	"testing"

	"github.com/contoso-cloud/azstore/internal/transport"
)

// TestListQueuesParsesThreeEntries mirrors spec.md §8 scenario 4: three
// queues, two with a single "purpose=testing" metadata entry and one with
// two metadata keys.
func TestListQueuesParsesThreeEntries(t *testing.T) {
	payload := []byte(`<?xml version="1.0" encoding="utf-8"?>
<EnumerationResults>
  <Prefix></Prefix>
  <Marker></Marker>
  <MaxResults>10</MaxResults>
  <Queues>
    <Queue>
      <Name>queue-alpha</Name>
      <Metadata><purpose>testing</purpose></Metadata>
    </Queue>
    <Queue>
      <Name>queue-beta</Name>
      <Metadata><purpose>testing</purpose></Metadata>
    </Queue>
    <Queue>
      <Name>queue-gamma</Name>
      <Metadata><purpose>testing</purpose><owner>team-a</owner></Metadata>
    </Queue>
  </Queues>
  <NextMarker></NextMarker>
</EnumerationResults>`)

	res, err := ListQueues(payload)
	if err != nil {
		t.Fatalf("ListQueues returned error: %v", err)
	}
	if res.MaxResults != 10 {
		t.Errorf("MaxResults = %d, want 10", res.MaxResults)
	}
	if len(res.Queues) != 3 {
		t.Fatalf("got %d queues, want 3", len(res.Queues))
	}

	for _, name := range []string{"queue-alpha", "queue-beta"} {
		q := findQueue(t, res.Queues, name)
		if len(q.Metadata) != 1 || q.Metadata["purpose"] != "testing" {
			t.Errorf("%s metadata = %v, want {purpose: testing}", name, q.Metadata)
		}
	}

	gamma := findQueue(t, res.Queues, "queue-gamma")
	if len(gamma.Metadata) != 2 || gamma.Metadata["purpose"] != "testing" || gamma.Metadata["owner"] != "team-a" {
		t.Errorf("queue-gamma metadata = %v, want 2 keys", gamma.Metadata)
	}
}

func findQueue(t *testing.T, items []QueueItem, name string) QueueItem {
	t.Helper()
	for _, q := range items {
		if q.Name == name {
			return q
		}
	}
	t.Fatalf("queue %q not found in result", name)
	return QueueItem{}
}

func TestMessagesParsesGetMessagesFields(t *testing.T) {
	payload := []byte(`<QueueMessagesList>
  <QueueMessage>
    <MessageId>abc-123</MessageId>
    <InsertionTime>Mon, 01 Jan 2024 00:00:00 GMT</InsertionTime>
    <ExpirationTime>Mon, 08 Jan 2024 00:00:00 GMT</ExpirationTime>
    <PopReceipt>opaque-receipt</PopReceipt>
    <TimeNextVisible>Mon, 01 Jan 2024 00:00:30 GMT</TimeNextVisible>
    <DequeueCount>2</DequeueCount>
    <MessageText>hello</MessageText>
  </QueueMessage>
</QueueMessagesList>`)

	msgs, err := Messages(payload)
	if err != nil {
		t.Fatalf("Messages returned error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	m := msgs[0]
	if m.MessageID != "abc-123" || m.DequeueCount != 2 || m.MessageText != "hello" || m.PopReceipt != "opaque-receipt" {
		t.Errorf("unexpected message fields: %+v", m)
	}
	if m.InsertionTime.IsZero() || m.TimeNextVisible.IsZero() {
		t.Errorf("expected InsertionTime/TimeNextVisible to parse, got %+v", m)
	}
}

func TestQueueMetadataPreservesHeaderCase(t *testing.T) {
	raw := []transport.HeaderField{
		{Name: "X-Ms-Approximate-Messages-Count", Value: "7"},
		{Name: "X-Ms-Meta-AppName", Value: "v"},
		{Name: "Content-Length", Value: "0"},
	}
	count, metadata, err := QueueMetadata("7", raw)
	if err != nil {
		t.Fatalf("QueueMetadata returned error: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
	if metadata["AppName"] != "v" {
		t.Errorf("metadata = %v, want key AppName to carry original case", metadata)
	}
}
