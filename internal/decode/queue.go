package decode

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/contoso-cloud/azstore/internal/transport"
)

// rawMetadata captures an XML element's children as a key/value map while
// preserving the original element-name case, since encoding/xml has no
// built-in way to unmarshal arbitrary children into a map.
type rawMetadata map[string]string

func (m *rawMetadata) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	result := map[string]string{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			result[t.Name.Local] = value
		case xml.EndElement:
			if t.Name == start.Name {
				if len(result) > 0 {
					*m = result
				}
				return nil
			}
		}
	}
}

// QueueItem is one entry in a ListQueues result.
type QueueItem struct {
	Name     string
	Metadata map[string]string
}

// ListQueuesResult is the parsed /EnumerationResults payload for listQueues.
type ListQueuesResult struct {
	Prefix     string
	Marker     string
	MaxResults int
	NextMarker string
	Queues     []QueueItem
}

type xmlQueueList struct {
	XMLName    xml.Name `xml:"EnumerationResults"`
	Prefix     string   `xml:"Prefix"`
	Marker     string   `xml:"Marker"`
	MaxResults int      `xml:"MaxResults"`
	NextMarker string   `xml:"NextMarker"`
	Queues     struct {
		Queue []struct {
			Name     string      `xml:"Name"`
			Metadata rawMetadata `xml:"Metadata"`
		} `xml:"Queue"`
	} `xml:"Queues"`
}

// ListQueues parses the listQueues response body (spec.md §4.5).
func ListQueues(payload []byte) (*ListQueuesResult, error) {
	var raw xmlQueueList
	if err := xml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode: parsing listQueues response: %w", err)
	}

	res := &ListQueuesResult{
		Prefix:     raw.Prefix,
		Marker:     raw.Marker,
		MaxResults: raw.MaxResults,
		NextMarker: raw.NextMarker,
	}
	for _, q := range raw.Queues.Queue {
		res.Queues = append(res.Queues, QueueItem{Name: q.Name, Metadata: map[string]string(q.Metadata)})
	}
	return res, nil
}

// Message is one queue message as returned by peekMessages/getMessages.
// PopReceipt and TimeNextVisible are zero-valued for peekMessages results.
type Message struct {
	MessageID       string
	InsertionTime   time.Time
	ExpirationTime  time.Time
	DequeueCount    int
	MessageText     string
	PopReceipt      string
	TimeNextVisible time.Time
}

type xmlQueueMessageList struct {
	XMLName      xml.Name `xml:"QueueMessagesList"`
	QueueMessage []struct {
		MessageID       string `xml:"MessageId"`
		InsertionTime   string `xml:"InsertionTime"`
		ExpirationTime  string `xml:"ExpirationTime"`
		DequeueCount    int    `xml:"DequeueCount"`
		MessageText     string `xml:"MessageText"`
		PopReceipt      string `xml:"PopReceipt"`
		TimeNextVisible string `xml:"TimeNextVisible"`
	} `xml:"QueueMessage"`
}

// Messages parses a peekMessages/getMessages response body.
func Messages(payload []byte) ([]Message, error) {
	var raw xmlQueueMessageList
	if err := xml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode: parsing message list response: %w", err)
	}

	out := make([]Message, 0, len(raw.QueueMessage))
	for _, m := range raw.QueueMessage {
		msg := Message{
			MessageID:    m.MessageID,
			DequeueCount: m.DequeueCount,
			MessageText:  m.MessageText,
			PopReceipt:   m.PopReceipt,
		}
		msg.InsertionTime, _ = parseHTTPDate(m.InsertionTime)
		msg.ExpirationTime, _ = parseHTTPDate(m.ExpirationTime)
		msg.TimeNextVisible, _ = parseHTTPDate(m.TimeNextVisible)
		out = append(out, msg)
	}
	return out, nil
}

func parseHTTPDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(http.TimeFormat, s)
}

const metaHeaderPrefix = "x-ms-meta-"

// QueueMetadata extracts the approximate message count and x-ms-meta-*
// headers from a getMetadata (HEAD) response. rawHeaders must be the
// wire-order, case-preserving header sequence: the returned metadata keys
// keep the case the server actually sent (spec.md §8).
func QueueMetadata(approxCountHeader string, rawHeaders []transport.HeaderField) (approxCount int, metadata map[string]string, err error) {
	if approxCountHeader != "" {
		approxCount, err = strconv.Atoi(approxCountHeader)
		if err != nil {
			return 0, nil, fmt.Errorf("decode: malformed x-ms-approximate-messages-count %q: %w", approxCountHeader, err)
		}
	}

	for _, h := range rawHeaders {
		if len(h.Name) <= len(metaHeaderPrefix) {
			continue
		}
		if !strings.EqualFold(h.Name[:len(metaHeaderPrefix)], metaHeaderPrefix) {
			continue
		}
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[h.Name[len(metaHeaderPrefix):]] = h.Value
	}
	return approxCount, metadata, nil
}
