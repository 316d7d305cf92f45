package queue

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/contoso-cloud/azstore"
	"github.com/contoso-cloud/azstore/internal/decode"
)

// messageBody renders the XML envelope every put/update message call sends.
// text is delivered verbatim; the caller is responsible for XML-safe
// encoding (typically base64), per spec.md §4.6.
func messageBody(text string) []byte {
	return []byte(fmt.Sprintf("<QueueMessage><MessageText>%s</MessageText></QueueMessage>", text))
}

// PutMessageOptions configures PutMessage; zero values use the service
// defaults (0s visibility, 7-day TTL).
type PutMessageOptions struct {
	VisibilityTimeout time.Duration
	MessageTTL        time.Duration
}

// PutMessage enqueues text onto queueName.
func (c *Client) PutMessage(ctx context.Context, queueName, text string, opts PutMessageOptions) error {
	query := map[string]string{}
	if opts.VisibilityTimeout > 0 {
		query["visibilitytimeout"] = strconv.Itoa(int(opts.VisibilityTimeout / time.Second))
	}
	if opts.MessageTTL > 0 {
		query["messagettl"] = strconv.Itoa(int(opts.MessageTTL / time.Second))
	}

	resp, err := c.Do(ctx, "putMessage", azstore.Request{
		Method: "POST",
		Path:   "/" + queueName + "/messages",
		Query:  query,
		Body:   messageBody(text),
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("putMessage", resp.StatusCode, 201)
}

// PeekMessages returns up to numOfMessages without altering their
// visibility or dequeue count.
func (c *Client) PeekMessages(ctx context.Context, queueName string, numOfMessages int) ([]decode.Message, error) {
	query := map[string]string{"peekonly": "true"}
	if numOfMessages > 0 {
		query["numofmessages"] = strconv.Itoa(numOfMessages)
	}

	resp, err := c.Do(ctx, "peekMessages", azstore.Request{Method: "GET", Path: "/" + queueName + "/messages", Query: query})
	if err != nil {
		return nil, err
	}
	if err := decode.ExpectStatus("peekMessages", resp.StatusCode, 200); err != nil {
		return nil, err
	}
	return decode.Messages(resp.Body)
}

// GetMessagesOptions configures GetMessages.
type GetMessagesOptions struct {
	NumOfMessages     int
	VisibilityTimeout time.Duration
}

// GetMessages dequeues up to opts.NumOfMessages messages, hiding them for
// opts.VisibilityTimeout.
func (c *Client) GetMessages(ctx context.Context, queueName string, opts GetMessagesOptions) ([]decode.Message, error) {
	query := map[string]string{}
	if opts.NumOfMessages > 0 {
		query["numofmessages"] = strconv.Itoa(opts.NumOfMessages)
	}
	if opts.VisibilityTimeout > 0 {
		query["visibilitytimeout"] = strconv.Itoa(int(opts.VisibilityTimeout / time.Second))
	}

	resp, err := c.Do(ctx, "getMessages", azstore.Request{Method: "GET", Path: "/" + queueName + "/messages", Query: query})
	if err != nil {
		return nil, err
	}
	if err := decode.ExpectStatus("getMessages", resp.StatusCode, 200); err != nil {
		return nil, err
	}
	return decode.Messages(resp.Body)
}

// DeleteMessage removes the message identified by messageID/popReceipt,
// the pair returned by GetMessages.
func (c *Client) DeleteMessage(ctx context.Context, queueName, messageID, popReceipt string) error {
	resp, err := c.Do(ctx, "deleteMessage", azstore.Request{
		Method: "DELETE",
		Path:   "/" + queueName + "/messages/" + url.PathEscape(messageID),
		Query:  map[string]string{"popreceipt": popReceipt},
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("deleteMessage", resp.StatusCode, 204)
}

// ClearMessages deletes every message in queueName.
func (c *Client) ClearMessages(ctx context.Context, queueName string) error {
	resp, err := c.Do(ctx, "clearMessages", azstore.Request{Method: "DELETE", Path: "/" + queueName + "/messages"})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("clearMessages", resp.StatusCode, 204)
}

// UpdateMessage extends a message's visibility and optionally replaces its
// text. Pass an empty text to update visibility only.
func (c *Client) UpdateMessage(ctx context.Context, queueName, messageID, popReceipt, text string, visibilityTimeout time.Duration) error {
	var body []byte
	if text != "" {
		body = messageBody(text)
	}

	resp, err := c.Do(ctx, "updateMessage", azstore.Request{
		Method: "PUT",
		Path:   "/" + queueName + "/messages/" + url.PathEscape(messageID),
		Query: map[string]string{
			"popreceipt":        popReceipt,
			"visibilitytimeout": strconv.Itoa(int(visibilityTimeout / time.Second)),
		},
		Body: body,
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("updateMessage", resp.StatusCode, 204)
}
