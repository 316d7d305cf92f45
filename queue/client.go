// Package queue implements the Queue service operations from spec.md §4.6
// on top of the shared azstore pipeline.
package queue

import (
	"context"
	"strconv"

	"github.com/contoso-cloud/azstore"
	"github.com/contoso-cloud/azstore/internal/decode"
)

// Client is the Queue service façade: it embeds the shared request
// pipeline and adds the Queue operation surface.
type Client struct {
	*azstore.Client
	accountID string
	accessKey string // retained only for GenerateSAS; empty when authenticating via SAS
}

// NewClient validates cfg and constructs a Queue Client. host overrides the
// default "<accountId>.queue.core.windows.net", e.g. to target an emulator.
func NewClient(cfg azstore.Config, host string) (*Client, error) {
	base, err := azstore.NewClient(azstore.Queue, cfg, host)
	if err != nil {
		return nil, err
	}
	return &Client{Client: base, accountID: cfg.AccountID, accessKey: cfg.AccessKey}, nil
}

func metadataHeaders(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	headers := make(map[string]string, len(metadata))
	for k, v := range metadata {
		headers["x-ms-meta-"+k] = v
	}
	return headers
}

// ListQueuesOptions filters and paginates ListQueues.
type ListQueuesOptions struct {
	Prefix     string
	Marker     string
	MaxResults int
	Include    string // "metadata" or empty
}

// ListQueues enumerates queues in the account (spec.md §4.5 "listQueues").
func (c *Client) ListQueues(ctx context.Context, opts ListQueuesOptions) (*decode.ListQueuesResult, error) {
	query := map[string]string{"comp": "list"}
	if opts.Prefix != "" {
		query["prefix"] = opts.Prefix
	}
	if opts.Marker != "" {
		query["marker"] = opts.Marker
	}
	if opts.MaxResults > 0 {
		query["maxresults"] = strconv.Itoa(opts.MaxResults)
	}
	if opts.Include != "" {
		query["include"] = opts.Include
	}

	resp, err := c.Do(ctx, "listQueues", azstore.Request{Method: "GET", Path: "/", Query: query})
	if err != nil {
		return nil, err
	}
	if err := decode.ExpectStatus("listQueues", resp.StatusCode, 200); err != nil {
		return nil, err
	}
	return decode.ListQueues(resp.Body)
}

// CreateQueue creates queueName with the given metadata (nil for none).
// Status 201 means newly created, 204 means it already existed with
// identical metadata; both are success.
func (c *Client) CreateQueue(ctx context.Context, queueName string, metadata map[string]string) error {
	resp, err := c.Do(ctx, "createQueue", azstore.Request{
		Method:  "PUT",
		Path:    "/" + queueName,
		Headers: metadataHeaders(metadata),
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("createQueue", resp.StatusCode, 201, 204)
}

// DeleteQueue deletes queueName.
func (c *Client) DeleteQueue(ctx context.Context, queueName string) error {
	resp, err := c.Do(ctx, "deleteQueue", azstore.Request{Method: "DELETE", Path: "/" + queueName})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("deleteQueue", resp.StatusCode, 204)
}

// GetMetadata reads the approximate message count and x-ms-meta-* headers
// of queueName (a HEAD request).
func (c *Client) GetMetadata(ctx context.Context, queueName string) (approxCount int, metadata map[string]string, err error) {
	resp, err := c.Do(ctx, "getMetadata", azstore.Request{
		Method: "HEAD",
		Path:   "/" + queueName,
		Query:  map[string]string{"comp": "metadata"},
	})
	if err != nil {
		return 0, nil, err
	}
	if err := decode.ExpectStatus("getMetadata", resp.StatusCode, 200); err != nil {
		return 0, nil, err
	}
	return decode.QueueMetadata(resp.Headers["x-ms-approximate-messages-count"], resp.RawHeaders)
}

// SetMetadata replaces queueName's metadata.
func (c *Client) SetMetadata(ctx context.Context, queueName string, metadata map[string]string) error {
	resp, err := c.Do(ctx, "setMetadata", azstore.Request{
		Method:  "PUT",
		Path:    "/" + queueName,
		Query:   map[string]string{"comp": "metadata"},
		Headers: metadataHeaders(metadata),
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("setMetadata", resp.StatusCode, 204)
}
