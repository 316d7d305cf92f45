// Package table implements the Table service operations from spec.md §4.6
// on top of the shared azstore pipeline.
package table

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/contoso-cloud/azstore"
	"github.com/contoso-cloud/azstore/internal/decode"
)

// Client is the Table service façade: it embeds the shared request
// pipeline and adds the Table operation surface.
type Client struct {
	*azstore.Client
	accountID string
	accessKey string // retained only for GenerateSAS; empty when authenticating via SAS
}

// NewClient validates cfg and constructs a Table Client. host overrides the
// default "<accountId>.table.core.windows.net", e.g. to target an emulator.
func NewClient(cfg azstore.Config, host string) (*Client, error) {
	base, err := azstore.NewClient(azstore.Table, cfg, host)
	if err != nil {
		return nil, err
	}
	return &Client{Client: base, accountID: cfg.AccountID, accessKey: cfg.AccessKey}, nil
}

// returnNoContent asks the service to answer 204 instead of echoing the
// entity back, which is what lets insertEntity/createTable meet the 204
// status-code expectation in spec.md §4.5's table. UpdateEntity does not
// send it.
var returnNoContent = map[string]string{"prefer": "return-no-content"}

// QueryTables lists the tables in the account, plus a continuation token
// for the next page (empty when there is no more data).
func (c *Client) QueryTables(ctx context.Context) ([]decode.TableItem, string, error) {
	resp, err := c.Do(ctx, "queryTables", azstore.Request{Method: "GET", Path: "/Tables"})
	if err != nil {
		return nil, "", err
	}
	if err := decode.ExpectStatus("queryTables", resp.StatusCode, 200); err != nil {
		return nil, "", err
	}
	items, err := decode.QueryTables(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return items, decode.TablesContinuation(resp.Headers), nil
}

// CreateTable creates tableName.
func (c *Client) CreateTable(ctx context.Context, tableName string) error {
	body, err := json.Marshal(struct {
		TableName string `json:"TableName"`
	}{TableName: tableName})
	if err != nil {
		return fmt.Errorf("table: marshaling createTable body: %w", err)
	}

	resp, err := c.Do(ctx, "createTable", azstore.Request{
		Method:  "POST",
		Path:    "/Tables",
		Headers: returnNoContent,
		Body:    body,
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("createTable", resp.StatusCode, 204)
}

// DeleteTable deletes tableName.
func (c *Client) DeleteTable(ctx context.Context, tableName string) error {
	resp, err := c.Do(ctx, "deleteTable", azstore.Request{Method: "DELETE", Path: "/Tables('" + tableName + "')"})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("deleteTable", resp.StatusCode, 204)
}

// GetEntity fetches a single entity by its key.
func (c *Client) GetEntity(ctx context.Context, tableName, partitionKey, rowKey string) (decode.Entity, error) {
	resp, err := c.Do(ctx, "getEntity", azstore.Request{Method: "GET", Path: entityPath(tableName, partitionKey, rowKey)})
	if err != nil {
		return nil, err
	}
	if err := decode.ExpectStatus("getEntity", resp.StatusCode, 200); err != nil {
		return nil, err
	}
	return decode.GetEntity(resp.Body)
}

// QueryEntitiesOptions filters and paginates QueryEntities.
type QueryEntitiesOptions struct {
	Filter           string // built with FilterBuild and friends
	Select           []string
	Top              int // capped at 1000 per spec.md §4.6
	NextPartitionKey string
	NextRowKey       string
}

// QueryEntities lists entities in tableName matching opts.
func (c *Client) QueryEntities(ctx context.Context, tableName string, opts QueryEntitiesOptions) ([]decode.Entity, decode.EntitiesContinuation, error) {
	if opts.Top > 1000 {
		opts.Top = 1000
	}

	query := map[string]string{}
	if opts.Filter != "" {
		query["$filter"] = opts.Filter
	}
	if len(opts.Select) > 0 {
		query["$select"] = strings.Join(opts.Select, ",")
	}
	if opts.Top > 0 {
		query["$top"] = strconv.Itoa(opts.Top)
	}
	if opts.NextPartitionKey != "" {
		query["NextPartitionKey"] = opts.NextPartitionKey
	}
	if opts.NextRowKey != "" {
		query["NextRowKey"] = opts.NextRowKey
	}

	resp, err := c.Do(ctx, "queryEntities", azstore.Request{Method: "GET", Path: "/" + tableName + "()", Query: query})
	if err != nil {
		return nil, decode.EntitiesContinuation{}, err
	}
	if err := decode.ExpectStatus("queryEntities", resp.StatusCode, 200); err != nil {
		return nil, decode.EntitiesContinuation{}, err
	}
	entities, err := decode.QueryEntities(resp.Body)
	if err != nil {
		return nil, decode.EntitiesContinuation{}, err
	}
	return entities, decode.EntitiesContinuationFrom(resp.Headers), nil
}

// InsertEntity adds a new entity to tableName.
func (c *Client) InsertEntity(ctx context.Context, tableName string, entity decode.Entity) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("table: marshaling entity: %w", err)
	}

	resp, err := c.Do(ctx, "insertEntity", azstore.Request{
		Method:  "POST",
		Path:    "/" + tableName,
		Headers: returnNoContent,
		Body:    body,
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("insertEntity", resp.StatusCode, 204)
}

// UpdateMode selects replace-vs-merge semantics for UpdateEntity.
type UpdateMode int

const (
	Replace UpdateMode = iota
	Merge
)

// UpdateEntityOptions configures UpdateEntity per the mode/eTag table in
// spec.md §4.6: ETag == "" means null (insert-or-replace/insert-or-merge),
// ETag == "*" means "if it exists", any other value means "if the ETag
// matches" (else a 412 from the service).
type UpdateEntityOptions struct {
	Mode UpdateMode
	ETag string
}

// UpdateEntity replaces or merges the entity at partitionKey/rowKey per
// opts. HTTP verb is PUT for Replace, MERGE for Merge.
func (c *Client) UpdateEntity(ctx context.Context, tableName, partitionKey, rowKey string, entity decode.Entity, opts UpdateEntityOptions) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("table: marshaling entity: %w", err)
	}

	method := "PUT"
	if opts.Mode == Merge {
		method = "MERGE"
	}
	headers := map[string]string{}
	if opts.ETag != "" {
		headers["if-match"] = opts.ETag
	}

	resp, err := c.Do(ctx, "updateEntity", azstore.Request{
		Method:  method,
		Path:    entityPath(tableName, partitionKey, rowKey),
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("updateEntity", resp.StatusCode, 204)
}

// DeleteEntity removes the entity at partitionKey/rowKey. eTag is required
// (spec.md §6 input validation); pass "*" to delete unconditionally.
func (c *Client) DeleteEntity(ctx context.Context, tableName, partitionKey, rowKey, eTag string) error {
	if eTag == "" {
		return &azstore.UsageError{Err: fmt.Errorf("eTag is required for deleteEntity")}
	}

	resp, err := c.Do(ctx, "deleteEntity", azstore.Request{
		Method:  "DELETE",
		Path:    entityPath(tableName, partitionKey, rowKey),
		Headers: map[string]string{"if-match": eTag},
	})
	if err != nil {
		return err
	}
	return decode.ExpectStatus("deleteEntity", resp.StatusCode, 204)
}
