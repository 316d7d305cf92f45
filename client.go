package azstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/contoso-cloud/azstore/internal/events"
	"github.com/contoso-cloud/azstore/internal/logging"
	"github.com/contoso-cloud/azstore/internal/pool"
	"github.com/contoso-cloud/azstore/internal/retry"
	"github.com/contoso-cloud/azstore/internal/sas"
	"github.com/contoso-cloud/azstore/internal/signing"
	"github.com/contoso-cloud/azstore/internal/transport"
)

// Kind selects which Shared Key canonicalization and default host suffix a
// Client uses. Queue and Table build their string-to-sign differently
// (internal/signing.QueueStringToSign vs TableStringToSign).
type Kind int

const (
	Queue Kind = iota
	Table
)

func (k Kind) hostSuffix() string {
	if k == Table {
		return "table"
	}
	return "queue"
}

// authMode is the tagged union of the three authorization strategies a
// Client can run (spec.md §4.1): at most one is installed, decided once at
// construction from which Config field was set.
type authMode int

const (
	authSharedKey authMode = iota
	authStaticSAS
	authRefreshableSAS
)

// Client is the shared pipeline every façade method funnels through:
// header/query enrichment, authorization, retry, and transport. queue.Client
// and table.Client each embed one.
type Client struct {
	cfg  Config
	kind Kind
	host string

	mode        authMode
	staticSAS   string
	refreshable *sas.Refreshable

	transport *transport.Transport
	retryCfg  retry.Config
	logger    *logging.Logger
	events    *events.Bus
}

// Events returns the bus that SAS-refresh failures are published onto, in
// addition to the Config.OnError callback. Subscribe to
// events.SASRefreshFailed to observe them asynchronously rather than only
// through logging.
func (c *Client) Events() *events.Bus { return c.events }

// NewClient validates cfg and builds a Client for the given service kind.
// host overrides the default "<accountId>.<queue|table>.core.windows.net"
// derivation, e.g. to target a storage emulator.
func NewClient(kind Kind, cfg Config, host string) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	if host == "" {
		host = fmt.Sprintf("%s.%s.core.windows.net", cfg.AccountID, kind.hostSuffix())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default
	}

	c := &Client{
		cfg:       cfg,
		kind:      kind,
		host:      host,
		transport: transport.New(),
		logger:    logger,
		events:    events.NewBus(0),
		retryCfg: retry.Config{
			Retries:             cfg.Retries,
			DelayFactor:         cfg.DelayFactor,
			MaxDelay:            cfg.MaxDelay,
			RandomizationFactor: cfg.RandomizationFactor,
			TransientErrorCodes: cfg.TransientErrorCodes,
		},
	}

	switch {
	case cfg.AccessKey != "":
		c.mode = authSharedKey
	case cfg.SASProducer != nil:
		c.mode = authRefreshableSAS
		onError := cfg.OnError
		if onError == nil {
			onError = func(err error) {
				logger.Error().Err(err).Str("account", cfg.AccountID).Msg("sas refresh failed")
			}
		}
		c.refreshable = sas.NewRefreshable(cfg.SASProducer, cfg.MinSASAuthExpiry, func(err error) {
			onError(err)
			c.events.PublishSASRefreshError(err)
		})
	default:
		c.mode = authStaticSAS
		c.staticSAS = cfg.SAS
	}

	return c, nil
}

// SetPool points the client at a different connection pool. The parameter
// type lives in an internal package, so this is only callable from elsewhere
// in this module; it exists for the queue/table façade tests to run
// against an in-memory pipe instead of a real TLS connection, not as a
// production extension point.
func (c *Client) SetPool(p *pool.Pool) {
	c.transport = &transport.Transport{Pool: p}
}

// sign enriches req with the standard headers and query parameters, then
// authorizes it per c.mode, returning the wire-ready transport.Request.
func (c *Client) sign(ctx context.Context, req Request) (*transport.Request, error) {
	headers := make(map[string]string, len(req.Headers)+5)
	for k, v := range req.Headers {
		headers[strings.ToLower(k)] = v
	}
	headers["x-ms-date"] = time.Now().UTC().Format(http.TimeFormat)
	headers["x-ms-version"] = c.cfg.Version
	headers["x-ms-client-request-id"] = c.cfg.ClientID

	if c.kind == Table {
		headers["dataserviceversion"] = c.cfg.DataServiceVersion
		if _, ok := headers["accept"]; !ok {
			headers["accept"] = "application/json;odata=" + c.cfg.Metadata
		}
	}
	if len(req.Body) > 0 {
		headers["content-length"] = strconv.Itoa(len(req.Body))
		if _, ok := headers["content-type"]; !ok {
			if c.kind == Table {
				headers["content-type"] = "application/json"
			} else {
				headers["content-type"] = "application/xml"
			}
		}
	}

	query := make(map[string]string, len(req.Query)+1)
	for k, v := range req.Query {
		query[k] = v
	}
	if c.cfg.Timeout > 0 {
		query["timeout"] = strconv.Itoa(int(c.cfg.Timeout / time.Second))
	}

	var queryString string
	switch c.mode {
	case authSharedKey:
		var stringToSign string
		if c.kind == Table {
			stringToSign = signing.TableStringToSign(req.Method, req.Path, query, headers, c.cfg.AccountID)
		} else {
			stringToSign = signing.QueueStringToSign(req.Method, req.Path, query, headers, c.cfg.AccountID)
		}
		signature, err := signing.SignString(c.cfg.AccessKey, stringToSign)
		if err != nil {
			return nil, fmt.Errorf("azstore: signing request: %w", err)
		}
		headers["authorization"] = signing.AuthorizationHeader(c.cfg.AccountID, signature)
		queryString = composeQuery(query, "")

	case authStaticSAS:
		queryString = composeQuery(query, c.staticSAS)

	case authRefreshableSAS:
		sasQuery, err := c.refreshable.Current(ctx, time.Now())
		if err != nil {
			return nil, err
		}
		queryString = composeQuery(query, sasQuery)
	}

	path := req.Path
	if queryString != "" {
		path += "?" + queryString
	}

	return &transport.Request{
		Host:    c.host,
		Method:  req.Method,
		Path:    path,
		Headers: headers,
		Body:    req.Body,
	}, nil
}

// composeQuery renders the canonical query as a URL-encoded string and, per
// spec.md §4.1's static/refreshable SAS rule, appends the SAS query joined
// with "&" only when the canonical query is non-empty.
func composeQuery(query map[string]string, sasQuery string) string {
	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	encoded := values.Encode()

	switch {
	case sasQuery == "":
		return encoded
	case encoded == "":
		return sasQuery
	default:
		return encoded + "&" + sasQuery
	}
}
