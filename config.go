// Package azstore is the shared request pipeline for the Queue and Table
// service clients: request authorization (Shared Key or SAS), retry with
// exponential backoff, pooled HTTPS transport, and response decoding.
// The queue and table packages build their operation surfaces on top of it.
package azstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/contoso-cloud/azstore/internal/logging"
	"github.com/contoso-cloud/azstore/internal/sas"
)

// UsageError reports a Config that fails validation at construction time,
// as opposed to a request that fails against the service.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return "azstore: " + e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// Config carries every option a service client recognizes. AccountID is
// always required; exactly one of AccessKey, SAS, or SASProducer must be
// set (NewClient enforces this and returns a *UsageError otherwise).
type Config struct {
	AccountID   string
	AccessKey   string        // base64 shared key; mutually exclusive with SAS/SASProducer
	SAS         string        // static, already-signed query string
	SASProducer sas.Producer  // alternative to SAS: a refreshable token source

	Version            string // x-ms-version header value
	DataServiceVersion string // Table-only OData header value
	Metadata           string // Table-only OData metadata level
	ClientID           string // x-ms-client-request-id value

	Timeout time.Duration // server-side timeout, also sent as query "timeout"

	Retries             int
	DelayFactor         time.Duration
	MaxDelay            time.Duration
	RandomizationFactor float64
	TransientErrorCodes map[string]bool

	MinSASAuthExpiry time.Duration

	// ClientTimeoutDelay is added to Timeout to derive the client-side
	// deadline for response headers to start arriving. Left nil, it
	// defaults to 5s; pointing it at a zero duration makes the client
	// timeout equal to the server timeout exactly, with no slack.
	ClientTimeoutDelay *time.Duration

	// Logger receives structured pipeline logs; nil uses the package
	// default logger.
	Logger *logging.Logger
	// OnError is invoked for asynchronous failures the caller can't
	// receive as a return value, currently just SAS refresh failures.
	// Nil routes them to Logger instead of discarding them.
	OnError func(error)
}

func (c Config) validate() error {
	if strings.TrimSpace(c.AccountID) == "" {
		return &UsageError{Err: errors.New("accountId is required")}
	}

	set := 0
	if c.AccessKey != "" {
		set++
	}
	if c.SAS != "" {
		set++
	}
	if c.SASProducer != nil {
		set++
	}
	if set != 1 {
		return &UsageError{Err: errors.New("exactly one of accessKey, sas, or a sas producer must be configured")}
	}

	switch c.Metadata {
	case "", "nometadata", "minimalmetadata", "fullmetadata":
	default:
		return &UsageError{Err: fmt.Errorf("metadata %q is not one of nometadata, minimalmetadata, fullmetadata", c.Metadata)}
	}

	return nil
}

func (c Config) withDefaults() Config {
	if c.Version == "" {
		c.Version = "2014-02-14"
	}
	if c.DataServiceVersion == "" {
		c.DataServiceVersion = "3.0"
	}
	if c.Metadata == "" {
		c.Metadata = "fullmetadata"
	}
	if c.ClientID == "" {
		c.ClientID = "fast-azure-storage"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MinSASAuthExpiry == 0 {
		c.MinSASAuthExpiry = 15 * time.Minute
	}
	return c
}

// clientTimeout derives the client-side header-arrival deadline from
// Timeout and ClientTimeoutDelay.
func (c Config) clientTimeout() time.Duration {
	delay := 5 * time.Second
	if c.ClientTimeoutDelay != nil {
		delay = *c.ClientTimeoutDelay
	}
	return c.Timeout + delay
}
