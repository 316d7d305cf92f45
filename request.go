package azstore

import (
	"context"

	"github.com/contoso-cloud/azstore/internal/decode"
	"github.com/contoso-cloud/azstore/internal/retry"
	"github.com/contoso-cloud/azstore/internal/transport"
)

// Request is the logical, unsigned request a façade method builds: Query
// and Headers use lowercase keys, and Path carries no query string (Do
// attaches c.sign's enriched query).
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    []byte
}

// Do runs req through the full pipeline — sign, send, retry on transient
// failure — and returns the raw response. A non-2xx response is decoded
// into a *decode.ServiceError and treated as the attempt's failure, so the
// retry engine can classify it; callers that need the exact status still
// reach it via errors.As, and 2xx responses outside an operation's expected
// set are the caller's responsibility to check with decode.ExpectStatus.
func (c *Client) Do(ctx context.Context, operation string, req Request) (*transport.Response, error) {
	log := c.logger.With().Str("account", c.cfg.AccountID).Str("operation", operation).Logger()
	clientTimeout := c.cfg.clientTimeout()

	resp, err := retry.Run(ctx, c.retryCfg, func(ctx context.Context, k int) (*transport.Response, error) {
		signed, err := c.sign(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, err := c.transport.Send(ctx, signed, clientTimeout)
		if err != nil {
			log.Debug().Int("attempt", k).Err(err).Msg("request attempt failed")
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			svcErr := decode.Error(resp.StatusCode, resp.Headers["content-type"], resp.Body)
			log.Debug().Int("attempt", k).Int("status_code", resp.StatusCode).Str("code", svcErr.ErrorCode).Msg("service returned an error")
			return nil, svcErr
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int("status_code", resp.StatusCode).Msg("request succeeded")
	return resp, nil
}
