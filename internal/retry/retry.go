// Package retry implements the exponential-backoff retry engine that every
// request funnels through: classify the failure, decide whether it is worth
// another attempt, and if so pace the next one.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Coded is implemented by errors that carry a stable machine-readable code —
// the currency the engine classifies transience on. Transport errors
// (RequestTimeoutError, ...) and service errors decoded from a response
// (InternalError, ServerBusy, ...) both implement it.
type Coded interface {
	Code() string
}

// DefaultTransientErrorCodes is the union described for the retry engine:
// transport-level codes, client-synthesized codes, and the service-reported
// codes worth retrying.
var DefaultTransientErrorCodes = map[string]bool{
	"ETIMEDOUT":       true,
	"ECONNRESET":      true,
	"EADDRINUSE":      true,
	"ESOCKETTIMEDOUT": true,
	"ECONNREFUSED":    true,

	"RequestTimeoutError":       true,
	"RequestAbortedError":       true,
	"RequestContentLengthError": true,

	"InternalError":            true,
	"ServerBusy":               true,
	"InternalErrorWithoutCode": true,
}

// Config parameterizes the retry engine (spec.md §4.2 / §3).
type Config struct {
	Retries             int
	DelayFactor         time.Duration
	MaxDelay            time.Duration
	RandomizationFactor float64
	TransientErrorCodes map[string]bool
}

func (c Config) withDefaults() Config {
	if c.Retries == 0 {
		c.Retries = 5
	}
	if c.DelayFactor == 0 {
		c.DelayFactor = 100 * time.Millisecond
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.RandomizationFactor == 0 {
		c.RandomizationFactor = 0.25
	}
	if c.TransientErrorCodes == nil {
		c.TransientErrorCodes = DefaultTransientErrorCodes
	}
	return c
}

// Error wraps the final failure out of Run with the number of retries
// attempted, for diagnostics at the call site.
type Error struct {
	Err     error
	Retries int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (retries=%d)", e.Err, e.Retries)
}

func (e *Error) Unwrap() error { return e.Err }

// Attempt is invoked once per try; k is the zero-based attempt counter so
// callers can annotate diagnostics (e.g. x-ms-client-request-id logging)
// without the engine needing to know what the value is.
type Attempt[T any] func(ctx context.Context, k int) (T, error)

// Run executes attempt, retrying on transient failures per cfg, and returns
// either the first success or the final failure wrapped in *Error carrying
// the number of retries attempted.
func Run[T any](ctx context.Context, cfg Config, attempt Attempt[T]) (T, error) {
	cfg = cfg.withDefaults()
	var zero T

	k := 0
	for {
		val, err := attempt(ctx, k)
		if err == nil {
			return val, nil
		}

		code := Classify(err)
		if !cfg.TransientErrorCodes[code] {
			return zero, &Error{Err: err, Retries: k}
		}
		if k >= cfg.Retries {
			return zero, &Error{Err: err, Retries: k}
		}

		k++
		delay := backoff(k, cfg.DelayFactor, cfg.MaxDelay, cfg.RandomizationFactor)
		select {
		case <-ctx.Done():
			return zero, &Error{Err: ctx.Err(), Retries: k}
		case <-time.After(delay):
		}
	}
}

// backoff computes base = min(2^k * delayFactor, maxDelay), then scales it
// by a uniform factor in [1-rf, 1+rf].
func backoff(k int, delayFactor, maxDelay time.Duration, rf float64) time.Duration {
	base := delayFactor << uint(k)
	if base > maxDelay || base <= 0 {
		base = maxDelay
	}
	scale := (1 - rf) + rand.Float64()*(2*rf)
	return time.Duration(float64(base) * scale)
}

// Classify derives the transient-set membership code for err: errors the
// pipeline itself produced report it via Code(); everything else falls back
// to matching the underlying network error text, the way raw socket errors
// surface it.
func Classify(err error) string {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection reset"):
		return "ECONNRESET"
	case strings.Contains(msg, "connection refused"):
		return "ECONNREFUSED"
	case strings.Contains(msg, "address already in use"):
		return "EADDRINUSE"
	case strings.Contains(msg, "i/o timeout"), strings.Contains(msg, "timeout"):
		return "ETIMEDOUT"
	default:
		return ""
	}
}
