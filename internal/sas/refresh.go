package sas

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Producer returns a freshly signed SAS query string, as supplied by a
// caller who configured the client with a sas producer instead of a
// static SAS string.
type Producer func(ctx context.Context) (string, error)

// Refreshable drives the client-side refresh lifecycle of a producer-backed
// SAS (spec.md §4.1, §5): it holds the most recently produced query string
// and a nextRefreshAt deadline, and collapses concurrent refresh attempts
// into a single in-flight call.
type Refreshable struct {
	produce       Producer
	minAuthExpiry time.Duration
	onError       func(error)

	mu            sync.Mutex
	current       string
	nextRefreshAt time.Time
	inflight      *refreshCall
}

type refreshCall struct {
	done chan struct{}
	val  string
	err  error
}

// NewRefreshable constructs a Refreshable. onError is invoked (outside any
// lock) whenever a refresh fails; it corresponds to the asynchronous error
// event the spec requires SASRefreshError to surface.
func NewRefreshable(produce Producer, minAuthExpiry time.Duration, onError func(error)) *Refreshable {
	return &Refreshable{produce: produce, minAuthExpiry: minAuthExpiry, onError: onError}
}

// Current returns the SAS query string to append to the outbound request,
// refreshing first if the held one is past nextRefreshAt. Callers that
// arrive while a refresh is already in flight await and share its result
// rather than starting a second one.
func (r *Refreshable) Current(ctx context.Context, now time.Time) (string, error) {
	r.mu.Lock()
	if r.current != "" && now.Before(r.nextRefreshAt) {
		cur := r.current
		r.mu.Unlock()
		return cur, nil
	}
	if call := r.inflight; call != nil {
		r.mu.Unlock()
		<-call.done
		return call.val, call.err
	}

	call := &refreshCall{done: make(chan struct{})}
	r.inflight = call
	r.mu.Unlock()

	val, err := r.doRefresh(ctx, now)

	r.mu.Lock()
	call.val, call.err = val, err
	if err == nil {
		r.current = val
	}
	r.inflight = nil
	r.mu.Unlock()
	close(call.done)

	if err != nil && r.onError != nil {
		r.onError(err)
	}
	return val, err
}

// doRefresh calls the producer once and validates the result against
// minSASAuthExpiry, per the "fail loudly" requirement in spec.md §4.1: a
// producer that returns a SAS already too close to expiry is a refresh
// failure, not a silently-accepted short-lived token.
func (r *Refreshable) doRefresh(ctx context.Context, now time.Time) (string, error) {
	sas, err := r.produce(ctx)
	if err != nil {
		return "", fmt.Errorf("sas: refresh producer failed: %w", err)
	}

	values, err := url.ParseQuery(sas)
	if err != nil {
		return "", fmt.Errorf("sas: refreshed SAS is not a valid query string: %w", err)
	}

	se := values.Get("se")
	if se == "" {
		return "", fmt.Errorf("sas: refreshed SAS is missing the required se parameter")
	}
	expiry, err := parseExpiry(se)
	if err != nil {
		return "", fmt.Errorf("sas: refreshed SAS has an unparseable se expiry %q: %w", se, err)
	}

	nextRefreshAt := expiry.Add(-r.minAuthExpiry)
	if now.After(nextRefreshAt) {
		return "", fmt.Errorf("sas: refresh producer returned a SAS expiring too soon (se=%s violates minSASAuthExpiry=%s)", se, r.minAuthExpiry)
	}

	r.mu.Lock()
	r.nextRefreshAt = nextRefreshAt
	r.mu.Unlock()
	return sas, nil
}

func parseExpiry(se string) (time.Time, error) {
	if t, err := time.Parse(isoNoMillis, se); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, se)
}
