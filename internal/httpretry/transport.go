package httpretry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryError is returned when all retries were used up.
type RetryError struct {
	Method     string
	URL        string
	Attempts   int
	StatusCode int // last status, 0 when the last attempt failed at the transport level
	Err        error
}

func (e *RetryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: giving up after %d attempts, last status %d", e.Method, e.URL, e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: giving up after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// Transport retries requests according to Policy.
type Transport struct {
	Base   http.RoundTripper
	Policy Policy

	// OnRetry is called before every wait. Optional.
	OnRetry func(attempt int, wait time.Duration, status int, err error)

	sleep func(ctx context.Context, d time.Duration) error
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, policy Policy) *Transport {
	return &Transport{Base: base, Policy: policy}
}

// NewClient returns an http.Client with pooled connections and retries.
func NewClient(policy Policy, timeout time.Duration) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Transport: NewTransport(base, policy),
		Timeout:   timeout,
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) wait(ctx context.Context, d time.Duration) error {
	if t.sleep != nil {
		return t.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	canRetry := t.Policy.retryableMethod(req.Method) && (req.Body == nil || req.Body == http.NoBody || req.GetBody != nil)
	if !canRetry {
		return t.base().RoundTrip(req)
	}

	b := t.Policy.newBackOff()
	attempt := 0
	for {
		attempt++
		r := req
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("could not rewind request body: %w", err)
			}
			r = req.Clone(req.Context())
			r.Body = body
		}

		resp, err := t.base().RoundTrip(r)
		if err == nil && !t.Policy.retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err != nil && req.Context().Err() != nil {
			return nil, err
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			status := 0
			if resp != nil {
				status = resp.StatusCode
				drain(resp)
			}
			return nil, &RetryError{Method: req.Method, URL: req.URL.String(), Attempts: attempt, StatusCode: status, Err: err}
		}
		if ra, ok := t.Policy.retryAfter(resp); ok {
			delay = ra
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			drain(resp)
		}
		if t.OnRetry != nil {
			t.OnRetry(attempt, delay, status, err)
		}
		if werr := t.wait(req.Context(), delay); werr != nil {
			return nil, werr
		}
	}
}

// drain discards the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
