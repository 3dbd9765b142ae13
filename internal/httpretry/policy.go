// Package httpretry provides an http.RoundTripper that retries failed
// requests with exponential backoff for a fixed set of status codes.
package httpretry

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kozaktomas/face-groups/internal/config"
)

// Policy describes when and how long to wait before retrying a request.
type Policy struct {
	// Total is the maximum number of retries after the first attempt.
	Total int
	// BackoffFactor is the delay before the first retry; each following retry doubles it.
	BackoffFactor time.Duration
	// MaxBackoff caps a single delay.
	MaxBackoff time.Duration
	// StatusForcelist holds the response codes that trigger a retry.
	StatusForcelist []int
	// AllowedMethods holds the methods that may be retried. Empty means DefaultAllowedMethods.
	AllowedMethods []string
	// RespectRetryAfter uses the Retry-After header of 413, 429 and 503 responses when present.
	RespectRetryAfter bool
}

// DefaultAllowedMethods are the idempotent methods retried by default.
var DefaultAllowedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPut,
	http.MethodDelete, http.MethodOptions, http.MethodTrace,
}

// DefaultPolicy returns 3 retries with a 1s factor on 500, 502, 503 and 504.
func DefaultPolicy() Policy {
	return Policy{
		Total:             3,
		BackoffFactor:     time.Second,
		MaxBackoff:        2 * time.Minute,
		StatusForcelist:   []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		RespectRetryAfter: true,
	}
}

// PolicyFromConfig builds a policy from the HTTP section of the configuration.
func PolicyFromConfig(cfg config.HTTPConfig) Policy {
	p := DefaultPolicy()
	p.Total = cfg.RetryTotal
	if cfg.BackoffFactor > 0 {
		p.BackoffFactor = cfg.BackoffFactor
	}
	if cfg.MaxBackoff > 0 {
		p.MaxBackoff = cfg.MaxBackoff
	}
	if len(cfg.StatusForcelist) > 0 {
		p.StatusForcelist = cfg.StatusForcelist
	}
	return p
}

func (p Policy) retryableStatus(code int) bool {
	return slices.Contains(p.StatusForcelist, code)
}

func (p Policy) retryableMethod(method string) bool {
	allowed := p.AllowedMethods
	if len(allowed) == 0 {
		allowed = DefaultAllowedMethods
	}
	return slices.Contains(allowed, method)
}

// newBackOff returns delays of factor, 2*factor, 4*factor... and stops after Total retries.
func (p Policy) newBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BackoffFactor
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = p.MaxBackoff
	if exp.MaxInterval <= 0 {
		exp.MaxInterval = 2 * time.Minute
	}
	exp.MaxElapsedTime = 0
	exp.Reset()

	if p.Total <= 0 {
		return &backoff.StopBackOff{}
	}
	return backoff.WithMaxRetries(exp, uint64(p.Total))
}

// retryAfter parses a Retry-After header given in seconds.
func (p Policy) retryAfter(resp *http.Response) (time.Duration, bool) {
	if !p.RespectRetryAfter || resp == nil {
		return 0, false
	}
	switch resp.StatusCode {
	case http.StatusRequestEntityTooLarge, http.StatusTooManyRequests, http.StatusServiceUnavailable:
	default:
		return 0, false
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
