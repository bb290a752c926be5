package transport

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	inner   Transport
	limiter *rate.Limiter
}

// RateLimited delays each exchange until limiter grants a token. A wait that
// fails (cancelled context, deadline shorter than the delay) is a NetworkError.
func RateLimited(inner Transport, limiter *rate.Limiter) Transport {
	return &rateLimited{inner: inner, limiter: limiter}
}

func (r *rateLimited) Request(ctx context.Context, uri, method string, headers http.Header, params url.Values) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", &NetworkError{Op: "rate limit", URI: uri, Err: err}
	}
	return r.inner.Request(ctx, uri, method, headers, params)
}
