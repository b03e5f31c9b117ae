// Package httpretry builds the *retryablehttp.Client shared by the
// registry metadata client and the tarball fetcher: both retry a
// transient TCP-reset condition up to MaxAttempts total tries, with no
// backoff between attempts, per spec §4.1/§9 ("keep the default as a
// tunable, but it starts with no backoff").
package httpretry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
)

// MaxAttempts is the total number of request attempts (initial + retries).
const MaxAttempts = 3

// New builds a retryablehttp.Client configured with pacm's retry policy.
func New(logger hclog.Logger, timeout time.Duration) *retryablehttp.Client {
	return &retryablehttp.Client{
		HTTPClient:   &http.Client{Timeout: timeout},
		RetryWaitMin: 0,
		RetryWaitMax: 0,
		RetryMax:     MaxAttempts - 1,
		Backoff:      noBackoff,
		CheckRetry:   retryOnConnReset,
		Logger:       logger,
	}
}

func noBackoff(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
	return 0
}

func retryOnConnReset(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return IsConnReset(err), nil
	}
	return false, nil
}

// IsConnReset reports whether err's cause chain is a TCP connection reset.
func IsConnReset(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNRESET)
	}
	return errors.Is(err, syscall.ECONNRESET)
}
