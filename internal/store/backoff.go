package store

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jpillora/backoff"
)

type nonIdempotentKey struct{}

// withNonIdempotent marks the request context so a failed request is not resent
// unless the server asked for a retry.
func withNonIdempotent(ctx context.Context) context.Context {
	return context.WithValue(ctx, nonIdempotentKey{}, true)
}

// checkRetry implements the retryablehttp.CheckRetry signature.
//
// Requests marked non-idempotent are retried on 429 and 503 responses only, a 5xx from a
// proxy or a dropped connection may follow a create the server already stored.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if nonIdempotent, _ := ctx.Value(nonIdempotentKey{}).(bool); !nonIdempotent {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil || resp == nil {
		return false, nil
	}

	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable, nil
}

// jitterBackoff implements the retryablehttp.Backoff signature with exponential jittered delays,
// a Retry-After header on 429 and 503 responses is honored up to max.
func jitterBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds >= 0 {
			wait := time.Duration(seconds) * time.Second
			if wait > max {
				return max
			}

			return wait
		}
	}

	b := &backoff.Backoff{
		Min:    min,
		Max:    max,
		Factor: 2,
		Jitter: true,
	}

	return b.ForAttempt(float64(attemptNum))
}
