package middleware

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"wcferry/message"
)

var ErrRateLimited = errors.New("middleware: rate limit exceeded")

// RateLimit applies a token bucket to functions with remote side effects.
// Read-only functions pass through untouched. A rejected call never reaches
// the socket.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn message.Function, payload message.RequestPayload) (message.ResponsePayload, error) {
			if !fn.ReadOnly() && !limiter.Allow() {
				return nil, fmt.Errorf("%w: %s", ErrRateLimited, fn)
			}
			return next(ctx, fn, payload)
		}
	}
}
