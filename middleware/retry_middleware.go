package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"wcferry/message"
	"wcferry/transport"
)

// Retry re-issues read-only calls that failed on the transport, backing off
// exponentially from baseDelay. Calls with side effects are never repeated.
func Retry(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn message.Function, payload message.RequestPayload) (message.ResponsePayload, error) {
			resp, err := next(ctx, fn, payload)
			if !fn.ReadOnly() {
				return resp, err
			}
			for i := 0; i < maxRetries && retryable(err); i++ {
				delay := baseDelay * time.Duration(1<<i)
				logrus.WithFields(logrus.Fields{
					"func":    fn.String(),
					"attempt": i + 1,
					"delay":   delay,
				}).WithError(err).Info("retrying call")

				select {
				case <-ctx.Done():
					return nil, errors.Join(err, ctx.Err())
				case <-time.After(delay):
				}
				resp, err = next(ctx, fn, payload)
			}
			return resp, err
		}
	}
}

func retryable(err error) bool {
	return errors.Is(err, transport.ErrSendFailed) ||
		errors.Is(err, transport.ErrRecvFailed) ||
		errors.Is(err, transport.ErrConnectFailed)
}
