package middleware

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"wcferry/message"
)

func Logging() Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn message.Function, payload message.RequestPayload) (message.ResponsePayload, error) {
			start := time.Now()
			resp, err := next(ctx, fn, payload)

			entry := logrus.WithFields(logrus.Fields{
				"func":     fn.String(),
				"duration": time.Since(start),
			})
			if err != nil {
				entry.WithError(err).Warn("call failed")
			} else {
				entry.WithField("absent", resp == nil).Debug("call done")
			}
			return resp, err
		}
	}
}
