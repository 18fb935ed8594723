package middleware

import (
	"context"

	"wcferry/message"
)

// Invoker performs one dispatcher round trip.
type Invoker func(ctx context.Context, fn message.Function, payload message.RequestPayload) (message.ResponsePayload, error)

type Middleware func(next Invoker) Invoker

// Chain composes middlewares so the first one listed runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next Invoker) Invoker {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
