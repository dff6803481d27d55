package kit

import "context"

// Endpoint is the unit of work every transport (HTTP, MCP) ultimately
// invokes: a typed request in, a typed response or error out.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior (logging, auth,
// rate limiting) without the wrapped Endpoint knowing it's been wrapped.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares around a base Endpoint, applied so the first
// middleware given is the outermost: it runs first on the way in and last
// on the way out.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
