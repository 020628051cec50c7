// Package kit holds the shared service plumbing: the Endpoint abstraction,
// request-scoped context accessors, and the MCP tool registration helper.
package kit

import "context"

// Endpoint is the transport-agnostic unit of work. MCP tools and HTTP
// handlers both decode into a typed request and delegate here.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour (audit, tracing).
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first middleware is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
