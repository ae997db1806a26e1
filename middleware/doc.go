// Package middleware provides per-module middlewares for routemodules:
// request IDs, access logging, Prometheus metrics and OpenTelemetry spans.
//
// Every middleware has the routemodules.MiddlewareFunc shape, so it knows the
// module node it wraps and labels its output with the route pattern rather
// than the raw path.
package middleware
