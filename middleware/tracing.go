package middleware

import (
	"net/http"

	"github.com/jackielii/routemodules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	// ServiceName names the tracer. Default: "routemodules".
	ServiceName string
	// Provider defaults to the global tracer provider.
	Provider trace.TracerProvider
	// Propagator defaults to the global text map propagator.
	Propagator propagation.TextMapPropagator
}

// Tracing starts a server span per request named "METHOD route", continuing
// any trace propagated in the request headers. Responses of 500 and above
// mark the span as failed.
func Tracing(cfg TracingConfig) routemodules.MiddlewareFunc {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "routemodules"
	}
	if cfg.Provider == nil {
		cfg.Provider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	tracer := cfg.Provider.Tracer(cfg.ServiceName)

	return func(next http.Handler, node *routemodules.ModuleNode) http.Handler {
		route := node.FullRoute()
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := cfg.Propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("http.route", route),
					attribute.String("url.path", r.URL.Path),
					attribute.String("routemodules.module", node.Name),
				),
			)
			defer span.End()

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(ctx))

			status := sw.code()
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}
