package middleware

import (
	"net/http"
	"time"

	"github.com/jackielii/routemodules"
	"go.uber.org/zap"
)

// Logger returns a middleware that logs one entry per request with the module,
// route pattern, status and duration.
func Logger(logger *zap.Logger) routemodules.MiddlewareFunc {
	return func(next http.Handler, node *routemodules.ModuleNode) http.Handler {
		route := node.FullRoute()
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.String("module", node.Name),
				zap.Int("status", sw.code()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			}
			if id, ok := RequestIDFromContext(r.Context()); ok {
				fields = append(fields, zap.String("request_id", id))
			}
			if sw.code() >= http.StatusInternalServerError {
				logger.Error("request", fields...)
				return
			}
			logger.Info("request", fields...)
		})
	}
}
