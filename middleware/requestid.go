package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackielii/ctxkey"
	"github.com/jackielii/routemodules"
)

// RequestIDHeader is the header the request ID is read from and echoed in.
const RequestIDHeader = "X-Request-ID"

var requestIDCtx = ctxkey.New[string]("middleware.requestID", "")

// RequestID reuses the incoming X-Request-ID or generates a UUID, echoes it in
// the response and stores it in the request context.
func RequestID(next http.Handler, _ *routemodules.ModuleNode) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestIDCtx.WithValue(r.Context(), id)))
	})
}

// RequestIDFromContext returns the request ID, if RequestID ran.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id := requestIDCtx.Value(ctx)
	return id, id != ""
}
