package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/jackielii/routemodules"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type itemPage struct{}

func (itemPage) Loader(p routemodules.Params) (string, error) {
	id, _ := p.Get("id")
	if id == "broken" {
		return "", errors.New("boom")
	}
	return id, nil
}

func (itemPage) Page(id string) templ.Component {
	return templ.Raw("item " + id)
}

type testModules struct {
	item itemPage `route:"/items/{id} Item"`
}

func serve(t *testing.T, mws ...routemodules.MiddlewareFunc) http.Handler {
	t.Helper()
	r := routemodules.NewRouter(http.NewServeMux())
	rm := routemodules.New(routemodules.WithMiddlewares(mws...))
	require.NoError(t, rm.MountModules(r, "/", testModules{}))
	return r
}

func get(h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	h := serve(t, RequestID)

	rec := get(h, "/items/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = get(h, "/items/1", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestIDFromContextMissing(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := serve(t, RequestID, Logger(zap.New(core)))

	get(h, "/items/7", RequestIDHeader, "rid-1")
	get(h, "/items/broken")

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "/items/{id}", first["route"])
	assert.Equal(t, "/items/7", first["path"])
	assert.Equal(t, int64(http.StatusOK), first["status"])
	assert.Equal(t, "rid-1", first["request_id"])
	assert.Equal(t, zap.InfoLevel, entries[0].Level)

	assert.Equal(t, int64(http.StatusInternalServerError), entries[1].ContextMap()["status"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := serve(t, Metrics(WithRegistry(reg), WithNamespace("test")))

	get(h, "/items/1")
	get(h, "/items/2")
	get(h, "/items/broken")

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "test_http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			assert.Equal(t, "/items/{id}", labels["route"])
			counts[labels["status"]] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"200": 2, "500": 1}, counts)
}

type recordingProvider struct {
	noop.TracerProvider
	spans []*recordingSpan
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return &recordingTracer{p: p}
}

type recordingTracer struct {
	noop.Tracer
	p *recordingProvider
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recordingSpan{name: name}
	t.p.spans = append(t.p.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingSpan struct {
	noop.Span
	name   string
	status codes.Code
	ended  bool
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *recordingSpan) End(...trace.SpanEndOption)          { s.ended = true }

func TestTracing(t *testing.T) {
	tp := &recordingProvider{}
	h := serve(t, Tracing(TracingConfig{Provider: tp}))

	get(h, "/items/1")
	get(h, "/items/broken")

	require.Len(t, tp.spans, 2)
	assert.Equal(t, "GET /items/{id}", tp.spans[0].name)
	assert.True(t, tp.spans[0].ended)
	assert.Equal(t, codes.Unset, tp.spans[0].status)
	assert.Equal(t, codes.Error, tp.spans[1].status)
}
