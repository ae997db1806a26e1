package chirouter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackielii/routemodules"
)

func TestConvertPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"/", "/"},
		{"/{$}", "/"},
		{"/users/{userId}", "/users/{userId}"},
		{"/users/{userId}/{postId}", "/users/{userId}/{postId}"},
		{"/splat/{splat...}", "/splat/*"},
		{"/docs/{$}", "/docs/"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := convertPattern(tt.pattern); got != tt.want {
				t.Errorf("convertPattern(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestChiRouter(t *testing.T) {
	r := NewChiRouter(chi.NewRouter())
	r.HandleMethod(http.MethodGet, "/handle", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ChiRouter HandleMethod"))
	}))
	r.HandleMethod("ALL", "/files/{path...}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(req.Method + " " + r.URLParam(req, "path", true)))
	}))
	r.HandleMethod(http.MethodGet, "/withid/{id}/end", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ChiRouter with ID: " + r.URLParam(req, "id", false)))
	}))

	tests := []struct {
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{http.MethodGet, "/handle", http.StatusOK, "ChiRouter HandleMethod"},
		{http.MethodPost, "/handle", http.StatusMethodNotAllowed, ""},
		{http.MethodPut, "/files/a/b.txt", http.StatusOK, "PUT a/b.txt"},
		{http.MethodGet, "/withid/123/end", http.StatusOK, "ChiRouter with ID: 123"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, http.NoBody)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

type paramsModule struct{}

func (paramsModule) Loader(ps routemodules.Params) map[string]string {
	return ps.Map()
}

type handlerModule struct{}

func (handlerModule) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("handler"))
}

type modules struct {
	post    paramsModule   `route:"/users/{userId}/{postId}"`
	splat   paramsModule   `route:"/splat/{splat...}"`
	handler *handlerModule `route:"POST /handler"`
}

func TestMountModules(t *testing.T) {
	r := NewChiRouter(chi.NewRouter())
	if err := routemodules.New().MountModules(r, "/", modules{}); err != nil {
		t.Fatalf("MountModules failed: %v", err)
	}

	tests := []struct {
		method string
		target string
		want   string
	}{
		{http.MethodGet, "/users/1/2", `{"postId":"2","userId":"1"}` + "\n"},
		{http.MethodHead, "/users/1/2", `{"postId":"2","userId":"1"}` + "\n"},
		{http.MethodGet, "/splat/a/b", `{"*":"a/b"}` + "\n"},
		{http.MethodPost, "/handler", "handler"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, http.NoBody)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			if rec.Body.String() != tt.want {
				t.Errorf("expected body %q, got %q", tt.want, rec.Body.String())
			}
		})
	}
}
