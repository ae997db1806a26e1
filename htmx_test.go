package routemodules

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/go-cmp/cmp"
)

func Test_mixedCase(t *testing.T) {
	tests := []struct {
		name string // description of this test case
		s    string
		want string
	}{
		{
			name: "Empty string",
			s:    "",
			want: "",
		},
		{
			name: "Single word",
			s:    "content",
			want: "Content",
		},
		{
			name: "Hyphenated words",
			s:    "user-card",
			want: "UserCard",
		},
		{
			name: "Mixed case with hyphens",
			s:    "user-Card",
			want: "UserCard",
		},
		{
			name: "Doubled hyphen",
			s:    "user--card",
			want: "UserCard",
		},
		{
			name: "No hyphens, just spaces",
			s:    "user card",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mixedCase(tt.s)
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("mixedCase() mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

type cardModule struct{}

func (cardModule) Loader() string { return "card data" }

func (cardModule) Page(s string) templ.Component {
	return textComponent("page: " + s)
}

func (cardModule) UserCard(s string) templ.Component {
	return textComponent("card: " + s)
}

func TestHTMXViewSelection(t *testing.T) {
	type modules struct {
		card cardModule `route:"/card Card"`
	}
	r := NewRouter(http.NewServeMux())
	if err := New().MountModules(r, "/", modules{}); err != nil {
		t.Fatalf("MountModules failed: %v", err)
	}

	tests := []struct {
		name         string
		headers      map[string]string
		wantBody     string
		wantRetarget string
	}{
		{
			name:     "plain request renders the document",
			wantBody: `<!doctype html><html lang="en"><head><meta charset="utf-8"></head><body>page: card data</body></html>`,
		},
		{
			name:     "htmx without target renders Page alone",
			headers:  map[string]string{"HX-Request": "true"},
			wantBody: "page: card data",
		},
		{
			name:     "htmx target picks the component",
			headers:  map[string]string{"HX-Request": "true", "HX-Target": "user-card"},
			wantBody: "card: card data",
		},
		{
			name:         "unknown target falls back to Page on body",
			headers:      map[string]string{"HX-Request": "true", "HX-Target": "sidebar"},
			wantBody:     "page: card data",
			wantRetarget: "body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/card", http.NoBody)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			if diff := cmp.Diff(rec.Body.String(), tt.wantBody); diff != "" {
				t.Errorf("body mismatch (-got +want):\n%s", diff)
			}
			if got := rec.Header().Get("HX-Retarget"); got != tt.wantRetarget {
				t.Errorf("expected HX-Retarget %q, got %q", tt.wantRetarget, got)
			}
		})
	}
}
