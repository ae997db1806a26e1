// Package chirouter mounts route modules onto a chi router.
package chirouter

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

type chiRouter struct {
	router chi.Router
}

func NewChiRouter(r chi.Router) *chiRouter {
	return &chiRouter{router: r}
}

func (r *chiRouter) HandleMethod(method, path string, handler http.Handler) {
	path = convertPattern(path)
	if method == "ALL" || method == "" {
		r.router.Handle(path, handler)
	} else {
		r.router.Method(method, path, handler)
	}
}

// URLParam reads wildcards from chi's route context. chi stores a trailing
// catch-all under "*".
func (r *chiRouter) URLParam(req *http.Request, name string, catchAll bool) string {
	if catchAll {
		return chi.URLParam(req, "*")
	}
	return chi.URLParam(req, name)
}

func (r *chiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

var catchAllRe = regexp.MustCompile(`\{[^}]*\.\.\.\}`)

// convertPattern rewrites ServeMux syntax for chi: {name...} becomes * and
// {$} is dropped, chi matches the exact path anyway.
func convertPattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "{$}", "")
	pattern = catchAllRe.ReplaceAllString(pattern, "*")
	if pattern == "" {
		return "/"
	}
	return pattern
}
