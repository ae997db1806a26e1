// Package hrouter mounts route modules onto julienschmidt/httprouter.
package hrouter

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/julienschmidt/httprouter"
)

var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

type router struct {
	router *httprouter.Router
}

// New wraps r, or a fresh httprouter.Router when r is nil.
func New(r *httprouter.Router) *router {
	if r == nil {
		r = httprouter.New()
	}
	return &router{router: r}
}

func (r *router) HandleMethod(method, path string, handler http.Handler) {
	path = convertPattern(path)
	if method != "ALL" && method != "" {
		r.router.Handler(method, path, handler)
		return
	}
	for _, m := range allMethods {
		r.router.Handler(m, path, handler)
	}
}

// URLParam reads wildcards stored by httprouter in the request context.
// Catch-all values keep httprouter's leading slash, which is trimmed.
func (r *router) URLParam(req *http.Request, name string, catchAll bool) string {
	v := httprouter.ParamsFromContext(req.Context()).ByName(name)
	if catchAll {
		return strings.TrimPrefix(v, "/")
	}
	return v
}

func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

var wildcardRe = regexp.MustCompile(`\{([^}.$]+)(\.\.\.)?\}`)

// convertPattern rewrites ServeMux syntax for httprouter: {name} becomes
// :name, {name...} becomes *name and {$} is dropped.
func convertPattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "{$}", "")
	pattern = wildcardRe.ReplaceAllStringFunc(pattern, func(m string) string {
		sub := wildcardRe.FindStringSubmatch(m)
		if sub[2] != "" {
			return "*" + sub[1]
		}
		return ":" + sub[1]
	})
	if pattern == "" {
		return "/"
	}
	return pattern
}
