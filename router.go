package routemodules

import (
	"net/http"
)

// Router is an interface for registering HTTP routes.
// Patterns use [http.ServeMux] syntax ({name}, {name...} and {$}); adapters for
// other routers translate them.
type Router interface {
	HandleMethod(method, path string, handler http.Handler)
}

// ParamReader is implemented by routers that keep path parameters somewhere
// other than [http.Request.PathValue]. catchAll is set for {name...} segments.
type ParamReader interface {
	URLParam(r *http.Request, name string, catchAll bool) string
}

type stdRouter struct {
	router *http.ServeMux
	// GET patterns already answer HEAD on a ServeMux.
	gets map[string]bool
}

// NewRouter creates a new router that wraps http.ServeMux.
// If router is nil, it uses http.DefaultServeMux.
//
// Example:
//
//	mux := http.NewServeMux()
//	router := routemodules.NewRouter(mux)
//	rm.MountModules(router, "/", routes{})
func NewRouter(router *http.ServeMux) *stdRouter {
	if router == nil {
		router = http.DefaultServeMux
	}
	return &stdRouter{router: router, gets: make(map[string]bool)}
}

func (r *stdRouter) HandleMethod(method, pattern string, handler http.Handler) {
	switch {
	case method == http.MethodHead && r.gets[pattern]:
		return
	case method == http.MethodGet:
		r.gets[pattern] = true
	}
	if method != methodAll && method != "" {
		pattern = method + " " + pattern
	}
	r.router.Handle(pattern, handler)
}

func (r *stdRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
