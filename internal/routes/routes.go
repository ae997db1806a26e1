// Package routes holds the application's route modules. Each module pairs a
// loader with a view that renders a single heading.
package routes

import (
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/jackielii/routemodules"
)

// Routes is the module tree mounted at "/".
type Routes struct {
	Index   index   `route:"/{$} Index"`
	User    user    `route:"/users/{userId} User"`
	Post    post    `route:"/users/{userId}/{postId} Post"`
	Splat   splat   `route:"/splat/{splat...} Not found"`
	Ignored ignored `route:"/.ignored Ignored"`
}

// ErrorBoundary renders a failed module as its status line. The cause stays
// in the logs.
func (Routes) ErrorBoundary(err error) templ.Component {
	status := routemodules.StatusOf(err)
	return heading(fmt.Sprintf("%d %s", status, http.StatusText(status)))
}

// deref renders an absent value as empty text.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
