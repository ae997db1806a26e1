package routemodules

import (
	"net/http"
	"strings"

	"github.com/angelofallars/htmx-go"
)

// viewName picks the component that renders a request. HTMX requests naming
// an HX-Target get the component of the same name in MixedCase:
//   - HX-Target: "content" -> Content()
//   - HX-Target: "user-card" -> UserCard()
//
// Everything else renders Page. partial reports whether the document wrapper
// should be skipped.
func viewName(r *http.Request) (name string, partial bool) {
	if !htmx.IsHTMX(r) {
		return "Page", false
	}
	if target, ok := htmx.GetTarget(r); ok {
		if name := mixedCase(target); name != "" {
			return name, true
		}
	}
	return "Page", true
}

// retargetBody tells htmx to swap the whole body, used when an HTMX request
// falls back to the full view.
func retargetBody(w http.ResponseWriter) error {
	return htmx.NewResponse().Retarget("body").Write(w)
}

// mixedCase converts a kebab-case element id to a Go method name.
func mixedCase(s string) string {
	if s == "" || strings.ContainsAny(s, " \t") {
		return ""
	}
	parts := strings.Split(s, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "")
}
