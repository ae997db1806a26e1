package routemodules

import (
	"slices"

	"github.com/a-h/templ"
)

// MetaDescriptor is one document metadata record. A Title renders as <title>;
// anything else renders as a <meta> tag with the non-empty attributes.
type MetaDescriptor struct {
	Title    string `json:"title,omitempty"`
	Name     string `json:"name,omitempty"`
	Property string `json:"property,omitempty"`
	Content  string `json:"content,omitempty"`
	CharSet  string `json:"charSet,omitempty"`
}

// LinkDescriptor is a <link> record, usually a stylesheet.
type LinkDescriptor struct {
	Rel         string `json:"rel"`
	Href        string `json:"href"`
	Type        string `json:"type,omitempty"`
	As          string `json:"as,omitempty"`
	Media       string `json:"media,omitempty"`
	CrossOrigin string `json:"crossOrigin,omitempty"`
}

// DocumentFunc wraps a rendered view in a full HTML document.
type DocumentFunc func(meta []MetaDescriptor, links []LinkDescriptor, body templ.Component) templ.Component

func hasCharSet(meta []MetaDescriptor) bool {
	return slices.ContainsFunc(meta, func(m MetaDescriptor) bool { return m.CharSet != "" })
}

// DocumentTitle returns the last title among meta. Document renders only that one.
func DocumentTitle(meta []MetaDescriptor) string {
	var title string
	for _, m := range meta {
		if m.Title != "" {
			title = m.Title
		}
	}
	return title
}
