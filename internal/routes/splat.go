package routes

import (
	"github.com/a-h/templ"
	"github.com/jackielii/routemodules"
)

type splat struct{}

type splatData struct {
	Splat *string `json:"splat,omitempty"`
}

func (splat) Links() []routemodules.LinkDescriptor {
	return []routemodules.LinkDescriptor{{Rel: "stylesheet", Href: "/styles.css"}}
}

func (splat) Loader(params routemodules.Params) splatData {
	return splatData{Splat: params.Splat()}
}

func (splat) Page(data splatData) templ.Component {
	return heading("Not found: " + deref(data.Splat))
}
