package routes

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/jackielii/routemodules"
	"go.uber.org/zap"
)

type index struct{}

type indexData struct {
	Message string `json:"message"`
}

func (index) Meta() []routemodules.MetaDescriptor {
	return []routemodules.MetaDescriptor{{Title: "New Remix App"}}
}

// Action only records the request method.
func (index) Action(r *http.Request, logger *zap.Logger) {
	logger.Info("index action", zap.String("method", r.Method))
}

func (index) Loader() indexData {
	return indexData{Message: "Hello from loader!"}
}

func (index) Page(data indexData) templ.Component {
	return heading(data.Message)
}
