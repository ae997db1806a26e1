package routes

import (
	"context"

	"github.com/a-h/templ"
	"github.com/jackielii/routemodules"
)

type user struct{}

type userData struct {
	UserID *string `json:"userId,omitempty"`
}

type actionResult struct {
	Success bool `json:"success"`
}

const userTitle = "User page"

func (user) Meta() []routemodules.MetaDescriptor {
	return []routemodules.MetaDescriptor{{Title: userTitle}}
}

func (user) Action(routemodules.Params) actionResult {
	return actionResult{Success: true}
}

// ShouldRevalidate re-runs the loader only after a successful action.
func (user) ShouldRevalidate(result actionResult) bool {
	return result.Success
}

// Loader returns early if the request is gone.
func (user) Loader(ctx context.Context, params routemodules.Params) (userData, error) {
	if err := ctx.Err(); err != nil {
		return userData{}, err
	}
	return userData{UserID: params.Optional("userId")}, nil
}

func (user) Page(data userData) templ.Component {
	return heading("User: " + deref(data.UserID))
}
