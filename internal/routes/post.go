package routes

import (
	"github.com/a-h/templ"
	"github.com/jackielii/routemodules"
)

type post struct{}

type postData struct {
	UserID *string `json:"userId,omitempty" param:"userId"`
	PostID *string `json:"postId,omitempty" param:"postId"`
}

func (post) Meta(params routemodules.Params) []routemodules.MetaDescriptor {
	return []routemodules.MetaDescriptor{{Title: "Post " + deref(params.Optional("postId"))}}
}

func (post) Loader(params routemodules.Params) (postData, error) {
	var data postData
	if err := params.Decode(&data); err != nil {
		return postData{}, err
	}
	return data, nil
}

func (post) Page(data postData) templ.Component {
	return heading("Post: " + deref(data.PostID) + " by " + deref(data.UserID))
}
