// Package routemodules hosts route modules: structs whose `route` tag declares
// a URL pattern and whose methods provide the data loader, the mutating action,
// document metadata, resource links and the view.
//
// A module tree is mounted onto a [Router] (the [http.ServeMux] wrapper from
// [NewRouter] by default) with [RouteModules.MountModules]:
//
//	type routes struct {
//		index `route:"/{$} Home"`
//		user  `route:"/users/{userId} User"`
//	}
//
//	type user struct{}
//
//	func (user) Loader(p routemodules.Params) userData { ... }
//	func (user) Page(d userData) templ.Component        { ... }
//
//	rm := routemodules.New()
//	router := routemodules.NewRouter(http.NewServeMux())
//	if err := rm.MountModules(router, "/", routes{}); err != nil { ... }
//
// GET requests run the loader and render the view inside an HTML document.
// Other methods run the action. Requests carrying the `_data` query parameter
// (or accepting JSON only) receive the payload as JSON instead.
package routemodules
