package routemodules

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// MiddlewareFunc wraps the handler of a single module node.
type MiddlewareFunc = func(http.Handler, *ModuleNode) http.Handler

// RouteModules mounts module trees onto routers.
type RouteModules struct {
	onError     func(http.ResponseWriter, *http.Request, error)
	middlewares []MiddlewareFunc
	logger      *zap.Logger
	document    DocumentFunc
	ignored     []string
}

// Option configures RouteModules.
type Option func(*RouteModules)

// DefaultIgnoredRoutes skips dot-prefixed routes such as "/.ignored".
var DefaultIgnoredRoutes = []string{".*"}

func New(options ...Option) *RouteModules {
	rm := &RouteModules{
		logger:   zap.NewNop(),
		document: Document,
		ignored:  DefaultIgnoredRoutes,
	}
	rm.onError = rm.defaultErrorHandler
	for _, opt := range options {
		opt(rm)
	}
	return rm
}

func WithErrorHandler(onError func(http.ResponseWriter, *http.Request, error)) Option {
	return func(rm *RouteModules) {
		rm.onError = onError
	}
}

// WithMiddlewares adds middlewares applied to every module. The first one is
// the outermost.
func WithMiddlewares(middlewares ...MiddlewareFunc) Option {
	return func(rm *RouteModules) {
		rm.middlewares = append(rm.middlewares, middlewares...)
	}
}

// WithLogger sets the logger used for errors. It is also injectable into
// module methods as *zap.Logger.
func WithLogger(logger *zap.Logger) Option {
	return func(rm *RouteModules) {
		if logger != nil {
			rm.logger = logger
		}
	}
}

// WithDocument replaces the HTML document wrapping every full page view.
func WithDocument(document DocumentFunc) Option {
	return func(rm *RouteModules) {
		rm.document = document
	}
}

// WithIgnoredRoutes sets the path.Match patterns of routes that are never
// mounted. Patterns are matched against the last segment of a module's route.
// Calling it with no patterns mounts everything.
func WithIgnoredRoutes(patterns ...string) Option {
	return func(rm *RouteModules) {
		rm.ignored = patterns
	}
}

// MountModules parses the module tree rooted at module and registers every
// module that isn't ignored. initArgs are made available to module methods by
// type.
func (rm *RouteModules) MountModules(router Router, route string, module any, initArgs ...any) error {
	args := initArgs
	if !hasArgOfType(initArgs, reflect.TypeOf(rm.logger)) {
		args = append([]any{rm.logger}, initArgs...)
	}
	pc, err := parseModuleTree(route, module, rm.ignored, args...)
	if err != nil {
		return err
	}
	for node := range pc.root.All() {
		if node.Ignored {
			rm.logger.Debug("skipping ignored route module",
				zap.String("module", node.Name), zap.String("route", node.FullRoute()))
			continue
		}
		if err := rm.registerModule(router, pc, node); err != nil {
			return err
		}
	}
	return nil
}

func hasArgOfType(args []any, typ reflect.Type) bool {
	for _, a := range args {
		if reflect.TypeOf(a) == typ {
			return true
		}
	}
	return false
}

func (rm *RouteModules) registerModule(router Router, pc *parseContext, node *ModuleNode) error {
	if node.Route == "" {
		return fmt.Errorf("route module %s has an empty route", node.Name)
	}
	handler, raw := rm.buildHandler(pc, node)
	if handler == nil {
		return nil
	}
	segments, err := parseSegments(node.FullRoute())
	if err != nil {
		return fmt.Errorf("route module %s: %w", node.Name, err)
	}
	mws, err := rm.moduleMiddlewares(pc, node)
	if err != nil {
		return err
	}
	mws = append(append([]MiddlewareFunc{}, rm.middlewares...), mws...)
	mws = append([]MiddlewareFunc{withRequestContext(router, pc, segments)}, mws...)
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler, node)
	}

	route := node.FullRoute()
	for _, method := range registrationMethods(node, raw) {
		rm.logger.Debug("registering route module",
			zap.String("module", node.Name), zap.String("method", method), zap.String("route", route))
		router.HandleMethod(method, route, handler)
	}
	return nil
}

// registrationMethods lists the methods a node is registered for. A method in
// the route tag wins. Otherwise the loader/view answers GET and HEAD and the
// action answers the mutating methods.
func registrationMethods(node *ModuleNode, raw bool) []string {
	if node.Method == http.MethodGet {
		return []string{http.MethodGet, http.MethodHead}
	}
	if node.Method != methodAll || raw {
		return []string{node.Method}
	}
	var methods []string
	if node.Loader != nil || len(node.Components) > 0 {
		methods = append(methods, http.MethodGet, http.MethodHead)
	}
	if node.Action != nil {
		methods = append(methods, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
	return methods
}

// moduleMiddlewares collects the Middlewares of node and its ancestors, root first.
func (rm *RouteModules) moduleMiddlewares(pc *parseContext, node *ModuleNode) ([]MiddlewareFunc, error) {
	var out []MiddlewareFunc
	for _, n := range node.Ancestors() {
		if n.Middlewares == nil {
			continue
		}
		res, err := pc.callMethod(n, n.Middlewares, nil)
		if err != nil {
			return nil, fmt.Errorf("error calling Middlewares method on %s: %w", n.Name, err)
		}
		res, err = extractError(res)
		if err != nil {
			return nil, fmt.Errorf("error calling Middlewares method on %s: %w", n.Name, err)
		}
		if len(res) != 1 {
			return nil, fmt.Errorf("middlewares method on %s did not return single result", n.Name)
		}
		mws, ok := res[0].Interface().([]MiddlewareFunc)
		if !ok {
			return nil, fmt.Errorf("middlewares method on %s did not return []func(http.Handler, *ModuleNode) http.Handler", n.Name)
		}
		out = append(out, mws...)
	}
	return out, nil
}

// withRequestContext stores the module tree and route parameters in the request context.
func withRequestContext(router Router, pc *parseContext, segments []segment) MiddlewareFunc {
	return func(next http.Handler, _ *ModuleNode) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := pcCtx.WithValue(r.Context(), pc)
			ctx = paramsCtx.WithValue(ctx, readParams(router, r, segments))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// buildHandler returns the handler for node, or nil if it has nothing to
// serve. raw is set when the module is an http.Handler itself.
func (rm *RouteModules) buildHandler(pc *parseContext, node *ModuleNode) (h http.Handler, raw bool) {
	if h := rm.getHTTPHandler(node.Value); h != nil {
		return h, true
	}
	if node.Loader == nil && node.Action == nil && len(node.Components) == 0 {
		return nil, false
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			rm.serveLoader(w, r, pc, node)
		default:
			if node.Action == nil {
				w.Header().Set("Allow", "GET, HEAD")
				http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
				return
			}
			rm.serveAction(w, r, pc, node)
		}
	}), false
}

func requestScope(w http.ResponseWriter, r *http.Request) []reflect.Value {
	return []reflect.Value{
		reflect.ValueOf(r),
		reflect.ValueOf(r.Context()),
		reflect.ValueOf(ParamsFromContext(r.Context())),
		reflect.ValueOf(w),
	}
}

func (rm *RouteModules) serveLoader(w http.ResponseWriter, r *http.Request, pc *parseContext, node *ModuleNode) {
	scope := requestScope(w, r)
	var data []reflect.Value
	if node.Loader != nil {
		res, err := pc.callMethod(node, node.Loader, scope)
		if err == nil {
			res, err = extractError(res)
		}
		if err != nil {
			rm.fail(w, r, pc, node, fmt.Errorf("loader %s: %w", node.Name, err))
			return
		}
		data = res
	}
	if wantsData(r) || node.Components["Page"] == nil {
		rm.writeJSON(w, r, payload(data))
		return
	}
	rm.render(w, r, pc, node, append(scope, data...), data)
}

func (rm *RouteModules) serveAction(w http.ResponseWriter, r *http.Request, pc *parseContext, node *ModuleNode) {
	scope := requestScope(w, r)
	res, err := pc.callMethod(node, node.Action, scope)
	if err == nil {
		res, err = extractError(res)
	}
	if err != nil {
		rm.fail(w, r, pc, node, fmt.Errorf("action %s: %w", node.Name, err))
		return
	}
	if wantsData(r) || node.Components["Page"] == nil {
		rm.writeJSON(w, r, payload(res))
		return
	}
	if node.ShouldRevalidate != nil {
		ok, err := shouldRevalidate(pc, node, scope, res)
		if err != nil {
			rm.fail(w, r, pc, node, err)
			return
		}
		if !ok {
			// the client keeps the page it has
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	// revalidate: the page shows the data as it is after the action
	rm.serveLoader(w, r, pc, node)
}

// shouldRevalidate calls the module's ShouldRevalidate with the action
// results as leading arguments.
func shouldRevalidate(pc *parseContext, node *ModuleNode, scope, actionResults []reflect.Value) (bool, error) {
	method := node.ShouldRevalidate
	res, err := pc.callMethod(node, method, scope, actionResults...)
	if err == nil {
		res, err = extractError(res)
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", formatMethod(method), err)
	}
	if len(res) != 1 || res[0].Kind() != reflect.Bool {
		return false, fmt.Errorf("%s must return a bool", formatMethod(method))
	}
	return res[0].Bool(), nil
}

func (rm *RouteModules) render(w http.ResponseWriter, r *http.Request, pc *parseContext,
	node *ModuleNode, scope, data []reflect.Value,
) {
	name, partial := viewName(r)
	method, ok := node.Components[name]
	fallback := false
	if !ok {
		method, fallback = node.Components["Page"], partial
	}
	if method == nil {
		rm.fail(w, r, pc, node, fmt.Errorf("module %s has no %s component", node.Name, name))
		return
	}
	comp, err := pc.callComponentMethod(node, method, scope, data...)
	if err != nil {
		rm.fail(w, r, pc, node, err)
		return
	}

	bw := newBuffered(w)
	bw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if fallback {
		if err := retargetBody(bw); err != nil {
			bw.discard()
			rm.onError(w, r, err)
			return
		}
	}
	if !partial {
		meta, links, err := rm.head(pc, node, scope)
		if err != nil {
			bw.discard()
			rm.fail(w, r, pc, node, err)
			return
		}
		comp = rm.document(meta, links, comp)
	}
	if err := comp.Render(r.Context(), bw); err != nil {
		bw.discard()
		rm.fail(w, r, pc, node, fmt.Errorf("render %s: %w", node.Name, err))
		return
	}
	if err := bw.close(); err != nil {
		rm.logger.Warn("write response", zap.String("module", node.Name), zap.Error(err))
	}
}

// fail renders the ErrorBoundary of node or its nearest ancestor that has one,
// with the status carried by err. Data requests, resource routes and trees
// without a boundary go to the error handler.
func (rm *RouteModules) fail(w http.ResponseWriter, r *http.Request, pc *parseContext, node *ModuleNode, err error) {
	owner := errorBoundary(node)
	if owner == nil || wantsData(r) || node.Components["Page"] == nil {
		rm.onError(w, r, err)
		return
	}
	status := StatusOf(err)
	rm.logger.Error("route module error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("boundary", owner.Name),
		zap.Int("status", status),
		zap.Error(err))

	scope := requestScope(w, r)
	comp, berr := pc.callComponentMethod(owner, owner.ErrorBoundary, scope, reflect.ValueOf(err))
	if berr != nil {
		rm.onError(w, r, errors.Join(err, berr))
		return
	}
	bw := newBuffered(w)
	bw.Header().Set("Content-Type", "text/html; charset=utf-8")
	bw.WriteHeader(status)
	if _, partial := viewName(r); !partial {
		// meta belongs to the failed module, only the links are kept
		links, lerr := rm.links(pc, node, scope)
		if lerr != nil {
			rm.logger.Warn("error boundary links", zap.String("module", node.Name), zap.Error(lerr))
		}
		comp = rm.document(nil, links, comp)
	}
	if rerr := comp.Render(r.Context(), bw); rerr != nil {
		bw.discard()
		rm.onError(w, r, errors.Join(err, rerr))
		return
	}
	if cerr := bw.close(); cerr != nil {
		rm.logger.Warn("write response", zap.String("module", owner.Name), zap.Error(cerr))
	}
}

func errorBoundary(node *ModuleNode) *ModuleNode {
	for n := node; n != nil; n = n.Parent {
		if n.ErrorBoundary != nil {
			return n
		}
	}
	return nil
}

// head collects the node's meta and the links of the node and its ancestors.
func (rm *RouteModules) head(pc *parseContext, node *ModuleNode, scope []reflect.Value) ([]MetaDescriptor, []LinkDescriptor, error) {
	var meta []MetaDescriptor
	if node.Meta != nil {
		v, err := callDescriptors[MetaDescriptor](pc, node, node.Meta, scope)
		if err != nil {
			return nil, nil, err
		}
		meta = v
	}
	links, err := rm.links(pc, node, scope)
	if err != nil {
		return nil, nil, err
	}
	return meta, links, nil
}

func (rm *RouteModules) links(pc *parseContext, node *ModuleNode, scope []reflect.Value) ([]LinkDescriptor, error) {
	var links []LinkDescriptor
	for _, n := range node.Ancestors() {
		if n.Links == nil {
			continue
		}
		v, err := callDescriptors[LinkDescriptor](pc, n, n.Links, scope)
		if err != nil {
			return nil, err
		}
		links = append(links, v...)
	}
	return links, nil
}

func callDescriptors[T any](pc *parseContext, node *ModuleNode, method *reflect.Method, scope []reflect.Value) ([]T, error) {
	res, err := pc.callMethod(node, method, scope)
	if err == nil {
		res, err = extractError(res)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", formatMethod(method), err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("%s must return a single result, got %d", formatMethod(method), len(res))
	}
	out, ok := res[0].Interface().([]T)
	if !ok {
		return nil, fmt.Errorf("%s must return %T", formatMethod(method), out)
	}
	return out, nil
}

// wantsData reports whether the client asked for the payload instead of HTML.
func wantsData(r *http.Request) bool {
	if r.URL.Query().Has("_data") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func payload(results []reflect.Value) any {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0].Interface()
	}
	out := make([]any, len(results))
	for i, v := range results {
		out[i] = v.Interface()
	}
	return out
}

func (rm *RouteModules) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	bw := newBuffered(w)
	if err := json.NewEncoder(bw).Encode(v); err != nil {
		bw.discard()
		rm.onError(w, r, fmt.Errorf("encode payload: %w", err))
		return
	}
	bw.Header().Set("Content-Type", "application/json")
	if err := bw.close(); err != nil {
		rm.logger.Warn("write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (rm *RouteModules) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	rm.logger.Error("route module error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	http.Error(w, http.StatusText(status), status)
}

type httpErrHandler interface {
	ServeHTTP(http.ResponseWriter, *http.Request) error
}

var (
	handlerType    = reflect.TypeOf((*http.Handler)(nil)).Elem()
	errHandlerType = reflect.TypeOf((*httpErrHandler)(nil)).Elem()
)

// getHTTPHandler returns v as a handler when the module itself implements
// ServeHTTP, either the standard signature or one returning an error.
func (rm *RouteModules) getHTTPHandler(v reflect.Value) http.Handler {
	st, pt := v.Type(), v.Type()
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	} else {
		pt = reflect.PointerTo(st)
	}
	method, ok := st.MethodByName("ServeHTTP")
	if !ok || isPromotedMethod(&method) {
		method, ok = pt.MethodByName("ServeHTTP")
		if !ok || isPromotedMethod(&method) {
			return nil
		}
	}

	if !v.Type().Implements(handlerType) && !v.Type().Implements(errHandlerType) && v.Kind() != reflect.Ptr {
		// pointer receiver ServeHTTP on a value module
		pv := reflect.New(v.Type())
		pv.Elem().Set(v)
		v = pv
	}
	switch {
	case v.Type().Implements(handlerType):
		return v.Interface().(http.Handler)
	case v.Type().Implements(errHandlerType):
		h := v.Interface().(httpErrHandler)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := h.ServeHTTP(w, r); err != nil {
				rm.onError(w, r, err)
			}
		})
	}
	return nil
}
