package routemodules

import (
	"cmp"
	"fmt"
	"net/http"
	"path"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

type parseContext struct {
	root    *ModuleNode
	args    argRegistry
	ignored []string
}

func parseModuleTree(route string, module any, ignored []string, args ...any) (*parseContext, error) {
	pc := &parseContext{args: make(argRegistry), ignored: ignored}
	for _, v := range args {
		if err := pc.args.addArg(v); err != nil {
			return nil, fmt.Errorf("error adding argument to registry: %w", err)
		}
	}
	root, err := pc.parseModuleTree(route, "", module, nil)
	if err != nil {
		return nil, err
	}
	pc.root = root
	return pc, nil
}

func (p *parseContext) parseModuleTree(route, fieldName string, module any, parent *ModuleNode) (*ModuleNode, error) {
	// Modules are route handlers, not injectables: the same type may be
	// mounted at several routes, so they never go into the args registry.
	st := reflect.TypeOf(module) // struct type
	pt := reflect.TypeOf(module) // pointer type
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	} else {
		pt = reflect.PointerTo(st)
	}
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("route module %s must be a struct, got %s", cmp.Or(fieldName, st.String()), st.Kind())
	}
	node := &ModuleNode{Value: reflect.ValueOf(module), Name: cmp.Or(fieldName, st.Name()), Parent: parent}
	node.Method, node.Route, node.Title = parseTag(route)
	node.Ignored = (parent != nil && parent.Ignored) || p.isIgnored(node.Route)

	for i := range st.NumField() {
		field := st.Field(i)
		route, ok := field.Tag.Lookup("route")
		if !ok {
			continue
		}
		typ := field.Type
		if typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		child, err := p.parseModuleTree(route, field.Name, reflect.New(typ).Interface(), node)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	var initMethod *reflect.Method
	for _, t := range []reflect.Type{st, pt} {
		for i := range t.NumMethod() {
			method := t.Method(i)
			if isPromotedMethod(&method) {
				continue // skip promoted methods
			}
			switch method.Name {
			case "Loader":
				node.Loader = cmp.Or(node.Loader, &method)
			case "Action":
				node.Action = cmp.Or(node.Action, &method)
			case "Meta":
				node.Meta = cmp.Or(node.Meta, &method)
			case "Links":
				node.Links = cmp.Or(node.Links, &method)
			case "Middlewares":
				node.Middlewares = cmp.Or(node.Middlewares, &method)
			case "ShouldRevalidate":
				node.ShouldRevalidate = cmp.Or(node.ShouldRevalidate, &method)
			case "ErrorBoundary":
				if isComponent(&method) {
					node.ErrorBoundary = cmp.Or(node.ErrorBoundary, &method)
				}
			case "Init":
				initMethod = cmp.Or(initMethod, &method)
			default:
				if !isComponent(&method) {
					continue
				}
				if node.Components == nil {
					node.Components = make(map[string]*reflect.Method)
				}
				if _, ok := node.Components[method.Name]; !ok {
					node.Components[method.Name] = &method
				}
			}
		}
	}

	if initMethod != nil {
		res, err := p.callMethod(node, initMethod, nil)
		if err != nil {
			return nil, fmt.Errorf("error calling Init method on %s: %w", node.Name, err)
		}
		if _, err := extractError(res); err != nil {
			return nil, fmt.Errorf("error calling Init method on %s: %w", node.Name, err)
		}
	}

	return node, nil
}

func (p *parseContext) isIgnored(route string) bool {
	base := path.Base(route)
	for _, pattern := range p.ignored {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// callMethod calls method with receiver node.Value. Leading parameters are
// filled from positional while their types fit; the rest are resolved by type
// from the node itself, the request scope and the args registry, in that order.
func (p *parseContext) callMethod(node *ModuleNode, method *reflect.Method, scope []reflect.Value,
	positional ...reflect.Value,
) ([]reflect.Value, error) {
	v := node.Value
	receiver := method.Type.In(0)
	// make sure receiver and value match, if method takes a pointer, convert value to pointer
	if receiver.Kind() == reflect.Ptr && v.Kind() != reflect.Ptr {
		if !v.CanAddr() {
			pv := reflect.New(v.Type())
			pv.Elem().Set(v)
			v = pv
		} else {
			v = v.Addr()
		}
	}
	if receiver.Kind() != reflect.Ptr && v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	in := make([]reflect.Value, method.Type.NumIn())
	in[0] = v // first argument is the receiver
	filled := 1
	for _, arg := range positional {
		if filled >= len(in) || !arg.IsValid() || !arg.Type().AssignableTo(method.Type.In(filled)) {
			break
		}
		in[filled] = arg
		filled++
	}

	nv := reflect.ValueOf(node)
	for i := filled; i < len(in); i++ {
		argType := method.Type.In(i)
		switch {
		case argType == nv.Type():
			in[i] = nv
		case argType == nv.Type().Elem():
			in[i] = nv.Elem()
		default:
			val, ok := lookupScope(scope, argType)
			if !ok {
				val, ok = p.args.getArg(argType)
			}
			if !ok {
				return nil, fmt.Errorf("method %s requires argument of type %s, but not found",
					formatMethod(method), argType.String())
			}
			in[i] = val
		}
	}
	return method.Func.Call(in), nil
}

func lookupScope(scope []reflect.Value, want reflect.Type) (reflect.Value, bool) {
	for _, v := range scope {
		if v.IsValid() && v.Type().AssignableTo(want) {
			return v, true
		}
	}
	return reflect.Value{}, false
}

func (p *parseContext) callComponentMethod(node *ModuleNode, method *reflect.Method, scope []reflect.Value,
	positional ...reflect.Value,
) (templ.Component, error) {
	results, err := p.callMethod(node, method, scope, positional...)
	if err != nil {
		return nil, fmt.Errorf("error calling component method %s: %w", formatMethod(method), err)
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("method %s must return a single result, got %d", formatMethod(method), len(results))
	}
	comp, ok := results[0].Interface().(templ.Component)
	if !ok || comp == nil {
		return nil, fmt.Errorf("method %s returned a nil component", formatMethod(method))
	}
	return comp, nil
}

func (p *parseContext) urlFor(v any) (string, error) {
	if f, ok := v.(func(*ModuleNode) bool); ok {
		for node := range p.root.All() {
			if !node.Ignored && f(node) {
				return node.FullRoute(), nil
			}
		}
		return "", fmt.Errorf("urlfor: no module node matched the predicate")
	}
	ptv := pointerType(reflect.TypeOf(v))
	for node := range p.root.All() {
		if !node.Ignored && pointerType(node.Value.Type()) == ptv {
			return node.FullRoute(), nil
		}
	}
	return "", fmt.Errorf("urlfor: no module node found for %s", ptv.String())
}

func pointerType(v reflect.Type) reflect.Type {
	if v.Kind() == reflect.Ptr {
		return v
	}
	return reflect.PointerTo(v)
}

// parseTag splits a route tag "[METHOD] path [title...]".
func parseTag(route string) (method, path, title string) {
	method = methodAll
	parts := strings.Fields(route)
	if len(parts) == 0 {
		path = "/"
		return
	}
	if len(parts) == 1 {
		path = parts[0]
		return
	}
	if m := strings.ToUpper(parts[0]); slices.Contains(validMethod, m) {
		method = m
		path = parts[1]
		title = strings.Join(parts[2:], " ")
	} else {
		path = parts[0]
		title = strings.Join(parts[1:], " ")
	}
	return
}

const methodAll = "ALL"

var validMethod = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
	methodAll,
}

var componentType = reflect.TypeOf((*templ.Component)(nil)).Elem()

func isComponent(t *reflect.Method) bool {
	if t.Type.NumOut() != 1 {
		return false
	}
	return t.Type.Out(0).Implements(componentType)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// extractError splits a trailing error result off args.
func extractError(args []reflect.Value) ([]reflect.Value, error) {
	if len(args) >= 1 && args[len(args)-1].Type() == errorType {
		last := args[len(args)-1]
		args = args[:len(args)-1]
		if last.IsNil() {
			return args, nil
		}
		return args, last.Interface().(error)
	}
	return args, nil
}

func formatMethod(method *reflect.Method) string {
	if method == nil || method.Func == (reflect.Value{}) {
		return "<nil>"
	}
	return fmt.Sprintf("%s.%s", method.Type.In(0).String(), method.Name)
}

func isPromotedMethod(method *reflect.Method) bool {
	// Check if the method is promoted from an embedded type
	// https://github.com/golang/go/issues/73883
	wPC := method.Func.Pointer()
	wFunc := runtime.FuncForPC(wPC)
	wFile, wLine := wFunc.FileLine(wPC)
	return wFile == "<autogenerated>" && wLine == 1
}
