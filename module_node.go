package routemodules

import (
	"fmt"
	"iter"
	"maps"
	"path"
	"reflect"
	"slices"
	"strings"
)

// ModuleNode is one route module in a mounted tree.
type ModuleNode struct {
	Name   string
	Title  string
	Method string
	Route  string
	// Ignored modules are parsed but never registered with the router.
	Ignored bool
	Value   reflect.Value

	Loader      *reflect.Method
	Action      *reflect.Method
	Meta        *reflect.Method
	Links       *reflect.Method
	Middlewares *reflect.Method
	// ShouldRevalidate decides whether a successful action re-runs the loader.
	ShouldRevalidate *reflect.Method
	// ErrorBoundary renders failures of this module and of descendants
	// without a boundary of their own.
	ErrorBoundary *reflect.Method
	Components    map[string]*reflect.Method

	Parent   *ModuleNode
	Children []*ModuleNode
}

// FullRoute joins the node's route with its ancestors'.
func (n *ModuleNode) FullRoute() string {
	if n.Parent == nil {
		return n.Route
	}
	return path.Join(n.Parent.FullRoute(), n.Route)
}

// All iterates over n and its descendants, depth first.
func (n *ModuleNode) All() iter.Seq[*ModuleNode] {
	return func(yield func(*ModuleNode) bool) {
		n.walk(yield)
	}
}

func (n *ModuleNode) walk(yield func(*ModuleNode) bool) bool {
	if !yield(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.walk(yield) {
			return false
		}
	}
	return true
}

// Ancestors returns the chain from the root down to n, inclusive.
func (n *ModuleNode) Ancestors() []*ModuleNode {
	var chain []*ModuleNode
	for p := n; p != nil; p = p.Parent {
		chain = append(chain, p)
	}
	slices.Reverse(chain)
	return chain
}

// Exports lists the module methods the node declares, in a fixed order.
func (n *ModuleNode) Exports() []string {
	var out []string
	for _, e := range []struct {
		name string
		m    *reflect.Method
	}{
		{"meta", n.Meta}, {"links", n.Links}, {"loader", n.Loader}, {"action", n.Action},
		{"shouldRevalidate", n.ShouldRevalidate},
	} {
		if e.m != nil {
			out = append(out, e.name)
		}
	}
	if _, ok := n.Components["Page"]; ok {
		out = append(out, "view")
	}
	if n.ErrorBoundary != nil {
		out = append(out, "errorBoundary")
	}
	return out
}

func (n ModuleNode) String() string {
	var sb strings.Builder
	sb.WriteString("ModuleNode{")
	sb.WriteString("\n  name: " + n.Name)
	sb.WriteString("\n  title: " + n.Title)
	sb.WriteString("\n  route: " + n.Route)
	if n.Ignored {
		sb.WriteString("\n  ignored: true")
	}
	sb.WriteString("\n  loader: " + formatMethod(n.Loader))
	sb.WriteString("\n  action: " + formatMethod(n.Action))
	sb.WriteString("\n  meta: " + formatMethod(n.Meta))
	sb.WriteString("\n  links: " + formatMethod(n.Links))
	sb.WriteString("\n  middlewares: " + formatMethod(n.Middlewares))
	sb.WriteString("\n  shouldRevalidate: " + formatMethod(n.ShouldRevalidate))
	sb.WriteString("\n  errorBoundary: " + formatMethod(n.ErrorBoundary))
	for _, name := range slices.Sorted(maps.Keys(n.Components)) {
		sb.WriteString("\n  component: " + name + " -> " + formatMethod(n.Components[name]))
	}
	for i, child := range n.Children {
		fmt.Fprintf(&sb, "\n  child %d:", i+1)
		for _, line := range strings.SplitAfter(child.String(), "\n") {
			sb.WriteString("  " + line)
		}
	}
	sb.WriteString("\n}")
	return sb.String()
}
