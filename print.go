package routemodules

import (
	"fmt"
	"maps"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strings"
)

// PrintRoutes parses the module tree and renders one line per module with its
// method, full route, title and exports. Ignored modules are marked.
func PrintRoutes(route string, module any, ignored ...string) (string, error) {
	if ignored == nil {
		ignored = DefaultIgnoredRoutes
	}
	pc, err := parseModuleTree(route, module, ignored)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	printNode(&sb, pc.root, 0)
	return sb.String(), nil
}

func printNode(sb *strings.Builder, node *ModuleNode, depth int) {
	fmt.Fprintf(sb, "%s%-6s %s", strings.Repeat("  ", depth), node.Method, node.FullRoute())
	if node.Title != "" {
		fmt.Fprintf(sb, " %q", node.Title)
	}
	if exports := node.Exports(); len(exports) > 0 {
		fmt.Fprintf(sb, " [%s]", strings.Join(exports, " "))
	}
	if node.Ignored {
		sb.WriteString(" (ignored)")
	}
	sb.WriteString("\n")
	for _, child := range node.Children {
		printNode(sb, child, depth+1)
	}
}

// RouteEntry is one module of a route manifest, shaped like the route list
// Remix prints with `remix routes --json`.
type RouteEntry struct {
	ID       string        `json:"id"`
	Path     string        `json:"path"`
	File     string        `json:"file,omitempty"`
	Index    bool          `json:"index,omitempty"`
	Method   string        `json:"method,omitempty"`
	Exports  []string      `json:"exports,omitempty"`
	Children []*RouteEntry `json:"children,omitempty"`
}

// RouteManifest parses the module tree and returns it as nested entries.
// Ignored modules and their children are left out. Paths are relative to the
// parent, as in the route tags.
func RouteManifest(route string, module any, ignored ...string) ([]*RouteEntry, error) {
	if ignored == nil {
		ignored = DefaultIgnoredRoutes
	}
	pc, err := parseModuleTree(route, module, ignored)
	if err != nil {
		return nil, err
	}
	if pc.root.Ignored {
		return nil, nil
	}
	return []*RouteEntry{manifestEntry(pc.root, "root")}, nil
}

func manifestEntry(node *ModuleNode, id string) *RouteEntry {
	p := strings.TrimPrefix(node.Route, "/")
	index := strings.HasSuffix(p, "{$}")
	if index {
		p = strings.TrimSuffix(strings.TrimSuffix(p, "{$}"), "/")
	}
	e := &RouteEntry{
		ID:      id,
		Path:    p,
		File:    sourceFile(node),
		Index:   index,
		Exports: node.Exports(),
	}
	if node.Method != methodAll {
		e.Method = node.Method
	}
	for _, child := range node.Children {
		if child.Ignored {
			continue
		}
		childID := child.Name
		if node.Parent != nil {
			childID = id + "." + child.Name
		}
		e.Children = append(e.Children, manifestEntry(child, childID))
	}
	return e
}

// sourceFile names the Go file declaring the module's first exported method.
func sourceFile(node *ModuleNode) string {
	methods := []*reflect.Method{
		node.Meta, node.Links, node.Loader, node.Action, node.ShouldRevalidate,
		node.ErrorBoundary, node.Middlewares,
	}
	for _, name := range slices.Sorted(maps.Keys(node.Components)) {
		methods = append(methods, node.Components[name])
	}
	for _, m := range methods {
		if m == nil {
			continue
		}
		pc := m.Func.Pointer()
		if fn := runtime.FuncForPC(pc); fn != nil {
			file, _ := fn.FileLine(pc)
			return filepath.Base(file)
		}
	}
	return ""
}
