package routemodules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackielii/ctxkey"
)

var (
	pcCtx     = ctxkey.New[*parseContext]("routemodules.parseContext", nil)
	paramsCtx = ctxkey.New[Params]("routemodules.params", nil)
)

// ParamsFromContext returns the route parameters of the request that ctx
// belongs to. It is nil outside of a module handler.
func ParamsFromContext(ctx context.Context) Params {
	return paramsCtx.Value(ctx)
}

// URLFor returns the URL for a given module type. Wildcards are filled from
// args, which can be a single map[string]any, key/value pairs or positional
// values. Wildcards left unfilled take the current request's value.
//
// If several nodes share the module type, the first one is returned. Pass a
// func(*ModuleNode) bool as module to pick a specific one. A []any joins
// several parts; strings are appended as is:
//
//	URLFor(ctx, []any{post{}, "?tab={tab}"}, "userId", 42, "postId", 7, "tab", "comments")
func URLFor(ctx context.Context, module any, args ...any) (string, error) {
	pc := pcCtx.Value(ctx)
	if pc == nil {
		return "", errors.New("parse context not found in context")
	}

	var pattern string
	parts, ok := module.([]any)
	if !ok {
		parts = []any{module}
	}
	for _, part := range parts {
		if s, ok := part.(string); ok {
			pattern += s
			continue
		}
		p, err := pc.urlFor(part)
		if err != nil {
			return "", err
		}
		pattern += p
	}
	path, err := formatPathSegments(pattern, ParamsFromContext(ctx), args...)
	if err != nil {
		return "", fmt.Errorf("urlfor: %w", err)
	}
	return path, nil
}

// formatPathSegments substitutes the wildcards of pattern.
func formatPathSegments(pattern string, current Params, args ...any) (string, error) {
	segments, err := parseSegments(pattern)
	if err != nil {
		return pattern, err
	}
	var names []string
	for _, seg := range segments {
		if seg.param {
			names = append(names, seg.name)
		}
	}

	values := make(map[string]string, len(names))
	switch {
	case len(args) == 1 && isMap(args[0]):
		for k, v := range args[0].(map[string]any) {
			values[k] = fmt.Sprint(v)
		}
	case isPairs(args, names):
		for i := 0; i < len(args); i += 2 {
			values[args[i].(string)] = fmt.Sprint(args[i+1])
		}
	case len(args) > 0:
		if len(args) > len(names) {
			return pattern, fmt.Errorf("pattern %s: too many arguments: %v", pattern, args)
		}
		for i, arg := range args {
			values[names[i]] = fmt.Sprint(arg)
		}
	}

	var sb strings.Builder
	for _, seg := range segments {
		if !seg.param {
			sb.WriteString(seg.name)
			continue
		}
		v, ok := values[seg.name]
		if !ok {
			key := seg.name
			if seg.catchAll {
				key = SplatKey
			}
			v, ok = current.Get(key)
		}
		if !ok {
			return pattern, fmt.Errorf("pattern %s: argument %s not found in provided args: %v", pattern, seg.name, args)
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// isPairs reports whether args look like key/value pairs naming at least one
// of the wildcards.
func isPairs(args []any, names []string) bool {
	if len(args) < 2 || len(args)%2 != 0 {
		return false
	}
	match := false
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return false
		}
		for _, n := range names {
			if n == key {
				match = true
			}
		}
	}
	return match
}

type segment struct {
	name     string
	param    bool
	catchAll bool
}

// parseSegments splits a ServeMux pattern into literal and wildcard segments.
// {$} is dropped.
func parseSegments(pattern string) (segments []segment, err error) {
	rest := pattern
	for rest != "" {
		start := strings.Index(rest, "{")
		if start == -1 {
			segments = append(segments, segment{name: rest})
			break
		}
		if start > 0 {
			segments = append(segments, segment{name: rest[:start]})
		}
		rest = rest[start+1:] // move over the '{'
		end := strings.Index(rest, "}")
		if end == -1 {
			return nil, fmt.Errorf("pattern %s: unmatched {", pattern)
		}
		name := rest[:end]
		rest = rest[end+1:]
		if name == "$" {
			continue
		}
		catchAll := strings.HasSuffix(name, "...")
		segments = append(segments, segment{name: strings.TrimSuffix(name, "..."), param: true, catchAll: catchAll})
	}
	return segments, nil
}
