package routemodules

import (
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"
)

// SplatKey is the key multi-segment wildcards ({name...}) are stored under.
const SplatKey = "*"

// Param is a single matched path segment.
type Param struct {
	Key   string
	Value string
}

// Params are the route parameters of the current request, in pattern order.
// Segments that matched nothing are left out, so a lookup reports them absent.
type Params []Param

// Get returns the value of the named parameter and whether it was present.
func (ps Params) Get(name string) (string, bool) {
	for _, p := range ps {
		if p.Key == name {
			return p.Value, true
		}
	}
	return "", false
}

// Optional returns a pointer to the named value, or nil when it is absent.
func (ps Params) Optional(name string) *string {
	v, ok := ps.Get(name)
	if !ok {
		return nil
	}
	return &v
}

// Splat returns the multi-segment wildcard value, or nil.
func (ps Params) Splat() *string {
	return ps.Optional(SplatKey)
}

// Map returns a copy of the params as a map.
func (ps Params) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Key] = p.Value
	}
	return m
}

// Decode copies the params into the struct pointed to by out. Fields are
// matched by their `param` tag, falling back to the field name.
func (ps Params) Decode(out any) error {
	in := make(map[string]any, len(ps))
	for _, p := range ps {
		in[p.Key] = p.Value
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "param",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("params decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

// readParams collects the wildcard values of segments from r. The router
// decides where the values live; routers that don't fill [http.Request.PathValue]
// implement [ParamReader].
func readParams(router Router, r *http.Request, segments []segment) Params {
	reader, _ := router.(ParamReader)
	var ps Params
	for _, seg := range segments {
		if !seg.param {
			continue
		}
		var v string
		if reader != nil {
			v = reader.URLParam(r, seg.name, seg.catchAll)
		} else {
			v = r.PathValue(seg.name)
		}
		if v == "" {
			continue
		}
		key := seg.name
		if seg.catchAll {
			key = SplatKey
		}
		ps = append(ps, Param{Key: key, Value: v})
	}
	return ps
}
