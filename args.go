package routemodules

import (
	"fmt"
	"reflect"
)

// argRegistry holds the values passed to MountModules, keyed by their type.
// Module methods ask for them by declaring a parameter of that type.
type argRegistry map[reflect.Type]reflect.Value

func (args argRegistry) addArg(v any) error {
	if v == nil {
		return nil
	}
	typ := reflect.TypeOf(v)
	if _, ok := args[typ]; ok {
		return fmt.Errorf("duplicate type %s in args registry", typ)
	}
	args[typ] = reflect.ValueOf(v)
	return nil
}

// getArg finds a value for a parameter of type want. Besides an exact match it
// accepts a pointer for a value parameter (dereferenced), and any registered
// value assignable to want, which covers interface parameters.
func (args argRegistry) getArg(want reflect.Type) (reflect.Value, bool) {
	if v, ok := args[want]; ok {
		return v, true
	}
	if want.Kind() != reflect.Ptr {
		if v, ok := args[reflect.PointerTo(want)]; ok && !v.IsNil() {
			return v.Elem(), true
		}
	}
	for t, v := range args {
		if t.AssignableTo(want) {
			return v, true
		}
	}
	return reflect.Value{}, false
}
