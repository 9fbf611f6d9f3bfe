package arena

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
)

var pointerFree sync.Map // reflect.Type -> bool

// checkPointerFree rejects types holding Go pointers. Arena memory lives
// outside the garbage-collected heap, so a pointer stored there would not
// keep its referent alive.
func checkPointerFree(t reflect.Type) error {
	free, ok := pointerFree.Load(t)
	if !ok {
		free = !hasPointers(t)
		pointerFree.Store(t, free)
	}
	if !free.(bool) {
		return errors.Wrapf(ErrPointerType, "%s", t)
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
