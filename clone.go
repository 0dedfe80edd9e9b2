package batchloader

import (
	"github.com/goccy/go-reflect"
)

// ValueCloner controls how Prime copies values into the cache.
type ValueCloner[V any] interface {
	CloneValue(V) V
}

// ValueClonerFunc is a function type that implements the ValueCloner interface.
type ValueClonerFunc[V any] func(V) V

// CloneValue calls the function.
func (f ValueClonerFunc[V]) CloneValue(v V) V {
	return f(v)
}

// NopValueCloner returns values as-is, relying on Go's value-copy semantics.
// Sufficient whenever V holds no shared reference data.
type NopValueCloner[V any] struct{}

// CloneValue returns the input value.
func (NopValueCloner[V]) CloneValue(v V) V {
	return v
}

// DefaultValueCloner returns the cloner used when WithCloner is not given:
// a Clone or DeepCopy method on V when one exists, otherwise NopValueCloner.
func DefaultValueCloner[V any]() ValueCloner[V] {
	var zero V
	var v any = zero

	type cloner interface {
		Clone() V
	}
	type deepCopier interface {
		DeepCopy() V
	}

	switch v.(type) {
	case cloner:
		return ValueClonerFunc[V](func(v V) V {
			var a any = v
			return a.(cloner).Clone()
		})

	case deepCopier:
		return ValueClonerFunc[V](func(v V) V {
			var a any = v
			return a.(deepCopier).DeepCopy()
		})

	default:
		return NopValueCloner[V]{}
	}
}

// ReflectValueCloner deep-copies pointer, slice, map and struct values
// through reflection. Use it when V carries shared reference data and has no
// Clone or DeepCopy method. Unexported struct fields are skipped.
func ReflectValueCloner[V any]() ValueCloner[V] {
	return ValueClonerFunc[V](func(v V) V {
		return deepCopyValue(reflect.ValueOf(v)).Interface().(V)
	})
}

func deepCopyValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopyValue(v.Elem()))
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopyValue(v.Index(i)))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		for _, k := range v.MapKeys() {
			out.SetMapIndex(k, deepCopyValue(v.MapIndex(k)))
		}
		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !out.Field(i).CanSet() {
				continue
			}
			out.Field(i).Set(deepCopyValue(v.Field(i)))
		}
		return out

	default:
		return v
	}
}
