package dtype

import (
	"reflect"
	"sync"
)

// Class is a semantic type tag used by DType valid-class sets. A class either
// names a family of Go kinds (the built-ins below) or wraps a concrete Go type
// registered through ClassOf.
type Class struct {
	name  string
	rt    reflect.Type
	check func(v any) bool
}

// Built-in classes covering the Go scalar families. An Integer port accepts
// any Go integer kind, signed or unsigned, so nodes do not have to care
// whether a producer emitted int or int64.
var (
	Int = Class{name: "int", check: func(v any) bool {
		switch reflect.ValueOf(v).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		}
		return false
	}}
	Float = Class{name: "float", check: func(v any) bool {
		switch reflect.ValueOf(v).Kind() {
		case reflect.Float32, reflect.Float64:
			return true
		}
		return false
	}}
	Bool = Class{name: "bool", check: func(v any) bool {
		return reflect.ValueOf(v).Kind() == reflect.Bool
	}}
	String = Class{name: "string", check: func(v any) bool {
		return reflect.ValueOf(v).Kind() == reflect.String
	}}
	Slice = Class{name: "slice", check: func(v any) bool {
		switch reflect.ValueOf(v).Kind() {
		case reflect.Slice, reflect.Array:
			return true
		}
		return false
	}}
)

var classTable = struct {
	sync.RWMutex
	byName map[string]Class
}{byName: map[string]Class{
	Int.name:    Int,
	Float.name:  Float,
	Bool.name:   Bool,
	String.name: String,
	Slice.name:  Slice,
}}

// ClassOf registers and returns a class for the concrete Go type T. Values
// are members when their dynamic type is assignable to T; when T is an
// interface this gives the usual implements relation. Registration makes the
// class resolvable by name when dtype state is deserialized.
func ClassOf[T any](name string) Class {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	c := Class{name: name, rt: rt}
	classTable.Lock()
	classTable.byName[name] = c
	classTable.Unlock()
	return c
}

// ClassByName resolves a previously known class, built-in or registered.
func ClassByName(name string) (Class, error) {
	classTable.RLock()
	defer classTable.RUnlock()
	c, ok := classTable.byName[name]
	if !ok {
		return Class{}, ErrUnknownClass
	}
	return c, nil
}

// Name returns the class tag used in serialized dtype state.
func (c Class) Name() string { return c.name }

// Instance reports whether v is a member of the class.
func (c Class) Instance(v any) bool {
	if v == nil {
		return false
	}
	if c.check != nil {
		return c.check(v)
	}
	t := reflect.TypeOf(v)
	if c.rt.Kind() == reflect.Interface {
		return t.Implements(c.rt)
	}
	return t.AssignableTo(c.rt)
}

// Subclass reports whether c is at least as specific as ref: every member of
// c is a member of ref. Family classes only match themselves.
func (c Class) Subclass(ref Class) bool {
	if c.name == ref.name {
		return true
	}
	if c.rt == nil || ref.rt == nil {
		return false
	}
	if ref.rt.Kind() == reflect.Interface {
		return c.rt.Implements(ref.rt)
	}
	return c.rt.AssignableTo(ref.rt)
}

// classesSubset reports whether every class in other is a subclass of some
// class in ref. An empty ref set means unconstrained and accepts any
// producer classes.
func classesSubset(other, ref []Class) bool {
	if len(ref) == 0 {
		return true
	}
	for _, o := range other {
		found := false
		for _, r := range ref {
			if o.Subclass(r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
