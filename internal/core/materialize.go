package core

import (
	"errors"
	"fmt"
	"reflect"
)

// TagName is the struct tag that renames a field's path segment. A value of "-"
// leaves the field out of the tree.
const TagName = "deepmock"

// ErrUnsupportedShape is returned when a type cannot be materialized.
var ErrUnsupportedShape = errors.New("unsupported shape")

// Materialize synthesizes a value of type typ whose members resolve through root.
// Structs and pointers to structs are filled field by field; interfaces need a
// registered constructor.
func Materialize(root Getter, typ reflect.Type) (reflect.Value, error) {
	switch {
	case typ.Kind() == reflect.Interface:
		value, ok := construct(root, typ)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: no constructor registered for %s", ErrUnsupportedShape, typ)
		}

		return value, nil
	case typ.Kind() == reflect.Struct:
		return fillStruct(root, typ, map[reflect.Type]bool{}), nil
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct:
		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(fillStruct(root, typ.Elem(), map[reflect.Type]bool{}))

		return ptr, nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedShape, typ)
	}
}

// construct runs the constructor registered for typ.
func construct(node Getter, typ reflect.Type) (reflect.Value, bool) {
	ctor, ok := ConstructorFor(typ)
	if !ok {
		return reflect.Value{}, false
	}

	value := reflect.ValueOf(ctor(node))
	if !value.IsValid() || !value.Type().AssignableTo(typ) {
		return reflect.Value{}, false
	}

	return value, true
}

// fillStruct builds a struct of type typ whose fields resolve below parent. seen
// holds the struct types currently being filled so recursive types terminate.
func fillStruct(parent Getter, typ reflect.Type, seen map[reflect.Type]bool) reflect.Value {
	out := reflect.New(typ).Elem()

	seen[typ] = true
	defer delete(seen, typ)

	for i := range typ.NumField() {
		field := typ.Field(i)

		name, ok := segmentName(field)
		if !ok {
			continue
		}

		value := materializeField(parent, name, field.Type, seen)
		if value.IsValid() {
			out.Field(i).Set(value)
		}
	}

	return out
}

// makeFunc returns a function of type typ that resolves parent.Get(name) on every
// call and invokes whatever it finds.
func makeFunc(parent Getter, name string, typ reflect.Type) reflect.Value {
	return reflect.MakeFunc(typ, func(in []reflect.Value) []reflect.Value {
		args := make([]any, 0, len(in))

		for i, arg := range in {
			if typ.IsVariadic() && i == len(in)-1 {
				args = append(args, spread(arg.Interface())...)

				continue
			}

			args = append(args, arg.Interface())
		}

		return resultValues(typ, Invoke(parent.Get(name), args...))
	})
}

// materializeField returns the value for one field, or an invalid value to leave
// the zero value in place.
func materializeField(parent Getter, name string, typ reflect.Type, seen map[reflect.Type]bool) reflect.Value {
	if typ.Kind() == reflect.Func {
		return makeFunc(parent, name, typ)
	}

	child := parent.Get(name)

	getter, isGetter := child.(Getter)
	if !isGetter || isLiteral(child) {
		return literal(child, typ)
	}

	switch {
	case typ.Kind() == reflect.Struct && !seen[typ]:
		return fillStruct(getter, typ, seen)
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct && !seen[typ.Elem()]:
		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(fillStruct(getter, typ.Elem(), seen))

		return ptr
	case typ.Kind() == reflect.Interface:
		value, ok := construct(getter, typ)
		if !ok {
			return reflect.Value{}
		}

		return value
	default:
		return reflect.Value{}
	}
}

// isLiteral reports whether a getter found in a tree is a configured value rather
// than a proxy node.
func isLiteral(value any) bool {
	switch value.(type) {
	case *Node, *Root:
		return false
	default:
		return true
	}
}

// literal returns a configured value when it fits typ.
func literal(value any, typ reflect.Type) reflect.Value {
	if value == nil {
		return reflect.Value{}
	}

	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(typ) {
		return reflect.Value{}
	}

	return rv
}

// segmentName returns the path segment for a struct field.
func segmentName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}

	tag, ok := field.Tag.Lookup(TagName)

	switch {
	case tag == "-":
		return "", false
	case ok && tag != "":
		return tag, true
	default:
		return field.Name, true
	}
}
