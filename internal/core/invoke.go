package core

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Exported variables.
var (
	// ErrArgCount is the panic value when a function gets the wrong number of arguments.
	ErrArgCount = errors.New("wrong argument count")
	// ErrArgType is the panic value when an argument cannot be passed as the parameter type.
	ErrArgType = errors.New("wrong argument type")
	// ErrResultType is the panic value when a configured result does not fit the result type.
	ErrResultType = errors.New("wrong result type")
)

// Invoke calls a resolved value with args and returns its results. Mocks and nodes
// are called, Go functions are called through reflection, and any other value is
// returned as the single result. nil has no results.
func Invoke(value any, args ...any) []any {
	switch callee := value.(type) {
	case nil:
		return nil
	case Mock:
		return callee.Call(args...)
	case *Node:
		return Results(callee.Call(args...))
	case func(...any) []any:
		return callee(args...)
	}

	fn := reflect.ValueOf(value)
	if fn.Kind() != reflect.Func {
		return []any{value}
	}

	if fn.IsNil() {
		return nil
	}

	in, err := adaptArgs(fn.Type(), args)
	if err != nil {
		panic(err)
	}

	return interfaces(fn.Call(in))
}

// Result returns out[index] as a T, or T's zero value when the result is absent or
// nil. A result that cannot be converted to T panics with ErrResultType.
func Result[T any](out []any, index int) T {
	var zero T

	if index < 0 || index >= len(out) || out[index] == nil {
		return zero
	}

	if value, ok := out[index].(T); ok {
		return value
	}

	converted, err := adaptValue(out[index], reflect.TypeFor[T]())
	if err != nil {
		panic(fmt.Errorf("%w: result %d: %w", ErrResultType, index, err))
	}

	//nolint:forcetypeassert // adaptValue returns a value of type T
	return converted.Interface().(T)
}

// Results normalizes a callback result into a result list.
func Results(v any) []any {
	switch out := v.(type) {
	case nil:
		return nil
	case []any:
		return out
	default:
		return []any{out}
	}
}

// adaptArgs converts args into call arguments for a function of type fnType. A
// variadic function receives its trailing arguments individually.
func adaptArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn()
	fixed := numIn

	if fnType.IsVariadic() {
		fixed = numIn - 1
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: %s wants at least %d, got %d", ErrArgCount, fnType, fixed, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("%w: %s wants %d, got %d", ErrArgCount, fnType, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))

	for i, arg := range args {
		paramType := variadicElem(fnType, i, fixed)

		value, err := adaptValue(arg, paramType)
		if err != nil {
			return nil, fmt.Errorf("%w: %s argument %d: %w", ErrArgType, fnType, i, err)
		}

		in[i] = value
	}

	return in, nil
}

// adaptValue returns value as a reflect.Value of type target. Untyped nil becomes
// the zero value; numeric values convert between numeric kinds when the value fits.
func adaptValue(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}

	rv := reflect.ValueOf(value)

	if rv.Type().AssignableTo(target) {
		if rv.Type() == target {
			return rv, nil
		}

		converted := reflect.New(target).Elem()
		converted.Set(rv)

		return converted, nil
	}

	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		return convertNumber(rv, target)
	}

	if rv.Kind() == target.Kind() && rv.Type().ConvertibleTo(target) {
		return rv.Convert(target), nil
	}

	//nolint:err113 // detail wrapped by callers
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", value, target)
}

// convertNumber converts rv to the numeric type target, rejecting conversions that
// would overflow, change sign, or drop a fractional part.
func convertNumber(rv reflect.Value, target reflect.Type) (reflect.Value, error) {
	converted := reflect.New(target).Elem()

	var fits bool

	switch {
	case isInt(rv.Kind()):
		fits = setFromInt(converted, rv.Int())
	case isUint(rv.Kind()):
		fits = setFromUint(converted, rv.Uint())
	default:
		fits = setFromFloat(converted, rv.Float())
	}

	if !fits {
		//nolint:err113 // detail wrapped by callers
		return reflect.Value{}, fmt.Errorf("%v (%s) does not fit in %s", rv.Interface(), rv.Type(), target)
	}

	return converted, nil
}

// interfaces unwraps reflected results.
func interfaces(values []reflect.Value) []any {
	if len(values) == 0 {
		return nil
	}

	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value.Interface()
	}

	return out
}

func isNumeric(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive // numeric kinds only
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isInt(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive // signed integer kinds only
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUint(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive // unsigned integer kinds only
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// resultValues converts a result list into the results of a function of type fnType.
// Missing and nil results become zero values.
func resultValues(fnType reflect.Type, out []any) []reflect.Value {
	results := make([]reflect.Value, fnType.NumOut())

	for i := range results {
		var value any
		if i < len(out) {
			value = out[i]
		}

		adapted, err := adaptValue(value, fnType.Out(i))
		if err != nil {
			panic(fmt.Errorf("%w: %s result %d: %w", ErrResultType, fnType, i, err))
		}

		results[i] = adapted
	}

	return results
}

func setFromFloat(dst reflect.Value, value float64) bool {
	switch {
	case isInt(dst.Kind()):
		if value != math.Trunc(value) || value < math.MinInt64 || value >= math.MaxInt64 {
			return false
		}

		return setFromInt(dst, int64(value))
	case isUint(dst.Kind()):
		if value != math.Trunc(value) || value < 0 || value >= math.MaxUint64 {
			return false
		}

		return setFromUint(dst, uint64(value))
	default:
		if dst.OverflowFloat(value) {
			return false
		}

		dst.SetFloat(value)

		return true
	}
}

func setFromInt(dst reflect.Value, value int64) bool {
	switch {
	case isInt(dst.Kind()):
		if dst.OverflowInt(value) {
			return false
		}

		dst.SetInt(value)
	case isUint(dst.Kind()):
		if value < 0 || dst.OverflowUint(uint64(value)) {
			return false
		}

		dst.SetUint(uint64(value))
	default:
		dst.SetFloat(float64(value))
	}

	return true
}

func setFromUint(dst reflect.Value, value uint64) bool {
	switch {
	case isInt(dst.Kind()):
		if value > math.MaxInt64 || dst.OverflowInt(int64(value)) {
			return false
		}

		dst.SetInt(int64(value))
	case isUint(dst.Kind()):
		if dst.OverflowUint(value) {
			return false
		}

		dst.SetUint(value)
	default:
		dst.SetFloat(float64(value))
	}

	return true
}

// variadicElem returns the parameter type for argument i.
func variadicElem(fnType reflect.Type, i, fixed int) reflect.Type {
	if fnType.IsVariadic() && i >= fixed {
		return fnType.In(fnType.NumIn() - 1).Elem()
	}

	return fnType.In(i)
}
