// Package deepmock builds substitutes for nested service shapes whose every method
// is an observable, configurable mock, without stubbing each nested member.
//
// Configuration and materialization share one path-keyed mock store. Configure a
// path, build, and call anything:
//
//	b := deepmock.New[Services]().Configure("Users.Get", "Return", user, nil)
//	svc := b.Build()
//	svc.Users.Get(1)                   // user, nil
//	svc.Orders.Cancel(7)               // never configured: zero values
//	mockfn.At(b, "Orders.Cancel").Called() // true
//
// Struct shapes are synthesized by reflection. Interface shapes need the code
// generated by deepgen.
//
// This is the public API entry point. Implementation lives in internal/core.
package deepmock

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/toejough/deepmock/internal/core"
	"github.com/toejough/deepmock/mockfn"
)

// Reserved path segments.
const (
	ApplySegment = core.ApplySegment
	AsSegment    = core.AsSegment
)

// ErrUnsupportedShape is the panic value of Build when T cannot be materialized.
var ErrUnsupportedShape = core.ErrUnsupportedShape

// Builder is a typed builder for the shape T.
type Builder[T any] struct {
	engine *core.Builder
}

// New creates a builder for T backed by mockfn mocks.
func New[T any](opts ...Option) *Builder[T] {
	return NewWith[T](mockfn.Factory, opts...)
}

// NewWith creates a builder for T backed by mocks from factory.
func NewWith[T any](factory Factory, opts ...Option) *Builder[T] {
	return &Builder[T]{engine: core.NewBuilder(factory, opts...)}
}

// As stores value verbatim at path. Reading path from a built shape yields value.
func (b *Builder[T]) As(path string, value any) *Builder[T] {
	b.engine.As(path, value)

	return b
}

// Build returns a T whose methods resolve through the builder's store. Paths that
// were never configured get a mock on first call. Build panics with
// ErrUnsupportedShape when T is neither a struct shape nor an interface with a
// registered constructor.
func (b *Builder[T]) Build() T {
	value, err := core.Materialize(b.engine.Build(), reflect.TypeFor[T]())
	if err != nil {
		panic(fmt.Errorf("deepmock: build %s: %w", reflect.TypeFor[T](), err))
	}

	//nolint:forcetypeassert // Materialize returns a value of the requested type
	return value.Interface().(T)
}

// Configure calls the configuration operation verb, with args, on a fresh mock
// stored at path. Unknown verbs are ignored unless the builder is Strict.
func (b *Builder[T]) Configure(path string, verb string, args ...any) *Builder[T] {
	b.engine.Configure(path, verb, args...)

	return b
}

// Engine returns the untyped builder.
func (b *Builder[T]) Engine() *Engine {
	return b.engine
}

// Mock returns the mock stored at exactly path.
func (b *Builder[T]) Mock(path string) (Mock, bool) {
	return b.engine.Mock(path)
}

// Root returns the untyped proxy tree over the builder's store.
func (b *Builder[T]) Root() *Root {
	return b.engine.Build()
}

// With returns the untyped configuration surface.
func (b *Builder[T]) With() *Root {
	return b.engine.With()
}

// Call resolves name below parent and invokes it with args. Generated code uses it
// for every non-accessor method.
func Call(parent Getter, name string, args ...any) []any {
	return core.Invoke(parent.Get(name), args...)
}

// Field resolves name below parent as a nested shape. A configured value of type T
// is returned as is; a proxy node is wrapped with wrap. A configured mock or
// function is called, and its first result is used the same way. Generated code
// uses it for accessor methods.
func Field[T any](parent Getter, name string, wrap func(Getter) T) T {
	value := parent.Get(name)

	if typed, ok := shape(value, wrap); ok {
		return typed
	}

	if isCallable(value) {
		if out := core.Invoke(value); len(out) > 0 {
			if typed, ok := shape(out[0], wrap); ok {
				return typed
			}
		}
	}

	var zero T

	return zero
}

// Invoke calls a resolved value with args and returns its results.
func Invoke(value any, args ...any) []any {
	return core.Invoke(value, args...)
}

// Register records ctor as the constructor for the interface type T, so Build and
// nested struct fields can materialize it. Generated code registers every
// interface it implements from an init function.
func Register[T any](ctor func(Getter) T) {
	core.RegisterConstructor(reflect.TypeFor[T](), func(node core.Getter) any {
		return ctor(node)
	})
}

// Result returns out[index] as a T, or T's zero value when absent.
func Result[T any](out []any, index int) T {
	return core.Result[T](out, index)
}

// Spread converts a variadic argument slice into positional arguments.
func Spread[T any](values []T) []any {
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = value
	}

	return args
}

// Walk follows names from v through getters and structured values.
func Walk(v any, names ...string) any {
	return core.Walk(v, names...)
}

// Types re-exported from internal/core.

// Engine is the untyped builder.
type Engine = core.Builder

// Factory produces a fresh mock on demand.
type Factory = core.Factory

// Getter exposes named children.
type Getter = core.Getter

// Invocation is a path and the arguments a node was called with.
type Invocation = core.Invocation

// Mock is the mock-function capability.
type Mock = core.Mock

// Node is a proxy node.
type Node = core.Node

// Option configures a builder.
type Option = core.Option

// Root is the top-level proxy.
type Root = core.Root

// Store is the path-keyed mock store.
type Store = core.Store

// TestReporter is the minimal interface deepmock needs from test frameworks.
type TestReporter = core.TestReporter

// VerbLister restricts the configuration operations a mock exposes.
type VerbLister = core.VerbLister

// Functions re-exported from internal/core.

// NewEngine creates an untyped builder.
func NewEngine(factory Factory, opts ...Option) *Engine {
	return core.NewBuilder(factory, opts...)
}

// Strict reports unknown configuration operations through reporter.
func Strict(reporter TestReporter) Option {
	return core.Strict(reporter)
}

// WithLogger sets the builder's debug logger.
func WithLogger(logger *slog.Logger) Option {
	return core.WithLogger(logger)
}

func isCallable(value any) bool {
	if _, ok := value.(Mock); ok {
		return true
	}

	return value != nil && reflect.TypeOf(value).Kind() == reflect.Func
}

// shape returns value as a T, wrapping proxies with wrap.
func shape[T any](value any, wrap func(Getter) T) (T, bool) {
	switch node := value.(type) {
	case *Node, *Root:
		//nolint:forcetypeassert // both proxy kinds are Getters
		return wrap(node.(Getter)), true
	}

	typed, ok := value.(T)

	return typed, ok
}
