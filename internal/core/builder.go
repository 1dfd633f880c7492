// Package core provides the internal implementation of deepmock's path-proxy engine:
// path resolution, the mock store, proxy nodes, and the builder that ties them
// together.
package core

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
)

// Builder owns a mock store and the factory used to fill it. With exposes the
// configuration surface and Build materializes the store as a proxy tree. Both
// share the same store.
type Builder struct {
	store   *Store
	factory Factory
	logger  *slog.Logger
	strict  TestReporter
}

// Factory produces a fresh mock on demand.
type Factory func() Mock

// Mock is the mock-function capability: invocable with positional arguments,
// returning its configured results and recording the call. Its exported methods
// are its configuration operations.
type Mock interface {
	Call(args ...any) []any
}

// Option configures a Builder.
type Option func(*Builder)

// TestReporter is the minimal interface deepmock needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// VerbLister restricts the configuration operations a mock exposes. Mocks that do
// not implement it expose their whole exported method set.
type VerbLister interface {
	Verbs() []string
}

// NewBuilder creates a builder with an empty store.
func NewBuilder(factory Factory, opts ...Option) *Builder {
	builder := &Builder{
		store:   NewStore(),
		factory: factory,
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder
}

// Strict reports configuration calls naming an operation the mock does not have,
// and arguments an operation cannot take, through reporter instead of ignoring or
// panicking.
func Strict(reporter TestReporter) Option {
	return func(b *Builder) {
		b.strict = reporter
	}
}

// WithLogger sets the logger for debug records about lazy creation and configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// As stores value verbatim at path, through the configuration surface.
func (b *Builder) As(path string, value any) *Builder {
	return b.Configure(path, AsSegment, value)
}

// Build returns a root whose trees resolve every call against the store, lazily
// creating a mock for any path that has none.
func (b *Builder) Build() *Root {
	return NewRoot(func(name string) any {
		return NewNode(b.resolve, []string{name}, b.store)
	}, b.store)
}

// Configure drives the configuration surface along path and calls verb with args.
// It is the method form of With().Get(p1)...Get(pn).Get(verb).Call(args...).
func (b *Builder) Configure(path string, verb string, args ...any) *Builder {
	node, ok := Walk(b.With(), append(SplitPath(path), verb)...).(*Node)
	if !ok {
		return b
	}

	node.Call(args...)

	return b
}

// Mock returns the mock stored at exactly path.
func (b *Builder) Mock(path string) (Mock, bool) {
	value, ok := b.store.Get(path)
	if !ok {
		return nil, false
	}

	mock, ok := value.(Mock)

	return mock, ok
}

// Store returns the builder's store.
func (b *Builder) Store() *Store {
	return b.store
}

// With returns the configuration surface. A terminal call on any path below it
// configures the mock at the parent path and returns the builder.
func (b *Builder) With() *Root {
	return NewRoot(func(name string) any {
		return NewNode(b.configure, []string{name}, nil)
	}, nil)
}

// configure interprets a terminal call on the configuration surface. The last
// segment is the operation and the rest of the path is the key it applies to.
func (b *Builder) configure(inv Invocation) any {
	if len(inv.Path) == 0 {
		return b
	}

	key := JoinPath(inv.Path[:len(inv.Path)-1])
	verb := inv.Path[len(inv.Path)-1]

	if verb == AsSegment {
		var value any
		if len(inv.Args) > 0 {
			value = inv.Args[0]
		}

		b.store.Set(key, value)
		b.logger.Debug("literal override", "path", key)

		return b
	}

	mock := b.factory()

	operation, ok := verbOf(mock, verb)
	if !ok {
		b.unknownVerb(key, verb, mock)

		return b
	}

	in, err := adaptArgs(operation.Type(), inv.Args)
	if err != nil {
		b.fail(fmt.Errorf("configure %s.%s: %w", key, verb, err))

		return b
	}

	b.store.Set(key, mock)
	operation.Call(in)
	b.logger.Debug("configured mock", "path", key, "verb", verb)

	return b
}

// fail reports err through the strict reporter, or panics with it.
func (b *Builder) fail(err error) {
	if b.strict == nil {
		panic(err)
	}

	b.strict.Helper()
	b.strict.Fatalf("%v", err)
}

// resolve answers a terminal call on a built tree: the exact entry, then the
// first prefix entry, then a freshly created and stored mock.
func (b *Builder) resolve(inv Invocation) any {
	key := inv.Key()

	if value, ok := b.store.Get(key); ok {
		return Invoke(value, inv.Args...)
	}

	if value, ok := b.store.Lookup(key); ok && value != nil {
		return Invoke(value, inv.Args...)
	}

	value := b.store.GetOrCreate(key, func() any {
		b.logger.Debug("created mock", "path", key)

		return b.factory()
	})

	return Invoke(value, inv.Args...)
}

func (b *Builder) unknownVerb(key, verb string, mock Mock) {
	if b.strict != nil {
		b.strict.Helper()
		b.strict.Fatalf("configure %s: %T has no configuration operation %q", key, mock, verb)

		return
	}

	b.logger.Debug("ignored unknown configuration operation", "path", key, "verb", verb)
}

// verbOf finds the configuration operation named verb on mock.
func verbOf(mock Mock, verb string) (reflect.Value, bool) {
	if mock == nil {
		return reflect.Value{}, false
	}

	if lister, ok := mock.(VerbLister); ok && !slices.Contains(lister.Verbs(), verb) {
		return reflect.Value{}, false
	}

	operation := reflect.ValueOf(mock).MethodByName(verb)

	return operation, operation.IsValid()
}
