// Package mockfn provides deepmock's default mock-function capability: a function
// value that returns configured results, records every call, and exposes its
// configuration operations (Return, ReturnOnce, Implement, Panic, Reset, Clear)
// as methods the builder can invoke by name.
package mockfn

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/toejough/deepmock/internal/core"
	"github.com/toejough/deepmock/match"
)

// Exported variables.
var (
	// ErrNotFunc is the panic value when Implement receives something that is not a function.
	ErrNotFunc = errors.New("implementation is not a function")
)

// Call is one recorded invocation.
type Call struct {
	Args    []any
	Results []any
}

// Func is a configurable, observable mock function. The zero value returns no
// results and records calls.
type Func struct {
	mu        sync.Mutex
	calls     []Call
	returns   []any
	once      [][]any
	impl      any
	panicking bool
	panicWith any
}

// Source is anything that can look up the mock stored at a path, such as a
// deepmock builder.
type Source interface {
	Mock(path string) (core.Mock, bool)
}

// At returns the *Func stored at path in src, or nil.
func At(src Source, path string) *Func {
	mock, ok := src.Mock(path)
	if !ok {
		return nil
	}

	return Of(mock)
}

// Factory produces a new Func as a core.Mock. It is the default deepmock factory.
func Factory() core.Mock {
	return New()
}

// New creates a Func with no configured behavior.
func New() *Func {
	return &Func{}
}

// Of returns v as a *Func, or nil when v is not one. Use it on values read from a
// built tree after the path has been configured or called.
func Of(v any) *Func {
	fn, _ := v.(*Func)

	return fn
}

// Call records the call and produces results: queued one-shot results first, then
// the implementation, then the panic value, then the configured results.
func (f *Func) Call(args ...any) []any {
	f.mu.Lock()

	index := len(f.calls)
	f.calls = append(f.calls, Call{Args: cloneValues(args)})

	if len(f.once) > 0 {
		results := f.once[0]
		f.once = f.once[1:]
		f.calls[index].Results = results
		f.mu.Unlock()

		return results
	}

	impl, panicking, panicWith, returns := f.impl, f.panicking, f.panicWith, f.returns
	f.mu.Unlock()

	var results []any

	switch {
	case impl != nil:
		results = core.Invoke(impl, args...)
	case panicking:
		panic(panicWith)
	default:
		results = returns
	}

	f.mu.Lock()
	f.calls[index].Results = results
	f.mu.Unlock()

	return results
}

// CallCount returns the number of recorded calls.
func (f *Func) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

// Called reports whether the function was called at least once.
func (f *Func) Called() bool {
	return f.CallCount() > 0
}

// CalledWith reports whether any recorded call matches expected, position by
// position. Expected values may be plain values or matchers, including gomega's.
func (f *Func) CalledWith(expected ...any) bool {
	for _, call := range f.Calls() {
		if ok, _ := match.MatchValues(call.Args, expected); ok {
			return true
		}
	}

	return false
}

// Calls returns a copy of the recorded calls in order.
func (f *Func) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)

	return calls
}

// Clear forgets the recorded calls and keeps the configured behavior.
func (f *Func) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = nil
}

// Implement makes every call run fn. fn may be a func(...any) []any or any Go
// function whose parameters fit the call arguments.
func (f *Func) Implement(fn any) {
	if fn != nil && reflect.TypeOf(fn).Kind() != reflect.Func {
		panic(fmt.Errorf("%w: %T", ErrNotFunc, fn))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.impl = fn
}

// LastCall returns the most recent call.
func (f *Func) LastCall() (Call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.calls) == 0 {
		return Call{}, false
	}

	return f.calls[len(f.calls)-1], true
}

// Panic makes every call panic with value.
func (f *Func) Panic(value any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.panicking = true
	f.panicWith = value
}

// Reset forgets the recorded calls and all configured behavior.
func (f *Func) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = nil
	f.returns = nil
	f.once = nil
	f.impl = nil
	f.panicking = false
	f.panicWith = nil
}

// Return sets the results of every call that has no other behavior queued.
func (f *Func) Return(values ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.returns = cloneValues(values)
}

// ReturnOnce queues results for the next call only. Queued results are used in
// order before any other behavior.
func (f *Func) ReturnOnce(values ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.once = append(f.once, cloneValues(values))
}

// String implements fmt.Stringer.
func (f *Func) String() string {
	return fmt.Sprintf("mockfn.Func(%d calls)", f.CallCount())
}

// Verbs lists the configuration operations.
func (f *Func) Verbs() []string {
	return []string{"Return", "ReturnOnce", "Implement", "Panic", "Reset", "Clear"}
}

func cloneValues(values []any) []any {
	if values == nil {
		return nil
	}

	cloned := make([]any, len(values))
	copy(cloned, values)

	return cloned
}
