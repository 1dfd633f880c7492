// Package testifyfn adapts github.com/stretchr/testify/mock to deepmock's
// mock-function capability. Every call is routed through mock.Mock.MethodCalled
// under the method name "Call", so testify's assertions (AssertCalled,
// AssertNumberOfCalls, AssertExpectations) work on deep mocks.
package testifyfn

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/toejough/deepmock/internal/core"
)

// Method is the method name every call is recorded under.
const Method = "Call"

// Func is a testify-backed mock function. Calls with no matching expectation
// return the results set with Return instead of failing.
type Func struct {
	mock.Mock

	mu       sync.Mutex
	returns  []any
	run      func(mock.Arguments)
	panicMsg *string
}

// Factory returns a deepmock factory producing Funcs that report to t. t may be nil,
// in which case testify panics on failed assertions.
func Factory(t mock.TestingT) core.Factory {
	return func() core.Mock {
		fn := New()
		if t != nil {
			fn.Test(t)
		}

		return fn
	}
}

// New creates a Func with no configured behavior.
func New() *Func {
	return &Func{}
}

// Of returns v as a *Func, or nil when v is not one.
func Of(v any) *Func {
	fn, _ := v.(*Func)

	return fn
}

// Call records the call with testify and returns its results.
func (f *Func) Call(args ...any) []any {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prime(args)

	out := f.MethodCalled(Method, args...)
	if len(out) == 0 {
		return nil
	}

	return []any(out)
}

// Expect registers a testify expectation for calls matching args (values or
// testify argument matchers) returning returns.
func (f *Func) Expect(args []any, returns ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.decorate(f.On(Method, args...)).Return(returns...)
}

// Panic makes calls without a matching expectation panic with msg.
func (f *Func) Panic(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.panicMsg = &msg
}

// Return sets the results of calls without a matching expectation.
func (f *Func) Return(values ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.returns = values
}

// Run sets a function to run on calls without a matching expectation.
func (f *Func) Run(fn func(args mock.Arguments)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.run = fn
}

// Verbs lists the configuration operations. The embedded mock.Mock's methods are
// deliberately not among them.
func (f *Func) Verbs() []string {
	return []string{"Return", "Run", "Panic", "Expect"}
}

// decorate applies the configured run function and panic message to call.
func (f *Func) decorate(call *mock.Call) *mock.Call {
	if f.run != nil {
		call = call.Run(f.run)
	}

	if f.panicMsg != nil {
		call = call.Panic(*f.panicMsg)
	}

	return call
}

// expects reports whether a live expectation matches args.
func (f *Func) expects(args []any) bool {
	for _, call := range f.ExpectedCalls {
		if call.Method != Method || call.Repeatability < 0 {
			continue
		}

		if _, differences := call.Arguments.Diff(args); differences == 0 {
			return true
		}
	}

	return false
}

// prime registers a one-shot expectation for args when none matches, so that
// unconfigured calls return the default results and are still recorded by testify.
// Must be called with f.mu held.
func (f *Func) prime(args []any) {
	if f.expects(args) {
		return
	}

	f.decorate(f.On(Method, args...).Once()).Return(f.returns...)
}
