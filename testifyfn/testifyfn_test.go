package testifyfn_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/toejough/deepmock/internal/core"
	"github.com/toejough/deepmock/testifyfn"
)

func TestFunc_ExpectMatchesArguments(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fn := testifyfn.New()
	fn.Test(t)
	fn.Expect([]any{mock.Anything, 2}, "matched")
	fn.Return("default")

	g.Expect(fn.Call("x", 2)).To(Equal([]any{"matched"}))
	g.Expect(fn.Call("x", 3)).To(Equal([]any{"default"}))
	g.Expect(fn.Call("y", 2)).To(Equal([]any{"matched"}))

	fn.AssertNumberOfCalls(t, testifyfn.Method, 3)
	fn.AssertExpectations(t)
}

func TestFunc_PanicAndRun(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var seen int

	fn := testifyfn.New()
	fn.Run(func(args mock.Arguments) { seen = args.Int(0) })
	fn.Call(7)

	g.Expect(seen).To(Equal(7))

	fn.Panic("boom")
	g.Expect(func() { fn.Call(8) }).To(PanicWith("boom"))
}

func TestFunc_UnconfiguredCallsAreRecorded(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fn := testifyfn.New()
	fn.Test(t)

	g.Expect(fn.Call(1, "a")).To(BeNil())
	g.Expect(fn.Call(1, "a")).To(BeNil())

	fn.AssertCalled(t, testifyfn.Method, 1, "a")
	fn.AssertNotCalled(t, testifyfn.Method, 2, "a")
	fn.AssertNumberOfCalls(t, testifyfn.Method, 2)
}

func TestFactory_DrivesDeepMocks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	builder := core.NewBuilder(testifyfn.Factory(t)).
		Configure("db.users.find", "Expect", []any{42}, "ana", nil).
		Configure("db.users.count", "Return", 3).
		Configure("db.users.find", "On", "ignored")

	built := builder.Build()

	g.Expect(core.Invoke(core.Walk(built, "db", "users", "find"), 42)).To(Equal([]any{"ana", nil}))
	g.Expect(core.Invoke(core.Walk(built, "db", "users", "count"))).To(Equal([]any{3}))

	core.Invoke(core.Walk(built, "db", "users", "list"), "page", 1)

	find, ok := builder.Mock("db.users.find")
	g.Expect(ok).To(BeTrue())
	testifyfn.Of(find).AssertExpectations(t)

	list, ok := builder.Mock("db.users.list")
	g.Expect(ok).To(BeTrue())
	testifyfn.Of(list).AssertCalled(t, testifyfn.Method, "page", 1)

	g.Expect(testifyfn.Of("not a mock")).To(BeNil())
}
