package core_test

import (
	"fmt"
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/deepmock/internal/core"
)

// TestStore_GetOrCreateCreatesOnce verifies concurrent first use creates a single entry.
func TestStore_GetOrCreateCreatesOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := core.NewStore()

	var (
		created int
		mu      sync.Mutex
		wg      sync.WaitGroup
	)

	results := make([]any, 20)

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i] = store.GetOrCreate("a.b", func() any {
				mu.Lock()
				defer mu.Unlock()

				created++

				return &struct{ n int }{n: created}
			})
		}()
	}

	wg.Wait()

	g.Expect(created).To(Equal(1))

	for _, result := range results {
		g.Expect(result).To(BeIdenticalTo(results[0]))
	}
}

// TestStore_KeysKeepInsertionOrder verifies overwrites keep the original position.
func TestStore_KeysKeepInsertionOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := core.NewStore()
	store.Set("b", 1)
	store.Set("a", 2)
	store.Set("c", 3)
	store.Set("b", 4)

	g.Expect(store.Keys()).To(Equal([]string{"b", "a", "c"}))
	g.Expect(store.Len()).To(Equal(3))

	value, ok := store.Get("b")
	g.Expect(ok).To(BeTrue())
	g.Expect(value).To(Equal(4))
}

// TestStore_NilIsAnEntry verifies a stored nil is present for exact reads.
func TestStore_NilIsAnEntry(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := core.NewStore()
	store.Set("a", nil)

	value, ok := store.Get("a")
	g.Expect(ok).To(BeTrue())
	g.Expect(value).To(BeNil())

	_, ok = store.Get("b")
	g.Expect(ok).To(BeFalse())
}

// TestStore_ConcurrentSetsAndLookups exercises the lock under the race detector.
func TestStore_ConcurrentSetsAndLookups(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store := core.NewStore()

	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			store.Set(fmt.Sprintf("k%d", i), map[string]any{"v": i})
		}()

		go func() {
			defer wg.Done()

			_, _ = store.Lookup(fmt.Sprintf("k%d.v", i))
		}()
	}

	wg.Wait()

	g.Expect(store.Len()).To(Equal(10))

	value, ok := store.Lookup("k3.v")
	g.Expect(ok).To(BeTrue())
	g.Expect(value).To(Equal(3))
}
