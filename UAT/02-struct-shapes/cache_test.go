package cache_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/deepmock"
	cache "github.com/toejough/deepmock/UAT/02-struct-shapes"
	"github.com/toejough/deepmock/match"
	"github.com/toejough/deepmock/mockfn"
)

func TestFetch_Hit(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	builder := deepmock.New[cache.Deps]().Configure("store.Get", "Return", []byte("cached"), true)

	value, err := cache.Fetch(builder.Build(), "k", func() []byte { panic("not computed on a hit") })
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(value).To(Equal([]byte("cached")))

	g.Expect(mockfn.At(builder, "Logf").CalledWith("hit %s", "k")).To(BeTrue())
	g.Expect(mockfn.At(builder, "store.Put")).To(BeNil())
}

func TestFetch_MissStoresWithTTL(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	builder := deepmock.New[cache.Deps]().
		Configure("Clock.Now", "Return", now).
		As("TTL", time.Minute)

	value, err := cache.Fetch(builder.Build(), "k", func() []byte { return []byte("fresh") })
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(value).To(Equal([]byte("fresh")))

	g.Expect(mockfn.At(builder, "store.Put").CalledWith("k", []byte("fresh"), time.Minute)).To(BeTrue())
	g.Expect(mockfn.At(builder, "Logf").CalledWith("stored %s at %s", "k", now.Format(time.RFC3339))).To(BeTrue())
}

func TestFetch_PutFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errFull := errors.New("full")
	builder := deepmock.New[cache.Deps]().Configure("store.Put", "Return", errFull)

	_, err := cache.Fetch(builder.Build(), "k", func() []byte { return nil })
	g.Expect(err).To(MatchError(errFull))
	g.Expect(mockfn.At(builder, "Logf")).To(BeNil())
}

func TestFetch_AnyKeyIsRecorded(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		key := rapid.String().Draw(rt, "key")
		builder := deepmock.New[cache.Deps]()

		_, err := cache.Fetch(builder.Build(), key, func() []byte { return []byte(key) })
		if err != nil {
			rt.Fatalf("unconfigured Put failed: %v", err)
		}

		if !mockfn.At(builder, "store.Get").CalledWith(key) {
			rt.Fatalf("Get was not called with %q", key)
		}

		if !mockfn.At(builder, "store.Put").CalledWith(key, match.BeAny, match.BeAny) {
			rt.Fatalf("Put was not called with %q", key)
		}
	})
}
