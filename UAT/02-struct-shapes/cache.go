// Package cache shows deep mocks of struct shapes: structs of function fields,
// nested to any depth, materialized by reflection without generated code.
package cache

import (
	"time"
)

// Clock reports the current time.
type Clock struct {
	Now func() time.Time
}

// Store is a byte store.
type Store struct {
	Get func(key string) ([]byte, bool)
	Put func(key string, value []byte, ttl time.Duration) error
}

// Deps are the collaborators of Fetch.
type Deps struct {
	Clock   Clock
	Backend *Store `deepmock:"store"`
	Logf    func(format string, args ...any)
	TTL     time.Duration
}

// Fetch returns the cached value for key, computing and storing it on a miss.
func Fetch(deps Deps, key string, compute func() []byte) ([]byte, error) {
	if value, ok := deps.Backend.Get(key); ok {
		deps.Logf("hit %s", key)

		return value, nil
	}

	value := compute()
	start := deps.Clock.Now()

	err := deps.Backend.Put(key, value, deps.TTL)
	if err != nil {
		return nil, err
	}

	deps.Logf("stored %s at %s", key, start.Format(time.RFC3339))

	return value, nil
}
