package services

import (
	"context"
	"fmt"
)

// Services is the root of a nested service shape. Each accessor returns another
// service, so a conventional mock would need a stub per level.
type Services interface {
	Users() UserService
	Orders() OrderService
	Health(ctx context.Context) error
}

// UserService looks up and tags users.
type UserService interface {
	Get(ctx context.Context, id int) (*User, error)
	Tag(id int, tags ...string) int
}

// OrderService cancels orders and exposes their audit log.
type OrderService interface {
	Cancel(id int)
	Audit() AuditLog
}

// AuditLog records events.
type AuditLog interface {
	Record(event string) bool
}

// User is a plain data type passed through the services.
type User struct {
	ID   int
	Name string
}

// Rename looks up a user, renames it, and records the change.
func Rename(ctx context.Context, svc Services, id int, name string) (*User, error) {
	err := svc.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("rename %d: unhealthy: %w", id, err)
	}

	user, err := svc.Users().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rename %d: %w", id, err)
	}

	renamed := *user
	renamed.Name = name

	svc.Users().Tag(id, "renamed", name)
	svc.Orders().Audit().Record("renamed " + name)

	return &renamed, nil
}
