package domain

import "context"

// UserRepository defines persistence operations for the credential store.
// Implementations return (nil, nil) from GetByUsername when no row exists.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	TouchLastSeen(ctx context.Context, id int64) error
}
