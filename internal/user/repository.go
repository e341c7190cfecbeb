// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import "context"

// Repository manages user persistence.
//
// Lookups return ErrNotFound on a miss. Create and Update return
// ErrDuplicateEmail or ErrDuplicateUsername when the store rejects a write
// on a unique constraint.
type Repository interface {
	// Create persists a new user and sets its ID and timestamps.
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// List returns all users ordered by ID.
	List(ctx context.Context) ([]*User, error)

	// Update persists every field of an existing user.
	Update(ctx context.Context, u *User) error

	// Delete removes a user by ID.
	Delete(ctx context.Context, id int64) error
}
