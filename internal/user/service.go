// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Service is the user directory. It owns the uniqueness rules for email
// and username; the store's unique constraints back them up when two
// writers race past the pre-checks.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new Service. A nil logger uses slog.Default().
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CreateUser stores a new user. in.Password, when set, must already be a hash.
func (s *Service) CreateUser(ctx context.Context, in CreateInput) (*User, error) {
	existing, err := s.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errEmailExists(in.Email)
	}

	if in.Username != "" {
		existing, err = s.FindByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errUsernameExists(in.Username)
		}
	}

	u := newUser(in)
	if err := s.repo.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, errEmailExists(in.Email)
		case errors.Is(err, ErrDuplicateUsername):
			return nil, errUsernameExists(in.Username)
		}
		return nil, oops.Code(CodeStoreFailed).With("operation", "create user").Wrap(err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// FindAllUsers returns every user. The result is empty, never nil, when
// the directory has no users.
func (s *Service) FindAllUsers(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, oops.Code(CodeStoreFailed).With("operation", "list users").Wrap(err)
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

// FindUserByID returns the user with id or a USER_NOT_FOUND error.
func (s *Service) FindUserByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFound(id)
		}
		return nil, oops.Code(CodeStoreFailed).With("operation", "get user").With("id", id).Wrap(err)
	}
	return u, nil
}

// UpdateUser applies p to the user with id and returns the merged record.
// Email and username are re-checked only when they change. An empty patch
// returns the stored record without writing.
func (s *Service) UpdateUser(ctx context.Context, id int64, p Patch) (*User, error) {
	u, err := s.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return u, nil
	}

	if p.Email != nil && *p.Email != u.Email {
		other, err := s.FindByEmail(ctx, *p.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, errEmailInUse(id, *p.Email)
		}
	}

	if p.Username != nil && *p.Username != u.Username {
		other, err := s.FindByUsername(ctx, *p.Username)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, errUsernameInUse(id, *p.Username)
		}
	}

	p.Apply(u)
	if err := s.repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			// Removed between the read and the write.
			return nil, errNotFound(id)
		case errors.Is(err, ErrDuplicateEmail):
			return nil, errEmailInUse(id, u.Email)
		case errors.Is(err, ErrDuplicateUsername):
			return nil, errUsernameInUse(id, u.Username)
		}
		return nil, oops.Code(CodeStoreFailed).With("operation", "update user").With("id", id).Wrap(err)
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", id)
	return u, nil
}

// RemoveUser deletes the user with id.
func (s *Service) RemoveUser(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errNotFound(id)
		}
		return oops.Code(CodeStoreFailed).With("operation", "delete user").With("id", id).Wrap(err)
	}
	s.logger.InfoContext(ctx, "user removed", "user_id", id)
	return nil
}

// FindByEmail returns the user with email, or nil if there is none.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code(CodeStoreFailed).With("operation", "get user by email").Wrap(err)
	}
	return u, nil
}

// FindByUsername returns the user with username, or nil if there is none.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code(CodeStoreFailed).With("operation", "get user by username").Wrap(err)
	}
	return u, nil
}

func errNotFound(id int64) error {
	return oops.Code(CodeNotFound).With("id", id).Errorf("User with ID \"%d\" not found", id)
}

func errEmailExists(email string) error {
	return oops.Code(CodeEmailExists).With("email", email).Errorf("Email already exists")
}

func errUsernameExists(username string) error {
	return oops.Code(CodeUsernameExists).With("username", username).Errorf("Username already exists")
}

func errEmailInUse(id int64, email string) error {
	return oops.Code(CodeEmailInUse).
		With("id", id).
		With("email", email).
		Errorf("Email already in use by another account.")
}

func errUsernameInUse(id int64, username string) error {
	return oops.Code(CodeUsernameInUse).
		With("id", id).
		With("username", username).
		Errorf("Username already in use by another account.")
}
