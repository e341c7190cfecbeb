// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package usertest provides test doubles for user.Repository.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/holomush/accounts/internal/user"
)

// MemoryRepository is an in-memory user.Repository with the same unique
// constraints as the PostgreSQL schema. It returns copies so callers cannot
// mutate stored records.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]*user.User)}
}

// Create implements user.Repository.
func (r *MemoryRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(0, u); err != nil {
		return err
	}
	r.nextID++
	now := time.Now().UTC()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = clone(u)
	return nil
}

// GetByID implements user.Repository.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return clone(u), nil
}

// GetByEmail implements user.Repository.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Email == email })
}

// GetByUsername implements user.Repository.
func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Username == username })
}

// List implements user.Repository.
func (r *MemoryRepository) List(_ context.Context) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update implements user.Repository.
func (r *MemoryRepository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	if err := r.checkUnique(u.ID, u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = clone(u)
	return nil
}

// Delete implements user.Repository.
func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *MemoryRepository) find(match func(*user.User) bool) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, user.ErrNotFound
}

// checkUnique must be called with mu held.
func (r *MemoryRepository) checkUnique(selfID int64, u *user.User) error {
	for id, other := range r.users {
		if id == selfID {
			continue
		}
		if other.Email == u.Email {
			return user.ErrDuplicateEmail
		}
		if other.Username == u.Username {
			return user.ErrDuplicateUsername
		}
	}
	return nil
}

func clone(u *user.User) *user.User {
	c := *u
	if u.PasswordHash != nil {
		hash := *u.PasswordHash
		c.PasswordHash = &hash
	}
	if u.Website != nil {
		website := *u.Website
		c.Website = &website
	}
	return &c
}

var _ user.Repository = (*MemoryRepository)(nil)
