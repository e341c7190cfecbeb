// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package usertest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/holomush/accounts/internal/user"
)

// MockRepository is a testify mock of user.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a MockRepository that asserts its expectations
// when the test ends.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements user.Repository.
func (m *MockRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// GetByID implements user.Repository.
func (m *MockRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

// GetByEmail implements user.Repository.
func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

// GetByUsername implements user.Repository.
func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	return userArg(args, 0), args.Error(1)
}

// List implements user.Repository.
func (m *MockRepository) List(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	var users []*user.User
	if v := args.Get(0); v != nil {
		users = v.([]*user.User)
	}
	return users, args.Error(1)
}

// Update implements user.Repository.
func (m *MockRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// Delete implements user.Repository.
func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func userArg(args mock.Arguments, i int) *user.User {
	if v := args.Get(i); v != nil {
		return v.(*user.User)
	}
	return nil
}

var _ user.Repository = (*MockRepository)(nil)
