// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/user"
	"github.com/holomush/accounts/pkg/errutil"
)

// Directory is the part of the user directory the auth service needs.
// *user.Service implements it.
type Directory interface {
	CreateUser(ctx context.Context, in user.CreateInput) (*user.User, error)
	FindUserByID(ctx context.Context, id int64) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateUser(ctx context.Context, id int64, p user.Patch) (*user.User, error)
}

// dummyPassword is hashed once per Service so unknown emails cost the same
// verification work as known ones.
//
//nolint:gosec // G101: not a credential
const dummyPassword = "timing-equalizer-not-a-password"

// Service provides registration, login and token validation.
type Service struct {
	users  Directory
	hasher PasswordHasher
	tokens TokenIssuer
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new Service. A nil logger uses slog.Default().
func NewService(users Directory, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a user with a hashed password. A password is mandatory.
func (s *Service) Register(ctx context.Context, in user.CreateInput) (*user.Public, error) {
	if in.Password == nil || *in.Password == "" {
		return nil, oops.Code(CodePasswordRequired).Errorf("Password is required for registration.")
	}

	hash, err := s.HashPassword(*in.Password)
	if err != nil {
		return nil, err
	}
	in.Password = &hash

	u, err := s.users.CreateUser(ctx, in)
	if err != nil {
		return nil, oops.With("operation", "register").Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u.Public(), nil
}

// Login checks the credentials and issues an access token. Every mismatch
// fails with the same AUTH_INVALID_CREDENTIALS error.
func (s *Service) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.logger.InfoContext(ctx, "login rejected")
		return nil, errInvalidCredentials()
	}

	s.upgradeHash(ctx, u, password)

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, oops.With("operation", "issue token").With("user_id", u.ID).Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", u.ID)
	return &AccessToken{AccessToken: token}, nil
}

// ValidateUser returns the user when the credentials match and (nil, nil)
// when they do not.
func (s *Service) ValidateUser(ctx context.Context, email, password string) (*user.Public, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil || u == nil {
		return nil, err
	}
	return u.Public(), nil
}

// ValidateSession resolves verified token claims to the current user.
func (s *Service) ValidateSession(ctx context.Context, claims *Claims) (*user.User, error) {
	if claims == nil {
		return nil, errInvalidToken("missing claims")
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, errInvalidToken("subject is not a user id")
	}

	u, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errutil.HasCode(err, user.CodeNotFound) {
			return nil, errInvalidToken("user no longer exists")
		}
		return nil, oops.With("operation", "validate session").Wrap(err)
	}
	return u, nil
}

// HashPassword hashes plain with the configured hasher.
func (s *Service) HashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return "", oops.With("operation", "hash password").Wrap(err)
	}
	return hash, nil
}

// authenticate returns the matching user, or nil when the credentials do
// not match. It always runs one hash verification.
func (s *Service) authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, oops.With("operation", "find user by email").Wrap(err)
	}

	target, stored := s.dummy(), false
	if u != nil && u.HasPassword() {
		target, stored = *u.PasswordHash, true
	}

	ok, err := s.hasher.Verify(password, target)
	if err != nil {
		if stored {
			s.logger.WarnContext(ctx, "stored password hash is unreadable",
				"user_id", u.ID, "code", errutil.Code(err), "error", err)
		}
		return nil, nil
	}
	if !stored || !ok {
		return nil, nil
	}
	return u, nil
}

// upgradeHash replaces an outdated hash after a successful login. Failures
// are logged and do not fail the login.
func (s *Service) upgradeHash(ctx context.Context, u *user.User, password string) {
	if !s.hasher.NeedsUpgrade(*u.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "password rehash failed", "user_id", u.ID, "error", err)
		return
	}
	if _, err := s.users.UpdateUser(ctx, u.ID, user.Patch{Password: &hash}); err != nil {
		s.logger.WarnContext(ctx, "password rehash not saved",
			"user_id", u.ID, "code", errutil.Code(err), "error", err)
		return
	}
	s.logger.InfoContext(ctx, "password hash upgraded", "user_id", u.ID)
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Warn("dummy hash unavailable", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
