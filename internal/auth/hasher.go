// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"errors"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewHasher.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// DefaultBcryptCost is the work factor for new bcrypt hashes.
const DefaultBcryptCost = bcrypt.DefaultCost

// PasswordHasher turns passwords into self-describing hash strings. Every
// implementation verifies both bcrypt and argon2id hashes, so switching
// the configured hasher never locks out existing users.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports a mismatch as (false, nil). An unparseable hash is an
	// AUTH_INVALID_HASH error.
	Verify(password, hash string) (bool, error)
	// NeedsUpgrade reports whether hash should be replaced by a fresh one
	// from this hasher after a successful login.
	NeedsUpgrade(hash string) bool
}

// NewHasher returns the hasher registered under kind. An empty kind
// selects bcrypt.
func NewHasher(kind string) (PasswordHasher, error) {
	switch kind {
	case "", HasherBcrypt:
		return NewBcryptHasher(DefaultBcryptCost), nil
	case HasherArgon2id:
		return NewArgon2idHasher(Argon2Params{}), nil
	default:
		return nil, oops.Code(CodeUnknownHasher).
			With("hasher", kind).
			Errorf("unknown password hasher %q", kind)
	}
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Costs below bcrypt.MinCost use
// DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", oops.Code(CodePasswordTooLong).Errorf("password must be at most 72 bytes")
		}
		return "", oops.Code(CodeHashFailed).With("cost", h.cost).Wrap(err)
	}
	return string(hash), nil
}

// Verify checks the password against a bcrypt hash. Argon2id hashes are
// verified too so a deployment can switch hashers without locking anyone out.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	if isArgon2idHash(hash) {
		return verifyArgon2id(password, hash)
	}
	return verifyBcrypt(password, hash)
}

// NeedsUpgrade returns true for non-bcrypt hashes and for bcrypt hashes
// made with a lower cost.
func (h *BcryptHasher) NeedsUpgrade(hash string) bool {
	if !isBcryptHash(hash) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < h.cost
}

func isBcryptHash(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}

func verifyBcrypt(password, hash string) (bool, error) {
	if !isBcryptHash(hash) {
		return false, oops.Code(CodeInvalidHash).Errorf("invalid hash format")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code(CodeInvalidHash).Wrap(err)
	}
}
