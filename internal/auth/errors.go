// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import "github.com/samber/oops"

// Error codes attached to errors returned by this package.
const (
	CodeEmptyPassword      = "AUTH_EMPTY_PASSWORD"
	CodePasswordTooLong    = "AUTH_PASSWORD_TOO_LONG"
	CodeInvalidHash        = "AUTH_INVALID_HASH"
	CodeHashFailed         = "AUTH_HASH_FAILED"
	CodeUnknownHasher      = "AUTH_UNKNOWN_HASHER"
	CodePasswordRequired   = "AUTH_PASSWORD_REQUIRED"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeMissingToken       = "AUTH_MISSING_TOKEN"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	CodeTokenConfig        = "AUTH_TOKEN_CONFIG_INVALID"
	CodeTokenSignFailed    = "AUTH_TOKEN_SIGN_FAILED"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")

func errInvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("Invalid credentials. Please check email and password.")
}

func errInvalidToken(reason string) error {
	return oops.Code(CodeInvalidToken).With("reason", reason).Errorf("Invalid token")
}
